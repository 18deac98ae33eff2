// Package synth generates random maintenance schedules for all units.
package synth

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/lalith-99/maintcal/internal/models"
)

const (
	minSpecsPerUnit = 1
	maxSpecsPerUnit = 5
	minRunsPerSpec  = 1
	maxRunsPerSpec  = 2
	minRunLength    = 20
	maxRunLength    = 100
)

// Synthesizer draws schedules from a seeded source. It is safe for
// concurrent use.
type Synthesizer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Synthesizer seeded from the clock.
func New() *Synthesizer {
	seed := uint64(time.Now().UnixNano())
	return NewWithRand(rand.New(rand.NewPCG(seed, seed>>1|1)))
}

// NewWithRand uses rng for every draw, which makes output reproducible.
func NewWithRand(rng *rand.Rand) *Synthesizer {
	return &Synthesizer{rng: rng}
}

// Generate returns windows for units 1..50. Each unit gets 1 to 5 windows;
// each window is 1 or 2 continuous runs of 20 to 100 days inside the year.
// Overlapping runs are merged, so days are ascending and unique.
func (s *Synthesizer) Generate() []models.WindowInput {
	s.mu.Lock()
	defer s.mu.Unlock()

	windows := make([]models.WindowInput, 0, models.UnitCount*3)
	for unit := 1; unit <= models.UnitCount; unit++ {
		specs := s.between(minSpecsPerUnit, maxSpecsPerUnit)
		for range specs {
			code := models.MaintenanceCodes[s.rng.IntN(len(models.MaintenanceCodes))]

			days := make([]int, 0, maxRunLength*maxRunsPerSpec)
			for range s.between(minRunsPerSpec, maxRunsPerSpec) {
				length := s.between(minRunLength, maxRunLength)
				start := s.between(1, models.DaysInYear-length+1)
				for d := start; d < start+length; d++ {
					days = append(days, d)
				}
			}

			windows = append(windows, models.WindowInput{
				Unit: unit,
				Code: code,
				Days: models.SortedDays(days),
			})
		}
	}
	return windows
}

// between returns a uniform int in [lo, hi].
func (s *Synthesizer) between(lo, hi int) int {
	return lo + s.rng.IntN(hi-lo+1)
}
