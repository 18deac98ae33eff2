package optimizer

import (
	"context"
	"math"
	"time"

	"github.com/lalith-99/maintcal/internal/models"
	"github.com/lalith-99/maintcal/internal/synth"
)

const defaultReportEvery = 25

// RandomSearch draws candidate schedules from a synthesizer and keeps the one
// with the lowest peak load, the largest number of units under maintenance on
// a single day.
//
// fixed_time runs for the configured seconds. fixed_params runs
// population*generations (genetic_algorithm) or ants*iterations (ant_colony)
// draws. Either way the run stops at maxDuration.
type RandomSearch struct {
	synth       *synth.Synthesizer
	maxDuration time.Duration
	reportEvery int
}

func NewRandomSearch(s *synth.Synthesizer, maxDuration time.Duration) *RandomSearch {
	return &RandomSearch{synth: s, maxDuration: maxDuration, reportEvery: defaultReportEvery}
}

func (r *RandomSearch) Solve(ctx context.Context, params models.OptimizerParams) (<-chan Progress, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	budget := r.maxDuration
	draws := math.MaxInt
	switch params.Mode {
	case models.ModeFixedTime:
		// clamp in seconds first; the product must not overflow a Duration
		t := time.Duration(min(*params.TimeSeconds, models.MaxTimeSeconds)) * time.Second
		if budget <= 0 || t < budget {
			budget = t
		}
	case models.ModeFixedParams:
		draws = drawBudget(params)
	}

	out := make(chan Progress)
	go func() {
		defer close(out)

		start := time.Now()
		runCtx := ctx
		if budget > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(ctx, budget)
			defer cancel()
		}

		var best []models.WindowInput
		bestScore := math.Inf(1)
		iter := 0
		for iter < draws {
			if runCtx.Err() != nil && best != nil {
				break
			}
			candidate := r.synth.Generate()
			iter++
			if score := float64(PeakLoad(candidate)); score < bestScore {
				best, bestScore = candidate, score
			}

			if iter%r.reportEvery == 0 {
				select {
				case out <- Progress{Iteration: iter, BestScore: bestScore, Elapsed: time.Since(start)}:
				case <-ctx.Done():
					return
				}
			}
		}

		elapsed := time.Since(start)
		final := Progress{
			Iteration: iter,
			BestScore: bestScore,
			Elapsed:   elapsed,
			Final:     &Result{Entries: fromWindowInputs(best), Elapsed: elapsed},
		}
		select {
		case out <- final:
		case <-ctx.Done():
		}
	}()
	return out, nil
}

func drawBudget(p models.OptimizerParams) int {
	deref := func(v *int) int {
		if v == nil {
			return 0
		}
		return *v
	}
	if p.Method == models.MethodAntColony {
		return saturatingMul(deref(p.Ants), deref(p.Iterations))
	}
	return saturatingMul(deref(p.Population), deref(p.Generations))
}

// saturatingMul returns a*b clamped to 1..math.MaxInt.
func saturatingMul(a, b int) int {
	if a <= 0 || b <= 0 {
		return 1
	}
	if a > math.MaxInt/b {
		return math.MaxInt
	}
	return max(1, a*b)
}

// PeakLoad returns the largest number of distinct units scheduled on any one day.
func PeakLoad(windows []models.WindowInput) int {
	var busy [models.DaysInYear + 1]map[int]struct{}
	peak := 0
	for _, w := range windows {
		for _, d := range w.Days {
			if d < 1 || d > models.DaysInYear {
				continue
			}
			if busy[d] == nil {
				busy[d] = make(map[int]struct{})
			}
			busy[d][w.Unit] = struct{}{}
			peak = max(peak, len(busy[d]))
		}
	}
	return peak
}
