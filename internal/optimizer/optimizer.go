// Package optimizer runs a schedule solver with the tenant's active
// configuration and installs its final result as a new snapshot.
package optimizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lalith-99/maintcal/internal/models"
)

var ErrNoFinalResult = errors.New("solver finished without a final result")

// Entry is one scheduled window as solvers report it. Days are 0-indexed.
type Entry struct {
	Unit int    `json:"ug"`
	Code string `json:"maintenance"`
	Days []int  `json:"days"`
}

type Result struct {
	Entries []Entry       `json:"entries"`
	Elapsed time.Duration `json:"elapsed"`
}

// Progress is streamed while a solver runs. The last update carries Final.
type Progress struct {
	Iteration int           `json:"iteration"`
	BestScore float64       `json:"best_score"`
	Elapsed   time.Duration `json:"elapsed"`
	Final     *Result       `json:"final,omitempty"`
}

// Solver searches for a schedule under the given parameters. The returned
// channel is closed when the search ends; cancelling ctx stops it early.
type Solver interface {
	Solve(ctx context.Context, params models.OptimizerParams) (<-chan Progress, error)
}

// ToWindowInputs converts solver entries to install inputs, shifting days to
// 1-indexed.
func ToWindowInputs(entries []Entry) ([]models.WindowInput, error) {
	out := make([]models.WindowInput, 0, len(entries))
	for i, e := range entries {
		if e.Unit < 1 || e.Unit > models.UnitCount {
			return nil, fmt.Errorf("entry %d: unit %d outside 1..%d", i, e.Unit, models.UnitCount)
		}
		days := make([]int, len(e.Days))
		for j, d := range e.Days {
			if d < 0 || d >= models.DaysInYear {
				return nil, fmt.Errorf("entry %d: day index %d outside 0..%d", i, d, models.DaysInYear-1)
			}
			days[j] = d + 1
		}
		out = append(out, models.WindowInput{
			Unit: e.Unit,
			Code: e.Code,
			Days: models.SortedDays(days),
		})
	}
	return out, nil
}

func fromWindowInputs(windows []models.WindowInput) []Entry {
	out := make([]Entry, len(windows))
	for i, w := range windows {
		days := make([]int, len(w.Days))
		for j, d := range w.Days {
			days[j] = d - 1
		}
		out[i] = Entry{Unit: w.Unit, Code: w.Code, Days: days}
	}
	return out
}
