package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/lalith-99/maintcal/internal/models"
	"github.com/lalith-99/maintcal/internal/observ"
	"go.uber.org/zap"
)

// EditRequest targets one maintenance window of the tenant's active snapshot.
type EditRequest struct {
	Unit    int
	Code    string
	OldDays []int
	NewDays []int
}

func (r EditRequest) validate() error {
	if r.Unit < 1 || r.Unit > models.UnitCount {
		return &ValidationError{Field: "ug", Reason: fmt.Sprintf("must be between 1 and %d (got %d)", models.UnitCount, r.Unit)}
	}
	if r.Code == "" {
		return &ValidationError{Field: "maintenance", Reason: "is required"}
	}
	for _, d := range r.OldDays {
		if d < 1 || d > models.DaysInYear {
			return &ValidationError{Field: "old_days", Reason: fmt.Sprintf("day %d outside 1..%d", d, models.DaysInYear)}
		}
	}
	for _, d := range r.NewDays {
		if d < 1 || d > models.DaysInYear {
			return &ValidationError{Field: "new_days", Reason: fmt.Sprintf("day %d outside 1..%d", d, models.DaysInYear)}
		}
	}
	return nil
}

// MergeDays applies an edit to a window's day set. Every old day must be in
// current; the result is (current - old) ∪ new, ascending without duplicates.
// On a mismatch the returned error is a *DaysMismatchError.
func MergeDays(current, oldDays, newDays []int) ([]int, error) {
	have := make(map[int]struct{}, len(current))
	for _, d := range current {
		have[d] = struct{}{}
	}

	remove := make(map[int]struct{}, len(oldDays))
	missing := make([]int, 0)
	for _, d := range oldDays {
		if _, ok := have[d]; !ok {
			missing = append(missing, d)
		}
		remove[d] = struct{}{}
	}
	if len(missing) > 0 {
		return nil, &DaysMismatchError{
			Missing: models.SortedDays(missing),
			Current: models.SortedDays(current),
		}
	}

	merged := make([]int, 0, len(current)+len(newDays))
	for _, d := range current {
		if _, drop := remove[d]; !drop {
			merged = append(merged, d)
		}
	}
	merged = append(merged, newDays...)
	return models.SortedDays(merged), nil
}

// EditWindow changes the days of the first window matching (unit, code) in
// the tenant's active snapshot. The lookup, subset check and write happen in
// one store transaction; any failure leaves the snapshot untouched.
//
// Re-sending the same request usually fails with ErrDaysMismatch, since the
// old days are gone after the first success.
func (s *ScheduleService) EditWindow(ctx context.Context, tenant string, req EditRequest) (*models.Window, error) {
	if err := req.validate(); err != nil {
		observ.WindowEdits.WithLabelValues("invalid").Inc()
		return nil, err
	}

	unit := models.UnitLabel(req.Unit)
	oldDays := slices.Clone(req.OldDays)
	newDays := slices.Clone(req.NewDays)

	w, err := s.repo.EditWindowDays(ctx, tenant, unit, req.Code, func(current []int) ([]int, error) {
		days, err := MergeDays(current, oldDays, newDays)
		if err != nil {
			var mismatch *DaysMismatchError
			if errors.As(err, &mismatch) {
				mismatch.Unit, mismatch.Code = unit, req.Code
			}
			return nil, err
		}
		return days, nil
	})
	if err != nil {
		err = classifyEdit(err)
		observ.WindowEdits.WithLabelValues(editOutcome(err)).Inc()
		if errors.Is(err, ErrStorage) {
			s.logger.Error("failed to edit window",
				zap.String("tenant", tenant),
				zap.String("unit", unit),
				zap.String("code", req.Code),
				zap.Error(err),
			)
		}
		return nil, err
	}

	observ.WindowEdits.WithLabelValues("ok").Inc()
	s.logger.Info("maintenance window edited",
		zap.String("tenant", tenant),
		zap.String("unit", unit),
		zap.String("code", req.Code),
		zap.Int("removed", len(oldDays)),
		zap.Int("added", len(newDays)),
		zap.Int("days", len(w.Days)),
	)
	return w, nil
}

func editOutcome(err error) string {
	switch {
	case errors.Is(err, ErrNoActiveSchedule):
		return "no_active_schedule"
	case errors.Is(err, ErrWindowNotFound):
		return "window_not_found"
	case errors.Is(err, ErrDaysMismatch):
		return "days_mismatch"
	default:
		return "storage_error"
	}
}
