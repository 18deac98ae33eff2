package repository

import (
	"context"
	"errors"

	"github.com/lalith-99/maintcal/internal/models"
)

// Every method takes the tenant explicitly and filters by it. Reads that find
// nothing return nil, nil; only store failures are errors.

var (
	// ErrNoActiveSnapshot is returned by EditWindowDays when the tenant has no active snapshot.
	ErrNoActiveSnapshot = errors.New("no active snapshot")

	// ErrWindowNotFound is returned by EditWindowDays when no window matches (unit, code).
	ErrWindowNotFound = errors.New("maintenance window not found")
)

// DaysMutator computes a window's replacement day set from its current one.
// A non-nil error aborts the edit and is returned unchanged to the caller.
type DaysMutator func(current []int) ([]int, error)

// ScheduleRepository stores schedule snapshots and their maintenance windows.
type ScheduleRepository interface {
	// Active returns the tenant's active snapshot with its windows loaded in
	// insertion order. Ties on generated_at go to the highest id.
	Active(ctx context.Context, tenant string) (*models.Snapshot, error)

	// ActiveHeader is Active without the windows.
	ActiveHeader(ctx context.Context, tenant string) (*models.Snapshot, error)

	// Windows returns a snapshot's windows in insertion order.
	Windows(ctx context.Context, snapshotID int64) ([]models.Window, error)

	// History returns every snapshot header of the tenant, newest first,
	// including deactivated versions.
	History(ctx context.Context, tenant string) ([]models.Snapshot, error)

	// ReplaceActive deactivates every active snapshot of the tenant and inserts
	// a new active one built from windows, in one transaction.
	ReplaceActive(ctx context.Context, tenant string, windows []models.WindowInput) (*models.Snapshot, error)

	// CreateActiveIfAbsent inserts a deep copy of src (header counts and every
	// window) as the tenant's active snapshot, unless the tenant already has an
	// active snapshot. The bool reports whether a copy was inserted.
	CreateActiveIfAbsent(ctx context.Context, tenant string, src *models.Snapshot) (*models.Snapshot, bool, error)

	// EditWindowDays locks the first window matching (unit, code) in the
	// tenant's active snapshot, replaces its days with mutate's result and bumps
	// the snapshot's last_modified, all in one transaction.
	EditWindowDays(ctx context.Context, tenant, unit, code string, mutate DaysMutator) (*models.Window, error)
}

// OptimizerConfigRepository stores optimizer parameter profiles.
type OptimizerConfigRepository interface {
	// Active returns the tenant's most recently created active config.
	Active(ctx context.Context, tenant string) (*models.OptimizerConfig, error)

	// Exists reports whether the tenant has any config, active or not.
	Exists(ctx context.Context, tenant string) (bool, error)

	// ReplaceActive deactivates every active config of the tenant and inserts
	// params as the new active one, in one transaction.
	ReplaceActive(ctx context.Context, tenant string, params models.OptimizerParams) (*models.OptimizerConfig, error)

	// CreateIfNone inserts params as the tenant's active config only if the
	// tenant has no config at all. The bool reports whether it was inserted.
	CreateIfNone(ctx context.Context, tenant string, params models.OptimizerParams) (*models.OptimizerConfig, bool, error)
}
