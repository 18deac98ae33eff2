// Package memory implements the repository interfaces in process memory.
//
// Each store guards its tables with one mutex, so every method is a single
// atomic step with the same visible semantics as the Postgres transactions:
// replace and clone never expose zero or two active records.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/lalith-99/maintcal/internal/models"
	"github.com/lalith-99/maintcal/internal/repository"
)

// versioned is the view of a record the active-record helpers need.
type versioned interface {
	tenantOf() string
	isActive() bool
	setActive(bool)
	order() (time.Time, int64)
}

// activeOf returns the most recently created active record of the tenant,
// highest id on equal timestamps.
func activeOf[T versioned](rows []T, tenant string) (T, bool) {
	var (
		best  T
		found bool
	)
	for _, r := range rows {
		if r.tenantOf() != tenant || !r.isActive() {
			continue
		}
		if !found || newer(r, best) {
			best, found = r, true
		}
	}
	return best, found
}

func newer[T versioned](a, b T) bool {
	at, aid := a.order()
	bt, bid := b.order()
	if !at.Equal(bt) {
		return at.After(bt)
	}
	return aid > bid
}

func deactivateAll[T versioned](rows []T, tenant string) {
	for _, r := range rows {
		if r.tenantOf() == tenant && r.isActive() {
			r.setActive(false)
		}
	}
}

type snapshotRow struct {
	models.Snapshot
}

func (r *snapshotRow) tenantOf() string          { return r.Tenant }
func (r *snapshotRow) isActive() bool            { return r.Active }
func (r *snapshotRow) setActive(v bool)          { r.Active = v }
func (r *snapshotRow) order() (time.Time, int64) { return r.GeneratedAt, r.ID }

// ScheduleStore keeps snapshots with their windows embedded.
type ScheduleStore struct {
	mu           sync.Mutex
	snapshots    []*snapshotRow
	nextSnapshot int64
	nextWindow   int64
	now          func() time.Time
}

func NewScheduleStore() *ScheduleStore {
	return &ScheduleStore{now: time.Now}
}

var _ repository.ScheduleRepository = (*ScheduleStore)(nil)

// copySnapshot returns a copy whose windows and day slices do not alias the store.
func copySnapshot(s models.Snapshot, withWindows bool) *models.Snapshot {
	out := s
	out.Windows = nil
	if withWindows {
		out.Windows = make([]models.Window, 0, len(s.Windows))
		for _, w := range s.Windows {
			w.Days = slices.Clone(w.Days)
			out.Windows = append(out.Windows, w)
		}
	}
	return &out
}

func (s *ScheduleStore) Active(ctx context.Context, tenant string) (*models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := activeOf(s.snapshots, tenant)
	if !ok {
		return nil, nil
	}
	return copySnapshot(row.Snapshot, true), nil
}

func (s *ScheduleStore) ActiveHeader(ctx context.Context, tenant string) (*models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := activeOf(s.snapshots, tenant)
	if !ok {
		return nil, nil
	}
	return copySnapshot(row.Snapshot, false), nil
}

func (s *ScheduleStore) Windows(ctx context.Context, snapshotID int64) ([]models.Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.snapshots {
		if row.ID == snapshotID {
			return copySnapshot(row.Snapshot, true).Windows, nil
		}
	}
	return make([]models.Window, 0), nil
}

func (s *ScheduleStore) History(ctx context.Context, tenant string) ([]models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Snapshot, 0)
	for _, row := range s.snapshots {
		if row.Tenant == tenant {
			out = append(out, *copySnapshot(row.Snapshot, false))
		}
	}
	slices.SortStableFunc(out, func(a, b models.Snapshot) int {
		if c := b.GeneratedAt.Compare(a.GeneratedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

// insertLocked appends a new active snapshot. Callers hold s.mu.
func (s *ScheduleStore) insertLocked(tenant string, total int, windows []models.Window) *models.Snapshot {
	now := s.now()
	s.nextSnapshot++
	row := &snapshotRow{Snapshot: models.Snapshot{
		ID:           s.nextSnapshot,
		Tenant:       tenant,
		GeneratedAt:  now,
		LastModified: now,
		TotalWindows: total,
		Active:       true,
		Windows:      make([]models.Window, 0, len(windows)),
	}}
	for _, w := range windows {
		s.nextWindow++
		row.Windows = append(row.Windows, models.Window{
			ID:         s.nextWindow,
			SnapshotID: row.ID,
			Unit:       w.Unit,
			Code:       w.Code,
			Days:       slices.Clone(w.Days),
		})
	}
	s.snapshots = append(s.snapshots, row)
	return copySnapshot(row.Snapshot, true)
}

func (s *ScheduleStore) ReplaceActive(ctx context.Context, tenant string, inputs []models.WindowInput) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	windows := make([]models.Window, 0, len(inputs))
	for _, in := range inputs {
		windows = append(windows, models.Window{
			Unit: models.UnitLabel(in.Unit),
			Code: in.Code,
			Days: models.SortedDays(in.Days),
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	deactivateAll(s.snapshots, tenant)
	return s.insertLocked(tenant, len(inputs), windows), nil
}

func (s *ScheduleStore) CreateActiveIfAbsent(ctx context.Context, tenant string, src *models.Snapshot) (*models.Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := activeOf(s.snapshots, tenant); ok {
		return nil, false, nil
	}
	return s.insertLocked(tenant, src.TotalWindows, src.Windows), true, nil
}

func (s *ScheduleStore) EditWindowDays(ctx context.Context, tenant, unit, code string, mutate repository.DaysMutator) (*models.Window, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := activeOf(s.snapshots, tenant)
	if !ok {
		return nil, repository.ErrNoActiveSnapshot
	}
	for i := range row.Windows {
		w := &row.Windows[i]
		if w.Unit != unit || w.Code != code {
			continue
		}
		days, err := mutate(slices.Clone(w.Days))
		if err != nil {
			return nil, err
		}
		w.Days = slices.Clone(days)
		row.LastModified = s.now()
		out := *w
		out.Days = slices.Clone(days)
		return &out, nil
	}
	return nil, repository.ErrWindowNotFound
}
