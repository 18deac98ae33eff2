package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/maintcal/internal/models"
	"github.com/lalith-99/maintcal/internal/repository"
)

type ScheduleStore struct {
	pool *pgxpool.Pool
}

func NewScheduleStore(pool *pgxpool.Pool) *ScheduleStore {
	return &ScheduleStore{pool: pool}
}

const snapshotColumns = `id, tenant, generated_at, last_modified, total_windows, active`

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func scanSnapshot(row pgx.Row, s *models.Snapshot) error {
	return row.Scan(
		&s.ID,
		&s.Tenant,
		&s.GeneratedAt,
		&s.LastModified,
		&s.TotalWindows,
		&s.Active,
	)
}

func activeHeader(ctx context.Context, q querier, tenant string) (*models.Snapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM schedule_snapshots
		WHERE tenant = $1 AND active
		ORDER BY generated_at DESC, id DESC
		LIMIT 1`

	var s models.Snapshot
	if err := scanSnapshot(q.QueryRow(ctx, query, tenant), &s); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active snapshot: %w", err)
	}
	return &s, nil
}

func listWindows(ctx context.Context, q querier, snapshotID int64) ([]models.Window, error) {
	query := `
		SELECT id, snapshot_id, unit, maintenance_code, days
		FROM maintenance_windows
		WHERE snapshot_id = $1
		ORDER BY id`

	rows, err := q.Query(ctx, query, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("list windows: %w", err)
	}
	defer rows.Close()

	windows := make([]models.Window, 0)
	for rows.Next() {
		var w models.Window
		if err := rows.Scan(&w.ID, &w.SnapshotID, &w.Unit, &w.Code, &w.Days); err != nil {
			return nil, fmt.Errorf("scan window: %w", err)
		}
		windows = append(windows, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate windows: %w", err)
	}
	return windows, nil
}

func (s *ScheduleStore) Active(ctx context.Context, tenant string) (*models.Snapshot, error) {
	// Header and windows are read in one transaction so the pair is consistent
	// even if a replace commits in between.
	var snap *models.Snapshot
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	}, func(tx pgx.Tx) error {
		header, err := activeHeader(ctx, tx, tenant)
		if err != nil || header == nil {
			return err
		}
		windows, err := listWindows(ctx, tx, header.ID)
		if err != nil {
			return err
		}
		header.Windows = windows
		snap = header
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *ScheduleStore) ActiveHeader(ctx context.Context, tenant string) (*models.Snapshot, error) {
	return activeHeader(ctx, s.pool, tenant)
}

func (s *ScheduleStore) Windows(ctx context.Context, snapshotID int64) ([]models.Window, error) {
	return listWindows(ctx, s.pool, snapshotID)
}

func (s *ScheduleStore) History(ctx context.Context, tenant string) ([]models.Snapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM schedule_snapshots
		WHERE tenant = $1
		ORDER BY generated_at DESC, id DESC`

	rows, err := s.pool.Query(ctx, query, tenant)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]models.Snapshot, 0)
	for rows.Next() {
		var snap models.Snapshot
		if err := scanSnapshot(rows, &snap); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snapshots, nil
}

// insertSnapshot writes an active header and its windows inside tx.
func insertSnapshot(ctx context.Context, tx pgx.Tx, tenant string, totalWindows int, windows []models.Window) (*models.Snapshot, error) {
	// clock_timestamp() rather than now(): now() is the transaction start, and
	// a transaction that started earlier may only get the tenant lock later.
	// Reading the clock after the lock keeps generated_at in commit order,
	// which is what the newest-first ordering of History relies on.
	query := `
		INSERT INTO schedule_snapshots (tenant, generated_at, last_modified, total_windows, active)
		VALUES ($1, clock_timestamp(), clock_timestamp(), $2, TRUE)
		RETURNING ` + snapshotColumns

	var snap models.Snapshot
	if err := scanSnapshot(tx.QueryRow(ctx, query, tenant, totalWindows), &snap); err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"maintenance_windows"},
		[]string{"snapshot_id", "unit", "maintenance_code", "days"},
		pgx.CopyFromSlice(len(windows), func(i int) ([]any, error) {
			w := windows[i]
			return []any{snap.ID, w.Unit, w.Code, w.Days}, nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("insert windows: %w", err)
	}

	// Re-read to pick up the generated window ids in insertion order.
	stored, err := listWindows(ctx, tx, snap.ID)
	if err != nil {
		return nil, err
	}
	snap.Windows = stored
	return &snap, nil
}

func (s *ScheduleStore) ReplaceActive(ctx context.Context, tenant string, inputs []models.WindowInput) (*models.Snapshot, error) {
	windows := make([]models.Window, 0, len(inputs))
	for _, in := range inputs {
		windows = append(windows, models.Window{
			Unit: models.UnitLabel(in.Unit),
			Code: in.Code,
			Days: models.SortedDays(in.Days),
		})
	}
	return replaceActive(ctx, s.pool, kindSchedule, tenant, func(tx pgx.Tx) (*models.Snapshot, error) {
		return insertSnapshot(ctx, tx, tenant, len(inputs), windows)
	})
}

func (s *ScheduleStore) CreateActiveIfAbsent(ctx context.Context, tenant string, src *models.Snapshot) (*models.Snapshot, bool, error) {
	windows := make([]models.Window, 0, len(src.Windows))
	for _, w := range src.Windows {
		windows = append(windows, models.Window{
			Unit: w.Unit,
			Code: w.Code,
			Days: append([]int(nil), w.Days...),
		})
	}
	return createIfAbsent(ctx, s.pool, kindSchedule, tenant, anyActive, func(tx pgx.Tx) (*models.Snapshot, error) {
		return insertSnapshot(ctx, tx, tenant, src.TotalWindows, windows)
	})
}

func (s *ScheduleStore) EditWindowDays(ctx context.Context, tenant, unit, code string, mutate repository.DaysMutator) (*models.Window, error) {
	var edited *models.Window
	err := withTenantLock(ctx, s.pool, kindSchedule, tenant, func(tx pgx.Tx) error {
		header, err := activeHeader(ctx, tx, tenant)
		if err != nil {
			return err
		}
		if header == nil {
			return repository.ErrNoActiveSnapshot
		}

		// First match in insertion order; duplicates of (unit, code) are
		// separate periods and only the oldest row is edited.
		//
		// The tenant lock already serializes writers of this kind. FOR UPDATE
		// also holds the row against any writer that bypasses the store, so
		// the read-modify-write of days below can never lose an update.
		query := `
			SELECT id, snapshot_id, unit, maintenance_code, days
			FROM maintenance_windows
			WHERE snapshot_id = $1 AND unit = $2 AND maintenance_code = $3
			ORDER BY id
			LIMIT 1
			FOR UPDATE`

		var w models.Window
		err = tx.QueryRow(ctx, query, header.ID, unit, code).Scan(&w.ID, &w.SnapshotID, &w.Unit, &w.Code, &w.Days)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return repository.ErrWindowNotFound
			}
			return fmt.Errorf("lock window: %w", err)
		}

		days, err := mutate(w.Days)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `UPDATE maintenance_windows SET days = $2 WHERE id = $1`, w.ID, days); err != nil {
			return fmt.Errorf("update window days: %w", err)
		}
		// last_modified is part of the window cache key; it must only move
		// forward in the order edits commit, hence clock_timestamp().
		if _, err := tx.Exec(ctx, `UPDATE schedule_snapshots SET last_modified = clock_timestamp() WHERE id = $1`, header.ID); err != nil {
			return fmt.Errorf("touch snapshot: %w", err)
		}

		w.Days = days
		edited = &w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return edited, nil
}
