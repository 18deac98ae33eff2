package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// kind identifies one versioned entity family: its table and the namespace of
// its per-tenant advisory lock.
type kind struct {
	name  string
	table string
}

var (
	kindSchedule        = kind{name: "schedule_snapshot", table: "schedule_snapshots"}
	kindOptimizerConfig = kind{name: "optimizer_config", table: "optimizer_configs"}
)

// existence selects what "already present" means for createIfAbsent.
type existence int

const (
	anyActive existence = iota
	anyRecord
)

// withTenantLock runs fn in a transaction holding the (kind, tenant) advisory
// lock. The lock is released on commit or rollback. Every writer of a kind
// takes it first, so replace, bootstrap and edit never interleave for one tenant.
//
// Row locks alone are not enough here: a tenant with no records has no row to
// lock, so two bootstraps would both see "nothing yet" and both insert. The
// advisory lock exists before any row does. The xact variant is used so a
// failed transaction can never leak a session-level lock back into the pool.
func withTenantLock(ctx context.Context, pool *pgxpool.Pool, k kind, tenant string, fn func(pgx.Tx) error) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`SELECT pg_advisory_xact_lock(hashtext($1), hashtext($2))`,
			k.name, tenant,
		); err != nil {
			return fmt.Errorf("lock %s for tenant: %w", k.name, err)
		}
		return fn(tx)
	})
}

// replaceActive clears the active flag on every active record of kind for the
// tenant and inserts a new one, atomically.
//
// Deactivate runs before insert because the partial unique index on
// (tenant) WHERE active would reject a second active row otherwise. Readers
// outside the transaction keep seeing the old active record until commit.
func replaceActive[T any](ctx context.Context, pool *pgxpool.Pool, k kind, tenant string, insert func(pgx.Tx) (*T, error)) (*T, error) {
	var out *T
	err := withTenantLock(ctx, pool, k, tenant, func(tx pgx.Tx) error {
		query := fmt.Sprintf(`UPDATE %s SET active = FALSE WHERE tenant = $1 AND active`, k.table)
		if _, err := tx.Exec(ctx, query, tenant); err != nil {
			return fmt.Errorf("deactivate %s: %w", k.name, err)
		}
		rec, err := insert(tx)
		if err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// createIfAbsent inserts a record only when the tenant has nothing matching
// want. Check and insert share the tenant lock, so concurrent callers
// create at most one record.
//
// This is not an INSERT ... ON CONFLICT DO NOTHING: for configs the check is
// "any record at all, active or not" (anyRecord), which no unique index can
// express, and a conflict on the partial index would still have cost a
// full snapshot copy before being thrown away.
func createIfAbsent[T any](ctx context.Context, pool *pgxpool.Pool, k kind, tenant string, want existence, insert func(pgx.Tx) (*T, error)) (*T, bool, error) {
	var (
		out     *T
		created bool
	)
	err := withTenantLock(ctx, pool, k, tenant, func(tx pgx.Tx) error {
		query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE tenant = $1)`, k.table)
		if want == anyActive {
			query = fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE tenant = $1 AND active)`, k.table)
		}
		var exists bool
		if err := tx.QueryRow(ctx, query, tenant).Scan(&exists); err != nil {
			return fmt.Errorf("check existing %s: %w", k.name, err)
		}
		if exists {
			return nil
		}
		rec, err := insert(tx)
		if err != nil {
			return err
		}
		out, created = rec, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, created, nil
}
