package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/maintcal/internal/models"
)

type OptimizerConfigStore struct {
	pool *pgxpool.Pool
}

func NewOptimizerConfigStore(pool *pgxpool.Pool) *OptimizerConfigStore {
	return &OptimizerConfigStore{pool: pool}
}

const configColumns = `id, tenant, method, mode, population, generations, ants, iterations,
	time_seconds, active, created_at, last_modified`

func scanConfig(row pgx.Row, c *models.OptimizerConfig) error {
	return row.Scan(
		&c.ID,
		&c.Tenant,
		&c.Method,
		&c.Mode,
		&c.Population,
		&c.Generations,
		&c.Ants,
		&c.Iterations,
		&c.TimeSeconds,
		&c.Active,
		&c.CreatedAt,
		&c.LastModified,
	)
}

func (s *OptimizerConfigStore) Active(ctx context.Context, tenant string) (*models.OptimizerConfig, error) {
	query := `
		SELECT ` + configColumns + `
		FROM optimizer_configs
		WHERE tenant = $1 AND active
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	var c models.OptimizerConfig
	if err := scanConfig(s.pool.QueryRow(ctx, query, tenant), &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active optimizer config: %w", err)
	}
	return &c, nil
}

func (s *OptimizerConfigStore) Exists(ctx context.Context, tenant string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM optimizer_configs WHERE tenant = $1)`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, tenant).Scan(&exists); err != nil {
		return false, fmt.Errorf("check optimizer config: %w", err)
	}
	return exists, nil
}

func insertConfig(ctx context.Context, tx pgx.Tx, tenant string, p models.OptimizerParams) (*models.OptimizerConfig, error) {
	query := `
		INSERT INTO optimizer_configs
			(tenant, method, mode, population, generations, ants, iterations, time_seconds,
			 active, created_at, last_modified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, clock_timestamp(), clock_timestamp())
		RETURNING ` + configColumns

	var c models.OptimizerConfig
	err := scanConfig(tx.QueryRow(ctx, query,
		tenant,
		p.Method,
		p.Mode,
		p.Population,
		p.Generations,
		p.Ants,
		p.Iterations,
		p.TimeSeconds,
	), &c)
	if err != nil {
		return nil, fmt.Errorf("insert optimizer config: %w", err)
	}
	return &c, nil
}

func (s *OptimizerConfigStore) ReplaceActive(ctx context.Context, tenant string, params models.OptimizerParams) (*models.OptimizerConfig, error) {
	return replaceActive(ctx, s.pool, kindOptimizerConfig, tenant, func(tx pgx.Tx) (*models.OptimizerConfig, error) {
		return insertConfig(ctx, tx, tenant, params)
	})
}

func (s *OptimizerConfigStore) CreateIfNone(ctx context.Context, tenant string, params models.OptimizerParams) (*models.OptimizerConfig, bool, error) {
	return createIfAbsent(ctx, s.pool, kindOptimizerConfig, tenant, anyRecord, func(tx pgx.Tx) (*models.OptimizerConfig, error) {
		return insertConfig(ctx, tx, tenant, params)
	})
}
