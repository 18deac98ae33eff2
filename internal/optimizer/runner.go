package optimizer

import (
	"context"
	"fmt"
	"time"

	"github.com/lalith-99/maintcal/internal/models"
	"github.com/lalith-99/maintcal/internal/observ"
	"go.uber.org/zap"
)

// ConfigSource resolves the optimizer config to run with.
type ConfigSource interface {
	Active(ctx context.Context, tenant string) (*models.OptimizerConfig, error)
}

// Installer makes a window set the tenant's active schedule.
type Installer interface {
	Install(ctx context.Context, tenant, source string, windows []models.WindowInput) (*models.Snapshot, error)
}

// Outcome summarizes a finished run.
type Outcome struct {
	Snapshot   *models.Snapshot `json:"snapshot"`
	ConfigID   int64            `json:"config_id"`
	Iterations int              `json:"iterations"`
	BestScore  float64          `json:"best_score"`
	Elapsed    time.Duration    `json:"elapsed"`
}

type Runner struct {
	solver  Solver
	configs ConfigSource
	install Installer
	source  string
	logger  *zap.Logger
}

func NewRunner(solver Solver, configs ConfigSource, install Installer, source string, logger *zap.Logger) *Runner {
	return &Runner{solver: solver, configs: configs, install: install, source: source, logger: logger}
}

// Run solves with the tenant's active config and installs the final result.
// onProgress, if set, sees every update including the final one.
func (r *Runner) Run(ctx context.Context, tenant string, onProgress func(Progress)) (*Outcome, error) {
	out, err := r.run(ctx, tenant, onProgress)
	if err != nil {
		observ.OptimizerRuns.WithLabelValues("error").Inc()
		r.logger.Warn("optimizer run failed", zap.String("tenant", tenant), zap.Error(err))
		return nil, err
	}
	observ.OptimizerRuns.WithLabelValues("ok").Inc()
	r.logger.Info("optimizer run installed",
		zap.String("tenant", tenant),
		zap.Int64("snapshot_id", out.Snapshot.ID),
		zap.Int64("config_id", out.ConfigID),
		zap.Int("iterations", out.Iterations),
		zap.Float64("best_score", out.BestScore),
		zap.Duration("elapsed", out.Elapsed),
	)
	return out, nil
}

func (r *Runner) run(ctx context.Context, tenant string, onProgress func(Progress)) (*Outcome, error) {
	cfg, err := r.configs.Active(ctx, tenant)
	if err != nil {
		return nil, err
	}

	updates, err := r.solver.Solve(ctx, cfg.OptimizerParams)
	if err != nil {
		return nil, fmt.Errorf("start solver: %w", err)
	}

	var last Progress
	for p := range updates {
		last = p
		if onProgress != nil {
			onProgress(p)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if last.Final == nil {
		return nil, ErrNoFinalResult
	}

	windows, err := ToWindowInputs(last.Final.Entries)
	if err != nil {
		return nil, fmt.Errorf("convert solver result: %w", err)
	}
	snap, err := r.install.Install(ctx, tenant, r.source, windows)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Snapshot:   snap,
		ConfigID:   cfg.ID,
		Iterations: last.Iteration,
		BestScore:  last.BestScore,
		Elapsed:    last.Final.Elapsed,
	}, nil
}
