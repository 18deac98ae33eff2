package service

import (
	"context"

	"github.com/lalith-99/maintcal/internal/models"
	"github.com/lalith-99/maintcal/internal/observ"
	"github.com/lalith-99/maintcal/internal/repository"
	"go.uber.org/zap"
)

// Bootstrapper gives tenants a usable optimizer config and schedule on first
// access by copying the default tenant's active records.
type Bootstrapper struct {
	schedules     repository.ScheduleRepository
	configs       repository.OptimizerConfigRepository
	defaultTenant string
	logger        *zap.Logger
}

func NewBootstrapper(
	schedules repository.ScheduleRepository,
	configs repository.OptimizerConfigRepository,
	defaultTenant string,
	logger *zap.Logger,
) *Bootstrapper {
	if defaultTenant == "" {
		defaultTenant = models.DefaultTenant
	}
	return &Bootstrapper{
		schedules:     schedules,
		configs:       configs,
		defaultTenant: defaultTenant,
		logger:        logger,
	}
}

func (b *Bootstrapper) DefaultTenant() string {
	return b.defaultTenant
}

// EnsureTenantData makes sure the tenant has an optimizer config and an active
// snapshot, creating whichever is missing. The config and the snapshot are
// handled independently; each check-and-create runs under the store's tenant
// lock, so repeated or concurrent calls create nothing twice.
func (b *Bootstrapper) EnsureTenantData(ctx context.Context, tenant string) error {
	if tenant == "" {
		return &ValidationError{Field: "tenant", Reason: "is required"}
	}
	if tenant == b.defaultTenant {
		return b.ensureDefaultConfig(ctx)
	}
	if err := b.cloneConfig(ctx, tenant); err != nil {
		return err
	}
	return b.cloneSchedule(ctx, tenant)
}

func (b *Bootstrapper) ensureDefaultConfig(ctx context.Context) error {
	cfg, created, err := b.configs.CreateIfNone(ctx, b.defaultTenant, models.DefaultOptimizerParams())
	if err != nil {
		return storageErr("create default optimizer config", err)
	}
	if created {
		observ.BootstrapClones.WithLabelValues("default_config").Inc()
		b.logger.Info("created default optimizer config",
			zap.String("tenant", b.defaultTenant),
			zap.Int64("config_id", cfg.ID),
		)
	}
	return nil
}

func (b *Bootstrapper) cloneConfig(ctx context.Context, tenant string) error {
	exists, err := b.configs.Exists(ctx, tenant)
	if err != nil {
		return storageErr("check optimizer config", err)
	}
	if exists {
		return nil
	}

	src, err := b.configs.Active(ctx, b.defaultTenant)
	if err != nil {
		return storageErr("get default optimizer config", err)
	}
	if src == nil {
		b.logger.Debug("default tenant has no active optimizer config; skipping clone",
			zap.String("tenant", tenant),
		)
		return nil
	}

	cfg, created, err := b.configs.CreateIfNone(ctx, tenant, src.OptimizerParams.Clone())
	if err != nil {
		return storageErr("clone optimizer config", err)
	}
	if created {
		observ.BootstrapClones.WithLabelValues("config").Inc()
		b.logger.Info("cloned optimizer config from default tenant",
			zap.String("tenant", tenant),
			zap.Int64("source_id", src.ID),
			zap.Int64("config_id", cfg.ID),
		)
	}
	return nil
}

func (b *Bootstrapper) cloneSchedule(ctx context.Context, tenant string) error {
	own, err := b.schedules.ActiveHeader(ctx, tenant)
	if err != nil {
		return storageErr("get active schedule", err)
	}
	if own != nil {
		return nil
	}

	src, err := b.schedules.Active(ctx, b.defaultTenant)
	if err != nil {
		return storageErr("get default schedule", err)
	}
	if src == nil {
		return nil
	}

	snap, created, err := b.schedules.CreateActiveIfAbsent(ctx, tenant, src)
	if err != nil {
		return storageErr("clone schedule", err)
	}
	if created {
		observ.BootstrapClones.WithLabelValues("schedule").Inc()
		b.logger.Info("cloned schedule from default tenant",
			zap.String("tenant", tenant),
			zap.Int64("source_id", src.ID),
			zap.Int64("snapshot_id", snap.ID),
			zap.Int("windows", len(snap.Windows)),
		)
	}
	return nil
}
