package service

import (
	"context"

	"github.com/lalith-99/maintcal/internal/models"
	"github.com/lalith-99/maintcal/internal/repository"
	"go.uber.org/zap"
)

// ConfigService resolves and replaces optimizer configurations.
type ConfigService struct {
	repo      repository.OptimizerConfigRepository
	bootstrap *Bootstrapper
	logger    *zap.Logger
}

func NewConfigService(repo repository.OptimizerConfigRepository, bootstrap *Bootstrapper, logger *zap.Logger) *ConfigService {
	return &ConfigService{repo: repo, bootstrap: bootstrap, logger: logger}
}

// Active returns the tenant's active config, falling back to the default
// tenant's. If neither exists the default tenant is bootstrapped and the
// lookup retried once.
func (s *ConfigService) Active(ctx context.Context, tenant string) (*models.OptimizerConfig, error) {
	cfg, err := s.repo.Active(ctx, tenant)
	if err != nil {
		return nil, storageErr("get optimizer config", err)
	}
	if cfg != nil {
		return cfg, nil
	}

	defaultTenant := s.bootstrap.DefaultTenant()
	if tenant != defaultTenant {
		cfg, err = s.repo.Active(ctx, defaultTenant)
		if err != nil {
			return nil, storageErr("get default optimizer config", err)
		}
		if cfg != nil {
			return cfg, nil
		}
	}

	if err := s.bootstrap.EnsureTenantData(ctx, defaultTenant); err != nil {
		return nil, err
	}
	cfg, err = s.repo.Active(ctx, defaultTenant)
	if err != nil {
		return nil, storageErr("get default optimizer config", err)
	}
	if cfg == nil {
		return nil, ErrNoActiveConfig
	}
	return cfg, nil
}

// Set validates params for their method/mode and makes them the tenant's
// active config.
func (s *ConfigService) Set(ctx context.Context, tenant string, params models.OptimizerParams) (*models.OptimizerConfig, error) {
	if tenant == "" {
		return nil, &ValidationError{Field: "tenant", Reason: "is required"}
	}
	if err := params.Validate(); err != nil {
		return nil, validationErr("", err)
	}

	cfg, err := s.repo.ReplaceActive(ctx, tenant, params.Clone())
	if err != nil {
		s.logger.Error("failed to set optimizer config", zap.String("tenant", tenant), zap.Error(err))
		return nil, storageErr("set optimizer config", err)
	}

	s.logger.Info("optimizer config replaced",
		zap.String("tenant", tenant),
		zap.Int64("config_id", cfg.ID),
		zap.String("method", string(cfg.Method)),
		zap.String("mode", string(cfg.Mode)),
	)
	return cfg, nil
}
