package service

import (
	"context"
	"errors"
	"testing"

	"github.com/lalith-99/maintcal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigService_ActiveBootstrapsDefault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cfg, err := f.cfgSvc.Active(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultTenant, cfg.Tenant)
	assert.Equal(t, models.DefaultOptimizerParams(), cfg.OptimizerParams)
}

func TestConfigService_ActivePrefersOwnConfig(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	params, err := models.NewParams(models.MethodAntColony, models.ModeFixedTime).Ants(5).TimeSeconds(60).Build()
	require.NoError(t, err)
	_, err = f.cfgSvc.Set(ctx, "acme", params)
	require.NoError(t, err)

	cfg, err := f.cfgSvc.Active(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "acme", cfg.Tenant)
	assert.Equal(t, models.MethodAntColony, cfg.Method)

	def, err := f.cfgSvc.Active(ctx, models.DefaultTenant)
	require.NoError(t, err)
	assert.Equal(t, models.MethodGeneticAlgorithm, def.Method)
}

func TestConfigService_ActiveFallsBackToDefault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.bootstrap.EnsureTenantData(ctx, models.DefaultTenant))

	cfg, err := f.cfgSvc.Active(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultTenant, cfg.Tenant)

	exists, err := f.configs.Exists(ctx, "acme")
	require.NoError(t, err)
	assert.False(t, exists, "reading does not clone")
}

func TestConfigService_SetReplacesActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.cfgSvc.Set(ctx, "acme", models.DefaultOptimizerParams())
	require.NoError(t, err)

	params, err := models.NewParams(models.MethodGeneticAlgorithm, models.ModeFixedParams).Population(10).Generations(20).Build()
	require.NoError(t, err)
	second, err := f.cfgSvc.Set(ctx, "acme", params)
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	active, err := f.cfgSvc.Active(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
	assert.Equal(t, 20, *active.Generations)
}

func TestConfigService_SetRejectsInvalid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	n := 10

	_, err := f.cfgSvc.Set(ctx, "acme", models.OptimizerParams{
		Method: models.MethodAntColony,
		Mode:   models.ModeFixedParams,
		Ants:   &n,
	})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "n_iter", verr.Field)

	exists, err := f.configs.Exists(ctx, "acme")
	require.NoError(t, err)
	assert.False(t, exists)
}
