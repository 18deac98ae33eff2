package service

import (
	"context"
	"testing"

	"github.com/lalith-99/maintcal/internal/models"
	"github.com/lalith-99/maintcal/internal/repository/memory"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	schedules *memory.ScheduleStore
	configs   *memory.OptimizerConfigStore
	svc       *ScheduleService
	bootstrap *Bootstrapper
	cfgSvc    *ConfigService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop()
	schedules := memory.NewScheduleStore()
	configs := memory.NewOptimizerConfigStore()
	bootstrap := NewBootstrapper(schedules, configs, models.DefaultTenant, logger)
	return &fixture{
		schedules: schedules,
		configs:   configs,
		svc:       NewScheduleService(schedules, nil, logger),
		bootstrap: bootstrap,
		cfgSvc:    NewConfigService(configs, bootstrap, logger),
	}
}

func (f *fixture) install(t *testing.T, tenant string, windows ...models.WindowInput) *models.Snapshot {
	t.Helper()
	snap, err := f.svc.Install(context.Background(), tenant, SourceAPI, windows)
	require.NoError(t, err)
	return snap
}

func days(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for d := from; d <= to; d++ {
		out = append(out, d)
	}
	return out
}
