package memory

import (
	"context"
	"sync"
	"time"

	"github.com/lalith-99/maintcal/internal/models"
	"github.com/lalith-99/maintcal/internal/repository"
)

type configRow struct {
	models.OptimizerConfig
}

func (r *configRow) tenantOf() string          { return r.Tenant }
func (r *configRow) isActive() bool            { return r.Active }
func (r *configRow) setActive(v bool)          { r.Active = v }
func (r *configRow) order() (time.Time, int64) { return r.CreatedAt, r.ID }

type OptimizerConfigStore struct {
	mu      sync.Mutex
	configs []*configRow
	nextID  int64
	now     func() time.Time
}

func NewOptimizerConfigStore() *OptimizerConfigStore {
	return &OptimizerConfigStore{now: time.Now}
}

var _ repository.OptimizerConfigRepository = (*OptimizerConfigStore)(nil)

func copyConfig(c models.OptimizerConfig) *models.OptimizerConfig {
	out := c
	out.OptimizerParams = c.OptimizerParams.Clone()
	return &out
}

func (s *OptimizerConfigStore) Active(ctx context.Context, tenant string) (*models.OptimizerConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := activeOf(s.configs, tenant)
	if !ok {
		return nil, nil
	}
	return copyConfig(row.OptimizerConfig), nil
}

func (s *OptimizerConfigStore) Exists(ctx context.Context, tenant string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.configs {
		if row.Tenant == tenant {
			return true, nil
		}
	}
	return false, nil
}

func (s *OptimizerConfigStore) insertLocked(tenant string, params models.OptimizerParams) *models.OptimizerConfig {
	now := s.now()
	s.nextID++
	row := &configRow{OptimizerConfig: models.OptimizerConfig{
		ID:              s.nextID,
		Tenant:          tenant,
		Active:          true,
		CreatedAt:       now,
		LastModified:    now,
		OptimizerParams: params.Clone(),
	}}
	s.configs = append(s.configs, row)
	return copyConfig(row.OptimizerConfig)
}

func (s *OptimizerConfigStore) ReplaceActive(ctx context.Context, tenant string, params models.OptimizerParams) (*models.OptimizerConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	deactivateAll(s.configs, tenant)
	return s.insertLocked(tenant, params), nil
}

func (s *OptimizerConfigStore) CreateIfNone(ctx context.Context, tenant string, params models.OptimizerParams) (*models.OptimizerConfig, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.configs {
		if row.Tenant == tenant {
			return nil, false, nil
		}
	}
	return s.insertLocked(tenant, params), true, nil
}
