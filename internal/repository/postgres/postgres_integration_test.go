//go:build integration

package postgres

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/maintcal/internal/db"
	"github.com/lalith-99/maintcal/internal/models"
	"github.com/lalith-99/maintcal/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Run with: TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/repository/postgres/
func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	database, err := db.New(ctx, url, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(database.Close)
	require.NoError(t, database.EnsureSchema(ctx))
	return database.Pool()
}

// newTenant keeps tests independent on a shared database.
func newTenant() string {
	return "it-" + uuid.NewString()
}

func inputs() []models.WindowInput {
	return []models.WindowInput{
		{Unit: 1, Code: "CK", Days: []int{1, 2, 3, 4, 5}},
		{Unit: 2, Code: "AR", Days: []int{10, 11}},
		{Unit: 1, Code: "CK", Days: []int{300}},
	}
}

func TestScheduleStore_ReplaceAndHistory(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	s := NewScheduleStore(pool)
	tenant := newTenant()

	first, err := s.ReplaceActive(ctx, tenant, inputs())
	require.NoError(t, err)
	require.Len(t, first.Windows, 3)
	assert.Equal(t, "01", first.Windows[0].Unit)

	second, err := s.ReplaceActive(ctx, tenant, inputs()[:2])
	require.NoError(t, err)

	active, err := s.Active(ctx, tenant)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, second.ID, active.ID)
	assert.Len(t, active.Windows, 2)

	history, err := s.History(ctx, tenant)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.False(t, history[1].Active)

	old, err := s.Windows(ctx, first.ID)
	require.NoError(t, err)
	assert.Len(t, old, 3, "deactivated snapshots keep their windows")
}

func TestScheduleStore_ConcurrentReplace(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	s := NewScheduleStore(pool)
	tenant := newTenant()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.ReplaceActive(ctx, tenant, inputs())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var active int
	err := pool.QueryRow(ctx,
		`SELECT count(*) FROM schedule_snapshots WHERE tenant = $1 AND active`, tenant,
	).Scan(&active)
	require.NoError(t, err)
	assert.Equal(t, 1, active)
}

func TestScheduleStore_CreateActiveIfAbsent(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	s := NewScheduleStore(pool)
	src, err := s.ReplaceActive(ctx, newTenant(), inputs())
	require.NoError(t, err)

	tenant := newTenant()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := s.CreateActiveIfAbsent(ctx, tenant, src)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, created)

	clone, err := s.Active(ctx, tenant)
	require.NoError(t, err)
	require.Len(t, clone.Windows, len(src.Windows))
	for i := range src.Windows {
		assert.Equal(t, src.Windows[i].Days, clone.Windows[i].Days)
		assert.NotEqual(t, src.Windows[i].ID, clone.Windows[i].ID)
	}
}

func TestScheduleStore_EditWindowDays(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	s := NewScheduleStore(pool)
	tenant := newTenant()

	before, err := s.ReplaceActive(ctx, tenant, inputs())
	require.NoError(t, err)

	w, err := s.EditWindowDays(ctx, tenant, "01", "CK", func(current []int) ([]int, error) {
		assert.Equal(t, []int{1, 2, 3, 4, 5}, current)
		return []int{1, 4, 5, 50, 51}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 5, 50, 51}, w.Days)

	after, err := s.Active(ctx, tenant)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 5, 50, 51}, after.Windows[0].Days)
	assert.Equal(t, []int{300}, after.Windows[2].Days)
	assert.True(t, after.LastModified.After(before.LastModified))

	_, err = s.EditWindowDays(ctx, tenant, "09", "CK", func(c []int) ([]int, error) { return c, nil })
	assert.ErrorIs(t, err, repository.ErrWindowNotFound)

	_, err = s.EditWindowDays(ctx, newTenant(), "01", "CK", func(c []int) ([]int, error) { return c, nil })
	assert.ErrorIs(t, err, repository.ErrNoActiveSnapshot)
}

func TestScheduleStore_ConcurrentEditsKeepEveryDay(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	s := NewScheduleStore(pool)
	tenant := newTenant()

	before, err := s.ReplaceActive(ctx, tenant, inputs())
	require.NoError(t, err)

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.EditWindowDays(ctx, tenant, "01", "CK", func(current []int) ([]int, error) {
				return models.SortedDays(append(current, 100+i)), nil
			})
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		assert.NoError(t, err, "edit %d", i)
	}

	after, err := s.Active(ctx, tenant)
	require.NoError(t, err)
	got := after.Windows[0].Days
	require.Len(t, got, 5+n)
	for i := 0; i < n; i++ {
		assert.Contains(t, got, 100+i)
	}
	assert.Equal(t, []int{300}, after.Windows[2].Days)
	assert.True(t, after.LastModified.After(before.LastModified))
}

func TestOptimizerConfigStore(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	s := NewOptimizerConfigStore(pool)
	tenant := newTenant()

	exists, err := s.Exists(ctx, tenant)
	require.NoError(t, err)
	assert.False(t, exists)

	cfg, created, err := s.CreateIfNone(ctx, tenant, models.DefaultOptimizerParams())
	require.NoError(t, err)
	require.True(t, created)
	assert.Equal(t, models.MethodGeneticAlgorithm, cfg.Method)
	require.NotNil(t, cfg.TimeSeconds)
	assert.Equal(t, 1800, *cfg.TimeSeconds)
	assert.Nil(t, cfg.Generations)

	_, created, err = s.CreateIfNone(ctx, tenant, models.DefaultOptimizerParams())
	require.NoError(t, err)
	assert.False(t, created)

	p, err := models.NewParams(models.MethodAntColony, models.ModeFixedParams).Ants(20).Iterations(40).Build()
	require.NoError(t, err)
	replaced, err := s.ReplaceActive(ctx, tenant, p)
	require.NoError(t, err)

	active, err := s.Active(ctx, tenant)
	require.NoError(t, err)
	assert.Equal(t, replaced.ID, active.ID)
	assert.Equal(t, 40, *active.Iterations)
}
