package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/lalith-99/maintcal/internal/cache"
	"github.com/lalith-99/maintcal/internal/models"
	"github.com/lalith-99/maintcal/internal/observ"
	"github.com/lalith-99/maintcal/internal/repository"
	"go.uber.org/zap"
)

// Install sources, used as metric labels and in logs.
const (
	SourceSynth     = "synth"
	SourceOptimizer = "optimizer"
	SourceAPI       = "api"
)

// WindowCache serves sorted window listings keyed by snapshot version.
type WindowCache interface {
	GetOrLoad(ctx context.Context, key string, load cache.Loader) ([]models.Window, error)
}

// ScheduleService is the read/write facade over schedule snapshots.
type ScheduleService struct {
	repo   repository.ScheduleRepository
	cache  WindowCache
	logger *zap.Logger
}

func NewScheduleService(repo repository.ScheduleRepository, windowCache WindowCache, logger *zap.Logger) *ScheduleService {
	if windowCache == nil {
		windowCache = &cache.Nop{}
	}
	return &ScheduleService{repo: repo, cache: windowCache, logger: logger}
}

// Active returns the tenant's active snapshot with windows, or nil if the
// tenant has none. Callers decide whether to bootstrap or fall back.
func (s *ScheduleService) Active(ctx context.Context, tenant string) (*models.Snapshot, error) {
	snap, err := s.repo.Active(ctx, tenant)
	if err != nil {
		return nil, storageErr("get active schedule", err)
	}
	return snap, nil
}

// ActiveHeader returns the active snapshot without its windows.
func (s *ScheduleService) ActiveHeader(ctx context.Context, tenant string) (*models.Snapshot, error) {
	snap, err := s.repo.ActiveHeader(ctx, tenant)
	if err != nil {
		return nil, storageErr("get active schedule", err)
	}
	return snap, nil
}

// History lists every snapshot header of the tenant, newest first.
func (s *ScheduleService) History(ctx context.Context, tenant string) ([]models.Snapshot, error) {
	snaps, err := s.repo.History(ctx, tenant)
	if err != nil {
		return nil, storageErr("list schedule history", err)
	}
	return snaps, nil
}

// ValidateWindows checks every input; the first failure is returned.
func ValidateWindows(windows []models.WindowInput) error {
	for i, w := range windows {
		if err := w.Validate(); err != nil {
			return validationErr(fmt.Sprintf("windows[%d]", i), err)
		}
	}
	return nil
}

// Install validates windows and atomically makes them the tenant's active
// snapshot. This is the only way a new schedule version is created.
func (s *ScheduleService) Install(ctx context.Context, tenant, source string, windows []models.WindowInput) (*models.Snapshot, error) {
	if tenant == "" {
		return nil, &ValidationError{Field: "tenant", Reason: "is required"}
	}
	if err := ValidateWindows(windows); err != nil {
		return nil, err
	}

	snap, err := s.repo.ReplaceActive(ctx, tenant, windows)
	if err != nil {
		s.logger.Error("failed to install schedule",
			zap.String("tenant", tenant),
			zap.String("source", source),
			zap.Error(err),
		)
		return nil, storageErr("install schedule", err)
	}

	observ.ScheduleInstalls.WithLabelValues(source).Inc()
	s.logger.Info("schedule installed",
		zap.String("tenant", tenant),
		zap.String("source", source),
		zap.Int64("snapshot_id", snap.ID),
		zap.Int("total_windows", snap.TotalWindows),
	)
	return snap, nil
}

// ListWindows returns the active snapshot header and its windows sorted for
// display: numeric unit ascending, then maintenance code. The header is nil
// when the tenant has no active snapshot.
func (s *ScheduleService) ListWindows(ctx context.Context, tenant string) (*models.Snapshot, []models.Window, error) {
	header, err := s.ActiveHeader(ctx, tenant)
	if err != nil || header == nil {
		return nil, nil, err
	}

	windows, err := s.cache.GetOrLoad(ctx, cache.WindowKey(header), func(ctx context.Context) ([]models.Window, error) {
		windows, err := s.repo.Windows(ctx, header.ID)
		if err != nil {
			return nil, err
		}
		SortWindows(windows)
		return windows, nil
	})
	if err != nil {
		return nil, nil, storageErr("list windows", err)
	}
	return header, windows, nil
}

// SortWindows orders windows by numeric unit, then code. Equal keys keep their
// insertion order.
func SortWindows(windows []models.Window) {
	slices.SortStableFunc(windows, func(a, b models.Window) int {
		if c := cmp.Compare(unitNumber(a.Unit), unitNumber(b.Unit)); c != 0 {
			return c
		}
		return cmp.Compare(a.Code, b.Code)
	})
}

func unitNumber(label string) int {
	n, err := strconv.Atoi(label)
	if err != nil {
		return 0
	}
	return n
}
