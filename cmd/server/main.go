package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/maintcal/internal/api"
	"github.com/lalith-99/maintcal/internal/cache"
	"github.com/lalith-99/maintcal/internal/config"
	"github.com/lalith-99/maintcal/internal/db"
	"github.com/lalith-99/maintcal/internal/observ"
	"github.com/lalith-99/maintcal/internal/optimizer"
	"github.com/lalith-99/maintcal/internal/repository"
	"github.com/lalith-99/maintcal/internal/repository/memory"
	"github.com/lalith-99/maintcal/internal/repository/postgres"
	"github.com/lalith-99/maintcal/internal/service"
	"github.com/lalith-99/maintcal/internal/synth"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// ---------------------------------------------------------------
	// 1. Load config
	// ---------------------------------------------------------------
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// ---------------------------------------------------------------
	// 2. Create logger
	// ---------------------------------------------------------------
	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---------------------------------------------------------------
	// 3. Open the store
	// ---------------------------------------------------------------
	var (
		schedules repository.ScheduleRepository
		configs   repository.OptimizerConfigRepository
		health    func(context.Context) error
	)
	switch cfg.Store {
	case config.StoreMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		schedules = memory.NewScheduleStore()
		configs = memory.NewOptimizerConfigStore()
	default:
		database, err := db.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer database.Close()

		if err := database.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		pool := database.Pool()
		schedules = postgres.NewScheduleStore(pool)
		configs = postgres.NewOptimizerConfigStore(pool)
		health = database.Health
	}

	// ---------------------------------------------------------------
	// 4. Window cache (optional)
	// ---------------------------------------------------------------
	var windowCache service.WindowCache
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable; window cache will fall through to the store", zap.Error(err))
		}
		windowCache = cache.NewRedis(client, cfg.CacheTTL, logger)
	}

	// ---------------------------------------------------------------
	// 5. Services
	// ---------------------------------------------------------------
	scheduleSvc := service.NewScheduleService(schedules, windowCache, logger)
	bootstrap := service.NewBootstrapper(schedules, configs, cfg.DefaultTenant, logger)
	configSvc := service.NewConfigService(configs, bootstrap, logger)
	exporter := service.NewExporter(scheduleSvc, logger)

	generator := synth.New()
	solver := optimizer.NewRandomSearch(generator, cfg.OptimizerMaxDuration)
	runner := optimizer.NewRunner(solver, configSvc, scheduleSvc, service.SourceOptimizer, logger)

	if err := bootstrap.EnsureTenantData(ctx, cfg.DefaultTenant); err != nil {
		return fmt.Errorf("bootstrap default tenant: %w", err)
	}

	// ---------------------------------------------------------------
	// 6. HTTP server
	// ---------------------------------------------------------------
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.RouterConfig{
		DefaultTenant:  cfg.DefaultTenant,
		RequestTimeout: cfg.RequestTimeout,
		Health:         health,
	}, api.Handlers{
		Schedule: api.NewScheduleHandler(scheduleSvc, bootstrap, exporter, generator, logger),
		Config:   api.NewConfigHandler(configSvc, logger),
		Optimize: api.NewOptimizeHandler(runner, bootstrap, logger),
	}, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting maintcal",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
		zap.String("store", cfg.Store),
		zap.Bool("cache", windowCache != nil),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// ---------------------------------------------------------------
	// 7. Wait for a signal, then drain in-flight requests
	// ---------------------------------------------------------------
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
