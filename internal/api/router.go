package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/maintcal/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	DefaultTenant  string
	RequestTimeout time.Duration
	// Health reports backing store reachability; nil means always healthy.
	Health func(ctx context.Context) error
}

type Handlers struct {
	Schedule *ScheduleHandler
	Config   *ConfigHandler
	Optimize *OptimizeHandler
}

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(cfg RouterConfig, h Handlers, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Metrics())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/v1/health", func(c *gin.Context) {
		if cfg.Health != nil {
			if err := cfg.Health(c.Request.Context()); err != nil {
				logger.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	v1.Use(middleware.Tenant(cfg.DefaultTenant), middleware.Logger(logger))

	v1.GET("/units/:unit", GetUnit)

	// Optimizer runs are bounded by their own budget, not the request
	// timeout. The budget is capped by OPTIMIZER_MAX_DURATION and the stored
	// time is bounded on write, so a run always ends on its own; the request
	// context still cancels it when the client goes away.
	v1.POST("/optimize", h.Optimize.Run)
	v1.GET("/optimize/stream", h.Optimize.Stream)

	bounded := v1.Group("")
	bounded.Use(middleware.Timeout(cfg.RequestTimeout))

	bounded.GET("/schedule", h.Schedule.Get)
	bounded.GET("/schedule/meta", h.Schedule.Meta)
	bounded.GET("/schedule/history", h.Schedule.History)
	bounded.GET("/schedule/export", h.Schedule.Export)
	bounded.PUT("/schedule/windows", h.Schedule.EditWindow)

	bounded.GET("/optimizer/config", h.Config.Get)
	bounded.PUT("/optimizer/config", h.Config.Set)

	return r
}
