package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/maintcal/internal/middleware"
	"github.com/lalith-99/maintcal/internal/models"
	"github.com/lalith-99/maintcal/internal/service"
	"go.uber.org/zap"
)

type ConfigHandler struct {
	configs *service.ConfigService
	logger  *zap.Logger
}

func NewConfigHandler(configs *service.ConfigService, logger *zap.Logger) *ConfigHandler {
	return &ConfigHandler{configs: configs, logger: logger}
}

// Get handles GET /v1/optimizer/config
func (h *ConfigHandler) Get(c *gin.Context) {
	cfg, err := h.configs.Active(c.Request.Context(), middleware.GetTenant(c))
	if err != nil {
		writeError(c, h.logger, "failed to get optimizer config", err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// Set handles PUT /v1/optimizer/config
func (h *ConfigHandler) Set(c *gin.Context) {
	var params models.OptimizerParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := h.configs.Set(c.Request.Context(), middleware.GetTenant(c), params)
	if err != nil {
		writeError(c, h.logger, "failed to set optimizer config", err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}
