package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/maintcal/internal/middleware"
	"github.com/lalith-99/maintcal/internal/models"
	"github.com/lalith-99/maintcal/internal/service"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Generator produces a fresh random schedule.
type Generator interface {
	Generate() []models.WindowInput
}

type ScheduleHandler struct {
	schedules *service.ScheduleService
	bootstrap *service.Bootstrapper
	exporter  *service.Exporter
	generator Generator
	logger    *zap.Logger
}

func NewScheduleHandler(
	schedules *service.ScheduleService,
	bootstrap *service.Bootstrapper,
	exporter *service.Exporter,
	generator Generator,
	logger *zap.Logger,
) *ScheduleHandler {
	return &ScheduleHandler{
		schedules: schedules,
		bootstrap: bootstrap,
		exporter:  exporter,
		generator: generator,
		logger:    logger,
	}
}

type scheduleResponse struct {
	Tenant   string           `json:"tenant"`
	Snapshot *models.Snapshot `json:"snapshot"`
	Windows  []models.Window  `json:"windows"`
}

// Get handles GET /v1/schedule?generate=true
//
// The tenant is bootstrapped first. With generate=true a synthesized schedule
// is installed before reading. A tenant without its own snapshot is served
// the default tenant's.
func (h *ScheduleHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	tenant := middleware.GetTenant(c)

	generate := false
	if v := c.Query("generate"); v != "" {
		var err error
		generate, err = strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'generate' parameter"})
			return
		}
	}

	if err := h.bootstrap.EnsureTenantData(ctx, tenant); err != nil {
		writeError(c, h.logger, "failed to prepare tenant data", err)
		return
	}

	if generate {
		if _, err := h.schedules.Install(ctx, tenant, service.SourceSynth, h.generator.Generate()); err != nil {
			writeError(c, h.logger, "failed to generate schedule", err)
			return
		}
	}

	source := tenant
	header, windows, err := h.schedules.ListWindows(ctx, tenant)
	if err == nil && header == nil && tenant != h.bootstrap.DefaultTenant() {
		source = h.bootstrap.DefaultTenant()
		header, windows, err = h.schedules.ListWindows(ctx, source)
	}
	if err != nil {
		writeError(c, h.logger, "failed to get schedule", err)
		return
	}
	if header == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no schedule yet; call with generate=true to create one"})
		return
	}

	c.JSON(http.StatusOK, scheduleResponse{Tenant: source, Snapshot: header, Windows: windows})
}

// Meta handles GET /v1/schedule/meta
func (h *ScheduleHandler) Meta(c *gin.Context) {
	header, err := h.schedules.ActiveHeader(c.Request.Context(), middleware.GetTenant(c))
	if err != nil {
		writeError(c, h.logger, "failed to get schedule metadata", err)
		return
	}
	if header == nil {
		writeError(c, h.logger, "failed to get schedule metadata", service.ErrNoActiveSchedule)
		return
	}
	c.JSON(http.StatusOK, header)
}

// History handles GET /v1/schedule/history
func (h *ScheduleHandler) History(c *gin.Context) {
	snaps, err := h.schedules.History(c.Request.Context(), middleware.GetTenant(c))
	if err != nil {
		writeError(c, h.logger, "failed to list schedule history", err)
		return
	}
	c.JSON(http.StatusOK, snaps)
}

// Export handles GET /v1/schedule/export
func (h *ScheduleHandler) Export(c *gin.Context) {
	tenant := middleware.GetTenant(c)

	// buffered so a failure can still be reported as JSON
	var buf bytes.Buffer
	header, err := h.exporter.WriteXLSX(c.Request.Context(), tenant, &buf)
	if err != nil {
		writeError(c, h.logger, "failed to export schedule", err)
		return
	}

	filename := fmt.Sprintf("maintenance_%s_%d.xlsx", header.Tenant, header.ID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// editWindowRequest is the body of PUT /v1/schedule/windows. The unit is
// accepted as "07" or "7".
type editWindowRequest struct {
	Unit    string `json:"ug" binding:"required"`
	Code    string `json:"maintenance" binding:"required"`
	OldDays []int  `json:"old_days"`
	NewDays []int  `json:"new_days"`
}

// EditWindow handles PUT /v1/schedule/windows
func (h *ScheduleHandler) EditWindow(c *gin.Context) {
	var req editWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	unit, err := strconv.Atoi(strings.TrimSpace(req.Unit))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'ug': must be a unit number", "field": "ug"})
		return
	}

	w, err := h.schedules.EditWindow(c.Request.Context(), middleware.GetTenant(c), service.EditRequest{
		Unit:    unit,
		Code:    req.Code,
		OldDays: req.OldDays,
		NewDays: req.NewDays,
	})
	if err != nil {
		writeError(c, h.logger, "failed to edit maintenance window", err)
		return
	}

	msg := fmt.Sprintf("maintenance %q of unit %q edited: replaced %d days with %d new days",
		w.Code, w.Unit, len(req.OldDays), len(req.NewDays))
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": msg,
		"window":  w,
	})
}
