package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/maintcal/internal/models"
)

// GetUnit handles GET /v1/units/:unit
func GetUnit(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("unit"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid unit number"})
		return
	}

	unit, ok := models.LookupUnit(n)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("unit %d not found; units are numbered 1-%d", n, models.UnitCount),
		})
		return
	}
	c.JSON(http.StatusOK, unit)
}
