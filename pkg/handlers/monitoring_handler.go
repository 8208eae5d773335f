package handlers

import (
	"net/http"
	"strconv"

	"sales-forecast-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// MonitoringHandler serves the in-memory request log.
type MonitoringHandler struct {
	monitoringService *services.MonitoringService
}

// NewMonitoringHandler creates a new MonitoringHandler.
func NewMonitoringHandler(monitoringService *services.MonitoringService) *MonitoringHandler {
	return &MonitoringHandler{monitoringService: monitoringService}
}

// GetLogs handles GET /api/v1/monitoring/logs?limit=N.
func (mh *MonitoringHandler) GetLogs(c *gin.Context) {
	limit := 100
	if limitStr := c.Query("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}

	logs := mh.monitoringService.RecentLogs(limit)
	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"count": len(logs),
	})
}
