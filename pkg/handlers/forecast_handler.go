package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"sales-forecast-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// ForecastHandler exposes the forecast query over HTTP.
type ForecastHandler struct {
	forecastService *services.ForecastService
	historyStore    *services.HistoryStore
}

// NewForecastHandler creates a new ForecastHandler.
func NewForecastHandler(forecastService *services.ForecastService, historyStore *services.HistoryStore) *ForecastHandler {
	return &ForecastHandler{
		forecastService: forecastService,
		historyStore:    historyStore,
	}
}

// Predict handles GET /predict?item_id=N[&period=P] and
// GET /api/v1/forecast/:itemID[?period=P].
func (fh *ForecastHandler) Predict(c *gin.Context) {
	itemStr := c.Param("itemID")
	if itemStr == "" {
		itemStr = c.Query("item_id")
	}
	if itemStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item_id is required"})
		return
	}
	itemID, err := strconv.Atoi(itemStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item_id must be an integer"})
		return
	}

	period := fh.forecastService.DefaultPeriod()
	if periodStr := c.Query("period"); periodStr != "" {
		period, err = strconv.Atoi(periodStr)
		if err != nil || period < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "period must be a non-negative integer"})
			return
		}
	}

	result, err := fh.forecastService.Forecast(itemID, period)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownItem):
			c.JSON(http.StatusNotFound, gin.H{"error": "invalid item_id"})
		case errors.Is(err, services.ErrInvalidPeriod):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			// Internal invariant or scorer failure: a bug, not a bad request.
			c.JSON(http.StatusInternalServerError, gin.H{"error": "forecast failed: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListItems handles GET /api/v1/forecast/items.
func (fh *ForecastHandler) ListItems(c *gin.Context) {
	items := fh.historyStore.Items()
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}
