package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	config "sales-forecast-api/configs"
	"sales-forecast-api/pkg/handlers"
	"sales-forecast-api/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func writeFixtures(t *testing.T) (historyPath, modelPath string) {
	t.Helper()
	dir := t.TempDir()

	historyPath = filepath.Join(dir, "history.csv")
	history := `date_block_num,shop_id,item_id,month,item_category_id,item_cnt_month,avg_item_price
33,2,500,10,40,7,120
`
	require.NoError(t, os.WriteFile(historyPath, []byte(history), 0o644))

	modelPath = filepath.Join(dir, "model.json")
	model := `{
		"intercept": 0,
		"weights": {
			"shop_id": 0, "item_id": 0, "month": 0, "item_category_id": 0,
			"item_cnt_month_lag_1": 1, "item_cnt_month_lag_2": 0,
			"item_cnt_month_lag_3": 0, "avg_item_price_lag_1": 0
		}
	}`
	require.NoError(t, os.WriteFile(modelPath, []byte(model), 0o644))
	return historyPath, modelPath
}

func TestApplicationSetup(t *testing.T) {
	historyPath, modelPath := writeFixtures(t)
	os.Setenv("HISTORY_PATH", historyPath)
	os.Setenv("MODEL_PATH", modelPath)
	defer os.Unsetenv("HISTORY_PATH")
	defer os.Unsetenv("MODEL_PATH")

	cfg := config.LoadConfig()
	assert.NotNil(t, cfg, "Config should not be nil")

	historyStore, err := services.NewHistoryStore(cfg.HistoryPath)
	require.NoError(t, err, "history should load")
	assert.Equal(t, 1, historyStore.Len())

	scorer, err := services.LoadScorer(cfg.ModelPath)
	require.NoError(t, err, "model artifact should load")

	forecastService := services.NewForecastService(historyStore, scorer, cfg.TargetPeriod)
	assert.NotNil(t, forecastService, "ForecastService should not be nil")
}

func TestRouterServesForecast(t *testing.T) {
	historyPath, modelPath := writeFixtures(t)

	historyStore, err := services.NewHistoryStore(historyPath)
	require.NoError(t, err)
	scorer, err := services.LoadScorer(modelPath)
	require.NoError(t, err)

	forecastService := services.NewForecastService(historyStore, scorer, 34)
	forecastHandler := handlers.NewForecastHandler(forecastService, historyStore)

	r := gin.New()
	r.GET("/health", handlers.HealthCheck)
	r.GET("/predict", forecastHandler.Predict)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/predict?item_id=500", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	// weight 1 on quantity lag_1 and quantity 7 at period 33
	assert.Contains(t, w.Body.String(), `"predicted_sales":7`)
}
