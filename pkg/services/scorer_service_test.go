package services

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"sales-forecast-api/pkg/models"
)

func testWeights() map[string]float64 {
	weights := make(map[string]float64)
	for _, col := range models.FeatureColumns() {
		weights[col] = 0
	}
	return weights
}

func TestLoadScorer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	artifact := `{
		"intercept": 1.5,
		"weights": {
			"shop_id": 0, "item_id": 0, "month": 0, "item_category_id": 0,
			"item_cnt_month_lag_1": 0.5, "item_cnt_month_lag_2": 0.25,
			"item_cnt_month_lag_3": 0.1, "avg_item_price_lag_1": 0.01
		}
	}`
	if err := os.WriteFile(path, []byte(artifact), 0o644); err != nil {
		t.Fatal(err)
	}

	scorer, err := LoadScorer(path)
	if err != nil {
		t.Fatalf("LoadScorer() returned error: %v", err)
	}

	matrix := models.FeatureMatrix{
		Columns: models.FeatureColumns(),
		Rows: []models.FeatureRow{
			{Shop: 2, Values: []float64{2, 500, 11, 40, 7, 0, 0, 120}},
		},
	}
	out, err := scorer.Predict(matrix)
	if err != nil {
		t.Fatalf("Predict() returned error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("Predict() returned %d values, want 1", len(out))
	}
	expected := 1.5 + 0.5*7 + 0.01*120
	if math.Abs(out[0]-expected) > 1e-9 {
		t.Errorf("Predict() = %v, want %v", out[0], expected)
	}
}

func TestLoadScorerMissingFile(t *testing.T) {
	if _, err := LoadScorer(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("LoadScorer() accepted a missing artifact")
	}
}

func TestNewLinearScorerRejectsMissingWeight(t *testing.T) {
	weights := testWeights()
	delete(weights, models.LagColumn(models.ColQuantity, 2))
	if _, err := NewLinearScorer(0, weights); err == nil {
		t.Fatal("NewLinearScorer() accepted an artifact missing a feature weight")
	}
}

func TestPredictRejectsRaggedRow(t *testing.T) {
	scorer, err := NewLinearScorer(0, testWeights())
	if err != nil {
		t.Fatal(err)
	}
	matrix := models.FeatureMatrix{
		Columns: models.FeatureColumns(),
		Rows:    []models.FeatureRow{{Shop: 2, Values: []float64{1, 2}}},
	}
	if _, err := scorer.Predict(matrix); err == nil {
		t.Fatal("Predict() accepted a row with the wrong number of values")
	}
}
