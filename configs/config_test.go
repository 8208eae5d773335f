package config

import (
	"os"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	testCases := map[string]string{
		"PORT":          "9090",
		"ENVIRONMENT":   "test",
		"HISTORY_PATH":  "testdata/history.csv",
		"MODEL_PATH":    "testdata/model.json",
		"TARGET_PERIOD": "40",
	}

	for key, value := range testCases {
		os.Setenv(key, value)
	}
	defer func() {
		for key := range testCases {
			os.Unsetenv(key)
		}
	}()

	cfg := LoadConfig()

	if cfg.Port != "9090" {
		t.Errorf("Expected Port to be '9090', got '%s'", cfg.Port)
	}
	if cfg.Environment != "test" {
		t.Errorf("Expected Environment to be 'test', got '%s'", cfg.Environment)
	}
	if cfg.HistoryPath != "testdata/history.csv" {
		t.Errorf("Expected HistoryPath to be 'testdata/history.csv', got '%s'", cfg.HistoryPath)
	}
	if cfg.ModelPath != "testdata/model.json" {
		t.Errorf("Expected ModelPath to be 'testdata/model.json', got '%s'", cfg.ModelPath)
	}
	if cfg.TargetPeriod != 40 {
		t.Errorf("Expected TargetPeriod to be 40, got %d", cfg.TargetPeriod)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	vars := []string{"PORT", "ENVIRONMENT", "HISTORY_PATH", "MODEL_PATH", "TARGET_PERIOD"}
	for _, v := range vars {
		os.Unsetenv(v)
	}

	cfg := LoadConfig()

	if cfg.Port != "8080" {
		t.Errorf("Expected default Port to be '8080', got '%s'", cfg.Port)
	}
	if cfg.HistoryPath != "data/data_merged.csv" {
		t.Errorf("Expected default HistoryPath to be 'data/data_merged.csv', got '%s'", cfg.HistoryPath)
	}
	if cfg.ModelPath != "models/model.json" {
		t.Errorf("Expected default ModelPath to be 'models/model.json', got '%s'", cfg.ModelPath)
	}
	if cfg.TargetPeriod != 34 {
		t.Errorf("Expected default TargetPeriod to be 34, got %d", cfg.TargetPeriod)
	}
	if cfg.Environment != "development" {
		t.Errorf("Expected default Environment to be 'development', got '%s'", cfg.Environment)
	}
}

func TestLoadConfigIgnoresMalformedTargetPeriod(t *testing.T) {
	os.Setenv("TARGET_PERIOD", "eleven")
	defer os.Unsetenv("TARGET_PERIOD")

	cfg := LoadConfig()
	if cfg.TargetPeriod != 34 {
		t.Errorf("Expected malformed TARGET_PERIOD to fall back to 34, got %d", cfg.TargetPeriod)
	}
}
