package config

import (
	"os"
	"strconv"
)

// Config holds the application configuration
type Config struct {
	Port         string
	HistoryPath  string
	ModelPath    string
	TargetPeriod int
	Environment  string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		HistoryPath:  getEnv("HISTORY_PATH", "data/data_merged.csv"),
		ModelPath:    getEnv("MODEL_PATH", "models/model.json"),
		TargetPeriod: getEnvInt("TARGET_PERIOD", 34),
		Environment:  getEnv("ENVIRONMENT", "development"),
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
