// Package config provides configuration management for the application.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Server configuration
	ServerPort string

	// StorePath is the bbolt file holding the project collection.
	StorePath string

	// StoreCapacity caps the serialized project collection, in bytes.
	StoreCapacity int

	// EstimateDelay is the simulated latency of a lighting estimation.
	EstimateDelay time.Duration

	// MaxUploadSize caps accepted floor plans and interior photos, in bytes.
	MaxUploadSize int64

	// ExportDir is where exported reports are written.
	ExportDir string

	// Environment
	Environment string
}

// New creates a new Config with values from the environment or defaults.
// A .env file in the working directory is loaded first if present.
func New() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		StorePath:     getEnv("STORE_PATH", "lumiflow.db"),
		StoreCapacity: getEnvInt("STORE_CAPACITY_BYTES", 5*1024*1024),
		EstimateDelay: time.Duration(getEnvInt("ESTIMATE_DELAY_MS", 1500)) * time.Millisecond,
		MaxUploadSize: int64(getEnvInt("MAX_UPLOAD_BYTES", 5*1024*1024)),
		ExportDir:     getEnv("EXPORT_DIR", "exports"),
		Environment:   getEnv("ENVIRONMENT", "development"),
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
