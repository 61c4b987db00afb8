package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Storage backend selectors.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// Config holds the application configuration.
type Config struct {
	ServerPort     int
	DatabasePath   string
	UploadRoot     string // Base path for uploaded files (local backend)
	StorageBackend string // "local" or "s3"
	CORSOrigin     string
	SweepSchedule  string // cron expression for the orphan-file sweeper

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
}

// Load loads configuration from an optional .env file and environment
// variables, falling back to defaults.
func Load() (*Config, error) {
	// A missing .env file is fine; env vars still apply.
	_ = godotenv.Load()

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerPort:     port,
		DatabasePath:   getEnv("DATABASE_PATH", "./regportal.db"),
		UploadRoot:     getEnv("UPLOAD_ROOT", "./uploads"),
		StorageBackend: getEnv("STORAGE_BACKEND", BackendLocal),
		CORSOrigin:     getEnv("CORS_ORIGIN", "http://localhost:5173"),
		SweepSchedule:  getEnv("SWEEP_SCHEDULE", "@hourly"),
		S3Endpoint:     getEnv("S3_ENDPOINT", ""),
		S3Region:       getEnv("S3_REGION", "us-east-1"),
		S3Bucket:       getEnv("S3_BUCKET", "regportal"),
		S3AccessKey:    getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:    getEnv("S3_SECRET_KEY", ""),
	}

	if cfg.StorageBackend != BackendLocal && cfg.StorageBackend != BackendS3 {
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	return cfg, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
