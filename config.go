package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type config struct {
	HTTPAddr          string        `yaml:"http_addr"`
	JWTSecret         string        `yaml:"jwt_secret"`
	AsyncRowThreshold int           `yaml:"async_row_threshold"`
	JobWorkers        int           `yaml:"job_workers"`
	JobQueueDepth     int           `yaml:"job_queue_depth"`
	JobRetention      time.Duration `yaml:"job_retention"`
	MaxUploadBytes    int64         `yaml:"max_upload_bytes"`
	VoltageV          float64       `yaml:"voltage_v"`
	PowerFactor       float64       `yaml:"power_factor"`
}

// loadConfig reads settings from the environment, with an optional YAML file
// named by METERPROFILE_CONFIG layered on top.
func loadConfig() config {
	cfg := config{
		HTTPAddr:          getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:         getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		AsyncRowThreshold: getenvIntDefault("ASYNC_ROW_THRESHOLD", 10000),
		JobWorkers:        getenvIntDefault("JOB_WORKERS", 2),
		JobQueueDepth:     getenvIntDefault("JOB_QUEUE_DEPTH", 16),
		JobRetention:      getenvDuration("JOB_RETENTION", time.Hour),
		MaxUploadBytes:    int64(getenvIntDefault("MAX_UPLOAD_BYTES", 64<<20)),
		VoltageV:          getenvFloatDefault("VOLTAGE_V", 400),
		PowerFactor:       getenvFloatDefault("POWER_FACTOR", 0.9),
	}

	if path := os.Getenv("METERPROFILE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("config read error: %v", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("config parse error: %v", err)
		}
	}

	if cfg.AsyncRowThreshold < 0 {
		cfg.AsyncRowThreshold = 0
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
