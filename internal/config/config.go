package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/vinelogic/vineyard-telemetry/internal/cloud"
	"github.com/vinelogic/vineyard-telemetry/internal/store"
)

type AppConfig struct {
	// Cloud polling credentials; polling is disabled when incomplete.
	Cloud       cloud.Credentials
	CloudAPIURL string

	// PollInterval controls how often the background poller fetches.
	PollInterval time.Duration

	// StoreCapacity bounds the rolling reading history.
	StoreCapacity int

	// HTTPTimeout bounds outbound cloud API calls.
	HTTPTimeout time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Cloud = cloud.Credentials{
		ApplicationKey: os.Getenv("ECOWITT_APPLICATION_KEY"),
		APIKey:         os.Getenv("ECOWITT_API_KEY"),
		MAC:            os.Getenv("ECOWITT_MAC"),
	}
	cfg.CloudAPIURL = os.Getenv("CLOUD_API_URL")

	// Poll interval: default 60 seconds.
	intervalStr := getenvDefault("POLL_INTERVAL", "60s")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid POLL_INTERVAL: %w", err)
	}
	cfg.PollInterval = interval

	cfg.StoreCapacity = getenvInt("STORE_CAPACITY", store.DefaultCapacity)

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
