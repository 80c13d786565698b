package server

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the HTTP server settings.
type Config struct {
	Addr            string
	MaxBody         int64 // largest accepted PNG body in bytes
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		MaxBody:         32 << 20,
		ShutdownTimeout: 10 * time.Second,
	}
}

// ConfigFromEnv reads PNGME_ADDR, PNGME_MAX_BODY and PNGME_SHUTDOWN_TIMEOUT
// on top of the defaults.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	cfg.Addr = getEnv("PNGME_ADDR", cfg.Addr)

	if v := os.Getenv("PNGME_MAX_BODY"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("PNGME_MAX_BODY: invalid size %q", v)
		}
		cfg.MaxBody = n
	}
	if v := os.Getenv("PNGME_SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("PNGME_SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.ShutdownTimeout = d
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
