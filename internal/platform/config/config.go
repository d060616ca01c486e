package config

import (
	"fmt"
	"os"
	"time"
)

// Config carries the deployment-provided settings for the API process.
type Config struct {
	Port string

	// StorageBackend selects the repositories: "memory" or "postgres".
	StorageBackend string
	DatabaseURL    string

	// NotifierBackend selects event delivery: "log" or "amqp".
	NotifierBackend string
	AMQPURL         string

	// DuplicateThreshold overrides the near-duplicate cutoff when > 0.
	DuplicateThreshold time.Duration

	// DevUserToken, when set with the memory backend, seeds one user bound
	// to that token so the API is usable without an accounts database.
	DevUserToken string
	DevUserID    string
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		Port:            getenv("PORT", "8080"),
		StorageBackend:  getenv("STORAGE_BACKEND", "memory"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		NotifierBackend: getenv("NOTIFIER_BACKEND", "log"),
		AMQPURL:         os.Getenv("AMQP_URL"),
		DevUserToken:    os.Getenv("DEV_USER_TOKEN"),
		DevUserID:       os.Getenv("DEV_USER_ID"),
	}

	switch cfg.StorageBackend {
	case "memory":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("STORAGE_BACKEND=postgres requires DATABASE_URL")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_BACKEND %q (want memory or postgres)", cfg.StorageBackend)
	}

	switch cfg.NotifierBackend {
	case "log":
	case "amqp":
		if cfg.AMQPURL == "" {
			return Config{}, fmt.Errorf("NOTIFIER_BACKEND=amqp requires AMQP_URL")
		}
	default:
		return Config{}, fmt.Errorf("unknown NOTIFIER_BACKEND %q (want log or amqp)", cfg.NotifierBackend)
	}

	if v := os.Getenv("DUPLICATE_THRESHOLD"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("DUPLICATE_THRESHOLD must be a duration (e.g. 60m): %w", err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("DUPLICATE_THRESHOLD must be positive")
		}
		cfg.DuplicateThreshold = d
	}

	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
