// Package config loads runtime settings from the process environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the server knobs.
type Config struct {
	Addr            string        // HTTP_ADDR
	ShutdownTimeout time.Duration // SHUTDOWN_TIMEOUT
	LogLevel        string        // LOG_LEVEL
	LogsExport      bool          // OTEL_LOGS_ENABLED, tee zap into OTLP

	MaxSteps    int // LADDER_MAX_STEPS, upper bound on the steps field
	MaxSessions int // LADDER_MAX_SESSIONS, 0 for unlimited
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Addr:            ":8080",
		ShutdownTimeout: 5 * time.Second,
		LogLevel:        "info",
		MaxSteps:        1000,
		MaxSessions:     10000,
	}
}

// Load reads Config from the environment on top of Default. A malformed
// value is an error rather than a silent fallback.
func Load() (Config, error) {
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if v, ok := lookup("HTTP_ADDR"); ok && v != "" {
		cfg.Addr = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = v
	}

	if v, ok := lookup("SHUTDOWN_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("SHUTDOWN_TIMEOUT: invalid duration %q", v)
		}
		cfg.ShutdownTimeout = d
	}

	if v, ok := lookup("OTEL_LOGS_ENABLED"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("OTEL_LOGS_ENABLED: %w", err)
		}
		cfg.LogsExport = b
	}

	var err error
	if cfg.MaxSteps, err = intVar(lookup, "LADDER_MAX_STEPS", cfg.MaxSteps, 1); err != nil {
		return Config{}, err
	}
	if cfg.MaxSessions, err = intVar(lookup, "LADDER_MAX_SESSIONS", cfg.MaxSessions, 0); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func intVar(lookup func(string) (string, bool), key string, def, min int) (int, error) {
	v, ok := lookup(key)
	if !ok || v == "" {
		return def, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n < min {
		return 0, fmt.Errorf("%s: must be at least %d, got %d", key, min, n)
	}

	return n, nil
}
