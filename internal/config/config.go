// Package config reads runtime settings from the environment.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every tunable of the dashboard.
type Config struct {
	DataPath         string // JSON snapshot file; empty uses the embedded sample
	DBPath           string // SQLite snapshot store
	PostgresDSN      string
	ValidationTarget float64
	ToastDuration    time.Duration
	SimDelay         time.Duration
	SQLDelay         time.Duration
	SchedulerDelay   time.Duration
	SyncInterval     time.Duration
	Addr             string
	LogLevel         slog.Level
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		ValidationTarget: 95,
		ToastDuration:    5000 * time.Millisecond,
		SimDelay:         2000 * time.Millisecond,
		SQLDelay:         1000 * time.Millisecond,
		SchedulerDelay:   3000 * time.Millisecond,
		SyncInterval:     60000 * time.Millisecond,
		Addr:             ":8080",
		LogLevel:         slog.LevelInfo,
	}
}

// Load reads configuration from environment variables, falling back to
// defaults for any unset or malformed values.
func Load() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("COMPLYHUB_DATA"); v != "" {
		cfg.DataPath = v
	}
	if v := os.Getenv("COMPLYHUB_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("COMPLYHUB_PG_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
	if v := os.Getenv("COMPLYHUB_VALIDATION_TARGET"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 100 {
			cfg.ValidationTarget = f
		}
	}
	if v := os.Getenv("COMPLYHUB_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("COMPLYHUB_LOG_LEVEL"); v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(strings.ToUpper(v))); err == nil {
			cfg.LogLevel = lvl
		}
	}

	applyMillis(&cfg.ToastDuration, "COMPLYHUB_TOAST_MS", false)
	applyMillis(&cfg.SimDelay, "COMPLYHUB_SIM_DELAY_MS", true)
	applyMillis(&cfg.SQLDelay, "COMPLYHUB_SQL_DELAY_MS", true)
	applyMillis(&cfg.SchedulerDelay, "COMPLYHUB_SCHEDULER_DELAY_MS", true)
	applyMillis(&cfg.SyncInterval, "COMPLYHUB_SYNC_INTERVAL_MS", false)

	return cfg
}

// applyMillis overrides d from a millisecond env var. Zero is accepted only
// when allowZero is set; negatives are always ignored.
func applyMillis(d *time.Duration, envName string, allowZero bool) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 || (n == 0 && !allowZero) {
		return
	}
	*d = time.Duration(n) * time.Millisecond
}
