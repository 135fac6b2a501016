package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 95.0, cfg.ValidationTarget)
	assert.Equal(t, 5*time.Second, cfg.ToastDuration)
	assert.Equal(t, 2*time.Second, cfg.SimDelay)
	assert.Equal(t, time.Second, cfg.SQLDelay)
	assert.Equal(t, 3*time.Second, cfg.SchedulerDelay)
	assert.Equal(t, time.Minute, cfg.SyncInterval)
	assert.Equal(t, ":8080", cfg.Addr)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("COMPLYHUB_DATA", "/tmp/snap.json")
	t.Setenv("COMPLYHUB_VALIDATION_TARGET", "90.5")
	t.Setenv("COMPLYHUB_SIM_DELAY_MS", "0")
	t.Setenv("COMPLYHUB_TOAST_MS", "1500")
	t.Setenv("COMPLYHUB_LOG_LEVEL", "debug")
	t.Setenv("COMPLYHUB_ADDR", "127.0.0.1:9000")

	cfg := Load()

	assert.Equal(t, "/tmp/snap.json", cfg.DataPath)
	assert.Equal(t, 90.5, cfg.ValidationTarget)
	assert.Equal(t, time.Duration(0), cfg.SimDelay)
	assert.Equal(t, 1500*time.Millisecond, cfg.ToastDuration)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
}

func TestLoad_InvalidValuesIgnored(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
	}{
		{"target above 100", "COMPLYHUB_VALIDATION_TARGET", "150"},
		{"target not a number", "COMPLYHUB_VALIDATION_TARGET", "high"},
		{"negative delay", "COMPLYHUB_SIM_DELAY_MS", "-5"},
		{"zero toast", "COMPLYHUB_TOAST_MS", "0"},
		{"unknown level", "COMPLYHUB_LOG_LEVEL", "chatty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.val)
			assert.Equal(t, DefaultConfig(), Load())
		})
	}
}
