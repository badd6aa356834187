package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contafacil/bill-engine/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := config.Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "csv", cfg.DataBackend)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, time.Hour, cfg.GenerateInterval)
	assert.True(t, cfg.SchedulerEnabled)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("GENERATE_INTERVAL", "15m")
	t.Setenv("SCHEDULER_ENABLED", "false")

	cfg := config.Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DataBackend)
	assert.Equal(t, 15*time.Minute, cfg.GenerateInterval)
	assert.False(t, cfg.SchedulerEnabled)
}

func TestLoad_MalformedEnvFallsBack(t *testing.T) {
	t.Setenv("GENERATE_INTERVAL", "soon")
	t.Setenv("SCHEDULER_ENABLED", "maybe")

	cfg := config.Load()

	assert.Equal(t, time.Hour, cfg.GenerateInterval)
	assert.True(t, cfg.SchedulerEnabled)
}

func TestValidate(t *testing.T) {
	valid := config.Load()
	valid.DataDir = t.TempDir()
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"bad port", func(c *config.Config) { c.Port = "http" }},
		{"port out of range", func(c *config.Config) { c.Port = "70000" }},
		{"unknown backend", func(c *config.Config) { c.DataBackend = "dynamo" }},
		{"empty csv dir", func(c *config.Config) { c.DataDir = "" }},
		{"empty sqlite path", func(c *config.Config) {
			c.DataBackend = "sqlite"
			c.SQLiteDBPath = ""
		}},
		{"interval too short", func(c *config.Config) { c.GenerateInterval = time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Load()
			cfg.DataDir = t.TempDir()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
