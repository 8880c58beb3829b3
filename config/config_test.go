package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Loop.TicksPerSecond)
	assert.Equal(t, 60, cfg.Loop.TargetFPS)
	assert.Zero(t, cfg.Loop.MaxCatchUpSteps)
	assert.Equal(t, 256, cfg.Loop.EventQueueSize)
	assert.Equal(t, "save.bin", cfg.Save.BinaryPath)
	assert.Equal(t, "save.txt", cfg.Save.TextPath)
	assert.Equal(t, "app.log", cfg.Log.File)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Debug.Addr)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("TARGET_FPS", "144")
	t.Setenv("MAX_CATCH_UP_STEPS", "5")
	t.Setenv("SAVE_BINARY_PATH", "/tmp/slot1.bin")
	t.Setenv("DEBUG_ADDR", ":9090")
	t.Setenv("LOG_STDERR", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 144, cfg.Loop.TargetFPS)
	assert.Equal(t, 5, cfg.Loop.MaxCatchUpSteps)
	assert.Equal(t, "/tmp/slot1.bin", cfg.Save.BinaryPath)
	assert.Equal(t, ":9090", cfg.Debug.Addr)
	assert.True(t, cfg.Log.Stderr)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	t.Setenv("TICKS_PER_SECOND", "0")
	t.Setenv("MAX_CATCH_UP_STEPS", "-1")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TICKS_PER_SECOND")
	assert.Contains(t, err.Error(), "MAX_CATCH_UP_STEPS")
}

func TestLoadConfigMalformed(t *testing.T) {
	t.Setenv("TARGET_FPS", "fast")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "load configuration")
}
