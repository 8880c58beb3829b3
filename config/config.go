package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the whole application configuration.
type Config struct {
	Loop   LoopConfig
	Save   SaveConfig
	Log    LogConfig
	Debug  DebugConfig
	Assets AssetConfig
}

// LoopConfig controls simulation and frame pacing.
type LoopConfig struct {
	TicksPerSecond int `envconfig:"TICKS_PER_SECOND" default:"60"`
	TargetFPS      int `envconfig:"TARGET_FPS" default:"60"`
	// 0 keeps every banked step.
	MaxCatchUpSteps int `envconfig:"MAX_CATCH_UP_STEPS" default:"0"`
	EventQueueSize  int `envconfig:"EVENT_QUEUE_SIZE" default:"256"`
}

// SaveConfig names the save artifacts.
type SaveConfig struct {
	BinaryPath string `envconfig:"SAVE_BINARY_PATH" default:"save.bin"`
	TextPath   string `envconfig:"SAVE_TEXT_PATH" default:"save.txt"`
}

// LogConfig controls the rolling log file.
type LogConfig struct {
	File   string `envconfig:"LOG_FILE" default:"app.log"`
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Stderr bool   `envconfig:"LOG_STDERR" default:"false"`
}

// DebugConfig enables the debug HTTP surface when Addr is set.
type DebugConfig struct {
	Addr string `envconfig:"DEBUG_ADDR"`
	// FrameLog prints one summary line per rendered frame to stdout.
	FrameLog bool `envconfig:"FRAME_LOG" default:"false"`
}

// AssetConfig locates textures and sounds. Empty disables existence checks.
type AssetConfig struct {
	Root string `envconfig:"ASSET_ROOT"`
}

// LoadConfig reads an optional .env file, then the environment.
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the loop cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Loop.TicksPerSecond <= 0 {
		errs = append(errs, fmt.Errorf("TICKS_PER_SECOND must be positive, got %d", c.Loop.TicksPerSecond))
	}
	if c.Loop.TargetFPS <= 0 {
		errs = append(errs, fmt.Errorf("TARGET_FPS must be positive, got %d", c.Loop.TargetFPS))
	}
	if c.Loop.MaxCatchUpSteps < 0 {
		errs = append(errs, fmt.Errorf("MAX_CATCH_UP_STEPS must not be negative, got %d", c.Loop.MaxCatchUpSteps))
	}
	if c.Loop.EventQueueSize <= 0 {
		errs = append(errs, fmt.Errorf("EVENT_QUEUE_SIZE must be positive, got %d", c.Loop.EventQueueSize))
	}
	if c.Save.BinaryPath == "" || c.Save.TextPath == "" {
		errs = append(errs, errors.New("save paths must not be empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
