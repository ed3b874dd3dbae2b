package asynclog

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/lixenwraith/config"
)

// configPrefix is the TOML table the logger reads its settings from
const configPrefix = "asynclog."

// Config holds all logger configuration values
type Config struct {
	// Basic settings
	Level     int64  `toml:"level"`
	Name      string `toml:"name"` // Base name for log files
	Directory string `toml:"directory"`
	Extension string `toml:"extension"`
	Format    string `toml:"format"` // "txt", "raw", or "json"

	// Formatting
	ShowTimestamp   bool   `toml:"show_timestamp"`
	ShowLevel       bool   `toml:"show_level"`
	TimestampFormat string `toml:"timestamp_format"`

	// Worker pool
	Workers       int64  `toml:"workers"`         // Number of drain goroutines
	IdleMode      string `toml:"idle_mode"`       // "park" or "spin"
	ParkTimeoutMs int64  `toml:"park_timeout_ms"` // Max park time before re-polling
	DrainOnStop   bool   `toml:"drain_on_stop"`   // Final sweep after workers join

	// Backend
	Backend       string `toml:"backend"`        // "console", "file", or "rotate"
	ConsoleTarget string `toml:"console_target"` // "stdout" or "stderr"

	// Durability
	FlushLevel      string `toml:"flush_level"`       // "buffered", "flush", or "sync"
	FlushIntervalMs int64  `toml:"flush_interval_ms"` // Periodic sync for buffered level

	// Rotation
	RotateMode      string `toml:"rotate_mode"`       // "size" or "time"
	MaxSizeKB       int64  `toml:"max_size_kb"`       // Max size per file in size mode
	RotateIntervalS int64  `toml:"rotate_interval_s"` // Rotation interval in time mode

	// Retention
	EnableRetention    bool    `toml:"enable_retention"`
	RetentionDays      float64 `toml:"retention_days"`       // Age beyond which rotated files are deleted
	RetentionCheckMins float64 `toml:"retention_check_mins"` // Minimum time between retention scans

	// Heartbeat configuration
	HeartbeatLevel     int64 `toml:"heartbeat_level"`      // 0=disabled, 1=proc only, 2=proc+disk
	HeartbeatIntervalS int64 `toml:"heartbeat_interval_s"` // Interval seconds for heartbeat

	// Internal error handling
	InternalErrorsToStderr bool `toml:"internal_errors_to_stderr"`
}

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	// Basic settings
	Level:     LevelInfo,
	Name:      "log",
	Directory: "./logs",
	Extension: "log",
	Format:    "txt",

	// Formatting
	ShowTimestamp:   true,
	ShowLevel:       true,
	TimestampFormat: time.RFC3339Nano,

	// Worker pool
	Workers:       1,
	IdleMode:      "park",
	ParkTimeoutMs: 100,
	DrainOnStop:   true,

	// Backend
	Backend:       "rotate",
	ConsoleTarget: "stdout",

	// Durability
	FlushLevel:      "flush",
	FlushIntervalMs: 100,

	// Rotation
	RotateMode:      "size",
	MaxSizeKB:       10000,
	RotateIntervalS: 3600,

	// Retention
	EnableRetention:    true,
	RetentionDays:      7,
	RetentionCheckMins: 60,

	// Heartbeat settings
	HeartbeatLevel:     0,
	HeartbeatIntervalS: 60,

	// Internal error handling
	InternalErrorsToStderr: true,
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	copiedConfig := defaultConfig
	return &copiedConfig
}

// NewConfigFromFile loads configuration from a TOML file and returns a validated Config
func NewConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	loader := config.New()

	// Register the struct to enable proper unmarshaling
	if err := loader.RegisterStruct(configPrefix, *cfg); err != nil {
		return nil, fmtErrorf("failed to register config struct: %w", err)
	}

	// Missing file falls back to defaults
	if err := loader.Load(path, nil); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmtErrorf("failed to load config from %s: %w", path, err)
	}

	if err := extractConfig(loader, configPrefix, cfg); err != nil {
		return nil, fmtErrorf("failed to extract config values: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewConfigFromDefaults creates a Config with default values and applies overrides
func NewConfigFromDefaults(overrides map[string]any) (*Config, error) {
	cfg := DefaultConfig()

	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, fmtErrorf("failed to apply overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// extractConfig copies loader values into cfg by toml tag
func extractConfig(loader *config.Config, prefix string, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tomlTag := field.Tag.Get("toml")
		if tomlTag == "" {
			continue
		}

		val, found := loader.Get(prefix + tomlTag)
		if !found {
			continue
		}

		if err := setFieldValue(v.Field(i), val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}

	return nil
}

// applyOverrides applies a map of overrides to the Config struct
func applyOverrides(cfg *Config, overrides map[string]any) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	fieldMap := make(map[string]reflect.Value)
	for i := 0; i < t.NumField(); i++ {
		if tomlTag := t.Field(i).Tag.Get("toml"); tomlTag != "" {
			fieldMap[tomlTag] = v.Field(i)
		}
	}

	for key, value := range overrides {
		fieldValue, exists := fieldMap[key]
		if !exists {
			return fmt.Errorf("unknown config key: %s", key)
		}

		if err := setFieldValue(fieldValue, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	return nil
}

// setFieldValue sets a reflect.Value with proper type conversion
func setFieldValue(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(strVal)

	case reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	case reflect.Float64:
		switch v := value.(type) {
		case float64:
			field.SetFloat(v)
		case int64:
			field.SetFloat(float64(v))
		case int:
			field.SetFloat(float64(v))
		default:
			return fmt.Errorf("expected float64, got %T", value)
		}

	case reflect.Bool:
		boolVal, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}

	return nil
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	// String validations
	if strings.TrimSpace(c.Name) == "" {
		return fmtErrorf("log name cannot be empty")
	}

	if c.Format != "txt" && c.Format != "json" && c.Format != "raw" {
		return fmtErrorf("invalid format: '%s' (use txt, json, or raw)", c.Format)
	}

	if strings.HasPrefix(c.Extension, ".") {
		return fmtErrorf("extension should not start with dot: %s", c.Extension)
	}

	if strings.TrimSpace(c.TimestampFormat) == "" {
		return fmtErrorf("timestamp_format cannot be empty")
	}

	if c.ConsoleTarget != "stdout" && c.ConsoleTarget != "stderr" {
		return fmtErrorf("invalid console_target: '%s' (use stdout or stderr)", c.ConsoleTarget)
	}

	backend, err := ParseBackendKind(c.Backend)
	if err != nil {
		return err
	}
	if _, err := ParseFlushLevel(c.FlushLevel); err != nil {
		return err
	}
	rotateMode, err := ParseRotateMode(c.RotateMode)
	if err != nil {
		return err
	}
	if _, err := ParseIdleMode(c.IdleMode); err != nil {
		return err
	}

	// Numeric validations
	if c.Workers <= 0 {
		return fmtErrorf("workers must be positive: %d", c.Workers)
	}

	if c.ParkTimeoutMs <= 0 || c.FlushIntervalMs <= 0 {
		return fmtErrorf("interval settings must be positive")
	}

	if c.MaxSizeKB < 0 || c.RotateIntervalS < 0 {
		return fmtErrorf("rotation limits cannot be negative")
	}

	if c.RetentionDays < 0 || c.RetentionCheckMins < 0 {
		return fmtErrorf("retention settings cannot be negative")
	}

	if c.HeartbeatLevel < 0 || c.HeartbeatLevel > 2 {
		return fmtErrorf("heartbeat_level must be between 0 and 2: %d", c.HeartbeatLevel)
	}

	// Cross-field validations
	if backend == BackendRotate && rotateMode == RotateBySize && c.MaxSizeKB == 0 {
		return fmtErrorf("max_size_kb must be positive for size rotation")
	}

	if backend == BackendRotate && rotateMode == RotateByTime && c.RotateIntervalS == 0 {
		return fmtErrorf("rotate_interval_s must be positive for time rotation")
	}

	if c.HeartbeatLevel > 0 && c.HeartbeatIntervalS <= 0 {
		return fmtErrorf("heartbeat_interval_s must be positive when heartbeat is enabled: %d",
			c.HeartbeatIntervalS)
	}

	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}

// filePath returns the single-file backend target
func (c *Config) filePath() string {
	filename := c.Name
	if c.Extension != "" {
		filename = c.Name + "." + c.Extension
	}
	return filepath.Join(c.Directory, filename)
}

// workerOptions derives the worker pool settings
func (c *Config) workerOptions() WorkerOptions {
	idle, _ := ParseIdleMode(c.IdleMode)
	return WorkerOptions{
		Workers:     int(c.Workers),
		Idle:        idle,
		ParkTimeout: time.Duration(c.ParkTimeoutMs) * time.Millisecond,
		DrainOnStop: c.DrainOnStop,
	}
}

// rotateOptions derives the rotating backend settings
func (c *Config) rotateOptions() RotateOptions {
	mode, _ := ParseRotateMode(c.RotateMode)
	level, _ := ParseFlushLevel(c.FlushLevel)
	return RotateOptions{
		Directory:        c.Directory,
		Name:             c.Name,
		Extension:        c.Extension,
		Mode:             mode,
		MaxSize:          c.MaxSizeKB * sizeMultiplier,
		Interval:         time.Duration(c.RotateIntervalS) * time.Second,
		FlushLevel:       level,
		RetentionEnabled: c.EnableRetention,
		Retention:        time.Duration(c.RetentionDays * float64(retentionDay)),
		RetentionCheck:   time.Duration(c.RetentionCheckMins * float64(time.Minute)),
	}
}
