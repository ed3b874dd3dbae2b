package asynclog

// Builder provides a fluent API for building logger configurations.
// It wraps a Config instance and provides chainable methods for setting values.
type Builder struct {
	cfg *Config
	err error // Accumulate errors for deferred handling
}

// NewBuilder creates a new configuration builder with default values
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// Build creates a new Logger instance with the specified configuration.
// The logger is configured but not started.
func (b *Builder) Build() (*Logger, error) {
	if b.err != nil {
		return nil, b.err
	}

	logger := NewLogger()

	// ApplyConfig handles all initialization and validation
	if err := logger.ApplyConfig(b.cfg); err != nil {
		return nil, err
	}

	return logger, nil
}

// Config returns a copy of the configuration built so far
func (b *Builder) Config() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.cfg.Clone(), nil
}

// Level sets the log level
func (b *Builder) Level(level int64) *Builder {
	b.cfg.Level = level
	return b
}

// LevelString sets the log level from a string
func (b *Builder) LevelString(level string) *Builder {
	if b.err != nil {
		return b
	}
	levelVal, err := Level(level)
	if err != nil {
		b.err = err
		return b
	}
	b.cfg.Level = levelVal
	return b
}

// Name sets the log file base name
func (b *Builder) Name(name string) *Builder {
	b.cfg.Name = name
	return b
}

// Directory sets the log directory
func (b *Builder) Directory(dir string) *Builder {
	b.cfg.Directory = dir
	return b
}

// Format sets the output format
func (b *Builder) Format(format string) *Builder {
	b.cfg.Format = format
	return b
}

// Extension sets the log file extension, without the dot
func (b *Builder) Extension(ext string) *Builder {
	b.cfg.Extension = ext
	return b
}

// ShowTimestamp toggles timestamps on records
func (b *Builder) ShowTimestamp(show bool) *Builder {
	b.cfg.ShowTimestamp = show
	return b
}

// ShowLevel toggles level names on records
func (b *Builder) ShowLevel(show bool) *Builder {
	b.cfg.ShowLevel = show
	return b
}

// Workers sets the number of drain goroutines
func (b *Builder) Workers(n int64) *Builder {
	b.cfg.Workers = n
	return b
}

// IdleMode sets how idle workers wait: "park" or "spin"
func (b *Builder) IdleMode(mode string) *Builder {
	b.cfg.IdleMode = mode
	return b
}

// DrainOnStop toggles the final drain sweep on stop
func (b *Builder) DrainOnStop(drain bool) *Builder {
	b.cfg.DrainOnStop = drain
	return b
}

// Backend sets the flush backend: "console", "file", or "rotate"
func (b *Builder) Backend(kind string) *Builder {
	b.cfg.Backend = kind
	return b
}

// ConsoleTarget sets the console stream: "stdout" or "stderr"
func (b *Builder) ConsoleTarget(target string) *Builder {
	b.cfg.ConsoleTarget = target
	return b
}

// FlushLevel sets the write durability: "buffered", "flush", or "sync"
func (b *Builder) FlushLevel(level string) *Builder {
	b.cfg.FlushLevel = level
	return b
}

// RotateMode sets the rotation trigger: "size" or "time"
func (b *Builder) RotateMode(mode string) *Builder {
	b.cfg.RotateMode = mode
	return b
}

// MaxSizeKB sets the maximum log file size in KB
func (b *Builder) MaxSizeKB(size int64) *Builder {
	b.cfg.MaxSizeKB = size
	return b
}

// MaxSizeMB sets the maximum log file size in MB. Convenience.
func (b *Builder) MaxSizeMB(size int64) *Builder {
	b.cfg.MaxSizeKB = size * sizeMultiplier
	return b
}

// RotateIntervalS sets the rotation interval in seconds for time mode
func (b *Builder) RotateIntervalS(interval int64) *Builder {
	b.cfg.RotateIntervalS = interval
	return b
}

// EnableRetention toggles deletion of expired log files
func (b *Builder) EnableRetention(enable bool) *Builder {
	b.cfg.EnableRetention = enable
	return b
}

// RetentionDays sets the age beyond which log files are deleted
func (b *Builder) RetentionDays(days float64) *Builder {
	b.cfg.RetentionDays = days
	return b
}

// RetentionCheckMins sets the minimum time between retention scans
func (b *Builder) RetentionCheckMins(mins float64) *Builder {
	b.cfg.RetentionCheckMins = mins
	return b
}

// HeartbeatLevel sets the heartbeat monitoring level
func (b *Builder) HeartbeatLevel(level int64) *Builder {
	b.cfg.HeartbeatLevel = level
	return b
}

// HeartbeatIntervalS sets the heartbeat interval in seconds
func (b *Builder) HeartbeatIntervalS(interval int64) *Builder {
	b.cfg.HeartbeatIntervalS = interval
	return b
}

// InternalErrorsToStderr toggles diagnostics on stderr
func (b *Builder) InternalErrorsToStderr(enable bool) *Builder {
	b.cfg.InternalErrorsToStderr = enable
	return b
}
