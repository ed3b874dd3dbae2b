package asynclog

import (
	"time"
)

// Global instance for package-level functions
var defaultLogger = NewLogger()

// Default returns the package-level logger
func Default() *Logger {
	return defaultLogger
}

// Init configures and starts the package-level logger
func Init(cfg *Config) error {
	if err := defaultLogger.ApplyConfig(cfg); err != nil {
		return err
	}
	return defaultLogger.Start()
}

// InitWithDefaults configures the package-level logger from defaults plus
// "key=value" overrides and starts it
func InitWithDefaults(overrides ...string) error {
	cfg := DefaultConfig()
	for _, override := range overrides {
		key, value, err := parseKeyValue(override)
		if err != nil {
			return err
		}
		if err := applyConfigField(cfg, key, value); err != nil {
			return err
		}
	}
	return Init(cfg)
}

// Shutdown stops the package-level logger and closes its backend
func Shutdown(timeout ...time.Duration) error {
	return defaultLogger.Shutdown(timeout...)
}

// Flush waits for queued records to reach the backend and syncs it
func Flush(timeout time.Duration) error {
	return defaultLogger.Flush(timeout)
}

// Debug logs a message at debug level
func Debug(args ...any) {
	defaultLogger.Debug(args...)
}

// Info logs a message at info level
func Info(args ...any) {
	defaultLogger.Info(args...)
}

// Warn logs a message at warning level
func Warn(args ...any) {
	defaultLogger.Warn(args...)
}

// Error logs a message at error level
func Error(args ...any) {
	defaultLogger.Error(args...)
}

// Log writes a timestamp-only record without level information
func Log(args ...any) {
	defaultLogger.Log(args...)
}

// Message writes a plain record without timestamp or level info
func Message(args ...any) {
	defaultLogger.Message(args...)
}

// Raw writes space-separated args without a trailing newline
func Raw(args ...any) {
	defaultLogger.Raw(args...)
}

// Push enqueues a preformatted record on the package-level logger
func Push(data []byte) {
	defaultLogger.Push(data)
}
