package compat

import (
	"fmt"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/asynclog"
)

var _ fasthttp.Logger = (*FastHTTPAdapter)(nil)

// FastHTTPAdapter routes fasthttp server logs through the asynchronous queue
type FastHTTPAdapter struct {
	logger        *asynclog.Logger
	defaultLevel  int64
	levelDetector func(string) int64 // Function to detect log level from message
}

// NewFastHTTPAdapter creates a new fasthttp-compatible logger adapter
func NewFastHTTPAdapter(logger *asynclog.Logger, opts ...FastHTTPOption) *FastHTTPAdapter {
	adapter := &FastHTTPAdapter{
		logger:        logger,
		defaultLevel:  asynclog.LevelInfo,
		levelDetector: DetectLogLevel,
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// FastHTTPOption allows customizing adapter behavior
type FastHTTPOption func(*FastHTTPAdapter)

// WithDefaultLevel sets the level used when no level is detected
func WithDefaultLevel(level int64) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.defaultLevel = level
	}
}

// WithLevelDetector sets a custom function to detect log level from message content.
// A detector returning LevelInfo defers to the default level.
func WithLevelDetector(detector func(string) int64) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.levelDetector = detector
	}
}

// Printf implements fasthttp's Logger interface
func (a *FastHTTPAdapter) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	level := a.defaultLevel
	if a.levelDetector != nil {
		if detected := a.levelDetector(msg); detected != asynclog.LevelInfo {
			level = detected
		}
	}

	switch level {
	case asynclog.LevelDebug:
		a.logger.Debug("msg", msg, "source", "fasthttp")
	case asynclog.LevelWarn:
		a.logger.Warn("msg", msg, "source", "fasthttp")
	case asynclog.LevelError:
		a.logger.Error("msg", msg, "source", "fasthttp")
	default:
		a.logger.Info("msg", msg, "source", "fasthttp")
	}
}

// DetectLogLevel guesses a level from keywords in the message
func DetectLogLevel(msg string) int64 {
	msgLower := strings.ToLower(msg)

	switch {
	case strings.Contains(msgLower, "error"),
		strings.Contains(msgLower, "failed"),
		strings.Contains(msgLower, "fatal"),
		strings.Contains(msgLower, "panic"):
		return asynclog.LevelError
	case strings.Contains(msgLower, "warn"),
		strings.Contains(msgLower, "deprecated"):
		return asynclog.LevelWarn
	case strings.Contains(msgLower, "debug"),
		strings.Contains(msgLower, "trace"):
		return asynclog.LevelDebug
	default:
		return asynclog.LevelInfo
	}
}
