package compat

import (
	"github.com/rs/zerolog"

	"github.com/lixenwraith/asynclog"
)

var _ zerolog.LevelWriter = (*ZerologWriter)(nil)

// ZerologWriter lets zerolog loggers hand their encoded events to the
// asynchronous queue. Each zerolog event becomes one record.
type ZerologWriter struct {
	logger *asynclog.Logger
}

// NewZerologWriter creates a zerolog.LevelWriter over logger
func NewZerologWriter(logger *asynclog.Logger) *ZerologWriter {
	return &ZerologWriter{logger: logger}
}

// NewZerolog returns a zerolog.Logger writing through logger, with timestamps
func NewZerolog(logger *asynclog.Logger) zerolog.Logger {
	return zerolog.New(NewZerologWriter(logger)).With().Timestamp().Logger()
}

// Write pushes an event regardless of level
func (w *ZerologWriter) Write(p []byte) (int, error) {
	w.logger.Push(p)
	return len(p), nil
}

// WriteLevel pushes an event if its level passes the logger's level filter
func (w *ZerologWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if !w.logger.Enabled(zerologToLevel(level)) {
		return len(p), nil
	}
	w.logger.Push(p)
	return len(p), nil
}

// zerologToLevel maps zerolog levels onto the logger's level scale
func zerologToLevel(level zerolog.Level) int64 {
	switch level {
	case zerolog.TraceLevel, zerolog.DebugLevel:
		return asynclog.LevelDebug
	case zerolog.InfoLevel:
		return asynclog.LevelInfo
	case zerolog.WarnLevel:
		return asynclog.LevelWarn
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		return asynclog.LevelError
	default:
		// NoLevel and Disabled pass through unfiltered
		return asynclog.LevelDisk
	}
}
