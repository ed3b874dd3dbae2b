package asynclog

// Debug logs a message at debug level
func (l *Logger) Debug(args ...any) {
	l.log(l.getFlags(), LevelDebug, args...)
}

// Info logs a message at info level
func (l *Logger) Info(args ...any) {
	l.log(l.getFlags(), LevelInfo, args...)
}

// Warn logs a message at warning level
func (l *Logger) Warn(args ...any) {
	l.log(l.getFlags(), LevelWarn, args...)
}

// Error logs a message at error level
func (l *Logger) Error(args ...any) {
	l.log(l.getFlags(), LevelError, args...)
}

// Log writes a timestamp-only record without level information
func (l *Logger) Log(args ...any) {
	l.log(FlagShowTimestamp, LevelInfo, args...)
}

// Message writes a plain record without timestamp or level info
func (l *Logger) Message(args ...any) {
	l.log(0, LevelInfo, args...)
}

// LogStructured logs a message with structured fields as proper JSON
func (l *Logger) LogStructured(level int64, message string, fields map[string]any) {
	l.log(l.getFlags()|FlagStructuredJSON, level, message, fields)
}

// Raw outputs args as space-separated strings without a trailing newline,
// regardless of configured format
func (l *Logger) Raw(args ...any) {
	l.log(FlagRaw, LevelInfo, args...)
}

// Enabled reports whether a record at level passes the configured level filter
func (l *Logger) Enabled(level int64) bool {
	return level >= l.getConfig().Level
}
