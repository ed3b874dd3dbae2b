package asynclog

import (
	"time"
)

// log formats a record into a pooled buffer and pushes it.
// Push copies the bytes, so the buffer is reused immediately.
func (l *Logger) log(flags int64, level int64, args ...any) {
	if !l.Enabled(level) {
		return
	}
	l.pushRecord(flags, level, args)
}

// pushRecord formats and pushes without level filtering
func (l *Logger) pushRecord(flags int64, level int64, args []any) {
	bufPtr := l.bufPool.Get().(*[]byte)
	buf := l.formatter.Load().Append((*bufPtr)[:0], flags, time.Now(), level, args)
	l.Push(buf)

	// Oversized buffers are left to the GC
	if cap(buf) <= 64*1024 {
		*bufPtr = buf[:0]
		l.bufPool.Put(bufPtr)
	}
}

// getFlags from config
func (l *Logger) getFlags() int64 {
	return l.formatter.Load().Flags()
}

// internalLog writes diagnostics to stderr when enabled.
// It is the ReportFunc handed to workers and backends.
func (l *Logger) internalLog(format string, args ...any) {
	if !l.getConfig().InternalErrorsToStderr {
		return
	}
	stderrReport(format, args...)
}
