package asynclog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// handleHeartbeat emits heartbeat records according to the configured level
func (l *Logger) handleHeartbeat() {
	heartbeatLevel := l.getConfig().HeartbeatLevel

	if heartbeatLevel >= 1 {
		l.logProcHeartbeat()
	}

	if heartbeatLevel >= 2 {
		l.logDiskHeartbeat()
	}
}

// logProcHeartbeat logs delivery pipeline statistics
func (l *Logger) logProcHeartbeat() {
	stats := l.Stats()
	sequence := l.state.HeartbeatSequence.Add(1)

	l.writeHeartbeatRecord(LevelProc, []any{
		"type", "proc",
		"sequence", sequence,
		"uptime_hours", fmt.Sprintf("%.2f", stats.Uptime.Hours()),
		"pushed_logs", stats.Pushed,
		"drained_logs", stats.Drained,
		"pending_logs", stats.Pending,
		"dropped_logs", stats.Dropped,
	})
}

// logDiskHeartbeat logs backend and log directory statistics
func (l *Logger) logDiskHeartbeat() {
	stats := l.Stats()
	sequence := l.state.HeartbeatSequence.Load()
	c := l.getConfig()
	backend, _ := ParseBackendKind(c.Backend)

	diskArgs := []any{
		"type", "disk",
		"sequence", sequence,
		"backend", backend.String(),
		"written_mb", fmt.Sprintf("%.2f", float64(stats.BytesWritten)/(sizeMultiplier*sizeMultiplier)),
		"rotated_files", stats.Rotations,
		"deleted_files", stats.Deletions,
		"write_errors", stats.WriteErrors,
	}

	if backend != BackendConsole {
		count, err := countLogFiles(c.Directory, c.Name, c.Extension)
		if err != nil {
			l.internalLog("warning - heartbeat failed to get file count: %v\n", err)
			count = -1
		}
		diskArgs = append(diskArgs, "log_file_count", count)
	}

	l.writeHeartbeatRecord(LevelDisk, diskArgs)
}

// writeHeartbeatRecord pushes a heartbeat through the queue, bypassing the level filter
func (l *Logger) writeHeartbeatRecord(level int64, args []any) {
	if l.state.LoggerDisabled.Load() || l.state.ShutdownCalled.Load() {
		return
	}
	l.pushRecord(FlagDefault, level, args)
}

// countLogFiles counts files in dir carrying the log base name and extension
func countLogFiles(dir, name, ext string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return -1, fmtErrorf("failed to read log directory '%s': %w", dir, err)
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fname := entry.Name()
		if !strings.HasPrefix(fname, name) {
			continue
		}
		if ext != "" && filepath.Ext(fname) != "."+ext {
			continue
		}
		count++
	}
	return count, nil
}
