package asynclog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPeriodicSyncForBufferedLevel verifies that buffered records reach the file without an explicit Flush
func TestPeriodicSyncForBufferedLevel(t *testing.T) {
	logger, tmpDir := createTestLogger(t)
	defer logger.Shutdown()

	require.NoError(t, logger.ApplyConfigString("flush_level=buffered", "flush_interval_ms=10"))

	logger.Info("buffered record")

	path := filepath.Join(tmpDir, "log.log")
	assert.Eventually(t, func() bool {
		content, err := os.ReadFile(path)
		return err == nil && strings.Contains(string(content), "buffered record")
	}, 2*time.Second, 10*time.Millisecond)
}

// TestNoFlushTimerWithoutBuffering verifies that the sync ticker only runs for the buffered level
func TestNoFlushTimerWithoutBuffering(t *testing.T) {
	logger, _ := createTestLogger(t)
	defer logger.Shutdown()

	timers := logger.setupProcessingTimers()
	defer logger.closeProcessingTimers(timers)
	assert.Nil(t, timers.flushChan)
	assert.Nil(t, timers.heartbeatChan)

	require.NoError(t, logger.ApplyConfigString("flush_level=buffered", "heartbeat_level=1"))

	timers2 := logger.setupProcessingTimers()
	defer logger.closeProcessingTimers(timers2)
	assert.NotNil(t, timers2.flushChan)
	assert.NotNil(t, timers2.heartbeatChan)
}

// TestFlushTimerWithMixedCaseLevel verifies that enum values are matched case-insensitively
func TestFlushTimerWithMixedCaseLevel(t *testing.T) {
	logger, tmpDir := createTestLogger(t)
	defer logger.Shutdown()

	require.NoError(t, logger.ApplyConfigString("flush_level=Buffered", "backend=File", "flush_interval_ms=10"))

	timers := logger.setupProcessingTimers()
	defer logger.closeProcessingTimers(timers)
	assert.NotNil(t, timers.flushChan)

	logger.Info("synced by ticker")

	path := filepath.Join(tmpDir, "log.log")
	assert.Eventually(t, func() bool {
		content, err := os.ReadFile(path)
		return err == nil && strings.Contains(string(content), "synced by ticker")
	}, 2*time.Second, 10*time.Millisecond)
}

// TestHeartbeatRecords verifies proc and disk heartbeats, which bypass the level filter
func TestHeartbeatRecords(t *testing.T) {
	logger, tmpDir := createTestLogger(t)
	defer logger.Shutdown()

	require.NoError(t, logger.ApplyConfigString(
		"level=error",
		"heartbeat_level=2",
		"heartbeat_interval_s=1",
	))

	path := filepath.Join(tmpDir, "log.log")
	assert.Eventually(t, func() bool {
		content, err := os.ReadFile(path)
		if err != nil {
			return false
		}
		s := string(content)
		return strings.Contains(s, "PROC type proc") && strings.Contains(s, "DISK type disk")
	}, 3*time.Second, 20*time.Millisecond)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "pushed_logs")
	assert.Contains(t, string(content), "log_file_count 1")
	assert.GreaterOrEqual(t, logger.state.HeartbeatSequence.Load(), uint64(1))
}

// TestHeartbeatSkippedAfterShutdown verifies that no heartbeat is pushed by a disabled logger
func TestHeartbeatSkippedAfterShutdown(t *testing.T) {
	logger, _ := createTestLogger(t)
	require.NoError(t, logger.Shutdown())

	before := logger.Stats().Dropped
	logger.writeHeartbeatRecord(LevelProc, []any{"type", "proc"})
	assert.Equal(t, before, logger.Stats().Dropped)
}

// TestCountLogFiles verifies the directory scan used by disk heartbeats
func TestCountLogFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"app1.log", "app2.log", "app3.txt", "other.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "app-dir.log"), 0755))

	count, err := countLogFiles(dir, "app", "log")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = countLogFiles(filepath.Join(dir, "missing"), "app", "log")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
