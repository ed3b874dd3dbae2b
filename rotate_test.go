package asynclog

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClock is a manually advanced clock
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Now()}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// newTestRotatingBackend creates a size-rotating backend named "app" in a temp directory
func newTestRotatingBackend(t *testing.T, modify func(*RotateOptions)) (*RotatingBackend, string) {
	t.Helper()
	dir := t.TempDir()
	opts := RotateOptions{
		Directory:      dir,
		Name:           "app",
		Extension:      "log",
		Mode:           RotateBySize,
		MaxSize:        1024,
		FlushLevel:     FlushOnly,
		Retention:      7 * retentionDay,
		RetentionCheck: time.Hour,
		Report:         discardReport,
	}
	if modify != nil {
		modify(&opts)
	}
	b, err := NewRotatingBackend(opts)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b, dir
}

// listDir returns the sorted file names in dir
func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// writeAgedFile creates a file in dir with its modification time set age into the past
func writeAgedFile(t *testing.T, dir, name string, age time.Duration) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("old record\n"), 0644))
	mtime := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

// TestRotatingBackendSizeRotation writes 4096 bytes in 100-byte records with a 1024-byte limit
func TestRotatingBackendSizeRotation(t *testing.T) {
	b, dir := newTestRotatingBackend(t, nil)

	record := append(bytes.Repeat([]byte("x"), 99), '\n')
	written := 0
	for written < 4096 {
		chunk := record
		if 4096-written < len(chunk) {
			chunk = chunk[:4096-written]
		}
		b.Flush(chunk)
		written += len(chunk)
	}
	require.NoError(t, b.Close())

	names := listDir(t, dir)
	assert.GreaterOrEqual(t, len(names), 4)

	var total int64
	for _, name := range names {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.LessOrEqual(t, info.Size(), int64(1024), "file %s exceeds limit", name)
		total += info.Size()
	}
	assert.Equal(t, int64(4096), total)

	stats := b.Stats()
	assert.Equal(t, uint64(len(names)), stats.Rotations)
	assert.Equal(t, uint64(4096), stats.BytesWritten)
}

// TestRotatingBackendOversizedRecord verifies that a record larger than the limit gets its own file
func TestRotatingBackendOversizedRecord(t *testing.T) {
	b, dir := newTestRotatingBackend(t, func(o *RotateOptions) { o.MaxSize = 100 })

	b.Flush([]byte("small\n"))
	b.Flush(bytes.Repeat([]byte("y"), 250))
	b.Flush([]byte("after\n"))
	require.NoError(t, b.Close())

	names := listDir(t, dir)
	require.Len(t, names, 3)

	sizes := make([]int64, 0, len(names))
	for _, name := range names {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		sizes = append(sizes, info.Size())
	}
	assert.ElementsMatch(t, []int64{6, 250, 6}, sizes)
}

// TestRotatingBackendFileName verifies the <name><YYYYMMDDHHMMSS>-<counter>.<ext> layout
func TestRotatingBackendFileName(t *testing.T) {
	clock := newTestClock()
	b, dir := newTestRotatingBackend(t, func(o *RotateOptions) { o.Now = clock.Now })

	b.Flush([]byte("named\n"))

	names := listDir(t, dir)
	require.Len(t, names, 1)

	pattern := regexp.MustCompile(`^app(\d{14})-(\d+)\.log$`)
	m := pattern.FindStringSubmatch(names[0])
	require.NotNil(t, m, "unexpected file name %s", names[0])
	assert.Equal(t, clock.Now().Local().Format(rotateTimeLayout), m[1])
	assert.Equal(t, filepath.Join(dir, names[0]), b.CurrentPath())
}

// TestRotatingBackendUniqueNamesWithinSecond verifies that rapid rotations never reuse a name
func TestRotatingBackendUniqueNamesWithinSecond(t *testing.T) {
	clock := newTestClock()
	b, dir := newTestRotatingBackend(t, func(o *RotateOptions) {
		o.MaxSize = 10
		o.Now = clock.Now
	})

	for i := 0; i < 20; i++ {
		b.Flush([]byte("0123456789"))
	}
	require.NoError(t, b.Close())

	assert.Len(t, listDir(t, dir), 20)
}

// TestRotatingBackendTimeRotation drives rotation with an injected clock
func TestRotatingBackendTimeRotation(t *testing.T) {
	clock := newTestClock()
	b, dir := newTestRotatingBackend(t, func(o *RotateOptions) {
		o.Mode = RotateByTime
		o.Interval = time.Hour
		o.Now = clock.Now
	})

	b.Flush([]byte("first\n"))
	first := b.CurrentPath()

	clock.Advance(30 * time.Minute)
	b.Flush([]byte("same file\n"))
	assert.Equal(t, first, b.CurrentPath())

	clock.Advance(31 * time.Minute)
	b.Flush([]byte("new file\n"))
	second := b.CurrentPath()
	assert.NotEqual(t, first, second)

	require.NoError(t, b.Close())

	assert.Len(t, listDir(t, dir), 2)
	assert.Equal(t, uint64(2), b.Stats().Rotations)

	content, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "first\nsame file\n", string(content))

	content, err = os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, "new file\n", string(content))
}

// TestRotatingBackendRetentionZeroWindow verifies that a zero window leaves only the active file
func TestRotatingBackendRetentionZeroWindow(t *testing.T) {
	b, dir := newTestRotatingBackend(t, func(o *RotateOptions) {
		o.RetentionEnabled = true
		o.Retention = 0
	})

	writeAgedFile(t, dir, "app20200101000000-1.log", 72*time.Hour)
	writeAgedFile(t, dir, "app20200102000000-2.log", 48*time.Hour)
	writeAgedFile(t, dir, "app20200103000000-3.log", 24*time.Hour)

	b.Flush([]byte("current\n"))

	names := listDir(t, dir)
	require.Len(t, names, 1)
	assert.Equal(t, filepath.Join(dir, names[0]), b.CurrentPath())
	assert.Equal(t, uint64(3), b.Stats().Deletions)
}

// TestRotatingBackendRotatesAfterWriteError verifies that a failed write keeps
// size accounting and rotation going
func TestRotatingBackendRotatesAfterWriteError(t *testing.T) {
	b, dir := newTestRotatingBackend(t, nil)

	b.Flush([]byte("opens the first file\n"))
	require.NotNil(t, b.file)
	fw := injectFailOnce(b.file)

	chunk := bytes.Repeat([]byte("x"), 99)
	chunk = append(chunk, '\n')
	for i := 0; i < 30; i++ {
		b.Flush(chunk)
	}

	assert.Greater(t, fw.calls, 1)
	assert.Equal(t, uint64(1), b.Stats().WriteErrors)
	assert.GreaterOrEqual(t, b.Stats().Rotations, uint64(3))
	assert.GreaterOrEqual(t, len(listDir(t, dir)), 3)
}

// TestRotatingBackendRetentionWindow verifies that only files past the window are deleted
func TestRotatingBackendRetentionWindow(t *testing.T) {
	b, dir := newTestRotatingBackend(t, func(o *RotateOptions) {
		o.RetentionEnabled = true
		o.Retention = retentionDay
	})

	writeAgedFile(t, dir, "app20200101000000-1.log", 72*time.Hour)
	writeAgedFile(t, dir, "app20200102000000-2.log", time.Hour)
	writeAgedFile(t, dir, "other.log", 72*time.Hour)
	writeAgedFile(t, dir, "app-notes.txt", 72*time.Hour)

	b.Flush([]byte("current\n"))

	names := listDir(t, dir)
	assert.NotContains(t, names, "app20200101000000-1.log")
	assert.Contains(t, names, "app20200102000000-2.log")
	assert.Contains(t, names, "other.log")
	assert.Contains(t, names, "app-notes.txt")
	assert.Len(t, names, 4)
}

// TestRotatingBackendRetentionIgnoresForeignFiles verifies that files sharing the
// base name and extension but not the rotated name shape are never deleted
func TestRotatingBackendRetentionIgnoresForeignFiles(t *testing.T) {
	b, dir := newTestRotatingBackend(t, func(o *RotateOptions) {
		o.RetentionEnabled = true
		o.Retention = 0
	})

	foreign := []string{
		"app.log",
		"apprentice.log",
		"app-archive.log",
		"app2020010100000-1.log",
		"app20200101000000-.log",
		"app20200101000000-x.log",
		"app20200101000000-1.log.gz",
	}
	for _, name := range foreign {
		writeAgedFile(t, dir, name, 72*time.Hour)
	}
	writeAgedFile(t, dir, "app20200101000000-1.log", 72*time.Hour)

	b.Flush([]byte("current\n"))

	names := listDir(t, dir)
	for _, name := range foreign {
		assert.Contains(t, names, name)
	}
	assert.NotContains(t, names, "app20200101000000-1.log")
	assert.Equal(t, uint64(1), b.Stats().Deletions)
}

func TestIsRotatedFileName(t *testing.T) {
	tests := []struct {
		fname, name, ext string
		want             bool
	}{
		{"log20261015143005-3.log", "log", "log", true},
		{"log20261015143005-12345", "log", "", true},
		{"logger-archive.log", "log", "log", false},
		{"log.log", "log", "log", false},
		{"log20261015143005-3.txt", "log", "log", false},
		{"log20261015143005.log", "log", "log", false},
		{"log2026101514300a-3.log", "log", "log", false},
	}
	for _, tt := range tests {
		t.Run(tt.fname, func(t *testing.T) {
			assert.Equal(t, tt.want, isRotatedFileName(tt.fname, tt.name, tt.ext))
		})
	}
}

// TestRotatingBackendRetentionCheckInterval verifies that scans are rate limited
func TestRotatingBackendRetentionCheckInterval(t *testing.T) {
	clock := newTestClock()
	b, dir := newTestRotatingBackend(t, func(o *RotateOptions) {
		o.RetentionEnabled = true
		o.Retention = retentionDay
		o.RetentionCheck = time.Hour
		o.Now = clock.Now
	})

	b.Flush([]byte("first scan\n"))

	writeAgedFile(t, dir, "app20200101000000-1.log", 72*time.Hour)

	clock.Advance(10 * time.Minute)
	b.Flush([]byte("too early\n"))
	assert.Contains(t, listDir(t, dir), "app20200101000000-1.log")

	clock.Advance(time.Hour)
	b.Flush([]byte("second scan\n"))
	assert.NotContains(t, listDir(t, dir), "app20200101000000-1.log")
}

// TestRotatingBackendRetentionDisabled verifies that no files are deleted when retention is off
func TestRotatingBackendRetentionDisabled(t *testing.T) {
	b, dir := newTestRotatingBackend(t, func(o *RotateOptions) {
		o.RetentionEnabled = false
		o.Retention = 0
	})

	writeAgedFile(t, dir, "app20200101000000-1.log", 72*time.Hour)
	b.Flush([]byte("current\n"))

	assert.Len(t, listDir(t, dir), 2)
	assert.Equal(t, uint64(0), b.Stats().Deletions)
}

// TestRotatingBackendPruneKeepsNewestWithoutOpenFile verifies the newest file survives when none is open
func TestRotatingBackendPruneKeepsNewestWithoutOpenFile(t *testing.T) {
	b, dir := newTestRotatingBackend(t, func(o *RotateOptions) {
		o.RetentionEnabled = true
		o.Retention = 0
	})

	writeAgedFile(t, dir, "app20200101000000-1.log", 72*time.Hour)
	writeAgedFile(t, dir, "app20200102000000-2.log", 48*time.Hour)
	writeAgedFile(t, dir, "app20200103000000-3.log", 24*time.Hour)

	assert.Equal(t, 2, b.PruneExpired())
	assert.Equal(t, []string{"app20200103000000-3.log"}, listDir(t, dir))

	// A single remaining file is never touched
	assert.Equal(t, 0, b.PruneExpired())
}

// TestRotatingBackendClose verifies close semantics
func TestRotatingBackendClose(t *testing.T) {
	b, _ := newTestRotatingBackend(t, func(o *RotateOptions) { o.FlushLevel = FlushBuffered })

	b.Flush([]byte("buffered\n"))
	path := b.CurrentPath()

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
	assert.Empty(t, b.CurrentPath())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "buffered\n", string(content))

	b.Flush([]byte("after close\n"))
	assert.Equal(t, uint64(1), b.Stats().WriteErrors)
	assert.Equal(t, BackendRotate, b.Kind())
}

// TestRotatingBackendConcurrentFlush verifies that concurrent writers never split the size limit
func TestRotatingBackendConcurrentFlush(t *testing.T) {
	b, dir := newTestRotatingBackend(t, func(o *RotateOptions) { o.MaxSize = 512 })

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				b.Flush([]byte("concurrent record payload\n"))
			}
		}()
	}
	wg.Wait()
	require.NoError(t, b.Close())

	lines := 0
	for _, name := range listDir(t, dir) {
		content, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.LessOrEqual(t, len(content), 512)
		lines += strings.Count(string(content), "\n")
	}
	assert.Equal(t, 400, lines)
}

// TestNewRotatingBackendValidation verifies constructor checks
func TestNewRotatingBackendValidation(t *testing.T) {
	dir := t.TempDir()

	_, err := NewRotatingBackend(RotateOptions{Directory: dir})
	assert.Error(t, err)

	_, err = NewRotatingBackend(RotateOptions{Directory: dir, Name: "app", Mode: RotateBySize})
	assert.Error(t, err)

	_, err = NewRotatingBackend(RotateOptions{Directory: dir, Name: "app", Mode: RotateByTime})
	assert.Error(t, err)
}
