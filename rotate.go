package asynclog

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// rotationCounter makes rotated file names unique within the process,
// including rotations that fall in the same second
var rotationCounter atomic.Uint64

// RotateOptions configures a RotatingBackend
type RotateOptions struct {
	Directory string
	Name      string // Base file name
	Extension string // Without leading dot

	Mode     RotateMode
	MaxSize  int64         // Bytes per file in size mode
	Interval time.Duration // File lifetime in time mode

	FlushLevel FlushLevel

	RetentionEnabled bool
	Retention        time.Duration // Files older than this are deleted
	RetentionCheck   time.Duration // Minimum time between retention scans

	Report ReportFunc
	Now    func() time.Time // Clock, defaults to time.Now
}

// RotatingBackend writes records into a series of uniquely named files,
// opening a new file by size or elapsed time and pruning old files by age
type RotatingBackend struct {
	backendCounters
	mu   sync.Mutex
	opts RotateOptions

	file       *logFile // nil in the NoFileOpen state
	lastRotate time.Time
	lastCheck  time.Time
	closed     bool
}

// NewRotatingBackend validates opts and creates the log directory.
// The first file is opened by the first Flush.
func NewRotatingBackend(opts RotateOptions) (*RotatingBackend, error) {
	if strings.TrimSpace(opts.Name) == "" {
		return nil, fmtErrorf("rotating backend name cannot be empty")
	}
	if opts.Directory == "" {
		opts.Directory = "."
	}
	if opts.Mode == RotateBySize && opts.MaxSize <= 0 {
		return nil, fmtErrorf("max size must be positive for size rotation: %d", opts.MaxSize)
	}
	if opts.Mode == RotateByTime && opts.Interval <= 0 {
		return nil, fmtErrorf("interval must be positive for time rotation: %v", opts.Interval)
	}
	if opts.Report == nil {
		opts.Report = stderrReport
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if err := os.MkdirAll(opts.Directory, 0755); err != nil {
		return nil, fmtErrorf("failed to create log directory '%s': %w", opts.Directory, err)
	}

	return &RotatingBackend{opts: opts}, nil
}

// Flush rotates if needed, writes the record, then runs the retention check
func (b *RotatingBackend) Flush(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		b.writeErrors.Add(1)
		b.opts.Report("write to closed rotating backend '%s'\n", b.opts.Directory)
		return
	}

	now := b.opts.Now()
	if !b.ensureFile(now, int64(len(data))) {
		b.writeErrors.Add(1)
		return
	}

	n, err := b.file.write(data, b.opts.FlushLevel)
	b.bytesWritten.Add(uint64(n))
	if err != nil {
		b.writeErrors.Add(1)
		b.opts.Report("%v\n", err)
	}

	b.checkRetention(now)
}

// ensureFile opens a new file when none is open or the rotation trigger fired.
// Returns false if no file could be opened.
func (b *RotatingBackend) ensureFile(now time.Time, incoming int64) bool {
	switch b.opts.Mode {
	case RotateByTime:
		if b.file == nil || now.Sub(b.lastRotate) >= b.opts.Interval {
			if !b.rotate(now) {
				return false
			}
			b.lastRotate = now
		}
	default:
		// A record that would push a non-empty file past the limit starts a new file;
		// a record larger than the limit gets a file of its own
		if b.file == nil || b.file.size >= b.opts.MaxSize ||
			(b.file.size > 0 && b.file.size+incoming > b.opts.MaxSize) {
			if !b.rotate(now) {
				return false
			}
		}
	}
	return true
}

// rotate closes the open file and opens a freshly named one
func (b *RotatingBackend) rotate(now time.Time) bool {
	if b.file != nil {
		if err := b.file.close(); err != nil {
			b.opts.Report("%v\n", err)
		}
		b.file = nil
	}

	path := filepath.Join(b.opts.Directory, b.fileName(now))
	lf, err := openLogFile(path)
	if err != nil {
		b.opts.Report("%v\n", err)
		return false
	}
	b.file = lf
	b.rotations.Add(1)
	return true
}

// fileName builds <name><YYYYMMDDHHMMSS>-<counter>.<ext> in local time
func (b *RotatingBackend) fileName(now time.Time) string {
	var sb strings.Builder
	sb.WriteString(b.opts.Name)
	sb.WriteString(now.Local().Format(rotateTimeLayout))
	sb.WriteByte('-')
	sb.WriteString(strconv.FormatUint(rotationCounter.Add(1), 10))
	if b.opts.Extension != "" {
		sb.WriteByte('.')
		sb.WriteString(b.opts.Extension)
	}
	return sb.String()
}

// Sync flushes the write buffer and forces the current file to disk
func (b *RotatingBackend) Sync() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.file == nil {
		return nil
	}
	return b.file.sync()
}

// Close syncs and closes the current file
func (b *RotatingBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	if b.file == nil {
		return nil
	}
	err := b.file.close()
	b.file = nil
	return err
}

// Kind returns BackendRotate
func (b *RotatingBackend) Kind() BackendKind {
	return BackendRotate
}

// CurrentPath returns the path of the open file, or "" when none is open
func (b *RotatingBackend) CurrentPath() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.file == nil {
		return ""
	}
	return b.file.path
}
