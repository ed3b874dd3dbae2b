package asynclog

import (
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// Backend turns drained records into output. Implementations serialize
// Flush, Sync and Close internally, so any number of workers may share one.
type Backend interface {
	// Flush writes one record. Failures are reported and absorbed.
	Flush(data []byte)
	// Sync pushes buffered bytes to the OS, and to disk at FlushSync.
	Sync() error
	// Close syncs and releases any open handle. Safe to call more than once.
	Close() error
	// Kind identifies the variant
	Kind() BackendKind
	// Stats returns a snapshot of backend counters
	Stats() BackendStats
}

// BackendStats is a snapshot of backend counters
type BackendStats struct {
	BytesWritten uint64
	Rotations    uint64
	Deletions    uint64
	WriteErrors  uint64
}

// backendCounters is embedded by every backend
type backendCounters struct {
	bytesWritten atomic.Uint64
	rotations    atomic.Uint64
	deletions    atomic.Uint64
	writeErrors  atomic.Uint64
}

// Stats returns a snapshot of backend counters
func (c *backendCounters) Stats() BackendStats {
	return BackendStats{
		BytesWritten: c.bytesWritten.Load(),
		Rotations:    c.rotations.Load(),
		Deletions:    c.deletions.Load(),
		WriteErrors:  c.writeErrors.Load(),
	}
}

// NewBackend builds the backend selected by cfg.Backend
func NewBackend(cfg *Config, report ReportFunc) (Backend, error) {
	kind, err := ParseBackendKind(cfg.Backend)
	if err != nil {
		return nil, err
	}
	level, err := ParseFlushLevel(cfg.FlushLevel)
	if err != nil {
		return nil, err
	}

	switch kind {
	case BackendConsole:
		var w io.Writer = os.Stdout
		if cfg.ConsoleTarget == "stderr" {
			w = os.Stderr
		}
		return NewConsoleBackend(w, report), nil
	case BackendFile:
		return NewFileBackend(FileOptions{
			Path:       cfg.filePath(),
			FlushLevel: level,
			Report:     report,
		})
	default:
		opts := cfg.rotateOptions()
		opts.Report = report
		return NewRotatingBackend(opts)
	}
}

// ConsoleBackend writes records to a console stream
type ConsoleBackend struct {
	backendCounters
	mu     sync.Mutex
	w      io.Writer
	report ReportFunc
}

// NewConsoleBackend creates a backend writing to w, typically os.Stdout or os.Stderr
func NewConsoleBackend(w io.Writer, report ReportFunc) *ConsoleBackend {
	if report == nil {
		report = stderrReport
	}
	return &ConsoleBackend{w: w, report: report}
}

// Flush writes the record to the console stream
func (c *ConsoleBackend) Flush(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, err := c.w.Write(data)
	c.bytesWritten.Add(uint64(n))
	if err != nil {
		c.writeErrors.Add(1)
		c.report("failed to write to console: %v\n", err)
	}
}

// Sync is a no-op; console writes are unbuffered
func (c *ConsoleBackend) Sync() error {
	return nil
}

// Close is a no-op; the console stream is not owned by the backend
func (c *ConsoleBackend) Close() error {
	return nil
}

// Kind returns BackendConsole
func (c *ConsoleBackend) Kind() BackendKind {
	return BackendConsole
}
