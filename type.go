package asynclog

import (
	"strings"
	"time"
)

// BackendKind tags the flush backend variant
type BackendKind int

const (
	BackendConsole BackendKind = iota
	BackendFile
	BackendRotate
)

// String returns the config name of the backend kind
func (k BackendKind) String() string {
	switch k {
	case BackendConsole:
		return "console"
	case BackendFile:
		return "file"
	case BackendRotate:
		return "rotate"
	default:
		return "unknown"
	}
}

// FlushLevel controls how far each write is pushed toward the disk
type FlushLevel int

const (
	// FlushBuffered keeps writes in the process buffer until a periodic or explicit sync
	FlushBuffered FlushLevel = iota
	// FlushOnly hands every write to the OS
	FlushOnly
	// FlushSync hands every write to the OS and forces it to stable storage
	FlushSync
)

// String returns the config name of the flush level
func (f FlushLevel) String() string {
	switch f {
	case FlushBuffered:
		return "buffered"
	case FlushOnly:
		return "flush"
	case FlushSync:
		return "sync"
	default:
		return "unknown"
	}
}

// RotateMode selects the rotation trigger
type RotateMode int

const (
	RotateBySize RotateMode = iota
	RotateByTime
)

// String returns the config name of the rotation mode
func (m RotateMode) String() string {
	if m == RotateByTime {
		return "time"
	}
	return "size"
}

// IdleMode selects what a worker does when the queue is empty
type IdleMode int

const (
	// IdlePark blocks on a wake signal with a timeout
	IdlePark IdleMode = iota
	// IdleSpin yields the processor and retries immediately
	IdleSpin
)

// String returns the config name of the idle mode
func (m IdleMode) String() string {
	if m == IdleSpin {
		return "spin"
	}
	return "park"
}

// ParseBackendKind converts a backend name
func ParseBackendKind(s string) (BackendKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "console":
		return BackendConsole, nil
	case "file":
		return BackendFile, nil
	case "rotate":
		return BackendRotate, nil
	default:
		return 0, fmtErrorf("invalid backend: '%s' (use console, file, or rotate)", s)
	}
}

// ParseFlushLevel converts a flush level name
func ParseFlushLevel(s string) (FlushLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buffered":
		return FlushBuffered, nil
	case "flush":
		return FlushOnly, nil
	case "sync":
		return FlushSync, nil
	default:
		return 0, fmtErrorf("invalid flush_level: '%s' (use buffered, flush, or sync)", s)
	}
}

// ParseRotateMode converts a rotation mode name
func ParseRotateMode(s string) (RotateMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "size":
		return RotateBySize, nil
	case "time":
		return RotateByTime, nil
	default:
		return 0, fmtErrorf("invalid rotate_mode: '%s' (use size or time)", s)
	}
}

// ParseIdleMode converts an idle mode name
func ParseIdleMode(s string) (IdleMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "park":
		return IdlePark, nil
	case "spin":
		return IdleSpin, nil
	default:
		return 0, fmtErrorf("invalid idle_mode: '%s' (use park or spin)", s)
	}
}

// Stats is a point-in-time snapshot of logger counters
type Stats struct {
	Pushed       uint64
	Drained      uint64
	Dropped      uint64
	SinkPanics   uint64
	Pending      int64
	BytesWritten uint64
	Rotations    uint64
	Deletions    uint64
	WriteErrors  uint64
	Uptime       time.Duration
}
