package asynclog

import (
	"time"

	"github.com/lixenwraith/asynclog/formatter"
)

// Log level constants
const (
	LevelDebug int64 = -4
	LevelInfo  int64 = 0
	LevelWarn  int64 = 4
	LevelError int64 = 8
)

// Heartbeat log levels
const (
	LevelProc int64 = 12
	LevelDisk int64 = 16
)

// Record flags for controlling output structure
const (
	FlagRaw            = formatter.FlagRaw
	FlagShowTimestamp  = formatter.FlagShowTimestamp
	FlagShowLevel      = formatter.FlagShowLevel
	FlagStructuredJSON = formatter.FlagStructuredJSON
	FlagDefault        = formatter.FlagDefault
)

// Storage
const (
	// Size multiplier for KB
	sizeMultiplier = 1000
	// Rotated file timestamp layout: YYYYMMDDHHMMSS
	rotateTimeLayout = "20060102150405"
)

// Timers
const (
	// Minimum wait time used throughout the package
	minWaitTime = 10 * time.Millisecond
	// Retention window unit
	retentionDay = 24 * time.Hour
)
