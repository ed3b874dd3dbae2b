// Package formatter renders log arguments into the byte records pushed onto
// the asynchronous delivery queue.
package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/davecgh/go-spew/spew"
)

// Format flags for controlling output structure
const (
	FlagRaw            int64 = 0b0001
	FlagShowTimestamp  int64 = 0b0010
	FlagShowLevel      int64 = 0b0100
	FlagStructuredJSON int64 = 0b1000
	FlagDefault              = FlagShowTimestamp | FlagShowLevel
)

// Formatter holds immutable formatting options.
// A Formatter is safe for concurrent use; each call appends into the caller's buffer.
type Formatter struct {
	format          string
	timestampFormat string
	showTimestamp   bool
	showLevel       bool
}

// dumper renders values without a dedicated conversion
var dumper = &spew.ConfigState{
	Indent:                  " ",
	MaxDepth:                10,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// New creates a txt formatter with timestamps and levels shown
func New() *Formatter {
	return &Formatter{
		format:          "txt",
		timestampFormat: time.RFC3339Nano,
		showTimestamp:   true,
		showLevel:       true,
	}
}

// Type sets the output format ("txt", "json", or "raw")
func (f *Formatter) Type(format string) *Formatter {
	f.format = format
	return f
}

// TimestampFormat sets the timestamp layout
func (f *Formatter) TimestampFormat(format string) *Formatter {
	if format != "" {
		f.timestampFormat = format
	}
	return f
}

// ShowLevel sets whether to include level in output
func (f *Formatter) ShowLevel(show bool) *Formatter {
	f.showLevel = show
	return f
}

// ShowTimestamp sets whether to include timestamp in output
func (f *Formatter) ShowTimestamp(show bool) *Formatter {
	f.showTimestamp = show
	return f
}

// Flags returns the record flags implied by the configured options
func (f *Formatter) Flags() int64 {
	var flags int64
	if f.showTimestamp {
		flags |= FlagShowTimestamp
	}
	if f.showLevel {
		flags |= FlagShowLevel
	}
	return flags
}

// Append formats one record into dst and returns the extended slice.
// FlagRaw bypasses the configured format entirely.
func (f *Formatter) Append(dst []byte, flags int64, timestamp time.Time, level int64, args []any) []byte {
	if flags&FlagRaw != 0 || f.format == "raw" {
		return f.appendRaw(dst, args)
	}
	if f.format == "json" {
		return f.appendJSON(dst, flags, timestamp, level, args)
	}
	return f.appendTxt(dst, flags, timestamp, level, args)
}

// LevelToString converts integer level values to string
func LevelToString(level int64) string {
	switch level {
	case -4:
		return "DEBUG"
	case 0:
		return "INFO"
	case 4:
		return "WARN"
	case 8:
		return "ERROR"
	case 12:
		return "PROC"
	case 16:
		return "DISK"
	default:
		return fmt.Sprintf("LEVEL(%d)", level)
	}
}

func (f *Formatter) appendRaw(dst []byte, args []any) []byte {
	for i, arg := range args {
		if i > 0 {
			dst = append(dst, ' ')
		}
		dst = f.appendValue(dst, arg)
	}
	return dst
}

func (f *Formatter) appendTxt(dst []byte, flags int64, timestamp time.Time, level int64, args []any) []byte {
	needsSpace := false
	if flags&FlagShowTimestamp != 0 {
		dst = timestamp.AppendFormat(dst, f.timestampFormat)
		needsSpace = true
	}
	if flags&FlagShowLevel != 0 {
		if needsSpace {
			dst = append(dst, ' ')
		}
		dst = append(dst, LevelToString(level)...)
		needsSpace = true
	}
	for _, arg := range args {
		if needsSpace {
			dst = append(dst, ' ')
		}
		dst = f.appendValue(dst, arg)
		needsSpace = true
	}
	return append(dst, '\n')
}

func (f *Formatter) appendJSON(dst []byte, flags int64, timestamp time.Time, level int64, args []any) []byte {
	dst = append(dst, '{')
	needsComma := false

	if flags&FlagShowTimestamp != 0 {
		dst = append(dst, `"time":"`...)
		dst = timestamp.AppendFormat(dst, f.timestampFormat)
		dst = append(dst, '"')
		needsComma = true
	}

	if flags&FlagShowLevel != 0 {
		if needsComma {
			dst = append(dst, ',')
		}
		dst = append(dst, `"level":"`...)
		dst = append(dst, LevelToString(level)...)
		dst = append(dst, '"')
		needsComma = true
	}

	// message + field map
	if flags&FlagStructuredJSON != 0 && len(args) >= 2 {
		if message, ok := args[0].(string); ok {
			if fields, ok := args[1].(map[string]any); ok {
				if needsComma {
					dst = append(dst, ',')
				}
				dst = append(dst, `"message":`...)
				dst = appendJSONString(dst, message)
				dst = append(dst, `,"fields":`...)
				if b, err := json.Marshal(fields); err != nil {
					dst = append(dst, `{"_marshal_error":`...)
					dst = appendJSONString(dst, err.Error())
					dst = append(dst, '}')
				} else {
					dst = append(dst, b...)
				}
				return append(dst, '}', '\n')
			}
		}
	}

	if len(args) > 0 {
		if needsComma {
			dst = append(dst, ',')
		}
		dst = append(dst, `"fields":[`...)
		for i, arg := range args {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = f.appendJSONValue(dst, arg)
		}
		dst = append(dst, ']')
	}

	return append(dst, '}', '\n')
}

// appendValue renders a value for txt and raw output
func (f *Formatter) appendValue(dst []byte, v any) []byte {
	switch val := v.(type) {
	case string:
		return append(dst, val...)
	case []byte:
		return append(dst, val...)
	case int:
		return strconv.AppendInt(dst, int64(val), 10)
	case int64:
		return strconv.AppendInt(dst, val, 10)
	case int32:
		return strconv.AppendInt(dst, int64(val), 10)
	case uint:
		return strconv.AppendUint(dst, uint64(val), 10)
	case uint64:
		return strconv.AppendUint(dst, val, 10)
	case float32:
		return strconv.AppendFloat(dst, float64(val), 'f', -1, 32)
	case float64:
		return strconv.AppendFloat(dst, val, 'f', -1, 64)
	case bool:
		return strconv.AppendBool(dst, val)
	case nil:
		return append(dst, "nil"...)
	case time.Time:
		return val.AppendFormat(dst, f.timestampFormat)
	case time.Duration:
		return append(dst, val.String()...)
	case error:
		return append(dst, val.Error()...)
	case fmt.Stringer:
		return append(dst, val.String()...)
	default:
		var b bytes.Buffer
		dumper.Fdump(&b, val)
		return append(dst, bytes.TrimSpace(b.Bytes())...)
	}
}

// appendJSONValue renders a value as a JSON array element
func (f *Formatter) appendJSONValue(dst []byte, v any) []byte {
	switch val := v.(type) {
	case string:
		return appendJSONString(dst, val)
	case []byte:
		return appendJSONString(dst, string(val))
	case int, int64, int32, uint, uint64, float32, float64, bool:
		return f.appendValue(dst, val)
	case nil:
		return append(dst, "null"...)
	case time.Time:
		return appendJSONString(dst, val.Format(f.timestampFormat))
	case error:
		return appendJSONString(dst, val.Error())
	case fmt.Stringer:
		return appendJSONString(dst, val.String())
	default:
		if b, err := json.Marshal(val); err == nil {
			return append(dst, b...)
		}
		var b bytes.Buffer
		dumper.Fdump(&b, val)
		return appendJSONString(dst, string(bytes.TrimSpace(b.Bytes())))
	}
}

func appendJSONString(dst []byte, s string) []byte {
	b, err := json.Marshal(s)
	if err != nil {
		return append(dst, `""`...)
	}
	return append(dst, b...)
}
