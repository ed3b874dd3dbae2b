package compat

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/panjf2000/gnet/v2/pkg/logging"

	"github.com/lixenwraith/asynclog"
)

var _ logging.Logger = (*GnetAdapter)(nil)

// GnetAdapter routes gnet engine logs through the asynchronous queue
type GnetAdapter struct {
	logger        *asynclog.Logger
	fatalHandler  func(msg string) // Customizable fatal behavior
	extractFields bool
}

// NewGnetAdapter creates a new gnet-compatible logger adapter
func NewGnetAdapter(logger *asynclog.Logger, opts ...GnetOption) *GnetAdapter {
	adapter := &GnetAdapter{
		logger: logger,
		fatalHandler: func(msg string) {
			os.Exit(1) // Default behavior matches gnet expectations
		},
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// GnetOption allows customizing adapter behavior
type GnetOption func(*GnetAdapter)

// WithFatalHandler sets a custom fatal handler
func WithFatalHandler(handler func(string)) GnetOption {
	return func(a *GnetAdapter) {
		a.fatalHandler = handler
	}
}

// WithFieldExtraction splits "key=%v" verbs of the format string into separate fields
func WithFieldExtraction(enable bool) GnetOption {
	return func(a *GnetAdapter) {
		a.extractFields = enable
	}
}

// Debugf logs at debug level with printf-style formatting
func (a *GnetAdapter) Debugf(format string, args ...any) {
	if !a.logger.Enabled(asynclog.LevelDebug) {
		return
	}
	a.logger.Debug(a.fields(format, args)...)
}

// Infof logs at info level with printf-style formatting
func (a *GnetAdapter) Infof(format string, args ...any) {
	if !a.logger.Enabled(asynclog.LevelInfo) {
		return
	}
	a.logger.Info(a.fields(format, args)...)
}

// Warnf logs at warn level with printf-style formatting
func (a *GnetAdapter) Warnf(format string, args ...any) {
	if !a.logger.Enabled(asynclog.LevelWarn) {
		return
	}
	a.logger.Warn(a.fields(format, args)...)
}

// Errorf logs at error level with printf-style formatting
func (a *GnetAdapter) Errorf(format string, args ...any) {
	a.logger.Error(a.fields(format, args)...)
}

// Fatalf logs at error level, waits for the record to reach the backend,
// then triggers the fatal handler
func (a *GnetAdapter) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.logger.Error("msg", msg, "source", "gnet", "fatal", true)

	_ = a.logger.Flush(100 * time.Millisecond)

	if a.fatalHandler != nil {
		a.fatalHandler(msg)
	}
}

func (a *GnetAdapter) fields(format string, args []any) []any {
	if a.extractFields {
		return append(parseFormat(format, args), "source", "gnet")
	}
	return []any{"msg", fmt.Sprintf(format, args...), "source", "gnet"}
}

// keyValuePattern matches "key=%v" and "key: %v" in printf format strings
var keyValuePattern = regexp.MustCompile(`(\w+)\s*[:=]\s*%[vsdqxXeEfFgGpbcU]`)

// parseFormat turns a printf format into msg plus key/value fields.
// Formats whose verbs cannot all be paired with args fall back to a single msg.
func parseFormat(format string, args []any) []any {
	matches := keyValuePattern.FindAllStringSubmatchIndex(format, -1)
	if len(matches) == 0 || len(matches) != len(args) {
		return []any{"msg", fmt.Sprintf(format, args...)}
	}

	var msg strings.Builder
	fields := make([]any, 0, len(matches)*2)
	lastEnd := 0
	for i, match := range matches {
		if text := strings.TrimSpace(format[lastEnd:match[0]]); text != "" {
			if msg.Len() > 0 {
				msg.WriteByte(' ')
			}
			msg.WriteString(strings.ReplaceAll(text, "%%", "%"))
		}
		fields = append(fields, format[match[2]:match[3]], args[i])
		lastEnd = match[1]
	}
	if text := strings.TrimSpace(format[lastEnd:]); text != "" {
		if msg.Len() > 0 {
			msg.WriteByte(' ')
		}
		msg.WriteString(strings.ReplaceAll(text, "%%", "%"))
	}

	return append([]any{"msg", msg.String()}, fields...)
}
