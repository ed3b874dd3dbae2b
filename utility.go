package asynclog

import (
	"fmt"
	"os"
	"strings"
)

// errPrefix marks every error and diagnostic originating in this package
const errPrefix = "asynclog: "

// ReportFunc receives diagnostics about failures the delivery path absorbs
type ReportFunc func(format string, args ...any)

// stderrReport writes diagnostics to the process error stream
func stderrReport(format string, args ...any) {
	if !strings.HasPrefix(format, errPrefix) {
		format = errPrefix + format
	}
	fmt.Fprintf(os.Stderr, format, args...)
}

// discardReport drops diagnostics
func discardReport(string, ...any) {}

// fmtErrorf wrapper
func fmtErrorf(format string, args ...any) error {
	if !strings.HasPrefix(format, errPrefix) {
		format = errPrefix + format
	}
	return fmt.Errorf(format, args...)
}

// combineErrors helper
func combineErrors(err1, err2 error) error {
	if err1 == nil {
		return err2
	}
	if err2 == nil {
		return err1
	}
	return fmt.Errorf("%v; %w", err1, err2)
}

// parseKeyValue splits a "key=value" string.
func parseKeyValue(arg string) (string, string, error) {
	parts := strings.SplitN(strings.TrimSpace(arg), "=", 2)
	if len(parts) != 2 {
		return "", "", fmtErrorf("invalid format in override string '%s', expected key=value", arg)
	}
	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	if key == "" {
		return "", "", fmtErrorf("key cannot be empty in override string '%s'", arg)
	}
	return key, value, nil
}

// Level converts level string to numeric constant.
func Level(levelStr string) (int64, error) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "proc":
		return LevelProc, nil
	case "disk":
		return LevelDisk, nil
	default:
		return 0, fmtErrorf("invalid level string: '%s' (use debug, info, warn, error, proc, disk)", levelStr)
	}
}
