package asynclog

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// ApplyConfigString applies "key=value" overrides on top of the current configuration.
// Keys are the toml names of Config fields. The configuration is cloned first,
// so a failed override leaves the running logger untouched.
//
// Example:
//
//	logger := asynclog.NewLogger()
//	err := logger.ApplyConfigString(
//	    "directory=/var/log/app",
//	    "level=debug",
//	    "backend=rotate",
//	    "rotate_mode=time",
//	)
func (l *Logger) ApplyConfigString(overrides ...string) error {
	cfg := l.getConfig().Clone()

	var errs []error

	for _, override := range overrides {
		key, value, err := parseKeyValue(override)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if err := applyConfigField(cfg, key, value); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return combineConfigErrors(errs)
	}

	return l.ApplyConfig(cfg)
}

// combineConfigErrors combines multiple configuration errors into a single error
func combineConfigErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}

	var sb strings.Builder
	sb.WriteString(errPrefix + "multiple configuration errors:")
	for i, err := range errs {
		errMsg := strings.TrimPrefix(err.Error(), errPrefix)
		sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, errMsg))
	}
	return fmt.Errorf("%s", sb.String())
}

// applyConfigField parses value into the Config field tagged with key
func applyConfigField(cfg *Config, key, value string) error {
	// Named levels in addition to numeric ones
	if key == "level" {
		if numVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			cfg.Level = numVal
			return nil
		}
		levelVal, err := Level(value)
		if err != nil {
			return fmtErrorf("invalid level value '%s': %w", value, err)
		}
		cfg.Level = levelVal
		return nil
	}

	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("toml") != key {
			continue
		}

		field := v.Field(i)
		switch field.Kind() {
		case reflect.String:
			field.SetString(value)
		case reflect.Int64:
			intVal, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmtErrorf("invalid integer value for %s '%s': %w", key, value, err)
			}
			field.SetInt(intVal)
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmtErrorf("invalid float value for %s '%s': %w", key, value, err)
			}
			field.SetFloat(floatVal)
		case reflect.Bool:
			boolVal, err := strconv.ParseBool(value)
			if err != nil {
				return fmtErrorf("invalid boolean value for %s '%s': %w", key, value, err)
			}
			field.SetBool(boolVal)
		default:
			return fmtErrorf("unsupported field type for %s: %v", key, field.Kind())
		}
		return nil
	}

	return fmtErrorf("unknown configuration key '%s'", key)
}
