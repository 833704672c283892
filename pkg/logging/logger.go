// Package logging provides structured logging for promise
// verification with console, zerolog and multi-destination
// output.
package logging

import (
	"errors"
	"strings"
	"time"
)

// Logger defines the interface for structured logging used by
// the verifier, the scheduler loop and the scenario runner.
type Logger interface {
	// Info logs an informational message.
	Info(msg string, fields ...Field)

	// Warn logs a warning message.
	Warn(msg string, fields ...Field)

	// Error logs an error message.
	Error(msg string, fields ...Field)

	// Debug logs a debug-level message.
	Debug(msg string, fields ...Field)

	// WithFields returns a Logger with additional default
	// fields attached to every subsequent log entry.
	WithFields(fields ...Field) Logger

	// Close flushes any buffers and releases resources.
	Close() error
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// LogField creates a Field from a key-value pair.
func LogField(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// StringField creates a Field with a string value.
func StringField(key, value string) Field {
	return Field{Key: key, Value: value}
}

// IntField creates a Field with an integer value.
func IntField(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// BoolField creates a Field with a boolean value.
func BoolField(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// DurationField creates a Field with a duration value.
func DurationField(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// ErrorField creates a Field for an error value. If err is nil,
// the value is set to the string "<nil>".
func ErrorField(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: "<nil>"}
	}
	return Field{Key: "error", Value: err.Error()}
}

// LogLevel represents logging severity levels.
type LogLevel int

const (
	// LevelDebug is the most verbose level.
	LevelDebug LogLevel = iota
	// LevelInfo is the default level.
	LevelInfo
	// LevelWarn indicates potential issues.
	LevelWarn
	// LevelError indicates failures.
	LevelError
)

var levelNames = []string{"DEBUG", "INFO", "WARN", "ERROR"}

// String returns the string representation of a log level.
func (l LogLevel) String() string {
	if l < LevelDebug || l > LevelError {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// MarshalText implements encoding.TextMarshaler.
func (l LogLevel) MarshalText() ([]byte, error) {
	if l < LevelDebug || l > LevelError {
		return nil, errors.New("unknown log level")
	}
	return []byte(strings.ToLower(levelNames[l])), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Level names
// are matched case-insensitively; "warning" is accepted as an
// alias of "warn".
func (l *LogLevel) UnmarshalText(text []byte) error {
	name := strings.ToUpper(strings.TrimSpace(string(text)))
	if name == "WARNING" {
		name = "WARN"
	}
	for i, n := range levelNames {
		if n == name {
			*l = LogLevel(i)
			return nil
		}
	}
	return errors.New("unknown log level: " + string(text))
}

func mergeFields(base map[string]any, fields []Field) map[string]any {
	merged := make(map[string]any, len(base)+len(fields))
	for k, v := range base {
		merged[k] = v
	}
	for _, f := range fields {
		merged[f.Key] = f.Value
	}
	return merged
}
