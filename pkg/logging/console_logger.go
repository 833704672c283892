package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// ConsoleLogger writes human-readable, colored lines.
type ConsoleLogger struct {
	mu      *sync.Mutex
	output io.Writer
	level  LogLevel
	fields map[string]any
}

var (
	levelColors = map[LogLevel]*color.Color{
		LevelDebug: color.New(color.FgHiBlack),
		LevelInfo:  color.New(color.FgBlue),
		LevelWarn:  color.New(color.FgYellow),
		LevelError: color.New(color.FgRed),
	}
	dim = color.New(color.FgHiBlack).SprintFunc()
)

// NewConsoleLogger creates a console logger writing to stdout.
// When verbose is true, debug messages are emitted.
func NewConsoleLogger(verbose bool) *ConsoleLogger {
	return NewConsoleLoggerTo(os.Stdout, verbose)
}

// NewConsoleLoggerTo creates a console logger writing to w.
func NewConsoleLoggerTo(w io.Writer, verbose bool) *ConsoleLogger {
	level := LevelInfo
	if verbose {
		level = LevelDebug
	}
	return NewLeveledConsoleLogger(w, level)
}

// NewLeveledConsoleLogger creates a console logger writing to w
// that drops messages below level.
func NewLeveledConsoleLogger(w io.Writer, level LogLevel) *ConsoleLogger {
	return &ConsoleLogger{
		mu:     &sync.Mutex{},
		output: w,
		level:  level,
		fields: make(map[string]any),
	}
}

func (c *ConsoleLogger) log(level LogLevel, msg string, fields ...Field) {
	if level < c.level {
		return
	}
	all := mergeFields(c.fields, fields)

	var fieldStr string
	if len(all) > 0 {
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, all[k]))
		}
		fieldStr = " " + dim("{"+strings.Join(parts, ", ")+"}")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(
		c.output, "%s [%s] %s%s\n",
		dim(time.Now().Format("15:04:05")),
		levelColors[level].Sprintf("%-5s", level.String()),
		msg, fieldStr,
	)
}

// Info logs an informational message.
func (c *ConsoleLogger) Info(msg string, fields ...Field) {
	c.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (c *ConsoleLogger) Warn(msg string, fields ...Field) {
	c.log(LevelWarn, msg, fields...)
}

// Error logs an error message.
func (c *ConsoleLogger) Error(msg string, fields ...Field) {
	c.log(LevelError, msg, fields...)
}

// Debug logs a debug message.
func (c *ConsoleLogger) Debug(msg string, fields ...Field) {
	c.log(LevelDebug, msg, fields...)
}

// WithFields returns a new Logger sharing the output and lock
// of c, with additional default fields.
func (c *ConsoleLogger) WithFields(fields ...Field) Logger {
	return &ConsoleLogger{
		mu:     c.mu,
		output: c.output,
		level:  c.level,
		fields: mergeFields(c.fields, fields),
	}
}

// Close is a no-op for ConsoleLogger.
func (c *ConsoleLogger) Close() error {
	return nil
}
