package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleLogger_Levels(t *testing.T) {
	tests := []struct {
		name  string
		log   func(l *ConsoleLogger)
		level string
		msg   string
	}{
		{"info", func(l *ConsoleLogger) { l.Info("hello world") }, "INFO", "hello world"},
		{"warn", func(l *ConsoleLogger) { l.Warn("warning message") }, "WARN", "warning message"},
		{"error", func(l *ConsoleLogger) { l.Error("error occurred") }, "ERROR", "error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(NewConsoleLoggerTo(&buf, false))

			output := buf.String()
			assert.Contains(t, output, tt.level)
			assert.Contains(t, output, tt.msg)
		})
	}
}

func TestConsoleLogger_Debug_Verbose(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleLoggerTo(&buf, true).Debug("debug info")
	assert.Contains(t, buf.String(), "debug info")
}

func TestConsoleLogger_Debug_NotVerbose(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleLoggerTo(&buf, false).Debug("debug info")
	assert.Empty(t, buf.String())
}

func TestConsoleLogger_MinimumLevel(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  []string
		skip  []string
	}{
		{LevelDebug, []string{"d-msg", "i-msg", "w-msg", "e-msg"}, nil},
		{LevelInfo, []string{"i-msg", "w-msg", "e-msg"}, []string{"d-msg"}},
		{LevelWarn, []string{"w-msg", "e-msg"}, []string{"d-msg", "i-msg"}},
		{LevelError, []string{"e-msg"}, []string{"d-msg", "i-msg", "w-msg"}},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLeveledConsoleLogger(&buf, tt.level).WithFields(LogField("k", 1))

			logger.Debug("d-msg")
			logger.Info("i-msg")
			logger.Warn("w-msg")
			logger.Error("e-msg")

			output := buf.String()
			for _, msg := range tt.want {
				assert.Contains(t, output, msg)
			}
			for _, msg := range tt.skip {
				assert.NotContains(t, output, msg)
			}
		})
	}
}

func TestConsoleLogger_InfoWithFields(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleLoggerTo(&buf, false).Info("msg", LogField("key", "val"))
	assert.Contains(t, buf.String(), "key=val")
}

func TestConsoleLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, false)

	child := logger.WithFields(LogField("env", "test"))
	cl, ok := child.(*ConsoleLogger)
	assert.True(t, ok)
	assert.Equal(t, "test", cl.fields["env"])
	assert.Empty(t, logger.fields)

	child.Info("from child", LogField("id", 7))
	output := buf.String()
	assert.Contains(t, output, "env=test")
	assert.Contains(t, output, "id=7")
}

func TestConsoleLogger_Close(t *testing.T) {
	assert.NoError(t, NewConsoleLogger(false).Close())
}
