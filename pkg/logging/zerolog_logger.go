package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

var zerologLevels = map[LogLevel]zerolog.Level{
	LevelDebug: zerolog.DebugLevel,
	LevelInfo:  zerolog.InfoLevel,
	LevelWarn:  zerolog.WarnLevel,
	LevelError: zerolog.ErrorLevel,
}

// ZerologConfig configures a ZerologLogger.
type ZerologConfig struct {
	// Output receives log lines. Defaults to stdout.
	Output io.Writer

	// Level is the minimum level written.
	Level LogLevel

	// Fields are attached to every entry.
	Fields map[string]any
}

// ZerologLogger implements Logger on top of zerolog. Entries are
// JSON lines unless the output is a terminal, in which case
// zerolog's console writer is used.
type ZerologLogger struct {
	log    zerolog.Logger
	closer io.Closer
}

// NewZerologLogger creates a ZerologLogger from cfg.
func NewZerologLogger(cfg ZerologConfig) *ZerologLogger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	var closer io.Closer
	if c, ok := out.(io.Closer); ok && out != os.Stdout && out != os.Stderr {
		closer = c
	}

	if isTerminal(out) {
		raw := out
		out = zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.TimeFormat = time.DateTime
			w.Out = raw
		})
	}

	level, ok := zerologLevels[cfg.Level]
	if !ok {
		level = zerolog.InfoLevel
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if len(cfg.Fields) > 0 {
		ctx = ctx.Fields(cfg.Fields)
	}

	return &ZerologLogger{log: ctx.Logger(), closer: closer}
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return true
	}
	return false
}

func (z *ZerologLogger) write(e *zerolog.Event, msg string, fields []Field) {
	if len(fields) > 0 {
		e = e.Fields(mergeFields(nil, fields))
	}
	e.Msg(msg)
}

// Info logs an informational message.
func (z *ZerologLogger) Info(msg string, fields ...Field) {
	z.write(z.log.Info(), msg, fields)
}

// Warn logs a warning message.
func (z *ZerologLogger) Warn(msg string, fields ...Field) {
	z.write(z.log.Warn(), msg, fields)
}

// Error logs an error message.
func (z *ZerologLogger) Error(msg string, fields ...Field) {
	z.write(z.log.Error(), msg, fields)
}

// Debug logs a debug message.
func (z *ZerologLogger) Debug(msg string, fields ...Field) {
	z.write(z.log.Debug(), msg, fields)
}

// WithFields returns a child logger carrying fields.
func (z *ZerologLogger) WithFields(fields ...Field) Logger {
	return &ZerologLogger{
		log: z.log.With().Fields(mergeFields(nil, fields)).Logger(),
	}
}

// Close closes the output when it was opened by the caller as a
// file other than stdout or stderr. Child loggers never close.
func (z *ZerologLogger) Close() error {
	if z.closer == nil {
		return nil
	}
	err := z.closer.Close()
	z.closer = nil
	return err
}
