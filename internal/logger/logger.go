package logger

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Logger wraps charm/log for structured logging
type Logger struct {
	*log.Logger
}

// New creates a new logger with the given output
func New(w io.Writer) *Logger {
	return NewWithLevel(w, log.InfoLevel)
}

// NewWithLevel creates a logger with a specific level
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	})
	return &Logger{Logger: l}
}

// NewFileLogger creates a logger that appends to a file
func NewFileLogger(path string, level log.Level) (*Logger, func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		f.Close()
	}

	return NewWithLevel(f, level), cleanup, nil
}

// NewMultiLogger creates a logger that writes to multiple outputs
func NewMultiLogger(level log.Level, writers ...io.Writer) *Logger {
	return NewWithLevel(io.MultiWriter(writers...), level)
}

// Discard returns a logger that discards all output
func Discard() *Logger {
	return New(io.Discard)
}

// ParseLevel maps a config or flag value to a level. Unknown values fall
// back to warn.
func ParseLevel(s string) log.Level {
	level, err := log.ParseLevel(s)
	if err != nil {
		return log.WarnLevel
	}
	return level
}

// ConfigLoaded logs successful config loading
func (l *Logger) ConfigLoaded(path, project string, freeKey bool) {
	l.Debug("config loaded",
		"path", path,
		"project", project,
		"free_key", freeKey)
}

// TranslationStarted logs the start of a batch
func (l *Logger) TranslationStarted(runID, from, to string, files int) {
	l.Info("translation started",
		"run", runID,
		"from", from,
		"to", to,
		"files", files)
}

// FileTranslated logs a successfully written document
func (l *Logger) FileTranslated(source, dest string, chars int, duration time.Duration) {
	l.Info("file translated",
		"source", source,
		"dest", dest,
		"chars", chars,
		"duration", duration.Round(time.Millisecond))
}

// FileSkipped logs when a file is skipped
func (l *Logger) FileSkipped(file, reason string) {
	l.Debug("file skipped",
		"file", file,
		"reason", reason)
}

// FileError logs an error for a specific file
func (l *Logger) FileError(file string, err error) {
	l.Error("file error",
		"file", file,
		"error", err)
}

// QuotaChecked logs the pre-flight character budget
func (l *Logger) QuotaChecked(needed int, remaining int64) {
	l.Info("quota checked",
		"needed", needed,
		"remaining", remaining)
}

// GlossaryUsed logs which glossary a request carries
func (l *Logger) GlossaryUsed(id, source string) {
	l.Debug("glossary used",
		"id", id,
		"source", source)
}

// StateError logs a state-related error
func (l *Logger) StateError(operation string, err error) {
	l.Error("state error",
		"operation", operation,
		"error", err)
}

// BatchCompleted logs the completion of a batch
func (l *Logger) BatchCompleted(translated, skipped, failed int, duration time.Duration) {
	l.Info("translation completed",
		"translated", translated,
		"skipped", skipped,
		"failed", failed,
		"duration", duration.Round(time.Millisecond))
}
