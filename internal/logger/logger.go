// Package logger provides structured logging and in-process metrics for filgoal.
//
// Logging is backed by zerolog. The package keeps a small Fields-based API so
// call sites stay terse, and writes JSON lines by default or a human readable
// console format in development.
//
// Example usage:
//
//	logger.Info("matches fetched", logger.Fields{
//	    "date":  "2026-10-18",
//	    "count": 42,
//	})
//
//	logger.Error("fetch failed", logger.Fields{"url": url}, err)
//
//	logger.IncrCounter("extract.matches")
//	logger.RecordTiming("fetch.matches", time.Since(start))
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// ParseLevel maps a case-insensitive level name to a Level, defaulting to INFO.
func ParseLevel(s string) Level {
	switch Level(strings.ToUpper(strings.TrimSpace(s))) {
	case LevelDebug:
		return LevelDebug
	case LevelWarn, "WARNING":
		return LevelWarn
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Logger provides structured logging
type Logger struct {
	zl zerolog.Logger
}

// Fields represents structured log fields
type Fields map[string]interface{}

var defaultLogger = New(LevelInfo, os.Stdout)

// New creates a logger writing JSON lines to output. Messages below level are discarded.
func New(level Level, output io.Writer) *Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	return &Logger{
		zl: zerolog.New(output).Level(level.zerolog()).With().Timestamp().Logger(),
	}
}

// NewConsole creates a logger with colourised, human readable output for development.
func NewConsole(level Level, output io.Writer) *Logger {
	w := zerolog.ConsoleWriter{Out: output, TimeFormat: "15:04:05"}
	return &Logger{
		zl: zerolog.New(w).Level(level.zerolog()).With().Timestamp().Logger(),
	}
}

// SetDefault sets the logger used by the package-level functions.
func SetDefault(logger *Logger) {
	defaultLogger = logger
}

// Default returns the logger used by the package-level functions.
func Default() *Logger {
	return defaultLogger
}

func (l *Logger) log(level Level, message string, fields Fields, err error) {
	ev := l.zl.WithLevel(level.zerolog())
	if ev == nil {
		return
	}
	if len(fields) > 0 {
		ev = ev.Fields(map[string]interface{}(fields))
	}
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg(message)
}

// Debug logs a debug message with optional structured fields.
func (l *Logger) Debug(message string, fields Fields) {
	l.log(LevelDebug, message, fields, nil)
}

// Info logs an informational message with optional structured fields.
func (l *Logger) Info(message string, fields Fields) {
	l.log(LevelInfo, message, fields, nil)
}

// Warn logs a warning message with optional structured fields.
func (l *Logger) Warn(message string, fields Fields) {
	l.log(LevelWarn, message, fields, nil)
}

// Error logs an error message with optional structured fields and the error.
func (l *Logger) Error(message string, fields Fields, err error) {
	l.log(LevelError, message, fields, err)
}

// Debug logs a debug message with the default logger
func Debug(message string, fields Fields) {
	defaultLogger.Debug(message, fields)
}

// Info logs an info message with the default logger
func Info(message string, fields Fields) {
	defaultLogger.Info(message, fields)
}

// Warn logs a warning message with the default logger
func Warn(message string, fields Fields) {
	defaultLogger.Warn(message, fields)
}

// Error logs an error message with the default logger
func Error(message string, fields Fields, err error) {
	defaultLogger.Error(message, fields, err)
}
