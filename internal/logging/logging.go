// Package logging provides a small leveled logger shared across the
// ingestion and pagination code. Storage corruption and skipped EPUB
// sections are logged here rather than surfaced to the reader.
package logging

import (
	"log"
	"os"
)

// Level represents logging severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Logger writes leveled messages to a standard library logger.
type Logger struct {
	level  Level
	logger *log.Logger
}

// New creates a logger that writes to stderr at the given level.
func New(level Level) *Logger {
	return &Logger{
		level:  level,
		logger: log.New(os.Stderr, "", log.LstdFlags),
	}
}

// Debugf logs debug-level messages.
func (l *Logger) Debugf(format string, v ...any) {
	if l.level <= LevelDebug {
		l.logger.Printf("[DEBUG] "+format, v...)
	}
}

// Infof logs info-level messages.
func (l *Logger) Infof(format string, v ...any) {
	if l.level <= LevelInfo {
		l.logger.Printf("[INFO] "+format, v...)
	}
}

// Warnf logs warning-level messages.
func (l *Logger) Warnf(format string, v ...any) {
	if l.level <= LevelWarn {
		l.logger.Printf("[WARN] "+format, v...)
	}
}

// Errorf logs error-level messages.
func (l *Logger) Errorf(format string, v ...any) {
	if l.level <= LevelError {
		l.logger.Printf("[ERROR] "+format, v...)
	}
}

var std = New(LevelInfo)

// SetLevel adjusts the level of the package-wide logger.
func SetLevel(level Level) { std.level = level }

// Debugf logs to the package-wide logger.
func Debugf(format string, v ...any) { std.Debugf(format, v...) }

// Infof logs to the package-wide logger.
func Infof(format string, v ...any) { std.Infof(format, v...) }

// Warnf logs to the package-wide logger.
func Warnf(format string, v ...any) { std.Warnf(format, v...) }

// Errorf logs to the package-wide logger.
func Errorf(format string, v ...any) { std.Errorf(format, v...) }
