package internal

import (
	"log"
	"os"
	"strings"
)

// LogLevel controls logging verbosity.
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

var levelTags = [...]string{"[ERROR] ", "[WARN] ", "[INFO] ", "[DEBUG] ", "[TRACE] "}

// ParseLogLevel maps a LOG_LEVEL string to a level, defaulting to info.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(s) {
	case "ERROR":
		return LogLevelError
	case "WARN":
		return LogLevelWarn
	case "DEBUG":
		return LogLevelDebug
	case "TRACE":
		return LogLevelTrace
	default:
		return LogLevelInfo
	}
}

// Logger is a leveled printf logger. The zero value is not usable; construct
// with NewLogger or NewDefaultLogger.
type Logger struct {
	level  LogLevel
	prefix string
}

func NewLogger(level LogLevel) *Logger {
	return &Logger{level: level}
}

// NewDefaultLogger reads the level from the LOG_LEVEL environment variable.
func NewDefaultLogger() *Logger {
	return &Logger{level: ParseLogLevel(os.Getenv("LOG_LEVEL"))}
}

// With returns a logger whose lines carry a component prefix.
func (l *Logger) With(prefix string) *Logger {
	return &Logger{level: l.level, prefix: prefix + " "}
}

func (l *Logger) logf(level LogLevel, format string, args ...any) {
	if level > l.level {
		return
	}
	log.Printf(levelTags[level]+l.prefix+format, args...)
}

func (l *Logger) Error(format string, args ...any) { l.logf(LogLevelError, format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.logf(LogLevelWarn, format, args...) }
func (l *Logger) Info(format string, args ...any)  { l.logf(LogLevelInfo, format, args...) }
func (l *Logger) Debug(format string, args ...any) { l.logf(LogLevelDebug, format, args...) }
func (l *Logger) Trace(format string, args ...any) { l.logf(LogLevelTrace, format, args...) }
