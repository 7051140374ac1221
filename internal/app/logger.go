// Package app holds cross-cutting session plumbing: the shared logger
// and the resolved home-directory layout.
package app

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Level orders log severities for threshold filtering.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// Logger is the leveled logger shared by all repair-loop components.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// writerLogger prints one prefixed line per record, dropping records
// below its threshold. Safe for concurrent use.
type writerLogger struct {
	mu  sync.Mutex
	out io.Writer
	min Level
}

// NewLogger returns a logger writing to out, suppressing records below min.
func NewLogger(out io.Writer, min Level) Logger {
	return &writerLogger{out: out, min: min}
}

func (l *writerLogger) write(level Level, format string, args ...any) {
	if level < l.min {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "%s: %s\n", level, fmt.Sprintf(format, args...))
}

func (l *writerLogger) Debug(format string, args ...any) { l.write(LevelDebug, format, args...) }
func (l *writerLogger) Info(format string, args ...any)  { l.write(LevelInfo, format, args...) }
func (l *writerLogger) Warn(format string, args ...any)  { l.write(LevelWarn, format, args...) }
func (l *writerLogger) Error(format string, args ...any) { l.write(LevelError, format, args...) }

var globalLogger Logger = NewLogger(os.Stderr, LevelInfo)

// SetLogger replaces the global logger. A nil logger is ignored.
func SetLogger(logger Logger) {
	if logger != nil {
		globalLogger = logger
	}
}

// GetLogger returns the current global logger.
func GetLogger() Logger {
	return globalLogger
}
