// Package logger provides leveled diagnostic logging for docsearch.
// Messages go to stderr so that query results on stdout stay clean.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Level is a logging severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	mu     sync.RWMutex
	level            = LevelInfo
	output io.Writer = os.Stderr
)

// ParseLevel maps a config string to a Level. Unknown values map to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// SetLevel sets the minimum level that is written.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// SetOutput sets the output writer. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug logs pipeline detail.
func Debug(format string, args ...any) { logf(LevelDebug, "DEBUG", format, args...) }

// Info logs progress an operator would want to see.
func Info(format string, args ...any) { logf(LevelInfo, "INFO", format, args...) }

// Warn logs recoverable problems such as skipped rows.
func Warn(format string, args ...any) { logf(LevelWarn, "WARN", format, args...) }

// Error logs failures.
func Error(format string, args ...any) { logf(LevelError, "ERROR", format, args...) }

func logf(l Level, tag, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if l < level {
		return
	}
	fmt.Fprintf(output, "["+tag+"] "+format+"\n", args...)
}
