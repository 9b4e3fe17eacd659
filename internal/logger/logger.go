// Package logger writes the --verbose trace of the reveal CLI to stderr.
// A locator can be followed through parsing, adapter dispatch and each
// pipeline stage. Nothing is written unless verbose mode is on.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Level tags a trace line.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelStage Level = "STAGE"
)

var (
	mu      sync.Mutex
	enabled bool
	sink    io.Writer = os.Stderr
)

// SetVerbose turns the trace on or off.
func SetVerbose(v bool) {
	mu.Lock()
	enabled = v
	mu.Unlock()
}

// IsVerbose reports whether the trace is on.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// SetOutput redirects the trace. Tests pass a buffer; nil restores stderr.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	mu.Lock()
	sink = w
	mu.Unlock()
}

// Debug traces pipeline detail.
func Debug(format string, args ...any) { emit(LevelDebug, format, args...) }

// Info traces lifecycle events such as servers starting.
func Info(format string, args ...any) { emit(LevelInfo, format, args...) }

// Warn traces recoverable problems. The command still succeeds.
func Warn(format string, args ...any) { emit(LevelWarn, format, args...) }

// Stage traces how many items a pipeline stage kept.
func Stage(name string, before, after int) {
	emit(LevelStage, "%-10s %d -> %d", name, before, after)
}

// Section opens a titled group of trace lines.
func Section(name string) {
	write(func(w io.Writer) {
		fmt.Fprintf(w, "\n=== %s ===\n", name)
	})
}

func emit(level Level, format string, args ...any) {
	write(func(w io.Writer) {
		msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
		fmt.Fprintf(w, "[%s] %s\n", level, msg)
	})
}

// write holds the lock for the whole line so concurrent batch workers do
// not interleave output.
func write(fn func(io.Writer)) {
	mu.Lock()
	defer mu.Unlock()
	if enabled {
		fn(sink)
	}
}
