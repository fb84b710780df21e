// Package logger is the process-wide verbose log. Nothing is written unless
// --verbose switched it on; output goes to stderr so it never mixes with
// answers printed on stdout.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose switches logging on or off.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether logging is on.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects the log. Tests point it at a buffer.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// emit holds the write lock so concurrent lines never interleave.
func emit(line func(w io.Writer)) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		line(output)
	}
}

func leveled(level, format string, args []any) {
	emit(func(w io.Writer) {
		fmt.Fprintf(w, "["+level+"] "+format+"\n", args...)
	})
}

// Debug logs detail useful when following a single run.
func Debug(format string, args ...any) { leveled("DEBUG", format, args) }

// Info logs progress of long operations.
func Info(format string, args ...any) { leveled("INFO", format, args) }

// Warn logs a recoverable problem.
func Warn(format string, args ...any) { leveled("WARN", format, args) }

// Section starts a titled block, e.g. one per ingestion run.
func Section(name string) {
	emit(func(w io.Writer) { fmt.Fprintf(w, "\n=== %s ===\n", name) })
}

// Record logs one event as key=value pairs. Values with spaces, quotes or
// '=' are quoted; an unpaired trailing key is dropped.
func Record(event string, kv ...any) {
	emit(func(w io.Writer) {
		var b strings.Builder
		b.WriteString("[RECORD] ")
		b.WriteString(event)
		for i := 0; i+1 < len(kv); i += 2 {
			fmt.Fprintf(&b, " %v=%s", kv[i], formatValue(kv[i+1]))
		}
		fmt.Fprintln(w, b.String())
	})
}

func formatValue(v any) string {
	s := fmt.Sprint(v)
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return fmt.Sprintf("%q", s)
	}
	return s
}
