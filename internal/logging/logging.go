// Package logging centralizes the verbose-gated log.Printf helpers the
// teacher inlines directly in main.go (cmd/geotiff2pmtiles/main.go checks
// a local `verbose bool` before nearly every log.Printf call). Pulling that
// check into a small type means cmd/pointtiler and internal/workflow share
// one implementation instead of re-testing a flag at every call site.
package logging

import (
	"fmt"
	"log"
	"os"
)

// Logger gates log.Printf calls behind a verbose flag, matching the
// teacher's "if verbose { log.Printf(...) }" idiom throughout main.go.
type Logger struct {
	Verbose bool
}

// New returns a Logger with the given verbosity.
func New(verbose bool) *Logger {
	return &Logger{Verbose: verbose}
}

// Printf logs unconditionally through the standard logger, for messages
// the teacher always prints (stage boundaries, warnings).
func (l *Logger) Printf(format string, args ...any) {
	log.Printf(format, args...)
}

// Verbosef logs only when Verbose is set, for the teacher's per-stage
// diagnostic detail (zoom ranges, memory limits, timings).
func (l *Logger) Verbosef(format string, args ...any) {
	if l == nil || !l.Verbose {
		return
	}
	log.Printf(format, args...)
}

// Fatalf logs through log.Fatalf and exits, for the single unrecoverable
// error the driver reports per spec §6.1 ("non-zero exit, one-line stderr
// error"). Kept distinct from Printf so cmd/pointtiler's main can defer to
// it without importing "log" itself.
func (l *Logger) Fatalf(format string, args ...any) {
	log.Fatalf(format, args...)
}

// Summary prints the teacher's aligned settings-summary table
// ("  %-14s value", fmt.Printf to stdout, not through the logger) verbatim
// for one label/value pair.
func Summary(label, format string, args ...any) {
	fmt.Printf("  %-14s %s\n", label, fmt.Sprintf(format, args...))
}

// Errorln prints a one-line error to stderr, the shape spec §6.1 requires
// for a failing run ("non-zero exit code with a one-line error on stderr").
func Errorln(err error) {
	fmt.Fprintf(os.Stderr, "point-tiler: %v\n", err)
}
