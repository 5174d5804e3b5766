// Package integration exercises chromez end to end: real sessions writing
// real files, read back and validated with the trace checker.
package integration

import (
	"path/filepath"
	"testing"

	"github.com/zoobzio/chromez"
	"github.com/zoobzio/chromez/internal/check"
)

// TraceFile is a session writing into a temp file for one test.
type TraceFile struct {
	t     *testing.T
	Ctx   chromez.Context
	Guard *chromez.Guard
	Path  string
}

// StartTrace initializes a session on b writing into a fresh temp file.
// The guard is released when the test ends if the test did not do so.
func StartTrace(t *testing.T, b *chromez.Builder) *TraceFile {
	t.Helper()

	path := filepath.Join(t.TempDir(), "trace.json")
	c, g := b.WithOutput(path).Init()
	t.Cleanup(func() {
		_ = g.Close()
	})
	return &TraceFile{t: t, Ctx: c, Guard: g, Path: path}
}

// Finish releases the guard and validates the file.
func (f *TraceFile) Finish() check.Report {
	f.t.Helper()

	if err := f.Guard.Close(); err != nil {
		f.t.Fatalf("Guard close failed: %v", err)
	}
	report, err := check.File(f.Path)
	if err != nil {
		f.t.Fatalf("Trace file is invalid: %v", err)
	}
	return report
}

// CountByName groups events by name.
func CountByName(report check.Report) map[string]int {
	counts := make(map[string]int)
	for _, ev := range report.Events {
		counts[ev.Name]++
	}
	return counts
}

// AssertCount fails the test unless the trace holds want events named name.
func AssertCount(t *testing.T, report check.Report, name string, want int) {
	t.Helper()
	if got := CountByName(report)[name]; got != want {
		t.Errorf("Expected %d %q events, got %d", want, name, got)
	}
}
