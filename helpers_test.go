package chromez

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zoobzio/chromez/internal/check"
)

// startSession initializes a session writing into a temp file and makes
// sure it is released when the test ends.
func startSession(t *testing.T, b *Builder) (Context, *Guard, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "trace.json")
	c, g := b.WithOutput(path).Init()
	t.Cleanup(func() {
		_ = g.Close()
	})
	return c, g, path
}

// closeAndRead releases the guard and returns the raw file and its events.
func closeAndRead(t *testing.T, g *Guard, path string) ([]byte, []check.Event) {
	t.Helper()

	if err := g.Close(); err != nil {
		t.Fatalf("Expected clean close, got %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read trace: %v", err)
	}
	events, err := check.Parse(data)
	if err != nil {
		t.Fatalf("Trace is not well formed: %v\n%s", err, data)
	}
	return data, events
}
