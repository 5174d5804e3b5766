package chromez

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func writeAll(t *testing.T, events ...Event) string {
	t.Helper()

	var out bytes.Buffer
	w := newWriter(&out, newEncoder(""), 0)
	if err := w.begin(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	for i := range events {
		if err := w.write(&events[i]); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := w.finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	return out.String()
}

func TestWriterEmpty(t *testing.T) {
	if got := writeAll(t); got != "[\n]" {
		t.Errorf("Expected %q, got %q", "[\n]", got)
	}
}

func TestWriterSingleEvent(t *testing.T) {
	got := writeAll(t, Event{Name: "a", PID: 1, TID: 1})

	want := "[\n" + `{"name":"a","ph":"i","ts":0,"pid":1,"tid":1}` + "\n]"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestWriterSeparators(t *testing.T) {
	got := writeAll(t, Event{Name: "a"}, Event{Name: "b"}, Event{Name: "c"})

	lines := strings.Split(got, "\n")
	// "[", three objects, "]"
	if len(lines) != 5 {
		t.Fatalf("Expected 5 lines, got %d: %q", len(lines), got)
	}
	if lines[0] != "[" || lines[4] != "]" {
		t.Errorf("Unexpected framing: %q", got)
	}
	for i, name := range []string{"a", "b", "c"} {
		line := lines[i+1]
		if !strings.Contains(line, `"name":"`+name+`"`) {
			t.Errorf("Expected %s on line %d, got %q", name, i+1, line)
		}
		last := i == 2
		if strings.HasSuffix(line, ",") == last {
			t.Errorf("Unexpected separator on line %d: %q", i+1, line)
		}
	}
}

func TestWriterReusesBuffers(t *testing.T) {
	var out bytes.Buffer
	w := newWriter(&out, newEncoder(""), 0)
	_ = w.begin()

	long := Event{Name: strings.Repeat("x", 64)}
	short := Event{Name: "y"}
	_ = w.write(&long)
	_ = w.write(&short)
	_ = w.write(&long)
	_ = w.finish()

	// A short event encoded into the previous long buffer must not keep
	// stale bytes.
	if strings.Contains(out.String(), `"name":"y"`+`x`) {
		t.Errorf("Stale bytes leaked into output: %q", out.String())
	}
	if strings.Count(out.String(), strings.Repeat("x", 64)) != 2 {
		t.Errorf("Expected long event twice: %q", out.String())
	}
}

func TestWriterFlushError(t *testing.T) {
	diskFull := errors.New("disk full")
	w := newWriter(failingWriter{err: diskFull}, newEncoder(""), 16)

	if err := w.begin(); err != nil {
		t.Fatalf("Expected header to fit in buffer, got %v", err)
	}
	err := w.finish()
	if !errors.Is(err, diskFull) {
		t.Errorf("Expected disk full from flush, got %v", err)
	}
}
