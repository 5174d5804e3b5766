package chromez

import (
	"bytes"
	"errors"
	"io"
	"runtime"
	"testing"
)

func BenchmarkDisabledTrace(b *testing.B) {
	b.Run("trace", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			Trace("test-op", func() {})
		}
	})

	b.Run("span", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			span := Begin("test-op")
			span.SetArg("key", "value")
			span.Finish()
		}
	})
}

func BenchmarkEnabledTrace(b *testing.B) {
	_, g := New().WithWriter(io.Discard).Init()
	defer g.Close()

	b.Run("trace", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			Trace("test-op", func() {})
		}
	})

	b.Run("local", func(b *testing.B) {
		var local Local
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			local.Emit(F("name", Text("test-op")))
		}
	})
}

func TestNoOpBehavior(t *testing.T) {
	ran := 0

	// Without a session the body still runs exactly once.
	Trace("op", func() { ran++ })
	got := TraceValue("op", func() int { ran++; return 7 })
	err := TraceErr("op", func() error { ran++; return errors.New("kept") })
	TraceAsync("op", "", func() { ran++ })

	if ran != 4 {
		t.Errorf("Expected 4 body runs, got %d", ran)
	}
	if got != 7 {
		t.Errorf("Expected value 7, got %d", got)
	}
	if err == nil || err.Error() != "kept" {
		t.Errorf("Expected body error to pass through, got %v", err)
	}

	span := Begin("op")
	if span != nil {
		t.Error("Expected nil span without a session")
	}

	// Nil spans are safe to use.
	span.SetArg("key", "value")
	span.Set("tid", Int(1))
	span.Finish()
	if span.Elapsed() != 0 {
		t.Error("Expected zero elapsed on nil span")
	}

	if BeginAsync("op", "1") != nil {
		t.Error("Expected nil async span without a session")
	}
}

func TestNoOpMemoryUsage(t *testing.T) {
	var m1, m2 runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m1)

	for i := 0; i < 1000; i++ {
		span := Begin(Key("test-op"))
		span.SetArg("key", "value")
		span.Finish()
	}

	runtime.GC()
	runtime.ReadMemStats(&m2)

	allocBytes := m2.TotalAlloc - m1.TotalAlloc
	allocsPerOp := allocBytes / 1000

	// The threshold here is generous to account for runtime overhead.
	if allocsPerOp > 64 {
		t.Errorf("disabled spans allocating too much memory: %d bytes per operation", allocsPerOp)
	}
}

func TestEnabledSessionDrainsUnderLoad(t *testing.T) {
	var out bytes.Buffer
	_, g := New().WithWriter(&out).Init()

	const n = 10000
	for i := 0; i < n; i++ {
		Trace("op", func() {})
	}

	if err := g.Close(); err != nil {
		t.Fatalf("Expected clean close, got %v", err)
	}
	if g.Written() != n {
		t.Errorf("Expected %d written, got %d", n, g.Written())
	}
	if g.Dropped() != 0 {
		t.Errorf("Expected no drops, got %d", g.Dropped())
	}
	if !bytes.HasSuffix(out.Bytes(), []byte("}\n]")) {
		t.Errorf("Expected closed array, got tail %q", out.Bytes()[out.Len()-10:])
	}
}
