package benchmarks

import (
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/zoobzio/chromez"
)

// BenchmarkConcurrentTrace measures Trace under concurrent producers.
func BenchmarkConcurrentTrace(b *testing.B) {
	concurrencyLevels := []int{1, 10, 50, 100}

	for _, concurrency := range concurrencyLevels {
		b.Run(fmt.Sprintf("concurrent-%d", concurrency), func(b *testing.B) {
			_, g := chromez.New().WithWriter(io.Discard).Init()
			defer g.Close()

			perWorker := b.N / concurrency
			if perWorker == 0 {
				perWorker = 1
			}

			b.ReportAllocs()
			b.ResetTimer()

			var wg sync.WaitGroup
			for i := 0; i < concurrency; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < perWorker; j++ {
						chromez.Trace("worker-op", func() {})
					}
				}()
			}
			wg.Wait()
		})
	}
}

// BenchmarkRecordPaths compares the ways of recording one event.
func BenchmarkRecordPaths(b *testing.B) {
	_, g := chromez.New().WithWriter(io.Discard).Init()
	defer g.Close()

	b.Run("record", func(b *testing.B) {
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				chromez.Record(chromez.Event{Name: "record"})
			}
		})
	})

	b.Run("local", func(b *testing.B) {
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			var local chromez.Local
			for pb.Next() {
				local.Record(chromez.Event{Name: "local"})
			}
		})
	})

	b.Run("span-with-args", func(b *testing.B) {
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				span := chromez.Begin("span")
				span.SetArg("key", "value")
				span.Finish()
			}
		})
	})
}

// BenchmarkEncode measures serialization of one event.
func BenchmarkEncode(b *testing.B) {
	ev := chromez.Event{
		Name:  "encode",
		Phase: chromez.PhaseComplete,
		PID:   1,
		TID:   1,
		Args:  map[string]string{"k": "v"},
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := chromez.Encode(ev); err != nil {
			b.Fatal(err)
		}
	}
}
