package chromez

import (
	"bytes"
	"sync"
	"testing"

	"github.com/zoobzio/chromez/internal/check"
)

func TestCollectorFIFO(t *testing.T) {
	c := newCollector(4)

	for _, name := range []string{"a", "b", "c"} {
		if !c.push(message{ev: Event{Name: name}}) {
			t.Fatalf("Expected push of %s to succeed", name)
		}
	}

	batch := c.take()
	if len(batch) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(batch))
	}
	for i, want := range []string{"a", "b", "c"} {
		if batch[i].ev.Name != want {
			t.Errorf("Expected %s at %d, got %s", want, i, batch[i].ev.Name)
		}
	}
}

func TestCollectorClosedByTerminate(t *testing.T) {
	c := newCollector(4)
	c.push(message{ev: Event{Name: "before"}})
	c.push(message{terminate: true})

	if c.push(message{ev: Event{Name: "after"}}) {
		t.Error("Expected push after terminate to fail")
	}
	if c.dropped.Load() != 1 {
		t.Errorf("Expected 1 dropped, got %d", c.dropped.Load())
	}

	// A second terminate is ignored, not counted.
	c.push(message{terminate: true})
	if c.dropped.Load() != 1 {
		t.Errorf("Expected terminate not to count as drop, got %d", c.dropped.Load())
	}

	batch := c.take()
	if len(batch) != 2 || !batch[1].terminate {
		t.Errorf("Expected event then terminate, got %+v", batch)
	}
}

func TestCollectorAbortDropsQueued(t *testing.T) {
	c := newCollector(4)
	c.push(message{ev: Event{Name: "a"}})
	c.push(message{ev: Event{Name: "b"}})

	c.abort()

	if c.dropped.Load() != 2 {
		t.Errorf("Expected 2 dropped, got %d", c.dropped.Load())
	}
	if c.push(message{ev: Event{Name: "c"}}) {
		t.Error("Expected push after abort to fail")
	}
	if c.dropped.Load() != 3 {
		t.Errorf("Expected 3 dropped, got %d", c.dropped.Load())
	}
}

func TestCollectorRecycleShrinks(t *testing.T) {
	c := newCollector(1)
	big := make([]message, 1, 8*DefaultQueueCapacity)

	c.recycle(big)

	if cap(c.spare) != 2*DefaultQueueCapacity {
		t.Errorf("Expected oversized batch to shrink, got cap %d", cap(c.spare))
	}
}

func TestCollectorConcurrentProducers(t *testing.T) {
	var out bytes.Buffer
	s := New().WithWriter(&out).WithProcessID(1).session()

	go s.collector.start(s)

	const producers = 8
	const perProducer = 500

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(tid uint64) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				s.collector.push(message{ev: Event{Name: "op", TID: tid, PID: 1}})
			}
		}(uint64(p + 1))
	}
	wg.Wait()

	s.collector.push(message{terminate: true})
	<-s.collector.done

	if s.collector.err != nil {
		t.Fatalf("Unexpected consumer error: %v", s.collector.err)
	}
	if got := s.collector.written.Load(); got != producers*perProducer {
		t.Errorf("Expected %d written, got %d", producers*perProducer, got)
	}

	report, err := check.Check(out.Bytes())
	if err != nil {
		t.Fatalf("Trace is not valid: %v", err)
	}
	if len(report.Threads) != producers {
		t.Errorf("Expected %d threads, got %d", producers, len(report.Threads))
	}
}
