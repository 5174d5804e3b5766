package chromez

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// message is one entry of the pipeline: an event or the termination signal.
type message struct {
	ev        Event
	terminate bool
}

// collector is an unbounded multi-producer, single-consumer FIFO feeding
// the writer goroutine. Producers never wait for the consumer.
//
//nolint:govet // Field alignment optimized for readability over memory efficiency
type collector struct {
	items   []message
	spare   []message
	notify  chan struct{}
	done    chan struct{}
	err     error // written by the consumer before done is closed
	dropped atomic.Int64
	written atomic.Int64
	mu      sync.Mutex
	closed  bool // set by the termination signal or a consumer failure
}

func newCollector(capacity int) *collector {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &collector{
		items:  make([]message, 0, capacity),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// push enqueues m. It reports false, and counts a drop, once the collector
// has been closed.
func (c *collector) push(m message) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		if !m.terminate {
			c.dropped.Add(1)
		}
		return false
	}
	c.items = append(c.items, m)
	if m.terminate {
		c.closed = true
	}
	c.mu.Unlock()

	select {
	case c.notify <- struct{}{}:
	default:
		// Consumer already has a pending wakeup.
	}
	return true
}

// take blocks until something is queued, then swaps the whole queue out.
// Must be called from the consumer goroutine only.
func (c *collector) take() []message {
	for {
		c.mu.Lock()
		if len(c.items) > 0 {
			batch := c.items
			c.items = c.spare
			c.spare = nil
			c.mu.Unlock()
			return batch
		}
		c.mu.Unlock()
		<-c.notify
	}
}

// recycle hands a drained batch back as the next spare buffer.
func (c *collector) recycle(batch []message) {
	clear(batch)

	// Only shrink if buffer is very oversized to avoid allocation churn.
	if cap(batch) > 4*DefaultQueueCapacity && len(batch) < cap(batch)/8 {
		newCap := cap(batch) / 4
		batch = make([]message, 0, newCap)
	}

	c.mu.Lock()
	if c.spare == nil {
		c.spare = batch[:0]
	}
	c.mu.Unlock()
}

// abort closes the collector after a consumer failure and drops whatever
// is still queued.
func (c *collector) abort() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	for i := range c.items {
		if !c.items[i].terminate {
			c.dropped.Add(1)
		}
	}
	c.items = nil
}

// start runs the consumer loop until the termination signal is drained or
// the writer fails.
func (c *collector) start(s *session) {
	defer close(c.done)
	defer running.CompareAndSwap(s, nil)
	defer func() {
		if r := recover(); r != nil {
			c.abort()
			c.err = fmt.Errorf("%w: %v", ErrConsumerPanic, r)
			s.log.Error("trace writer panicked", zap.Any("panic", r))
			if s.panicHook != nil {
				s.panicHook(r)
			}
		}
	}()

	c.err = c.consume(s)
	if c.err != nil {
		s.log.Error("trace writer failed", zap.String("output", s.describeOutput()), zap.Error(c.err))
		return
	}

	fields := []zap.Field{
		zap.String("output", s.describeOutput()),
		zap.Int64("written", c.written.Load()),
		zap.Int64("dropped", c.dropped.Load()),
	}
	if c.dropped.Load() > 0 {
		s.log.Warn("trace session finished with dropped events", fields...)
		return
	}
	s.log.Debug("trace session finished", fields...)
}

func (c *collector) consume(s *session) (err error) {
	out, closer, err := s.open()
	if err != nil {
		c.abort()
		return err
	}
	if closer != nil {
		defer func() {
			if cerr := closer.Close(); cerr != nil {
				err = multierr.Append(err, fmt.Errorf("close trace output: %w", cerr))
			}
		}()
	}

	w := newWriter(out, s.enc, s.bufferSize)
	if err := w.begin(); err != nil {
		c.abort()
		return err
	}

	for {
		batch := c.take()
		for i := range batch {
			if batch[i].terminate {
				return w.finish()
			}
			if err := w.write(&batch[i].ev); err != nil {
				for j := i; j < len(batch); j++ {
					if !batch[j].terminate {
						c.dropped.Add(1)
					}
				}
				c.abort()
				return err
			}
			c.written.Add(1)
		}
		c.recycle(batch)
	}
}
