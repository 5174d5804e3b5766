package chromez

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

// active is the process-wide session slot. It is only ever swapped with
// CompareAndSwap: nil -> session by Init, session -> nil by the guard.
var active atomic.Pointer[session]

// running holds the session whose writer goroutine has not exited yet. It
// outlives active while a released session drains, so Init cannot start a
// second writer on the same output.
var running atomic.Pointer[session]

// session is one tracing run from Init to guard release.
// Immutable after Init apart from the collector.
//
//nolint:govet // Field order optimized for functionality over memory
type session struct {
	start      time.Time
	clock      clockz.Clock
	collector  *collector
	log        *zap.Logger
	panicHook  func(r any)
	writer     io.Writer
	output     string
	category   string
	enc        encoder
	pid        uint64
	bufferSize int
}

// open returns the destination of the trace. The closer is nil when the
// caller supplied its own writer.
func (s *session) open() (io.Writer, io.Closer, error) {
	if s.writer != nil {
		return s.writer, nil, nil
	}
	f, err := os.Create(s.output)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, f, nil
}

func (s *session) describeOutput() string {
	if s.writer != nil {
		return "<writer>"
	}
	return s.output
}

// stop withdraws the session from the global slot and queues the
// termination signal behind every event already recorded.
func (s *session) stop() {
	active.CompareAndSwap(s, nil)
	s.collector.push(message{terminate: true})
}

// Context is the tracing session as seen by one goroutine.
// The zero Context is inactive and records nothing.
type Context struct {
	s   *session
	tid uint64
}

// Current returns the active session for the calling goroutine, or false if
// tracing was never initialized or has already been shut down.
// It performs a single atomic load.
func Current() (Context, bool) {
	s := active.Load()
	if s == nil {
		return Context{}, false
	}
	return Context{s: s}, true
}

// Record hands ev to the active session. Without one it does nothing.
func Record(ev Event) {
	if c, ok := Current(); ok {
		c.Record(ev)
	}
}

// Emit builds an event from fields and records it. The event defaults to an
// instant at the current time; fields may override any of that.
func Emit(fields ...Field) {
	if c, ok := Current(); ok {
		c.Record(c.Event(fields...))
	}
}

// Active reports whether c still belongs to the live session.
func (c Context) Active() bool {
	return c.s != nil && active.Load() == c.s
}

// Start returns the instant all timestamps are relative to.
func (c Context) Start() time.Time {
	if c.s == nil {
		return time.Time{}
	}
	return c.s.start
}

// Elapsed returns the time since the session start on the session clock.
func (c Context) Elapsed() time.Duration {
	if c.s == nil {
		return 0
	}
	return c.s.clock.Now().Sub(c.s.start)
}

// ProcessID returns the pid stamped on events.
func (c Context) ProcessID() uint64 {
	if c.s == nil {
		return 0
	}
	return c.s.pid
}

// ThreadID returns the id stamped on events recorded through c. Contexts
// obtained from a Local carry a cached id. Contexts from Current are not
// pinned to a goroutine and ask the calling goroutine each time, which
// costs a runtime.Stack parse per event; hot loops should record through a
// Local.
func (c Context) ThreadID() uint64 {
	if c.tid != 0 {
		return c.tid
	}
	return goroutineID()
}

// Event builds an event timestamped now and applies fields to it.
func (c Context) Event(fields ...Field) Event {
	ev := Event{Timestamp: c.Elapsed()}
	ev.Apply(fields...)
	return ev
}

// Record stamps pid, tid and the default category where they are unset and
// queues ev for the writer. It never blocks on the writer.
// ev.Args is handed over with the event and must not be modified afterwards.
func (c Context) Record(ev Event) {
	if c.s == nil {
		return
	}
	if ev.PID == 0 {
		ev.PID = c.s.pid
	}
	if ev.TID == 0 {
		ev.TID = c.ThreadID()
	}
	if ev.Category == "" {
		ev.Category = c.s.category
	}
	c.s.collector.push(message{ev: ev})
}
