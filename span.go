package chromez

import (
	"maps"
	"sync"
	"time"
)

// Span brackets a unit of work. A synchronous span is recorded as one
// Complete event on Finish; an async span records its start immediately and
// its end on Finish.
//
// Span methods are safe for concurrent use and are no-ops on a nil Span,
// which is what Begin returns when tracing is off.
type Span struct {
	ctx      Context
	ev       Event
	started  time.Duration
	mu       sync.Mutex // Protects ev from concurrent writes.
	async    bool
	finished bool
}

// Begin starts a Complete span on the current session.
// Returns nil if no session is active.
func Begin(name Key, fields ...Field) *Span {
	c, ok := Current()
	if !ok {
		return nil
	}
	return c.Begin(name, fields...)
}

// BeginAsync records an AsyncStart event and returns the span whose Finish
// records the matching AsyncEnd. An empty id, with no "id" field either,
// gets one from NextID. Returns nil if no session is active.
func BeginAsync(name Key, id string, fields ...Field) *Span {
	c, ok := Current()
	if !ok {
		return nil
	}
	return c.BeginAsync(name, id, fields...)
}

// Begin starts a Complete span on c.
func (c Context) Begin(name Key, fields ...Field) *Span {
	if c.s == nil {
		return nil
	}
	s := c.newSpan(name, fields)
	s.ev.Phase = PhaseComplete
	return s
}

// BeginAsync records an AsyncStart event on c and returns the open span.
func (c Context) BeginAsync(name Key, id string, fields ...Field) *Span {
	if c.s == nil {
		return nil
	}
	s := c.newSpan(name, fields)
	s.async = true
	if id != "" {
		s.ev.ID = id
	}
	if s.ev.ID == "" {
		s.ev.ID = NextID()
	}

	start := s.ev
	start.Phase = PhaseAsyncStart
	start.Args = maps.Clone(s.ev.Args)
	c.Record(start)
	return s
}

func (c Context) newSpan(name Key, fields []Field) *Span {
	s := &Span{ctx: c, ev: Event{Name: name}}
	s.ev.Apply(fields...)
	if s.ev.TID == 0 {
		s.ev.TID = c.ThreadID()
	}
	s.started = c.Elapsed()
	s.ev.Timestamp = s.started
	return s
}

// SetArg adds an argument to the event recorded on Finish.
// No-op if span is already finished.
func (s *Span) SetArg(key Key, value string) {
	s.Set(key, Text(value))
}

// Set applies a field to the event recorded on Finish. Reserved names such
// as "tid" or "cat" update the structured fields.
// No-op if span is already finished.
func (s *Span) Set(key Key, v Value) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return
	}
	s.ev.Set(key, v)
}

// Finish records the span. Safe to call multiple times - subsequent calls
// are no-ops.
func (s *Span) Finish() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return
	}
	s.finished = true

	now := s.ctx.Elapsed()
	if s.async {
		s.ev.Phase = PhaseAsyncEnd
		s.ev.Timestamp = now
	} else {
		s.ev.Phase = PhaseComplete
		s.ev.Timestamp = s.started
		s.ev.Duration = now - s.started
	}

	// Args now belong to the writer.
	s.ctx.Record(s.ev)
}

// Elapsed returns the time since the span began.
func (s *Span) Elapsed() time.Duration {
	if s == nil {
		return 0
	}
	return s.ctx.Elapsed() - s.started
}
