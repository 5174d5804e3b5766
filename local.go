package chromez

// Local caches the current Context for one goroutine, including that
// goroutine's id, so hot loops skip the id lookup on every event.
//
// A Local must not be shared between goroutines. The zero value is ready to
// use. It refreshes itself whenever the process-wide session changes, so it
// follows shutdown and re-initialization.
type Local struct {
	s   *session
	tid uint64
}

// Current returns the cached Context, refreshing it if the session changed.
func (l *Local) Current() (Context, bool) {
	s := active.Load()
	if s == nil {
		l.s, l.tid = nil, 0
		return Context{}, false
	}
	if s != l.s {
		l.s = s
		l.tid = goroutineID()
	}
	return Context{s: s, tid: l.tid}, true
}

// Record records ev through the cached Context.
func (l *Local) Record(ev Event) {
	if c, ok := l.Current(); ok {
		c.Record(ev)
	}
}

// Emit builds and records an event through the cached Context.
func (l *Local) Emit(fields ...Field) {
	if c, ok := l.Current(); ok {
		c.Record(c.Event(fields...))
	}
}
