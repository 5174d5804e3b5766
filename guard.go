package chromez

import (
	"context"
	"sync"
)

// Guard ends a tracing session. Closing it stops new events from being
// accepted, waits for the writer to drain everything already recorded, and
// returns the writer's error, if any.
//
// Only the first Close or Shutdown signals the writer; later calls wait for
// the same result. A nil Guard is a no-op.
type Guard struct {
	s    *session
	once sync.Once
}

// Close shuts the session down and waits for the writer without a deadline.
func (g *Guard) Close() error {
	return g.Shutdown(context.Background())
}

// Shutdown shuts the session down and waits for the writer until ctx is
// done. If ctx ends first the writer keeps draining in the background and
// ctx.Err() is returned.
func (g *Guard) Shutdown(ctx context.Context) error {
	if g == nil || g.s == nil {
		return nil
	}

	g.once.Do(g.s.stop)

	select {
	case <-g.s.collector.done:
		return g.s.collector.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once the writer goroutine has exited.
func (g *Guard) Done() <-chan struct{} {
	if g == nil || g.s == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return g.s.collector.done
}

// Written returns the number of events handed to the writer.
func (g *Guard) Written() int64 {
	if g == nil || g.s == nil {
		return 0
	}
	return g.s.collector.written.Load()
}

// Dropped returns the number of events recorded after the session stopped
// accepting them.
func (g *Guard) Dropped() int64 {
	if g == nil || g.s == nil {
		return 0
	}
	return g.s.collector.dropped.Load()
}
