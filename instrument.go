package chromez

import (
	"strconv"
	"sync/atomic"
)

// The helpers below are the wrapping protocol for instrumented functions:
// look up the session, run the body untouched when there is none, otherwise
// time the body and record it. A code generator can emit calls to them
// directly.

var nextID atomic.Uint64

// NextID returns a process-unique correlation id for async pairs.
func NextID() string {
	return strconv.FormatUint(nextID.Add(1), 10)
}

// Trace runs fn and records it as a Complete event named name.
// The event is recorded even if fn panics.
func Trace(name Key, fn func(), fields ...Field) {
	c, ok := Current()
	if !ok {
		fn()
		return
	}

	span := c.Begin(name, fields...)
	defer span.Finish()
	fn()
}

// TraceValue is Trace for a body that returns a value.
func TraceValue[T any](name Key, fn func() T, fields ...Field) T {
	c, ok := Current()
	if !ok {
		return fn()
	}

	span := c.Begin(name, fields...)
	defer span.Finish()
	return fn()
}

// TraceErr is Trace for a body that returns an error. A non-nil error is
// recorded in the "error" arg.
func TraceErr(name Key, fn func() error, fields ...Field) error {
	c, ok := Current()
	if !ok {
		return fn()
	}

	span := c.Begin(name, fields...)
	defer span.Finish()

	err := fn()
	if err != nil {
		span.SetArg("error", err.Error())
	}
	return err
}

// TraceAsync runs fn between an AsyncStart and an AsyncEnd event sharing id.
// An empty id gets one from NextID.
func TraceAsync(name Key, id string, fn func(), fields ...Field) {
	c, ok := Current()
	if !ok {
		fn()
		return
	}
	if id == "" {
		id = NextID()
	}

	span := c.BeginAsync(name, id, fields...)
	defer span.Finish()
	fn()
}
