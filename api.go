// Package chromez provides a minimal in-process execution tracer that writes
// Chrome Trace Event Format files.
//
// chromez focuses on recording function boundaries from many goroutines with
// predictable overhead. Events are handed to a single writer goroutine which
// owns the output file, so call sites never touch I/O and never wait on it.
// The resulting file loads in chrome://tracing and Perfetto.
//
// Core Components:.
//   - Builder: Configures and starts the process-wide tracing session.
//   - Context: The session as seen by one goroutine.
//   - Local: A per-goroutine cache of the current Context.
//   - Guard: Drains the pipeline and closes the output on release.
//   - Span: A begin/finish helper for instrumented code.
//
// Basic Usage:.
//
//	_, guard := chromez.New().WithOutput("trace.json").Init()
//	defer guard.Close()
//
//	// Wrap a function body.
//	chromez.Trace("load-config", func() {
//		loadConfig()
//	})
//
//	// Or bracket it manually.
//	span := chromez.Begin("parse")
//	defer span.Finish()
//
//	// Async work is recorded as a begin/end pair sharing an id.
//	chromez.TraceAsync("fetch", chromez.NextID(), fetch)
//
// Disabled Tracing:.
//
// When no session is active every recording call is a silent no-op, and the
// helpers run the wrapped body unmodified. Instrumented code never needs to
// check whether tracing is on.
//
// Thread Safety:.
//
// Current, Record and all helpers are safe for concurrent use by any number
// of goroutines. Events from one goroutine keep their program order in the
// output; events from different goroutines are interleaved in arrival order.
// Viewers correlate them by tid.
//
// Hot Loops:.
//
// Current, Record, Emit and the helpers resolve the goroutine id on every
// event by parsing the runtime.Stack header. A Local resolves it once per
// session and goroutine, so loops that record many events should keep one:
//
//	var local chromez.Local
//	for _, item := range items {
//		local.Emit(chromez.F("name", chromez.Text("item")))
//	}
//
// Output Format:.
//
// The file starts with "[\n", holds one JSON object per event separated by
// ",\n", ends the last object with "\n" and closes with "]". A session with no
// events produces "[\n]".
//
// Resource Cleanup:.
//
// Call Guard.Close exactly where tracing should end. It stops accepting
// events, waits until everything queued has been written, and reports any I/O
// failure of the writer goroutine.
package chromez

// Key represents an event or argument name.
type Key = string
