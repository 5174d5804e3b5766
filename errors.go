package chromez

import "errors"

var (
	// ErrAlreadyInitialized is the panic value of a second Init while a
	// session is still active.
	ErrAlreadyInitialized = errors.New("chromez: a tracing session is already active")

	// ErrConsumerPanic wraps a panic recovered on the writer goroutine.
	ErrConsumerPanic = errors.New("chromez: writer goroutine panicked")
)
