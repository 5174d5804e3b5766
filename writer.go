package chromez

import (
	"bufio"
	"fmt"
	"io"
)

var (
	header    = []byte("[\n")
	footer    = []byte("]")
	separator = []byte(",\n")
	lastLine  = []byte("\n")
)

// writer renders an event stream of unknown length as a JSON array.
// The most recent event is held back until the next one arrives, so the
// separator is only ever written between two events and never after the
// last one.
type writer struct {
	buf        *bufio.Writer
	enc        encoder
	pending    []byte
	scratch    []byte
	hasPending bool
}

func newWriter(out io.Writer, enc encoder, size int) *writer {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &writer{
		buf: bufio.NewWriterSize(out, size),
		enc: enc,
	}
}

// begin writes the array opening.
func (w *writer) begin() error {
	if _, err := w.buf.Write(header); err != nil {
		return fmt.Errorf("write trace header: %w", err)
	}
	return nil
}

// write encodes ev as the new pending event and emits the previous one
// followed by a separator.
func (w *writer) write(ev *Event) error {
	next, err := w.enc.appendEvent(w.scratch[:0], ev)
	if err != nil {
		return err
	}

	if w.hasPending {
		if _, err := w.buf.Write(w.pending); err != nil {
			return fmt.Errorf("write trace event: %w", err)
		}
		if _, err := w.buf.Write(separator); err != nil {
			return fmt.Errorf("write trace event: %w", err)
		}
	}

	// Swap buffers: the old pending bytes become scratch for the next encode.
	w.pending, w.scratch = next, w.pending
	w.hasPending = true
	return nil
}

// finish emits the pending event without a separator, closes the array and
// flushes.
func (w *writer) finish() error {
	if w.hasPending {
		if _, err := w.buf.Write(w.pending); err != nil {
			return fmt.Errorf("write trace event: %w", err)
		}
		if _, err := w.buf.Write(lastLine); err != nil {
			return fmt.Errorf("write trace event: %w", err)
		}
		w.hasPending = false
	}
	if _, err := w.buf.Write(footer); err != nil {
		return fmt.Errorf("write trace footer: %w", err)
	}
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("flush trace output: %w", err)
	}
	return nil
}
