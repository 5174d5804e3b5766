// Package check validates trace files written by chromez.
//
// It enforces the exact framing chromez produces (a "[\n" header, objects
// separated by ",\n", no trailing comma, a closing "]") on top of plain JSON
// validity, and checks the pairing rules of async events.
package check

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
)

var (
	// ErrFraming reports a file that is not laid out the way chromez writes.
	ErrFraming = errors.New("trace framing")
	// ErrAsync reports an async event without a valid partner.
	ErrAsync = errors.New("async pairing")
)

// Event is one decoded trace object.
//
//nolint:govet // Field order follows the wire format.
type Event struct {
	Name string            `json:"name"`
	Cat  string            `json:"cat"`
	Ph   string            `json:"ph"`
	TS   float64           `json:"ts"`
	Dur  *float64          `json:"dur"`
	TTS  *float64          `json:"tts"`
	PID  uint64            `json:"pid"`
	TID  uint64            `json:"tid"`
	ID   json.RawMessage   `json:"id"`
	Args map[string]string `json:"args"`
}

// IDString returns the id as text whether it was written as a number or a
// string, or "" when absent.
func (e Event) IDString() string {
	if len(e.ID) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.ID, &s); err == nil {
		return s
	}
	return string(e.ID)
}

// Report summarizes a valid trace.
type Report struct {
	Events     []Event
	Phases     map[string]int
	Threads    []uint64
	AsyncPairs int
}

// Parse checks framing and decodes the events in file order.
func Parse(data []byte) ([]Event, error) {
	if !bytes.HasPrefix(data, []byte("[\n")) {
		return nil, fmt.Errorf("%w: missing \"[\\n\" header", ErrFraming)
	}
	if !bytes.HasSuffix(data, []byte("]")) {
		return nil, fmt.Errorf("%w: missing closing \"]\"", ErrFraming)
	}
	if bytes.HasSuffix(data, []byte(",\n]")) {
		return nil, fmt.Errorf("%w: trailing comma before \"]\"", ErrFraming)
	}
	if len(data) > len("[\n]") && !bytes.HasSuffix(data, []byte("}\n]")) {
		return nil, fmt.Errorf("%w: last object must be followed by a single newline", ErrFraming)
	}

	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFraming, err)
	}
	return events, nil
}

// Check parses data and validates the events.
func Check(data []byte) (Report, error) {
	events, err := Parse(data)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		Events: events,
		Phases: make(map[string]int),
	}

	threads := make(map[uint64]struct{})
	type asyncKey struct{ name, id string }
	open := make(map[asyncKey][]float64)

	for i, ev := range events {
		report.Phases[ev.Ph]++
		threads[ev.TID] = struct{}{}

		switch ev.Ph {
		case "X":
			if ev.Dur == nil {
				return report, fmt.Errorf("event %d (%s): complete event without dur", i, ev.Name)
			}
		case "b":
			key := asyncKey{ev.Name, ev.IDString()}
			if key.id == "" {
				return report, fmt.Errorf("%w: event %d (%s): async start without id", ErrAsync, i, ev.Name)
			}
			open[key] = append(open[key], ev.TS)
		case "e":
			key := asyncKey{ev.Name, ev.IDString()}
			starts := open[key]
			if len(starts) == 0 {
				return report, fmt.Errorf("%w: event %d (%s id=%s): end without start", ErrAsync, i, ev.Name, key.id)
			}
			start := starts[0]
			open[key] = starts[1:]
			if ev.TS < start {
				return report, fmt.Errorf("%w: event %d (%s id=%s): end ts %s before start ts %s",
					ErrAsync, i, ev.Name, key.id, formatTS(ev.TS), formatTS(start))
			}
			report.AsyncPairs++
		}
	}

	for key, starts := range open {
		if len(starts) > 0 {
			return report, fmt.Errorf("%w: %s id=%s: start without end", ErrAsync, key.name, key.id)
		}
	}

	for tid := range threads {
		report.Threads = append(report.Threads, tid)
	}
	sort.Slice(report.Threads, func(i, j int) bool { return report.Threads[i] < report.Threads[j] })

	return report, nil
}

// File checks the trace file at path.
func File(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("failed to read trace: %w", err)
	}
	return Check(data)
}

func formatTS(ts float64) string {
	return strconv.FormatFloat(ts, 'f', -1, 64)
}
