package chromez

import (
	"fmt"
	"strings"
	"time"
)

// Phase is the semantic kind of an event. It decides which timestamp fields
// apply and how a viewer renders the event.
type Phase uint8

const (
	// PhaseInstant marks a single point in time.
	PhaseInstant Phase = iota
	// PhaseComplete is a span with a start timestamp and a duration.
	PhaseComplete
	// PhaseAsyncStart opens an async span matched by correlation id.
	PhaseAsyncStart
	// PhaseAsyncEnd closes an async span matched by correlation id.
	PhaseAsyncEnd
)

// String returns the Trace Event Format phase code.
func (p Phase) String() string {
	switch p {
	case PhaseComplete:
		return "X"
	case PhaseAsyncStart:
		return "b"
	case PhaseAsyncEnd:
		return "e"
	default:
		return "i"
	}
}

// IsAsync reports whether p is one half of an async pair.
func (p Phase) IsAsync() bool {
	return p == PhaseAsyncStart || p == PhaseAsyncEnd
}

// ParsePhase converts a phase code or name to a Phase.
func ParsePhase(s string) (Phase, error) {
	switch strings.ToLower(s) {
	case "i", "instant":
		return PhaseInstant, nil
	case "x", "complete":
		return PhaseComplete, nil
	case "b", "async_start", "asyncstart":
		return PhaseAsyncStart, nil
	case "e", "async_end", "asyncend":
		return PhaseAsyncEnd, nil
	default:
		return PhaseInstant, fmt.Errorf("invalid phase: %q (expected: X|i|b|e)", s)
	}
}

// Event is one recordable occurrence.
//
//nolint:govet // Field order follows the wire format.
type Event struct {
	Args            map[Key]string
	Name            string
	Category        string
	ID              string        // correlation id for async pairs
	Timestamp       time.Duration // since session start
	Duration        time.Duration // Complete only
	ThreadTimestamp time.Duration // zero means absent
	PID             uint64
	TID             uint64
	Phase           Phase
}

// Field is a named value applied to an Event with Set.
type Field struct {
	Key   Key
	Value Value
}

// F builds a Field.
func F(key Key, value Value) Field {
	return Field{Key: key, Value: value}
}

// Arg builds a Field that always lands in Args unless key is reserved.
func Arg(key Key, value string) Field {
	return Field{Key: key, Value: Text(value)}
}

// setter applies a value to a structured event field.
// It reports false when the value kind does not fit the field.
type setter func(ev *Event, v Value) bool

// reserved maps field names to structured Event fields. Every other name,
// and every reserved name given a value of the wrong kind, becomes an arg.
var reserved = map[Key]setter{
	"name":     setName,
	"cat":      setCategory,
	"category": setCategory,
	"id":       setID,
	"ts":       setTimestamp,
	"dur":      setDuration,
	"tts":      setThreadTimestamp,
	"pid":      setPID,
	"tid":      setTID,
	"ph":       setPhase,
}

// IsReserved reports whether key maps to a structured field.
func IsReserved(key Key) bool {
	_, ok := reserved[key]
	return ok
}

// Set applies a single named value to the event.
func (e *Event) Set(key Key, v Value) {
	if set, ok := reserved[key]; ok && set(e, v) {
		return
	}
	e.SetArg(key, v.String())
}

// Apply sets every field in order. Later fields overwrite earlier ones.
func (e *Event) Apply(fields ...Field) {
	for _, f := range fields {
		e.Set(f.Key, f.Value)
	}
}

// SetArg stores a stringified argument. Existing keys are overwritten.
func (e *Event) SetArg(key Key, value string) {
	if e.Args == nil {
		e.Args = make(map[Key]string)
	}
	e.Args[key] = value
}

func setName(ev *Event, v Value) bool {
	if v.kind != KindText && v.kind != KindID {
		return false
	}
	ev.Name = v.text
	return true
}

func setCategory(ev *Event, v Value) bool {
	if v.kind != KindText && v.kind != KindID {
		return false
	}
	ev.Category = v.text
	return true
}

func setID(ev *Event, v Value) bool {
	switch v.kind {
	case KindID, KindText:
		ev.ID = v.text
		return true
	case KindNumber:
		u, ok := v.Uint()
		if !ok {
			return false
		}
		ev.ID = fmt.Sprintf("%d", u)
		return true
	}
	return false
}

func setTimestamp(ev *Event, v Value) bool {
	d, ok := v.Micros()
	if ok {
		ev.Timestamp = d
	}
	return ok
}

func setDuration(ev *Event, v Value) bool {
	d, ok := v.Micros()
	if ok {
		ev.Duration = d
	}
	return ok
}

func setThreadTimestamp(ev *Event, v Value) bool {
	d, ok := v.Micros()
	if ok {
		ev.ThreadTimestamp = d
	}
	return ok
}

func setPID(ev *Event, v Value) bool {
	u, ok := v.Uint()
	if ok {
		ev.PID = u
	}
	return ok
}

func setTID(ev *Event, v Value) bool {
	u, ok := v.Uint()
	if ok {
		ev.TID = u
	}
	return ok
}

func setPhase(ev *Event, v Value) bool {
	switch v.kind {
	case KindPhase:
		ev.Phase = v.phase
		return true
	case KindText:
		p, err := ParsePhase(v.text)
		if err != nil {
			return false
		}
		ev.Phase = p
		return true
	}
	return false
}
