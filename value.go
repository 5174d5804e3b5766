package chromez

import (
	"math"
	"strconv"
	"time"

	"fortio.org/safecast"
)

// ValueKind identifies the variant held by a Value.
type ValueKind uint8

const (
	KindText ValueKind = iota
	KindNumber
	KindPhase
	KindID
)

// String returns the string representation of ValueKind.
func (k ValueKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindPhase:
		return "phase"
	case KindID:
		return "id"
	default:
		return "unknown"
	}
}

// Value is a small closed variant recorded under a field name.
// Reserved names route it to a structured Event field, anything else is
// stringified into the event args.
type Value struct {
	text  string
	num   float64
	kind  ValueKind
	phase Phase
}

// Text wraps a string.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Number wraps a float. Timestamps and durations are microseconds.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Int wraps an integer as a Number.
func Int(i int64) Value {
	return Value{kind: KindNumber, num: float64(i)}
}

// Micros wraps a duration as a Number of microseconds.
func Micros(d time.Duration) Value {
	return Value{kind: KindNumber, num: micros(d)}
}

// PhaseValue wraps a Phase.
func PhaseValue(p Phase) Value {
	return Value{kind: KindPhase, phase: p}
}

// ID wraps a correlation identifier.
func ID(s string) Value {
	return Value{kind: KindID, text: s}
}

// Kind returns the held variant.
func (v Value) Kind() ValueKind {
	return v.kind
}

// String renders the value the way it appears in args.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindPhase:
		return v.phase.String()
	default:
		return v.text
	}
}

// Uint returns the value as a non-negative integer.
// Fractional, negative and non-numeric values are rejected.
func (v Value) Uint() (uint64, bool) {
	if v.kind != KindNumber || math.Trunc(v.num) != v.num {
		return 0, false
	}
	u, err := safecast.Convert[uint64](v.num)
	if err != nil {
		return 0, false
	}
	return u, true
}

// Micros returns a Number of microseconds as a duration. Values that do not
// fit a time.Duration are rejected.
func (v Value) Micros() (time.Duration, bool) {
	if v.kind != KindNumber || math.IsNaN(v.num) || math.IsInf(v.num, 0) || v.num < 0 {
		return 0, false
	}
	ns := v.num * float64(time.Microsecond)
	if ns >= math.MaxInt64 {
		return 0, false
	}
	return time.Duration(ns), true
}

// micros converts a duration to fractional microseconds.
func micros(d time.Duration) float64 {
	return float64(d) / float64(time.Microsecond)
}
