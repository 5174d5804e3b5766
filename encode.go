package chromez

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// DefaultAsyncCategory is used for async events recorded without a category.
const DefaultAsyncCategory = "async"

// wireEvent is the Trace Event Format object for one event.
//
//nolint:govet // Field order matches the conventional key order of trace files.
type wireEvent struct {
	Name string            `json:"name"`
	Cat  string            `json:"cat,omitempty"`
	Ph   string            `json:"ph"`
	TS   float64           `json:"ts"`
	Dur  *float64          `json:"dur,omitempty"`
	TTS  float64           `json:"tts,omitempty"`
	PID  uint64            `json:"pid"`
	TID  uint64            `json:"tid"`
	ID   any               `json:"id,omitempty"`
	Args map[string]string `json:"args,omitempty"`
}

// encoder serializes events on the writer goroutine.
type encoder struct {
	asyncCategory string
}

func newEncoder(asyncCategory string) encoder {
	if asyncCategory == "" {
		asyncCategory = DefaultAsyncCategory
	}
	return encoder{asyncCategory: asyncCategory}
}

// wire maps an Event to its wire object.
func (e encoder) wire(ev *Event) wireEvent {
	w := wireEvent{
		Name: ev.Name,
		Cat:  ev.Category,
		Ph:   ev.Phase.String(),
		TS:   micros(ev.Timestamp),
		TTS:  micros(ev.ThreadTimestamp),
		PID:  ev.PID,
		TID:  ev.TID,
		Args: ev.Args,
	}

	switch {
	case ev.Phase == PhaseComplete:
		dur := micros(ev.Duration)
		w.Dur = &dur
	case ev.Phase.IsAsync():
		if w.Cat == "" {
			w.Cat = e.asyncCategory
		}
	}

	if ev.ID != "" {
		w.ID = wireID(ev.ID)
	}

	return w
}

// appendEvent appends the JSON object for ev to dst.
func (e encoder) appendEvent(dst []byte, ev *Event) ([]byte, error) {
	data, err := json.Marshal(e.wire(ev))
	if err != nil {
		return dst, fmt.Errorf("encode event %q: %w", ev.Name, err)
	}
	return append(dst, data...), nil
}

// wireID keeps canonical decimal ids numeric so that id 7 is written as 7.
func wireID(id string) any {
	if u, err := strconv.ParseUint(id, 10, 64); err == nil && strconv.FormatUint(u, 10) == id {
		return u
	}
	return id
}

// Encode returns the JSON object for a single event using the default
// async category.
func Encode(ev Event) ([]byte, error) {
	return newEncoder("").appendEvent(nil, &ev)
}
