package events

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"
)

// variants maps each Kind to its concrete type.
var variants = func() map[Kind]reflect.Type {
	m := make(map[Kind]reflect.Type)
	for _, e := range All() {
		m[e.Kind()] = reflect.TypeOf(e)
	}
	return m
}()

// envelope tags an event with its variant so it can be decoded again.
type envelope struct {
	Kind  Kind            `json:"kind"`
	Event json.RawMessage `json:"event"`
}

type fileEventsWire struct {
	ParseID        string     `json:"parse_id"`
	Path           string     `json:"path"`
	Language       string     `json:"language"`
	LastModified   time.Time  `json:"last_modified"`
	ParseTimestamp time.Time  `json:"parse_timestamp"`
	Events         []envelope `json:"events"`
	Unsupported    []string   `json:"unsupported,omitempty"`
}

// MarshalJSON writes each event as {"kind": ..., "event": {...}}.
func (f *FileEvents) MarshalJSON() ([]byte, error) {
	w := fileEventsWire{
		ParseID:        f.ParseID,
		Path:           f.Path,
		Language:       f.Language,
		LastModified:   f.LastModified,
		ParseTimestamp: f.ParseTimestamp,
		Events:         make([]envelope, len(f.Events)),
		Unsupported:    f.Unsupported,
	}
	for i, e := range f.Events {
		raw, err := json.Marshal(e)
		if err != nil {
			return nil, err
		}
		w.Events[i] = envelope{Kind: e.Kind(), Event: raw}
	}
	return json.Marshal(w)
}

// UnmarshalJSON reverses MarshalJSON. Unknown kinds are an error.
func (f *FileEvents) UnmarshalJSON(data []byte) error {
	var w fileEventsWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	evs := make([]Event, 0, len(w.Events))
	for _, env := range w.Events {
		t, ok := variants[env.Kind]
		if !ok {
			return fmt.Errorf("unknown event kind %q", env.Kind)
		}
		v := reflect.New(t)
		if err := json.Unmarshal(env.Event, v.Interface()); err != nil {
			return fmt.Errorf("decode %s: %w", env.Kind, err)
		}
		evs = append(evs, v.Elem().Interface().(Event))
	}
	*f = FileEvents{
		ParseID:        w.ParseID,
		Path:           w.Path,
		Language:       w.Language,
		LastModified:   w.LastModified,
		ParseTimestamp: w.ParseTimestamp,
		Events:         evs,
		Unsupported:    w.Unsupported,
	}
	return nil
}
