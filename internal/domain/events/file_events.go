package events

import (
	"time"

	"github.com/google/uuid"
)

// FileEvents is the result of parsing one file. It is built fresh by every
// parse and not mutated after the parser returns it; a later parse of the
// same path supersedes it.
type FileEvents struct {
	ParseID        string    `json:"parse_id"`
	Path           string    `json:"path"`
	Language       string    `json:"language"`
	LastModified   time.Time `json:"last_modified"`
	ParseTimestamp time.Time `json:"parse_timestamp"`
	Events         []Event   `json:"events"`
	// Unsupported lists node kinds whose rule declined to handle them.
	Unsupported []string `json:"unsupported,omitempty"`
}

// NewFileEvents starts an empty collection stamped with a fresh parse ID.
func NewFileEvents(path, language string, lastModified, parsedAt time.Time) *FileEvents {
	return &FileEvents{
		ParseID:        uuid.NewString(),
		Path:           path,
		Language:       language,
		LastModified:   lastModified,
		ParseTimestamp: parsedAt,
	}
}

// Add appends events in order.
func (f *FileEvents) Add(evs ...Event) {
	f.Events = append(f.Events, evs...)
}

// MarkUnsupported records a node kind once.
func (f *FileEvents) MarkUnsupported(kind string) {
	for _, k := range f.Unsupported {
		if k == kind {
			return
		}
	}
	f.Unsupported = append(f.Unsupported, kind)
}

// Len is the number of events.
func (f *FileEvents) Len() int {
	return len(f.Events)
}

// OfKind returns events of one variant, in emission order.
func (f *FileEvents) OfKind(k Kind) []Event {
	var out []Event
	for _, e := range f.Events {
		if e.Kind() == k {
			out = append(out, e)
		}
	}
	return out
}

func (f *FileEvents) Functions() []FunctionDefinition {
	return collect[FunctionDefinition](f.Events)
}

func (f *FileEvents) Classes() []ClassDefinition {
	return collect[ClassDefinition](f.Events)
}

func (f *FileEvents) Imports() []ImportStatement {
	return collect[ImportStatement](f.Events)
}

func (f *FileEvents) Variables() []VariableDefinition {
	return collect[VariableDefinition](f.Events)
}

func (f *FileEvents) FunctionCalls() []FunctionCall {
	return collect[FunctionCall](f.Events)
}

// EventsByLine returns events whose first line equals line.
func (f *FileEvents) EventsByLine(line int) []Event {
	return f.EventsInRange(line, line)
}

// EventsInRange returns events whose first line falls in [start, end].
func (f *FileEvents) EventsInRange(start, end int) []Event {
	var out []Event
	for _, e := range f.Events {
		if l := e.Line(); l >= start && l <= end {
			out = append(out, e)
		}
	}
	return out
}

func collect[T Event](evs []Event) []T {
	var out []T
	for _, e := range evs {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
