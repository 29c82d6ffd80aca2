package ports

import "github.com/corey/codetrail/internal/domain/events"

// Sink receives parse results. Put replaces whatever was stored for the
// same path; results are never merged.
type Sink interface {
	Put(fe *events.FileEvents) error
	Delete(path string) error
}
