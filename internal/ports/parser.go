package ports

import "github.com/corey/codetrail/internal/domain/events"

// Parser turns file content into structural events.
type Parser interface {
	// ParseFile returns nil, nil when no language handles path.
	ParseFile(path string, content []byte) (*events.FileEvents, error)
	Supports(path string) bool
}
