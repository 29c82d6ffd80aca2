package ports

// RawKind is the change kind reported by a filesystem notification backend,
// before normalization.
type RawKind int

const (
	RawCreate RawKind = iota
	RawRemove
	RawModifyData
	RawModifyName
	RawModifyMetadata
	RawModifyOther
)

func (k RawKind) String() string {
	switch k {
	case RawCreate:
		return "create"
	case RawRemove:
		return "remove"
	case RawModifyData:
		return "modify-data"
	case RawModifyName:
		return "modify-name"
	case RawModifyMetadata:
		return "modify-metadata"
	default:
		return "modify-other"
	}
}

// RawEvent is one backend notification for one path.
type RawEvent struct {
	Path string
	Kind RawKind
}

// EventSource delivers filesystem notifications for registered directories.
// Registration is non-recursive: callers add every directory they want
// events for. Delivery is asynchronous and may be bursty or out of order.
type EventSource interface {
	// Add registers a directory. Fails if the directory does not exist or
	// cannot be watched.
	Add(dir string) error

	// Remove unregisters a directory. Errors for directories the backend
	// already dropped (deleted ones) are expected and may be ignored.
	Remove(dir string) error

	// Events delivers notifications. Closed after Close.
	Events() <-chan RawEvent

	// Errors delivers backend failures. Closed after Close.
	Errors() <-chan error

	// Close releases the backend. Safe to call multiple times.
	Close() error
}
