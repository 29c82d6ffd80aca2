package app

import (
	"os"
	"path/filepath"

	"github.com/corey/codetrail/internal/ports"
)

// Action is a normalized change kind.
type Action int

const (
	Created Action = iota
	Modified
	Removed
	Renamed
)

func (a Action) String() string {
	switch a {
	case Created:
		return "created"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	case Renamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// Change is one normalized filesystem change.
type Change struct {
	Path   string
	Action Action
}

// Normalize maps a backend event to a Change. Metadata-only changes are
// dropped (ok == false) because content did not change.
func Normalize(ev ports.RawEvent) (Change, bool) {
	switch ev.Kind {
	case ports.RawCreate:
		return Change{Path: ev.Path, Action: Created}, true
	case ports.RawRemove:
		return Change{Path: ev.Path, Action: Removed}, true
	case ports.RawModifyData, ports.RawModifyOther:
		return Change{Path: ev.Path, Action: Modified}, true
	case ports.RawModifyName:
		return Change{Path: ev.Path, Action: Renamed}, true
	default:
		return Change{}, false
	}
}

// Resolve settles a Renamed change by checking whether the path exists now.
// A rename reports only one side, so no old/new pairing is attempted: a path
// that exists is treated as Created, anything else as Removed. Other actions
// are returned unchanged.
func Resolve(c Change) Change {
	if c.Action != Renamed {
		return c
	}
	if _, err := os.Lstat(c.Path); err == nil {
		c.Action = Created
	} else {
		c.Action = Removed
	}
	return c
}

// Canonicalize returns the absolute, cleaned, symlink-resolved form of path.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
