// Package fsnotify implements ports.EventSource using github.com/fsnotify/fsnotify.
// Directories are registered one at a time (fsnotify is not recursive) and
// each fsnotify operation bit is translated into a backend-neutral RawEvent.
// Filtering and debouncing happen downstream.
package fsnotify

import (
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/corey/codetrail/internal/ports"
)

// opKinds fixes the order in which bits of a combined Op are reported.
var opKinds = []struct {
	op   fsnotify.Op
	kind ports.RawKind
}{
	{fsnotify.Create, ports.RawCreate},
	{fsnotify.Write, ports.RawModifyData},
	{fsnotify.Remove, ports.RawRemove},
	{fsnotify.Rename, ports.RawModifyName},
	{fsnotify.Chmod, ports.RawModifyMetadata},
}

// Translate maps one fsnotify event to raw events, one per operation bit.
// An event with no known bit is reported as RawModifyOther.
func Translate(ev fsnotify.Event) []ports.RawEvent {
	var out []ports.RawEvent
	for _, ok := range opKinds {
		if ev.Has(ok.op) {
			out = append(out, ports.RawEvent{Path: ev.Name, Kind: ok.kind})
		}
	}
	if len(out) == 0 {
		out = append(out, ports.RawEvent{Path: ev.Name, Kind: ports.RawModifyOther})
	}
	return out
}

// Source implements ports.EventSource using fsnotify.
type Source struct {
	fw     *fsnotify.Watcher
	events chan ports.RawEvent
	errors chan error
	done   chan struct{}

	mu      sync.Mutex
	stopped bool
}

// NewSource starts the backend. Events are buffered up to buffer entries.
func NewSource(buffer int) (*Source, error) {
	fw, err := fsnotify.NewBufferedWatcher(uint(buffer))
	if err != nil {
		return nil, err
	}
	s := &Source{
		fw:     fw,
		events: make(chan ports.RawEvent, buffer),
		errors: make(chan error, 1),
		done:   make(chan struct{}),
	}
	go s.pump()
	return s, nil
}

// Add registers a single directory.
func (s *Source) Add(dir string) error {
	return s.fw.Add(dir)
}

// Remove unregisters a single directory.
func (s *Source) Remove(dir string) error {
	return s.fw.Remove(dir)
}

// WatchList returns the registered directories.
func (s *Source) WatchList() []string {
	return s.fw.WatchList()
}

func (s *Source) Events() <-chan ports.RawEvent { return s.events }

func (s *Source) Errors() <-chan error { return s.errors }

// Close ends monitoring and releases all resources.
// Safe to call multiple times.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}
	s.stopped = true
	close(s.done)
	return s.fw.Close()
}

func (s *Source) pump() {
	defer close(s.events)
	defer close(s.errors)
	for {
		select {
		case ev, ok := <-s.fw.Events:
			if !ok {
				return
			}
			for _, raw := range Translate(ev) {
				select {
				case s.events <- raw:
				case <-s.done:
					return
				}
			}

		case err, ok := <-s.fw.Errors:
			if !ok {
				return
			}
			select {
			case s.errors <- err:
			case <-s.done:
				return
			}

		case <-s.done:
			return
		}
	}
}
