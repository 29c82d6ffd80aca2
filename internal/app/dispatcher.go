package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/corey/codetrail/internal/domain/gate"
	"github.com/corey/codetrail/internal/ports"
	"github.com/corey/codetrail/pkg/logger"
)

var (
	// ErrChannelClosed is returned by Run when the backend closes its
	// event channel.
	ErrChannelClosed = errors.New("notification channel closed")
	// ErrBackend wraps errors reported by the notification backend.
	ErrBackend = errors.New("notification backend failure")
)

// Dispatcher consumes backend events one at a time and drives the
// admission, read, parse and sink steps. All of its state is owned by the
// goroutine calling Run.
type Dispatcher struct {
	source  ports.EventSource
	watch   *WatchSet
	decider *gate.Decider
	parser  ports.Parser
	sink    ports.Sink
	metrics ports.Metrics
	log     logger.Logger

	indexed map[string]struct{}

	// Mirrors of dispatcher-owned state for readers on other goroutines.
	indexedCount atomic.Int64
	watchedDirs  atomic.Int64
}

// Options configures a Dispatcher. Metrics and Logger are optional.
type Options struct {
	Source  ports.EventSource
	Watch   *WatchSet
	Decider *gate.Decider
	Parser  ports.Parser
	Sink    ports.Sink
	Metrics ports.Metrics
	Logger  logger.Logger
}

// NewDispatcher creates a dispatcher. Call Start before Run.
func NewDispatcher(opts Options) *Dispatcher {
	d := &Dispatcher{
		source:  opts.Source,
		watch:   opts.Watch,
		decider: opts.Decider,
		parser:  opts.Parser,
		sink:    opts.Sink,
		metrics: opts.Metrics,
		log:     opts.Logger,
		indexed: make(map[string]struct{}),
	}
	if d.metrics == nil {
		d.metrics = ports.NopMetrics{}
	}
	if d.log == nil {
		d.log = logger.NewNop()
	}
	return d
}

// Start registers every directory in the watch set with the backend.
func (d *Dispatcher) Start() error {
	for _, dir := range d.watch.Dirs() {
		if err := d.source.Add(dir); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrWatchSetup, dir, err)
		}
		d.watchedDirs.Add(1)
	}
	d.log.Info("watching %d directories", d.watchedDirs.Load())
	return nil
}

// Run processes changes until ctx is cancelled (returns nil), the backend
// closes its channel (ErrChannelClosed) or reports an error (ErrBackend).
func (d *Dispatcher) Run(ctx context.Context) error {
	evs := d.source.Events()
	errs := d.source.Errors()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-evs:
			if !ok {
				return ErrChannelClosed
			}
			if c, ok := Normalize(ev); ok {
				d.Handle(c)
			}
		case err, ok := <-errs:
			if !ok {
				return ErrChannelClosed
			}
			return fmt.Errorf("%w: %w", ErrBackend, err)
		}
	}
}

// Handle applies one normalized change.
func (d *Dispatcher) Handle(c Change) {
	c = Resolve(c)
	path, err := Canonicalize(c.Path)
	if err != nil {
		path = canonicalOrJoined(c.Path)
		c.Action = Removed
	}
	if !d.watch.Accepts(path) {
		return
	}

	switch c.Action {
	case Created, Modified:
		info, err := os.Stat(path)
		if err != nil {
			d.remove(path)
			return
		}
		if info.IsDir() {
			if c.Action == Created {
				d.addDir(path)
			}
			return
		}
		if !info.Mode().IsRegular() {
			return
		}
		d.index(path, true)
	case Removed:
		d.remove(path)
	}
}

// Indexed reports how many paths currently have stored events. Safe to call
// from any goroutine.
func (d *Dispatcher) Indexed() int {
	return int(d.indexedCount.Load())
}

// WatchedDirs reports how many directories are registered with the backend.
// Safe to call from any goroutine.
func (d *Dispatcher) WatchedDirs() int {
	return int(d.watchedDirs.Load())
}

// Debounce returns the admission window.
func (d *Dispatcher) Debounce() time.Duration {
	return d.decider.Debouncer().Window()
}

// addDir watches a new directory tree and indexes the files already in it.
// A directory moved into the tree, or written to before its watch was
// added, produces no event for those files.
func (d *Dispatcher) addDir(dir string) {
	for _, sub := range d.watch.AddDir(dir) {
		if err := d.source.Add(sub); err != nil {
			d.log.Warn("watch %s: %v", sub, err)
			continue
		}
		d.watchedDirs.Add(1)
		d.log.Debug("watching new directory %s", sub)
		for _, path := range d.dirFiles(sub) {
			if d.decider.Eligible(path) {
				d.index(path, false)
			}
		}
	}
}

// index reads, parses and stores path. debounce selects between the full
// admission check and the eligibility check alone.
func (d *Dispatcher) index(path string, debounce bool) {
	admitted := d.decider.Eligible(path)
	if admitted && debounce {
		admitted = d.decider.ShouldIndex(path)
	}
	if !admitted {
		d.metrics.Denied()
		return
	}
	d.metrics.Admitted()

	content, err := os.ReadFile(path)
	if err != nil {
		d.metrics.ReadFailed()
		d.log.Warn("read %s: %v", path, err)
		return
	}
	fe, err := d.parser.ParseFile(path, content)
	if err != nil {
		d.metrics.ParseFailed()
		d.log.Warn("parse %s: %v", path, err)
		return
	}
	if fe == nil {
		return
	}
	if err := d.sink.Put(fe); err != nil {
		d.log.Error("store %s: %v", path, err)
		return
	}
	d.track(path)
	d.metrics.Parsed(fe.Language)
	d.log.Debug("indexed %s: %d events", path, fe.Len())
}

func (d *Dispatcher) track(path string) {
	if _, ok := d.indexed[path]; !ok {
		d.indexed[path] = struct{}{}
		d.indexedCount.Add(1)
	}
}

func (d *Dispatcher) untrack(path string) {
	if _, ok := d.indexed[path]; ok {
		delete(d.indexed, path)
		d.indexedCount.Add(-1)
	}
}

func (d *Dispatcher) remove(path string) {
	if dirs := d.watch.RemoveDir(path); len(dirs) > 0 {
		d.removeTree(path, dirs)
		return
	}
	_, tracked := d.indexed[path]
	if !tracked && !d.decider.Eligible(path) {
		return
	}
	d.deleteRecord(path)
}

// removeTree handles a watched directory that was deleted or moved out: its
// watches are dropped and every indexed file under it is deleted.
func (d *Dispatcher) removeTree(dir string, dirs []string) {
	for _, sub := range dirs {
		if err := d.source.Remove(sub); err != nil {
			d.log.Debug("unwatch %s: %v", sub, err)
		}
		d.watchedDirs.Add(-1)
	}
	prefix := dir + string(filepath.Separator)
	var under []string
	for p := range d.indexed {
		if strings.HasPrefix(p, prefix) {
			under = append(under, p)
		}
	}
	sort.Strings(under)
	for _, p := range under {
		d.deleteRecord(p)
	}
	d.log.Debug("removed directory %s: %d dirs, %d files", dir, len(dirs), len(under))
}

func (d *Dispatcher) deleteRecord(path string) {
	d.untrack(path)
	if err := d.sink.Delete(path); err != nil {
		d.log.Error("delete %s: %v", path, err)
		return
	}
	d.metrics.Deleted()
	d.log.Debug("removed %s", path)
}

// Scan indexes every eligible file in the open directories plus every
// requested file that exists. It bypasses the debouncer so a change
// arriving right after startup is still admitted. Returns the number of
// files handed to the parser.
func (d *Dispatcher) Scan(ctx context.Context) (int, error) {
	n := 0
	for _, path := range d.scanPaths() {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if !d.decider.Eligible(path) {
			continue
		}
		d.index(path, false)
		n++
	}
	d.log.Info("initial scan: %d files, %d indexed", n, d.Indexed())
	return n, nil
}

func (d *Dispatcher) scanPaths() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	for _, dir := range d.watch.OpenDirs() {
		for _, p := range d.dirFiles(dir) {
			add(p)
		}
	}
	for _, f := range d.watch.Files() {
		if info, err := os.Stat(f); err == nil && info.Mode().IsRegular() {
			add(f)
		}
	}
	return out
}

// dirFiles lists the regular files directly in dir.
func (d *Dispatcher) dirFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		d.log.Warn("scan %s: %v", dir, err)
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out
}
