// Package gate decides whether a changed path should be re-indexed.
// It composes an ignore check, an extension allowlist and a per-path
// debounce window into one admit/deny decision.
package gate

import (
	"time"

	"github.com/benbjohnson/clock"
)

type admission struct {
	at  time.Time
	gen uint64
}

type queued struct {
	path string
	at   time.Time
	gen  uint64
}

// Debouncer admits a path at most once per window. State is pruned lazily
// on each call; there is no background timer.
//
// Not safe for concurrent use. The dispatcher owns it.
type Debouncer struct {
	window time.Duration
	clock  clock.Clock

	last  map[string]admission
	queue []queued // ordered by admission time
	gen   uint64
}

// NewDebouncer creates a debouncer with the given window. A nil clock uses
// the wall clock.
func NewDebouncer(window time.Duration, clk clock.Clock) *Debouncer {
	if clk == nil {
		clk = clock.New()
	}
	return &Debouncer{
		window: window,
		clock:  clk,
		last:   make(map[string]admission),
	}
}

// Window returns the configured debounce window.
func (d *Debouncer) Window() time.Duration {
	return d.window
}

// ShouldAdmit reports whether path may be processed now, and if so records
// the admission.
func (d *Debouncer) ShouldAdmit(path string) bool {
	now := d.clock.Now()
	d.prune(now)

	if a, ok := d.last[path]; ok && now.Sub(a.at) < d.window {
		return false
	}

	d.gen++
	d.last[path] = admission{at: now, gen: d.gen}
	d.queue = append(d.queue, queued{path: path, at: now, gen: d.gen})
	return true
}

// TimeLeft returns how long until path becomes eligible again: the full
// window for a path with no record, zero once the window has elapsed.
func (d *Debouncer) TimeLeft(path string) time.Duration {
	a, ok := d.last[path]
	if !ok {
		return d.window
	}
	left := d.window - d.clock.Since(a.at)
	if left < 0 {
		return 0
	}
	return left
}

// Tracked returns the number of paths with a live admission record.
func (d *Debouncer) Tracked() int {
	return len(d.last)
}

// prune drops queue entries older than the window. A map entry is removed
// only when the queued generation is still the current one for that path,
// so a stale duplicate never evicts a newer admission.
func (d *Debouncer) prune(now time.Time) {
	i := 0
	for ; i < len(d.queue); i++ {
		q := d.queue[i]
		if now.Sub(q.at) <= d.window {
			break
		}
		if cur, ok := d.last[q.path]; ok && cur.gen == q.gen {
			delete(d.last, q.path)
		}
	}
	if i > 0 {
		d.queue = append(d.queue[:0], d.queue[i:]...)
	}
}
