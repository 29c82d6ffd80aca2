package gate

import (
	"time"

	"github.com/corey/codetrail/internal/ports"
)

// Decider composes the ignore, extension and debounce checks. The order is
// fixed: a path only reaches the debouncer after passing the other two, so
// ignored or unsupported paths never touch debounce state.
type Decider struct {
	ignore    ports.IgnoreMatcher
	exts      *ExtensionFilter
	debouncer *Debouncer
}

// NewDecider wires the three policies together. A nil ignore matcher
// ignores nothing.
func NewDecider(ignore ports.IgnoreMatcher, exts *ExtensionFilter, debouncer *Debouncer) *Decider {
	return &Decider{ignore: ignore, exts: exts, debouncer: debouncer}
}

// ShouldIndex reports whether path should be re-indexed now.
func (d *Decider) ShouldIndex(path string) bool {
	return d.Eligible(path) && d.debouncer.ShouldAdmit(path)
}

// Eligible runs the ignore and extension checks only.
func (d *Decider) Eligible(path string) bool {
	if d.ignore != nil && d.ignore.IsIgnored(path) {
		return false
	}
	return d.exts.IsSupported(path)
}

// TimeLeft is the debouncer's remaining window for path.
func (d *Decider) TimeLeft(path string) time.Duration {
	return d.debouncer.TimeLeft(path)
}

// Debouncer exposes the underlying debouncer.
func (d *Decider) Debouncer() *Debouncer {
	return d.debouncer
}
