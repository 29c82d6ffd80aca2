package gate

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// suffixIgnore ignores any path ending in one of its suffixes.
type suffixIgnore []string

func (s suffixIgnore) IsIgnored(path string) bool {
	for _, suf := range s {
		if strings.HasSuffix(path, suf) {
			return true
		}
	}
	return false
}

func (s suffixIgnore) IsIgnoredDir(path string) bool { return s.IsIgnored(path) }

func newTestDecider(window time.Duration) (*Decider, *Debouncer) {
	deb, _ := newMockDebouncer(window)
	exts := NewExtensionFilter([]string{"rs", "log"}, false)
	return NewDecider(suffixIgnore{".log"}, exts, deb), deb
}

func TestDecider_IgnoredPathLeavesDebounceUntouched(t *testing.T) {
	d, deb := newTestDecider(time.Second)

	assert.False(t, d.ShouldIndex("x.log"))
	assert.Equal(t, time.Second, d.TimeLeft("x.log"))
	assert.Equal(t, 0, deb.Tracked())
}

func TestDecider_UnsupportedPathLeavesDebounceUntouched(t *testing.T) {
	d, deb := newTestDecider(time.Second)

	assert.False(t, d.ShouldIndex("notes.txt"))
	assert.Equal(t, 0, deb.Tracked())
}

func TestDecider_AdmitsThenDebounces(t *testing.T) {
	d, deb := newTestDecider(time.Second)

	assert.True(t, d.ShouldIndex("a.rs"))
	assert.False(t, d.ShouldIndex("a.rs"))
	assert.Equal(t, 1, deb.Tracked())
}

func TestDecider_EligibleDoesNotConsumeWindow(t *testing.T) {
	d, _ := newTestDecider(time.Second)

	assert.True(t, d.Eligible("a.rs"))
	assert.True(t, d.Eligible("a.rs"))
	assert.True(t, d.ShouldIndex("a.rs"))
}

func TestDecider_NilIgnore(t *testing.T) {
	deb, _ := newMockDebouncer(time.Second)
	d := NewDecider(nil, NewExtensionFilter([]string{"rs"}, false), deb)

	assert.True(t, d.ShouldIndex("a.rs"))
}
