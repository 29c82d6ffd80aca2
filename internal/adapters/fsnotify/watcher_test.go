package fsnotify

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/codetrail/internal/ports"
)

// =============================================================================
// fsnotify EventSource: raw notifications for registered directories
// =============================================================================

// waitFor reads events until one matches path and kind, or timeout elapses.
func waitFor(ch <-chan ports.RawEvent, path string, kind ports.RawKind, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			if ev.Path == path && ev.Kind == kind {
				return true
			}
		case <-deadline:
			return false
		}
	}
}

func newTestSource(t *testing.T, dir string) *Source {
	t.Helper()
	s, err := NewSource(64)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Add(dir))
	return s
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		op   fsnotify.Op
		want []ports.RawKind
	}{
		{"create", fsnotify.Create, []ports.RawKind{ports.RawCreate}},
		{"write", fsnotify.Write, []ports.RawKind{ports.RawModifyData}},
		{"remove", fsnotify.Remove, []ports.RawKind{ports.RawRemove}},
		{"rename", fsnotify.Rename, []ports.RawKind{ports.RawModifyName}},
		{"chmod", fsnotify.Chmod, []ports.RawKind{ports.RawModifyMetadata}},
		{"create+write", fsnotify.Create | fsnotify.Write, []ports.RawKind{ports.RawCreate, ports.RawModifyData}},
		{"none", 0, []ports.RawKind{ports.RawModifyOther}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Translate(fsnotify.Event{Name: "/p/a.py", Op: tt.op})
			var kinds []ports.RawKind
			for _, ev := range got {
				assert.Equal(t, "/p/a.py", ev.Path)
				kinds = append(kinds, ev.Kind)
			}
			assert.Equal(t, tt.want, kinds)
		})
	}
}

func TestSource_DetectsWrite(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "test.py")
	require.NoError(t, os.WriteFile(file, []byte("# original"), 0o644))
	s := newTestSource(t, dir)

	require.NoError(t, os.WriteFile(file, []byte("# modified"), 0o644))

	assert.True(t, waitFor(s.Events(), file, ports.RawModifyData, 2*time.Second))
}

func TestSource_DetectsCreateAndRemove(t *testing.T) {
	dir := t.TempDir()
	s := newTestSource(t, dir)

	file := filepath.Join(dir, "new.py")
	require.NoError(t, os.WriteFile(file, []byte("# new"), 0o644))
	assert.True(t, waitFor(s.Events(), file, ports.RawCreate, 2*time.Second))

	require.NoError(t, os.Remove(file))
	assert.True(t, waitFor(s.Events(), file, ports.RawRemove, 2*time.Second))
}

func TestSource_DetectsRename(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "old.py")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	s := newTestSource(t, dir)

	require.NoError(t, os.Rename(file, filepath.Join(dir, "renamed.py")))
	assert.True(t, waitFor(s.Events(), file, ports.RawModifyName, 2*time.Second))
}

func TestSource_Remove(t *testing.T) {
	dir := t.TempDir()
	s := newTestSource(t, dir)

	require.NoError(t, s.Remove(dir))
	assert.Empty(t, s.WatchList())
	assert.Error(t, s.Remove(dir))
}

func TestSource_AddMissingDirFails(t *testing.T) {
	s, err := NewSource(1)
	require.NoError(t, err)
	defer s.Close()

	assert.Error(t, s.Add(filepath.Join(t.TempDir(), "missing")))
}

func TestSource_CloseIsIdempotentAndClosesChannels(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSource(8)
	require.NoError(t, err)
	require.NoError(t, s.Add(dir))
	assert.Equal(t, []string{dir}, s.WatchList())

	require.NoError(t, s.Close())
	assert.NoError(t, s.Close())

	select {
	case _, ok := <-s.Events():
		for ok {
			_, ok = <-s.Events()
		}
	case <-time.After(2 * time.Second):
		t.Fatal("events channel not closed after Close")
	}
}
