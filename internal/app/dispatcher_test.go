package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/codetrail/internal/adapters/treesitter"
	"github.com/corey/codetrail/internal/domain/events"
	"github.com/corey/codetrail/internal/domain/gate"
	"github.com/corey/codetrail/internal/ports"
)

type fakeSource struct {
	events chan ports.RawEvent
	errs   chan error
	added   []string
	removed []string
	addErr  error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		events: make(chan ports.RawEvent, 16),
		errs:   make(chan error, 1),
	}
}

func (s *fakeSource) Add(dir string) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.added = append(s.added, dir)
	return nil
}

func (s *fakeSource) Remove(dir string) error {
	s.removed = append(s.removed, dir)
	return nil
}

func (s *fakeSource) Events() <-chan ports.RawEvent { return s.events }

func (s *fakeSource) Errors() <-chan error { return s.errs }

func (s *fakeSource) Close() error { return nil }

type memSink struct {
	files   map[string]*events.FileEvents
	deleted []string
	putErr  error
}

func newMemSink() *memSink {
	return &memSink{files: make(map[string]*events.FileEvents)}
}

func (s *memSink) Put(fe *events.FileEvents) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.files[fe.Path] = fe
	return nil
}

func (s *memSink) Delete(path string) error {
	delete(s.files, path)
	s.deleted = append(s.deleted, path)
	return nil
}

type countMetrics struct {
	admitted, denied, parsed, parseFailed, readFailed, deleted int
}

func (m *countMetrics) Admitted() { m.admitted++ }
func (m *countMetrics) Denied() { m.denied++ }
func (m *countMetrics) Parsed(string) { m.parsed++ }
func (m *countMetrics) ParseFailed() { m.parseFailed++ }
func (m *countMetrics) ReadFailed() { m.readFailed++ }
func (m *countMetrics) Deleted() { m.deleted++ }

type harness struct {
	root    string
	d       *Dispatcher
	src     *fakeSource
	sink    *memSink
	metrics *countMetrics
	clock   *clock.Mock
	deb     *gate.Debouncer
}

func newHarness(t *testing.T, target WatchTarget, ignoreLines ...string) *harness {
	t.Helper()
	root := target.Root
	if root == "" {
		root = filepath.Dir(target.Files[0])
	}
	ignore := newIgnore(t, root, ignoreLines...)
	ws, err := ResolveWatchSet(target, ignore)
	require.NoError(t, err)

	mock := clock.NewMock()
	deb := gate.NewDebouncer(time.Second, mock)
	h := &harness{
		root:    root,
		src:     newFakeSource(),
		sink:    newMemSink(),
		metrics: &countMetrics{},
		clock:   mock,
		deb:     deb,
	}
	h.d = NewDispatcher(Options{
		Source:  h.src,
		Watch:   ws,
		Decider: gate.NewDecider(ignore, gate.NewExtensionFilter(gate.DefaultExtensions, false), deb),
		Parser:  treesitter.NewDefaultRegistry(),
		Sink:    h.sink,
		Metrics: h.metrics,
	})
	return h
}

func (h *harness) write(t *testing.T, rel, content string) string {
	t.Helper()
	p := filepath.Join(h.root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestDispatcher_Start(t *testing.T) {
	root := newTree(t, "pkg/a.py")
	h := newHarness(t, WatchTarget{Root: root})

	require.NoError(t, h.d.Start())
	assert.Equal(t, []string{root, filepath.Join(root, "pkg")}, h.src.added)
}

func TestDispatcher_StartAddFailure(t *testing.T) {
	root := newTree(t)
	h := newHarness(t, WatchTarget{Root: root})
	h.src.addErr = errors.New("too many watches")

	assert.ErrorIs(t, h.d.Start(), ErrWatchSetup)
}

func TestDispatcher_CreateIndexesFile(t *testing.T) {
	h := newHarness(t, WatchTarget{Root: newTree(t)})
	p := h.write(t, "m.py", "def foo(a, b: int, c=1, d: int = 2):\n    pass\n")

	h.d.Handle(Change{Path: p, Action: Created})

	fe := h.sink.files[p]
	require.NotNil(t, fe)
	assert.Equal(t, "python", fe.Language)
	fns := fe.Functions()
	require.Len(t, fns, 1)
	assert.Equal(t, "foo", fns[0].Name)
	assert.Equal(t, 1, h.d.Indexed())
	assert.Equal(t, 1, h.metrics.parsed)
}

func TestDispatcher_ModifyIsDebounced(t *testing.T) {
	h := newHarness(t, WatchTarget{Root: newTree(t)})
	p := h.write(t, "m.py", "def a():\n    pass\n")
	h.d.Handle(Change{Path: p, Action: Modified})

	h.write(t, "m.py", "def a():\n    pass\n\ndef b():\n    pass\n")
	h.clock.Add(500 * time.Millisecond)
	h.d.Handle(Change{Path: p, Action: Modified})
	assert.Len(t, h.sink.files[p].Functions(), 1, "second change inside the window is dropped")
	assert.Equal(t, 1, h.metrics.denied)

	h.clock.Add(500 * time.Millisecond)
	h.d.Handle(Change{Path: p, Action: Modified})
	assert.Len(t, h.sink.files[p].Functions(), 2)
}

func TestDispatcher_IgnoredAndUnsupportedSkipDebounce(t *testing.T) {
	h := newHarness(t, WatchTarget{Root: newTree(t)}, "*.gen.py")
	gen := h.write(t, "x.gen.py", "def a():\n    pass\n")
	txt := h.write(t, "notes.txt", "hello\n")

	h.d.Handle(Change{Path: gen, Action: Created})
	h.d.Handle(Change{Path: txt, Action: Created})

	assert.Empty(t, h.sink.files)
	assert.Equal(t, 0, h.deb.Tracked())
	assert.Equal(t, 2, h.metrics.denied)
}

func TestDispatcher_ParseUnsupportedLanguageStoresNothing(t *testing.T) {
	h := newHarness(t, WatchTarget{Root: newTree(t)})
	p := h.write(t, "data.json", "{}\n")

	h.d.Handle(Change{Path: p, Action: Created})

	assert.Empty(t, h.sink.files, "no parser is registered for json")
	assert.Equal(t, 1, h.metrics.admitted)
}

func TestDispatcher_RemoveForwardsDeletion(t *testing.T) {
	h := newHarness(t, WatchTarget{Root: newTree(t)})
	p := h.write(t, "m.py", "x = 1\n")
	h.d.Handle(Change{Path: p, Action: Created})
	require.Contains(t, h.sink.files, p)

	require.NoError(t, os.Remove(p))
	h.d.Handle(Change{Path: p, Action: Removed})

	assert.NotContains(t, h.sink.files, p)
	assert.Equal(t, []string{p}, h.sink.deleted)
	assert.Equal(t, 0, h.d.Indexed())
}

func TestDispatcher_RemoveIsNotDebounced(t *testing.T) {
	h := newHarness(t, WatchTarget{Root: newTree(t)})
	p := h.write(t, "m.py", "x = 1\n")
	h.d.Handle(Change{Path: p, Action: Created})

	require.NoError(t, os.Remove(p))
	h.d.Handle(Change{Path: p, Action: Removed})
	h.d.Handle(Change{Path: p, Action: Removed})

	assert.Len(t, h.sink.deleted, 2)
}

func TestDispatcher_RemoveOfIneligibleUntrackedPath(t *testing.T) {
	h := newHarness(t, WatchTarget{Root: newTree(t)})

	h.d.Handle(Change{Path: filepath.Join(h.root, "gone.txt"), Action: Removed})
	assert.Empty(t, h.sink.deleted)

	h.d.Handle(Change{Path: filepath.Join(h.root, "gone.py"), Action: Removed})
	assert.Equal(t, []string{filepath.Join(h.root, "gone.py")}, h.sink.deleted)
}

func TestDispatcher_RenameResolvedByExistence(t *testing.T) {
	h := newHarness(t, WatchTarget{Root: newTree(t)})
	old := h.write(t, "old.py", "def f():\n    pass\n")
	h.d.Handle(Change{Path: old, Action: Created})

	renamed := filepath.Join(h.root, "new.py")
	require.NoError(t, os.Rename(old, renamed))
	h.d.Handle(Change{Path: old, Action: Renamed})
	h.d.Handle(Change{Path: renamed, Action: Renamed})

	assert.NotContains(t, h.sink.files, old)
	assert.Contains(t, h.sink.files, renamed)
}

func TestDispatcher_RestrictedDirectory(t *testing.T) {
	root := newTree(t, "tools/keep.py", "tools/skip.py")
	keep := filepath.Join(root, "tools", "keep.py")
	h := newHarness(t, WatchTarget{Files: []string{keep}})

	h.d.Handle(Change{Path: keep, Action: Modified})
	h.d.Handle(Change{Path: filepath.Join(root, "tools", "skip.py"), Action: Modified})

	assert.Len(t, h.sink.files, 1)
	assert.Contains(t, h.sink.files, keep)
}

func TestDispatcher_CreatedDirectoryIsWatched(t *testing.T) {
	h := newHarness(t, WatchTarget{Root: newTree(t)}, "node_modules/")
	dir := filepath.Join(h.root, "sub")
	require.NoError(t, os.Mkdir(dir, 0o755))
	ignored := filepath.Join(h.root, "node_modules")
	require.NoError(t, os.Mkdir(ignored, 0o755))

	h.d.Handle(Change{Path: dir, Action: Created})
	h.d.Handle(Change{Path: ignored, Action: Created})

	assert.Equal(t, []string{dir}, h.src.added)
	assert.Empty(t, h.sink.files)

	p := h.write(t, "sub/m.py", "x = 1\n")
	h.d.Handle(Change{Path: p, Action: Created})
	assert.Contains(t, h.sink.files, p)
}

func TestDispatcher_DirectoryMovedInIsIndexed(t *testing.T) {
	h := newHarness(t, WatchTarget{Root: newTree(t)})
	outside := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(outside, "pkg", "inner"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "pkg", "m.py"), []byte("def f():\n    pass\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "pkg", "inner", "n.go"), []byte("package inner\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "pkg", "notes.txt"), []byte("x"), 0o644))

	dir := filepath.Join(h.root, "pkg")
	require.NoError(t, os.Rename(filepath.Join(outside, "pkg"), dir))
	h.d.Handle(Change{Path: dir, Action: Renamed})

	assert.ElementsMatch(t, []string{dir, filepath.Join(dir, "inner")}, h.src.added)
	assert.Contains(t, h.sink.files, filepath.Join(dir, "m.py"))
	assert.Contains(t, h.sink.files, filepath.Join(dir, "inner", "n.go"))
	assert.Len(t, h.sink.files, 2)
	assert.Equal(t, 2, h.d.Indexed())
	assert.Equal(t, 0, h.deb.Tracked(), "directory scan bypasses the debouncer")
}

func TestDispatcher_DirectoryRemovedDropsIndexedFiles(t *testing.T) {
	root := newTree(t, "keep.py", "pkg/m.py", "pkg/inner/n.py", "pkgx/o.py")
	h := newHarness(t, WatchTarget{Root: root})
	require.NoError(t, h.d.Start())
	_, err := h.d.Scan(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, h.d.Indexed())
	require.Equal(t, 4, h.d.WatchedDirs())

	dir := filepath.Join(root, "pkg")
	require.NoError(t, os.Rename(dir, filepath.Join(t.TempDir(), "moved")))
	h.d.Handle(Change{Path: dir, Action: Renamed})

	assert.Equal(t, 2, h.d.Indexed())
	assert.Equal(t, 2, h.d.WatchedDirs())
	assert.ElementsMatch(t, []string{filepath.Join(dir, "m.py"), filepath.Join(dir, "inner", "n.py")}, h.sink.deleted)
	assert.Contains(t, h.sink.files, filepath.Join(root, "keep.py"))
	assert.Contains(t, h.sink.files, filepath.Join(root, "pkgx", "o.py"))
	assert.ElementsMatch(t, []string{dir, filepath.Join(dir, "inner")}, h.src.removed)
	assert.NotContains(t, h.d.watch.OpenDirs(), dir)

	// Events still arriving under the old path are ignored.
	h.d.Handle(Change{Path: filepath.Join(dir, "inner", "late.py"), Action: Removed})
	assert.Len(t, h.sink.deleted, 2)
}

func TestDispatcher_SinkFailureIsNotTracked(t *testing.T) {
	h := newHarness(t, WatchTarget{Root: newTree(t)})
	h.sink.putErr = errors.New("disk full")
	p := h.write(t, "m.py", "x = 1\n")

	h.d.Handle(Change{Path: p, Action: Created})

	assert.Equal(t, 0, h.d.Indexed())
	assert.Equal(t, 0, h.metrics.parsed)
}

func TestDispatcher_Scan(t *testing.T) {
	root := newTree(t, "a.py", "pkg/b.go", "pkg/notes.txt", "vendor/c.py")
	h := newHarness(t, WatchTarget{Root: root}, "vendor/")
	h.write(t, "pkg/b.go", "package pkg\n\nfunc B() {}\n")

	n, err := h.d.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Contains(t, h.sink.files, filepath.Join(root, "a.py"))
	assert.Contains(t, h.sink.files, filepath.Join(root, "pkg", "b.go"))
	assert.Equal(t, 0, h.deb.Tracked(), "the initial scan bypasses debouncing")
}

func TestDispatcher_ScanCancelled(t *testing.T) {
	h := newHarness(t, WatchTarget{Root: newTree(t, "a.py")})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.d.Scan(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDispatcher_RunProcessesEvents(t *testing.T) {
	h := newHarness(t, WatchTarget{Root: newTree(t)})
	p := h.write(t, "m.py", "x = 1\n")

	h.src.events <- ports.RawEvent{Path: p, Kind: ports.RawModifyMetadata}
	h.src.events <- ports.RawEvent{Path: p, Kind: ports.RawCreate}
	close(h.src.events)

	err := h.d.Run(context.Background())
	assert.ErrorIs(t, err, ErrChannelClosed)
	assert.Contains(t, h.sink.files, p)
	assert.Equal(t, 1, h.metrics.admitted, "metadata changes are dropped")
}

func TestDispatcher_RunBackendError(t *testing.T) {
	h := newHarness(t, WatchTarget{Root: newTree(t)})
	cause := errors.New("queue overflow")
	h.src.errs <- cause

	err := h.d.Run(context.Background())
	assert.ErrorIs(t, err, ErrBackend)
	assert.ErrorIs(t, err, cause)
}

func TestDispatcher_RunStopsOnCancel(t *testing.T) {
	h := newHarness(t, WatchTarget{Root: newTree(t)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, h.d.Run(ctx))
}
