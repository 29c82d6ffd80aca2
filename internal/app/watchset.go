package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/corey/codetrail/internal/ports"
)

var (
	// ErrEmptyWatchSet is returned when a target resolves to no directories.
	ErrEmptyWatchSet = errors.New("watch set is empty")
	// ErrWatchSetup wraps failures registering directories with the backend.
	ErrWatchSetup = errors.New("watch setup failed")
)

// WatchTarget is what the user asked to watch. Root counts as a requested
// directory. Files may be glob patterns ("**" supported); relative entries
// resolve against Root.
type WatchTarget struct {
	Root  string
	Files []string
	Dirs  []string
}

// WatchSet is the resolved set of directories registered with the backend.
// Open directories accept every file in them. Restricted directories are
// watched only because a requested file lives there, and accept only those
// files.
type WatchSet struct {
	open       map[string]struct{}
	restricted map[string]struct{}
	files      map[string]struct{}
	ignore     ports.IgnoreMatcher
}

// ResolveWatchSet expands t into concrete directories. Subdirectories of
// requested directories are discovered with an explicit stack walk that
// skips ignored directories.
func ResolveWatchSet(t WatchTarget, ignore ports.IgnoreMatcher) (*WatchSet, error) {
	ws := &WatchSet{
		open:       make(map[string]struct{}),
		restricted: make(map[string]struct{}),
		files:      make(map[string]struct{}),
		ignore:     ignore,
	}

	var dirs []string
	if t.Root != "" {
		dirs = append(dirs, t.Root)
	}
	for _, d := range t.Dirs {
		dirs = append(dirs, resolveAgainst(t.Root, d))
	}
	for _, d := range dirs {
		canon, err := Canonicalize(d)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrWatchSetup, d, err)
		}
		info, err := os.Stat(canon)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrWatchSetup, d, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%w: %s is not a directory", ErrWatchSetup, d)
		}
		ws.expand(canon)
	}

	files, err := expandFiles(t.Root, t.Files)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		canon := canonicalOrJoined(f)
		ws.files[canon] = struct{}{}
		parent := filepath.Dir(canon)
		if _, ok := ws.open[parent]; !ok {
			ws.restricted[parent] = struct{}{}
		}
	}

	if len(ws.open) == 0 && len(ws.restricted) == 0 {
		return nil, ErrEmptyWatchSet
	}
	return ws, nil
}

// expand adds dir and its non-ignored subdirectories as open directories.
// Returns the directories that were not already open.
func (ws *WatchSet) expand(dir string) []string {
	var added []string
	stack := []string{dir}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := ws.open[cur]; ok {
			continue
		}
		ws.open[cur] = struct{}{}
		delete(ws.restricted, cur)
		added = append(added, cur)

		entries, err := os.ReadDir(cur)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			sub := filepath.Join(cur, e.Name())
			if ws.ignore != nil && ws.ignore.IsIgnoredDir(sub) {
				continue
			}
			stack = append(stack, sub)
		}
	}
	return added
}

// AddDir opens a directory created under an open directory, along with its
// non-ignored subdirectories. Returns the newly opened directories; nil
// when dir is ignored or its parent is not open.
func (ws *WatchSet) AddDir(dir string) []string {
	if _, ok := ws.open[filepath.Dir(dir)]; !ok {
		return nil
	}
	if ws.ignore != nil && ws.ignore.IsIgnoredDir(dir) {
		return nil
	}
	return ws.expand(dir)
}

// RemoveDir drops dir and every open or restricted directory under it.
// Returns the dropped directories, sorted; nil when dir was not watched.
// Requested files under dir stay requested so a later re-creation is
// handled once their directory is watched again.
func (ws *WatchSet) RemoveDir(dir string) []string {
	prefix := dir + string(filepath.Separator)
	var dropped []string
	for _, m := range []map[string]struct{}{ws.open, ws.restricted} {
		for d := range m {
			if d == dir || strings.HasPrefix(d, prefix) {
				delete(m, d)
				dropped = append(dropped, d)
			}
		}
	}
	sort.Strings(dropped)
	return dropped
}

// Accepts reports whether a change at the canonical path should be handled.
func (ws *WatchSet) Accepts(path string) bool {
	if _, ok := ws.files[path]; ok {
		return true
	}
	_, ok := ws.open[filepath.Dir(path)]
	return ok
}

// Dirs lists every directory to register, sorted.
func (ws *WatchSet) Dirs() []string {
	out := make([]string, 0, len(ws.open)+len(ws.restricted))
	for d := range ws.open {
		out = append(out, d)
	}
	for d := range ws.restricted {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// OpenDirs lists the open directories, sorted.
func (ws *WatchSet) OpenDirs() []string {
	return sortedKeys(ws.open)
}

// Files lists the explicitly requested files, sorted.
func (ws *WatchSet) Files() []string {
	return sortedKeys(ws.files)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func resolveAgainst(root, p string) string {
	if filepath.IsAbs(p) || root == "" {
		return p
	}
	return filepath.Join(root, p)
}

// expandFiles resolves glob patterns. Literal paths are kept even when they
// do not exist yet so their creation is picked up.
func expandFiles(root string, patterns []string) ([]string, error) {
	var out []string
	for _, p := range patterns {
		p = resolveAgainst(root, p)
		if !hasMeta(p) {
			out = append(out, p)
			continue
		}
		matches, err := doublestar.FilepathGlob(p)
		if err != nil {
			return nil, fmt.Errorf("%w: pattern %q: %w", ErrWatchSetup, p, err)
		}
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func hasMeta(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}

// canonicalOrJoined canonicalizes path, falling back to the canonical parent
// joined with the base name when path itself does not exist.
func canonicalOrJoined(path string) string {
	if canon, err := Canonicalize(path); err == nil {
		return canon
	}
	if dir, err := Canonicalize(filepath.Dir(path)); err == nil {
		return filepath.Join(dir, filepath.Base(path))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
