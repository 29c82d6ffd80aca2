// Package gitignore implements ports.IgnoreMatcher with gitignore semantics
// using github.com/sabhiram/go-gitignore. Rules come from the root's
// .gitignore, then .ignore, then caller-supplied lines; the last matching
// pattern decides and "!" re-includes.
package gitignore

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/corey/codetrail/pkg/logger"
)

// IgnoreFiles are read from the root, in this order.
var IgnoreFiles = []string{".gitignore", ".ignore"}

// Matcher answers ignore queries for paths under one root.
type Matcher struct {
	roots    []string // absolute root, plus its symlink-resolved form if different
	compiled *gitignore.GitIgnore
	lines    []string
}

// New builds a matcher for root. Missing ignore files are skipped silently;
// unreadable ones are logged and skipped.
func New(root string, extra []string, log logger.Logger) (*Matcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	roots := []string{abs}
	if real, err := filepath.EvalSymlinks(abs); err == nil && real != abs {
		roots = append(roots, real)
	}

	var lines []string
	for _, name := range IgnoreFiles {
		lines = append(lines, readIgnoreFile(filepath.Join(abs, name), log)...)
	}
	lines = append(lines, cleanLines(extra)...)

	return &Matcher{
		roots:    roots,
		compiled: gitignore.CompileIgnoreLines(lines...),
		lines:    lines,
	}, nil
}

// IsIgnored reports whether path is excluded. Paths outside the root are
// never ignored.
func (m *Matcher) IsIgnored(path string) bool {
	rel, ok := m.relative(path)
	if !ok {
		return false
	}
	return m.compiled.MatchesPath(rel)
}

// IsIgnoredDir is IsIgnored for directories, so "dir/" patterns apply.
func (m *Matcher) IsIgnoredDir(path string) bool {
	rel, ok := m.relative(path)
	if !ok || rel == "." {
		return false
	}
	return m.compiled.MatchesPath(rel + "/")
}

// Patterns returns the effective pattern lines in evaluation order.
func (m *Matcher) Patterns() []string {
	return m.lines
}

func (m *Matcher) relative(path string) (string, bool) {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(filepath.Clean(path)), true
	}
	for _, root := range m.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			continue
		}
		if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return filepath.ToSlash(rel), true
	}
	return "", false
}

func readIgnoreFile(path string, log logger.Logger) []string {
	content, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) && log != nil {
			log.Warn("failed to read ignore file %s: %v", path, err)
		}
		return nil
	}
	var out []string
	for _, line := range bytes.Split(content, []byte{'\n'}) {
		out = append(out, string(line))
	}
	return cleanLines(out)
}

// cleanLines drops blanks and comments. Malformed patterns are left to the
// compiler, which skips them.
func cleanLines(lines []string) []string {
	var out []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
