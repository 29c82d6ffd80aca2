package gate

import (
	"path/filepath"
	"strings"
)

// DefaultExtensions is the allowlist used when configuration names none.
var DefaultExtensions = []string{
	"rs", "js", "ts", "py", "java", "cpp", "c", "cs", "go", "rb",
	"html", "css", "json", "toml", "yaml", "yml", "sh", "php", "swift", "kt",
}

// ExtensionFilter is a static allowlist of file extensions, stored without
// the leading dot. Matching is exact unless FoldCase is set.
type ExtensionFilter struct {
	exts     map[string]bool
	foldCase bool
}

// NewExtensionFilter builds a filter. A leading dot on an entry is ignored.
func NewExtensionFilter(exts []string, foldCase bool) *ExtensionFilter {
	f := &ExtensionFilter{exts: make(map[string]bool, len(exts)), foldCase: foldCase}
	for _, e := range exts {
		e = strings.TrimPrefix(e, ".")
		if e == "" {
			continue
		}
		if foldCase {
			e = strings.ToLower(e)
		}
		f.exts[e] = true
	}
	return f
}

// IsSupported reports whether path has an allowlisted extension. Paths
// without an extension, dotfiles like ".bashrc" included, are unsupported.
func (f *ExtensionFilter) IsSupported(path string) bool {
	ext := Extension(path)
	if ext == "" {
		return false
	}
	if f.foldCase {
		ext = strings.ToLower(ext)
	}
	return f.exts[ext]
}

// Extensions returns the allowlist.
func (f *ExtensionFilter) Extensions() []string {
	out := make([]string, 0, len(f.exts))
	for e := range f.exts {
		out = append(out, e)
	}
	return out
}

// Extension returns the extension of path without the dot, or "" if it has
// none.
func Extension(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == "" || ext == "." || ext == base {
		return ""
	}
	return ext[1:]
}
