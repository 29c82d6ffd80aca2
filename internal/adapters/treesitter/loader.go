package treesitter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// ErrGrammarNotFound means no shared library for a grammar exists in the
// loader's search paths.
var ErrGrammarNotFound = errors.New("grammar not found")

// GrammarSpec describes a grammar loaded at runtime.
type GrammarSpec struct {
	Name       string
	Extensions []string
	// FunctionKinds are node kinds treated as function definitions.
	FunctionKinds []string
	// Library overrides the shared library base name (default: Name).
	Library string
	// Symbol overrides the exported constructor (default: tree_sitter_<name>).
	Symbol string
}

func (s GrammarSpec) library() string {
	if s.Library != "" {
		return s.Library
	}
	return s.Name
}

func (s GrammarSpec) symbol() string {
	if s.Symbol != "" {
		return s.Symbol
	}
	return "tree_sitter_" + strings.ReplaceAll(s.Name, "-", "_")
}

// GrammarLoader opens tree-sitter grammars from shared libraries (.so on
// Linux, .dylib on macOS) with purego. Search paths are tried in order and
// loaded languages are cached by name.
type GrammarLoader struct {
	searchPaths []string

	mu      sync.Mutex
	loaded  map[string]*tree_sitter.Language
	handles []uintptr
}

// NewGrammarLoader creates a loader over the given directories.
func NewGrammarLoader(searchPaths []string) *GrammarLoader {
	return &GrammarLoader{
		searchPaths: searchPaths,
		loaded:      make(map[string]*tree_sitter.Language),
	}
}

// DefaultGrammarPaths returns <root>/.codetrail/grammars then
// ~/.codetrail/grammars.
func DefaultGrammarPaths(root string) []string {
	var paths []string
	if root != "" {
		paths = append(paths, filepath.Join(root, ".codetrail", "grammars"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".codetrail", "grammars"))
	}
	return paths
}

// LibExtension returns the shared library extension for this platform.
func LibExtension() string {
	if runtime.GOOS == "darwin" {
		return ".dylib"
	}
	return ".so"
}

// Find returns the first library named base in the search paths, or "".
func (gl *GrammarLoader) Find(base string) string {
	for _, dir := range gl.searchPaths {
		candidate := filepath.Join(dir, base+LibExtension())
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Load opens the grammar described by spec.
func (gl *GrammarLoader) Load(spec GrammarSpec) (*tree_sitter.Language, error) {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	if cached, ok := gl.loaded[spec.Name]; ok {
		return cached, nil
	}

	libPath := gl.Find(spec.library())
	if libPath == "" {
		return nil, fmt.Errorf("%w: %s in %v", ErrGrammarNotFound, spec.Name, gl.searchPaths)
	}

	handle, err := purego.Dlopen(libPath, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, fmt.Errorf("grammar %s: dlopen %s: %w", spec.Name, libPath, err)
	}
	gl.handles = append(gl.handles, handle)

	sym, err := purego.Dlsym(handle, spec.symbol())
	if err != nil {
		return nil, fmt.Errorf("grammar %s: symbol %s: %w", spec.Name, spec.symbol(), err)
	}
	var constructor func() uintptr
	purego.RegisterFunc(&constructor, sym)

	ptr := constructor()
	if ptr == 0 {
		return nil, fmt.Errorf("grammar %s: %s() returned null", spec.Name, spec.symbol())
	}

	// ptr is a static TSLanguage* owned by the library, not Go memory.
	lang := tree_sitter.NewLanguage(*(*unsafe.Pointer)(unsafe.Pointer(&ptr)))
	gl.loaded[spec.Name] = lang
	return lang, nil
}

// Installed lists library base names present in the search paths.
func (gl *GrammarLoader) Installed() []string {
	ext := LibExtension()
	seen := make(map[string]bool)
	var names []string
	for _, dir := range gl.searchPaths {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
				continue
			}
			name := strings.TrimSuffix(e.Name(), ext)
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// SearchPaths returns the configured directories.
func (gl *GrammarLoader) SearchPaths() []string {
	return gl.searchPaths
}

// Close drops cached languages and handles.
func (gl *GrammarLoader) Close() {
	gl.mu.Lock()
	defer gl.mu.Unlock()
	gl.handles = nil
	gl.loaded = make(map[string]*tree_sitter.Language)
}
