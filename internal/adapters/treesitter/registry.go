package treesitter

import (
	"sort"

	"github.com/corey/codetrail/internal/domain/events"
	"github.com/corey/codetrail/internal/domain/gate"
)

// Registry maps file extensions to language parsers. It is additive:
// registering a language that handles an extension already claimed takes
// the extension over.
type Registry struct {
	parsers   map[string]LanguageParser // language name -> parser
	extToLang map[string]string         // extension -> language name
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		parsers:   make(map[string]LanguageParser),
		extToLang: make(map[string]string),
	}
}

// NewDefaultRegistry returns a registry with the compiled-in languages.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	registerBuiltinGrammars(r)
	r.Register(NewPython())
	r.Register(NewGolang())
	return r
}

// Register adds p under its name and extensions.
func (r *Registry) Register(p LanguageParser) {
	r.parsers[p.Name()] = p
	for _, ext := range p.Extensions() {
		r.extToLang[ext] = p.Name()
	}
}

// RegisterGrammar loads spec through loader and registers a Generic parser
// for it.
func (r *Registry) RegisterGrammar(loader *GrammarLoader, spec GrammarSpec) error {
	lang, err := loader.Load(spec)
	if err != nil {
		return err
	}
	r.Register(NewGeneric(spec, lang))
	return nil
}

// ParserFor returns the parser for path's extension.
func (r *Registry) ParserFor(path string) (LanguageParser, bool) {
	lang, ok := r.extToLang[gate.Extension(path)]
	if !ok {
		return nil, false
	}
	p, ok := r.parsers[lang]
	return p, ok
}

// Supports reports whether some parser handles path.
func (r *Registry) Supports(path string) bool {
	_, ok := r.ParserFor(path)
	return ok
}

// ParseFile parses content with the parser for path. Returns nil, nil when
// no parser handles the extension.
func (r *Registry) ParseFile(path string, content []byte) (*events.FileEvents, error) {
	p, ok := r.ParserFor(path)
	if !ok {
		return nil, nil
	}
	return ParseFile(p, path, content)
}

// Languages lists registered language names, sorted.
func (r *Registry) Languages() []string {
	out := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Extensions lists registered extensions, sorted.
func (r *Registry) Extensions() []string {
	out := make([]string, 0, len(r.extToLang))
	for ext := range r.extToLang {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
