// Package treesitter turns source files into structural events using
// tree-sitter grammars.
//
// A LanguageParser supplies a grammar and a rule table keyed by node kind.
// The shared traversal walks the syntax tree in pre-order; each rule decides
// which events a node emits and which subtrees are visited next. Python and
// Go have hand-written rule tables. Other compiled-in grammars (omitted with
// -tags lean) and grammars loaded at runtime from shared libraries via purego
// run through the Generic function rule.
package treesitter

import (
	"errors"
	"fmt"
	"os"
	"time"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/corey/codetrail/internal/domain/events"
)

var (
	// ErrParseFailure means the grammar could not produce a tree.
	ErrParseFailure = errors.New("parse failure")

	// ErrUnsupportedConstruct is returned by a rule that recognizes a node
	// kind but does not extract it. The traversal records the kind and
	// descends into the node's children.
	ErrUnsupportedConstruct = errors.New("unsupported construct")
)

// LanguageParser is the contract every language implements.
type LanguageParser interface {
	// Name is the language id, e.g. "python".
	Name() string
	// Extensions lists handled file extensions without the leading dot.
	Extensions() []string
	// Language is the grammar used to build the tree.
	Language() *tree_sitter.Language
	// Rules maps node kinds to extraction rules. Kinds without a rule are
	// descended into and emit nothing.
	Rules() RuleSet
}

// ParseFile stats path for its modification time and parses content with p.
func ParseFile(p LanguageParser, path string, content []byte) (*events.FileEvents, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return ParseSource(p, path, content, info.ModTime())
}

// ParseSource parses content with p, recording modTime as the source's last
// modification.
func ParseSource(p LanguageParser, path string, content []byte, modTime time.Time) (*events.FileEvents, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(p.Language()); err != nil {
		return nil, fmt.Errorf("%w: %s: set language %s: %v", ErrParseFailure, path, p.Name(), err)
	}

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("%w: %s: no tree produced", ErrParseFailure, path)
	}
	defer tree.Close()

	fe := events.NewFileEvents(path, p.Name(), modTime, time.Now())
	Walk(tree.RootNode(), &Context{Source: content, Path: path}, p.Rules(), fe)
	return fe, nil
}
