package treesitter

import (
	"strings"
	"unicode/utf8"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// nodeText returns the source text for a node.
func nodeText(n *tree_sitter.Node, source []byte) string {
	return string(source[n.StartByte():n.EndByte()])
}

// childByKind finds the first child with the given kind.
func childByKind(n *tree_sitter.Node, kind string) *tree_sitter.Node {
	for i := uint(0); i < n.ChildCount(); i++ {
		if c := n.Child(i); c != nil && c.Kind() == kind {
			return c
		}
	}
	return nil
}

// children returns every child of n, named or not.
func children(n *tree_sitter.Node) []*tree_sitter.Node {
	out := make([]*tree_sitter.Node, 0, n.ChildCount())
	for i := uint(0); i < n.ChildCount(); i++ {
		if c := n.Child(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// namedChildren returns the named children of n.
func namedChildren(n *tree_sitter.Node) []*tree_sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*tree_sitter.Node, 0, n.NamedChildCount())
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if c := n.NamedChild(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

func startLine(n *tree_sitter.Node) int {
	return int(n.StartPosition().Row) + 1
}

func endLine(n *tree_sitter.Node) int {
	return int(n.EndPosition().Row) + 1
}

// only wraps a single subtree for Outcome.Recurse, dropping nil.
func only(n *tree_sitter.Node) []*tree_sitter.Node {
	if n == nil {
		return nil
	}
	return []*tree_sitter.Node{n}
}

// summarize keeps the first line of s, capped at 80 bytes without splitting
// a UTF-8 sequence.
func summarize(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if len(s) > 80 {
		cut := 77
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "..."
	}
	return s
}
