package treesitter

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/corey/codetrail/internal/domain/events"
)

// Context is what a rule sees besides the node itself.
type Context struct {
	Source []byte
	Path   string
	// Scope is the name of the innermost enclosing function, if any.
	Scope string
}

// Text returns the source text of n.
func (c *Context) Text(n *tree_sitter.Node) string {
	if n == nil {
		return ""
	}
	return nodeText(n, c.Source)
}

// Outcome is a rule's decision for one node.
type Outcome struct {
	Events []events.Event
	// Recurse lists the subtrees to visit next, in source order. An empty
	// list stops descent at this node.
	Recurse []*tree_sitter.Node
	// Scope, when set, becomes Context.Scope for the recursed subtrees.
	Scope string
}

// Rule extracts events from one node kind.
type Rule func(c *Context, n *tree_sitter.Node) (Outcome, error)

// RuleSet maps node kinds to rules.
type RuleSet map[string]Rule

type frame struct {
	node  *tree_sitter.Node
	scope string
}

// Walk visits the tree rooted at root in pre-order using an explicit stack.
// Nodes without a rule are descended into. A failing rule never aborts the
// walk: its node kind is recorded on fe and its children are visited.
func Walk(root *tree_sitter.Node, base *Context, rules RuleSet, fe *events.FileEvents) {
	if root == nil {
		return
	}
	stack := []frame{{node: root, scope: base.Scope}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		next, scope := visit(f, base, rules, fe)
		for i := len(next) - 1; i >= 0; i-- {
			if next[i] != nil {
				stack = append(stack, frame{node: next[i], scope: scope})
			}
		}
	}
}

func visit(f frame, base *Context, rules RuleSet, fe *events.FileEvents) ([]*tree_sitter.Node, string) {
	rule, ok := rules[f.node.Kind()]
	if !ok {
		return children(f.node), f.scope
	}

	ctx := &Context{Source: base.Source, Path: base.Path, Scope: f.scope}
	out, err := rule(ctx, f.node)
	if err != nil {
		fe.MarkUnsupported(f.node.Kind())
		return children(f.node), f.scope
	}

	fe.Add(out.Events...)
	scope := f.scope
	if out.Scope != "" {
		scope = out.Scope
	}
	return out.Recurse, scope
}
