package treesitter

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/corey/codetrail/internal/domain/events"
)

var genericNameKinds = []string{"identifier", "name", "field_identifier", "property_identifier", "simple_identifier"}

var genericParamKinds = []string{"parameters", "formal_parameters", "parameter_list", "function_value_parameters"}

// Generic drives a runtime-loaded grammar with a configured set of
// function node kinds. Everything else uses the default descent.
type Generic struct {
	name  string
	exts  []string
	lang  *tree_sitter.Language
	rules RuleSet
}

// NewGeneric wraps lang for the language described by spec.
func NewGeneric(spec GrammarSpec, lang *tree_sitter.Language) *Generic {
	g := &Generic{name: spec.Name, exts: spec.Extensions, lang: lang, rules: RuleSet{}}
	for _, kind := range spec.FunctionKinds {
		g.rules[kind] = genericFunction
	}
	for _, kind := range []string{"comment", "line_comment", "block_comment"} {
		g.rules[kind] = commentRule
	}
	return g
}

func (g *Generic) Name() string { return g.name }
func (g *Generic) Extensions() []string { return g.exts }
func (g *Generic) Language() *tree_sitter.Language { return g.lang }
func (g *Generic) Rules() RuleSet { return g.rules }

func genericFunction(c *Context, n *tree_sitter.Node) (Outcome, error) {
	nameNode := n.ChildByFieldName("name")
	for _, kind := range genericNameKinds {
		if nameNode != nil {
			break
		}
		nameNode = childByKind(n, kind)
	}
	// C and C++ keep the name and parameters on a nested declarator.
	params := n.ChildByFieldName("parameters")
	if nameNode == nil {
		nameNode, params = declaratorName(n)
	}
	if nameNode == nil {
		return Outcome{}, ErrUnsupportedConstruct
	}
	name := c.Text(nameNode)

	def := events.FunctionDefinition{
		Name:       name,
		StartLine:  startLine(n),
		EndLine:    endLine(n),
		Parameters: []string{},
		IsPublic:   isPublic(name),
	}
	for _, kind := range genericParamKinds {
		if params != nil {
			break
		}
		params = childByKind(n, kind)
	}
	for _, p := range namedChildren(params) {
		if p.Kind() != "comment" {
			def.Parameters = append(def.Parameters, c.Text(p))
		}
	}
	if rt := n.ChildByFieldName("return_type"); rt != nil {
		def.ReturnType = c.Text(rt)
	}

	recurse := only(n.ChildByFieldName("body"))
	if recurse == nil {
		recurse = children(n)
	}
	return Outcome{Events: []events.Event{def}, Recurse: recurse, Scope: name}, nil
}

// declaratorName follows the declarator chain of a C-family definition
// (pointer_declarator, function_declarator, ...) to the declared name. The
// parameter list is taken from the function_declarator on the way.
func declaratorName(n *tree_sitter.Node) (name, params *tree_sitter.Node) {
	for d := n.ChildByFieldName("declarator"); d != nil; d = d.ChildByFieldName("declarator") {
		if p := d.ChildByFieldName("parameters"); p != nil && params == nil {
			params = p
		}
		switch d.Kind() {
		case "identifier", "field_identifier", "qualified_identifier", "destructor_name", "operator_name":
			return d, params
		}
	}
	return nil, params
}
