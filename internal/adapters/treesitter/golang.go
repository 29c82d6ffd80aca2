package treesitter

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	ts_go "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"github.com/corey/codetrail/internal/domain/events"
)

// Golang extracts events from Go sources.
type Golang struct {
	lang  *tree_sitter.Language
	rules RuleSet
}

// NewGolang builds the Go parser with its compiled-in grammar.
func NewGolang() *Golang {
	g := &Golang{lang: tree_sitter.NewLanguage(ts_go.Language())}
	g.rules = RuleSet{
		"function_declaration": goFunction,
		"method_declaration":   goFunction,
		"import_spec":          goImportSpec,
		"call_expression":      goCall,
		"comment":              commentRule,
	}
	return g
}

func (g *Golang) Name() string { return "go" }
func (g *Golang) Extensions() []string { return []string{"go"} }
func (g *Golang) Language() *tree_sitter.Language { return g.lang }
func (g *Golang) Rules() RuleSet { return g.rules }

func goExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// goFunction covers functions and methods. Descends only into the body.
func goFunction(c *Context, n *tree_sitter.Node) (Outcome, error) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return Outcome{}, ErrUnsupportedConstruct
	}
	name := c.Text(nameNode)

	def := events.FunctionDefinition{
		Name:       name,
		StartLine:  startLine(n),
		EndLine:    endLine(n),
		Parameters: []string{},
		IsPublic:   goExported(name),
	}
	for _, p := range namedChildren(n.ChildByFieldName("parameters")) {
		if p.Kind() != "comment" {
			def.Parameters = append(def.Parameters, c.Text(p))
		}
	}
	if res := n.ChildByFieldName("result"); res != nil {
		def.ReturnType = c.Text(res)
	}
	return Outcome{
		Events:  []events.Event{def},
		Recurse: only(n.ChildByFieldName("body")),
		Scope:   name,
	}, nil
}

func goImportSpec(c *Context, n *tree_sitter.Node) (Outcome, error) {
	path := c.Text(n.ChildByFieldName("path"))
	if unq, err := strconv.Unquote(path); err == nil {
		path = unq
	}
	imp := events.ImportStatement{Module: path, LineNo: startLine(n)}
	if alias := n.ChildByFieldName("name"); alias != nil {
		switch alias.Kind() {
		case "dot":
			imp.IsWildcard = true
		default:
			imp.Items = []string{c.Text(alias)}
		}
	}
	return Outcome{Events: []events.Event{imp}}, nil
}

func goCall(c *Context, n *tree_sitter.Node) (Outcome, error) {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return Outcome{}, ErrUnsupportedConstruct
	}
	call := events.FunctionCall{
		CallerFunction: c.Scope,
		Callee:         c.Text(fn),
		LineNo:         startLine(n),
	}
	for _, a := range namedChildren(n.ChildByFieldName("arguments")) {
		if a.Kind() != "comment" {
			call.Arguments = append(call.Arguments, c.Text(a))
		}
	}
	return Outcome{Events: []events.Event{call}, Recurse: children(n)}, nil
}
