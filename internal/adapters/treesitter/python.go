package treesitter

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	ts_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/corey/codetrail/internal/domain/events"
)

// Python extracts events from Python sources.
type Python struct {
	lang  *tree_sitter.Language
	rules RuleSet
}

// NewPython builds the Python parser with its compiled-in grammar.
func NewPython() *Python {
	p := &Python{lang: tree_sitter.NewLanguage(ts_python.Language())}
	p.rules = RuleSet{
		"module":                pyModule,
		"function_definition":   pyFunctionDefinition,
		"class_definition":      pyClassDefinition,
		"decorated_definition":  pyDecoratedDefinition,
		"import_statement":      pyImport,
		"import_from_statement": pyImportFrom,
		"if_statement":          pyConditional("if"),
		"elif_clause":           pyConditional("elif"),
		"else_clause":           pyElse,
		"for_statement":         pyFor,
		"while_statement":       pyWhile,
		"try_statement":         pyTry,
		"with_statement":        pyWith,
		"list_comprehension":    pyListComprehension,
		"call":                  pyCall,
		"assignment":            pyAssignment,
		"augmented_assignment":  pyAugmentedAssignment,
		"comment":               commentRule,
		"match_statement":       unsupported,
		"global_statement":      unsupported,
		"nonlocal_statement":    unsupported,
	}
	return p
}

func (p *Python) Name() string { return "python" }
func (p *Python) Extensions() []string { return []string{"py", "pyw", "pyi"} }
func (p *Python) Language() *tree_sitter.Language { return p.lang }
func (p *Python) Rules() RuleSet { return p.rules }

func unsupported(*Context, *tree_sitter.Node) (Outcome, error) {
	return Outcome{}, ErrUnsupportedConstruct
}

func isPublic(name string) bool {
	return !strings.HasPrefix(name, "_")
}

func pyModule(c *Context, n *tree_sitter.Node) (Outcome, error) {
	out := Outcome{Recurse: children(n)}
	if doc, line, ok := pyDocstring(c, n); ok {
		out.Events = append(out.Events, events.DocComment{Content: doc, LineNo: line, DocType: events.DocModule})
	}
	return out, nil
}

// pyFunctionDefinition emits the definition and descends only into the body.
func pyFunctionDefinition(c *Context, n *tree_sitter.Node) (Outcome, error) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return Outcome{}, ErrUnsupportedConstruct
	}
	name := c.Text(nameNode)

	def := events.FunctionDefinition{
		Name:       name,
		StartLine:  startLine(n),
		EndLine:    endLine(n),
		Parameters: pyParameters(c, n.ChildByFieldName("parameters")),
		IsPublic:   isPublic(name),
	}
	if rt := n.ChildByFieldName("return_type"); rt != nil {
		def.ReturnType = c.Text(rt)
	}

	out := Outcome{Events: []events.Event{def}, Scope: name}
	if childByKind(n, "async") != nil {
		out.Events = append(out.Events, events.PythonAsyncFunction{FunctionName: name, LineNo: startLine(n)})
	}
	body := n.ChildByFieldName("body")
	if doc, line, ok := pyDocstring(c, body); ok {
		out.Events = append(out.Events, events.DocComment{Target: name, Content: doc, LineNo: line, DocType: events.DocFunction})
	}
	out.Recurse = only(body)
	return out, nil
}

// pyParameters renders each parameter as "name", "name: type",
// "name = value" or "name: type = value". Splats keep their source text;
// bare "*" and "/" separators are dropped.
func pyParameters(c *Context, params *tree_sitter.Node) []string {
	out := []string{}
	for _, p := range namedChildren(params) {
		switch p.Kind() {
		case "keyword_separator", "positional_separator", "comment":
			continue
		case "typed_parameter":
			var name string
			if first := p.NamedChild(0); first != nil {
				name = c.Text(first)
			}
			out = append(out, name+": "+c.Text(p.ChildByFieldName("type")))
		case "default_parameter":
			out = append(out, c.Text(p.ChildByFieldName("name"))+" = "+c.Text(p.ChildByFieldName("value")))
		case "typed_default_parameter":
			out = append(out, c.Text(p.ChildByFieldName("name"))+": "+
				c.Text(p.ChildByFieldName("type"))+" = "+c.Text(p.ChildByFieldName("value")))
		default:
			out = append(out, c.Text(p))
		}
	}
	return out
}

// pyDocstring reports the leading string statement of a module or block.
func pyDocstring(c *Context, block *tree_sitter.Node) (string, int, bool) {
	if block == nil {
		return "", 0, false
	}
	first := block.NamedChild(0)
	if first != nil && first.Kind() == "comment" {
		for _, ch := range namedChildren(block) {
			if ch.Kind() != "comment" {
				first = ch
				break
			}
		}
	}
	if first == nil || first.Kind() != "expression_statement" {
		return "", 0, false
	}
	str := first.NamedChild(0)
	if str == nil || str.Kind() != "string" {
		return "", 0, false
	}
	return pyStringContent(c.Text(str)), startLine(str), true
}

// pyStringContent strips prefixes and quotes from a string literal.
func pyStringContent(lit string) string {
	s := strings.TrimLeft(lit, "rRbBuUfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if len(s) >= 2*len(q) && strings.HasPrefix(s, q) && strings.HasSuffix(s, q) {
			return strings.TrimSpace(s[len(q) : len(s)-len(q)])
		}
	}
	return strings.TrimSpace(lit)
}

func pyClassDefinition(c *Context, n *tree_sitter.Node) (Outcome, error) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return Outcome{}, ErrUnsupportedConstruct
	}
	name := c.Text(nameNode)
	body := n.ChildByFieldName("body")

	out := Outcome{Events: []events.Event{events.ClassDefinition{
		Name:      name,
		StartLine: startLine(n),
		EndLine:   endLine(n),
		Fields:    pyClassFields(c, body),
		IsPublic:  isPublic(name),
	}}}

	var parents []string
	for _, arg := range namedChildren(n.ChildByFieldName("superclasses")) {
		if arg.Kind() == "keyword_argument" || arg.Kind() == "comment" {
			continue
		}
		parents = append(parents, c.Text(arg))
	}
	if len(parents) > 0 {
		out.Events = append(out.Events, events.ClassInheritance{ChildClass: name, ParentClasses: parents, LineNo: startLine(n)})
	}
	if doc, line, ok := pyDocstring(c, body); ok {
		out.Events = append(out.Events, events.DocComment{Target: name, Content: doc, LineNo: line, DocType: events.DocClass})
	}
	out.Recurse = only(body)
	return out, nil
}

// pyClassFields collects names assigned directly in a class body.
func pyClassFields(c *Context, body *tree_sitter.Node) []string {
	var fields []string
	for _, stmt := range namedChildren(body) {
		if stmt.Kind() != "expression_statement" {
			continue
		}
		assign := stmt.NamedChild(0)
		if assign == nil || assign.Kind() != "assignment" {
			continue
		}
		if left := assign.ChildByFieldName("left"); left != nil && left.Kind() == "identifier" {
			fields = append(fields, c.Text(left))
		}
	}
	return fields
}

func pyDecoratedDefinition(c *Context, n *tree_sitter.Node) (Outcome, error) {
	def := n.ChildByFieldName("definition")
	if def == nil {
		return Outcome{}, ErrUnsupportedConstruct
	}
	target := c.Text(def.ChildByFieldName("name"))

	var out Outcome
	for _, ch := range namedChildren(n) {
		if ch.Kind() != "decorator" {
			continue
		}
		out.Events = append(out.Events, events.PythonDecorator{
			Target:    target,
			Decorator: strings.TrimSpace(strings.TrimPrefix(c.Text(ch), "@")),
			LineNo:    startLine(ch),
		})
	}
	out.Recurse = only(def)
	return out, nil
}

// pyImport emits one statement per imported module.
func pyImport(c *Context, n *tree_sitter.Node) (Outcome, error) {
	var out Outcome
	for _, ch := range namedChildren(n) {
		var module string
		switch ch.Kind() {
		case "dotted_name":
			module = c.Text(ch)
		case "aliased_import":
			module = c.Text(ch.ChildByFieldName("name"))
		default:
			continue
		}
		out.Events = append(out.Events, events.ImportStatement{Module: module, LineNo: startLine(n)})
	}
	return out, nil
}

func pyImportFrom(c *Context, n *tree_sitter.Node) (Outcome, error) {
	mod := n.ChildByFieldName("module_name")
	if mod == nil {
		return Outcome{}, ErrUnsupportedConstruct
	}
	imp := events.ImportStatement{Module: c.Text(mod), LineNo: startLine(n)}
	for _, ch := range namedChildren(n) {
		if ch.StartByte() == mod.StartByte() {
			continue
		}
		switch ch.Kind() {
		case "wildcard_import":
			imp.IsWildcard = true
		case "dotted_name":
			imp.Items = append(imp.Items, c.Text(ch))
		case "aliased_import":
			imp.Items = append(imp.Items, c.Text(ch.ChildByFieldName("name")))
		}
	}
	return Outcome{Events: []events.Event{imp}}, nil
}

func pyConditional(kind string) Rule {
	return func(c *Context, n *tree_sitter.Node) (Outcome, error) {
		return Outcome{
			Events: []events.Event{events.ConditionalBlock{
				ConditionType:    kind,
				ConditionSummary: summarize(c.Text(n.ChildByFieldName("condition"))),
				StartLine:        startLine(n),
				EndLine:          endLine(n),
			}},
			Recurse: children(n),
		}, nil
	}
}

// pyElse emits only for the else of an if statement. The else of a loop or
// try is part of that block and is just descended into.
func pyElse(c *Context, n *tree_sitter.Node) (Outcome, error) {
	if p := n.Parent(); p == nil || p.Kind() != "if_statement" {
		return Outcome{Recurse: children(n)}, nil
	}
	return pyConditional("else")(c, n)
}

func pyFor(c *Context, n *tree_sitter.Node) (Outcome, error) {
	return Outcome{
		Events: []events.Event{events.LoopBlock{
			LoopType:         "for",
			IteratorVariable: c.Text(n.ChildByFieldName("left")),
			Iterable:         summarize(c.Text(n.ChildByFieldName("right"))),
			StartLine:        startLine(n),
			EndLine:          endLine(n),
		}},
		Recurse: children(n),
	}, nil
}

func pyWhile(c *Context, n *tree_sitter.Node) (Outcome, error) {
	return Outcome{
		Events: []events.Event{events.LoopBlock{
			LoopType:  "while",
			Iterable:  summarize(c.Text(n.ChildByFieldName("condition"))),
			StartLine: startLine(n),
			EndLine:   endLine(n),
		}},
		Recurse: children(n),
	}, nil
}

func pyTry(c *Context, n *tree_sitter.Node) (Outcome, error) {
	block := events.TryBlock{StartLine: startLine(n), EndLine: endLine(n)}
	for _, ch := range namedChildren(n) {
		switch ch.Kind() {
		case "finally_clause":
			block.HasFinally = true
		case "except_clause", "except_group_clause":
			block.ExceptionTypes = append(block.ExceptionTypes, pyExceptTypes(c, ch)...)
		}
	}
	return Outcome{Events: []events.Event{block}, Recurse: children(n)}, nil
}

// pyExceptTypes reads the caught types of one except clause; a bare
// "except:" contributes nothing.
func pyExceptTypes(c *Context, clause *tree_sitter.Node) []string {
	first := clause.NamedChild(0)
	if first == nil || first.Kind() == "block" {
		return nil
	}
	if first.Kind() == "as_pattern" {
		first = first.NamedChild(0)
		if first == nil {
			return nil
		}
	}
	if first.Kind() == "tuple" || first.Kind() == "parenthesized_expression" {
		var types []string
		for _, t := range namedChildren(first) {
			types = append(types, c.Text(t))
		}
		return types
	}
	return []string{c.Text(first)}
}

func pyWith(c *Context, n *tree_sitter.Node) (Outcome, error) {
	out := Outcome{Recurse: children(n)}
	clause := childByKind(n, "with_clause")
	if clause == nil {
		return out, nil
	}
	for _, item := range namedChildren(clause) {
		if item.Kind() != "with_item" {
			continue
		}
		value := item.ChildByFieldName("value")
		if value == nil {
			continue
		}
		cm := events.PythonContextManager{LineNo: startLine(item)}
		if value.Kind() == "as_pattern" {
			cm.ContextExpression = c.Text(value.NamedChild(0))
			cm.Variable = c.Text(value.ChildByFieldName("alias"))
		} else {
			cm.ContextExpression = c.Text(value)
		}
		out.Events = append(out.Events, cm)
	}
	return out, nil
}

func pyListComprehension(c *Context, n *tree_sitter.Node) (Outcome, error) {
	lc := events.PythonListComprehension{
		ResultExpression: c.Text(n.ChildByFieldName("body")),
		LineNo:           startLine(n),
	}
	if clause := childByKind(n, "for_in_clause"); clause != nil {
		lc.IteratorVariable = c.Text(clause.ChildByFieldName("left"))
		lc.Iterable = c.Text(clause.ChildByFieldName("right"))
	}
	return Outcome{Events: []events.Event{lc}, Recurse: children(n)}, nil
}

func pyCall(c *Context, n *tree_sitter.Node) (Outcome, error) {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return Outcome{}, ErrUnsupportedConstruct
	}
	call := events.FunctionCall{
		CallerFunction: c.Scope,
		Callee:         c.Text(fn),
		LineNo:         startLine(n),
	}
	if args := n.ChildByFieldName("arguments"); args != nil && args.Kind() == "argument_list" {
		for _, a := range namedChildren(args) {
			if a.Kind() != "comment" {
				call.Arguments = append(call.Arguments, c.Text(a))
			}
		}
	}
	return Outcome{Events: []events.Event{call}, Recurse: children(n)}, nil
}

// pyAssignment handles single-target assignments. Destructuring targets are
// reported as unsupported.
func pyAssignment(c *Context, n *tree_sitter.Node) (Outcome, error) {
	left := n.ChildByFieldName("left")
	if left == nil {
		return Outcome{}, ErrUnsupportedConstruct
	}
	out := Outcome{Recurse: only(n.ChildByFieldName("right"))}
	switch left.Kind() {
	case "identifier":
		name := c.Text(left)
		out.Events = append(out.Events, events.VariableDefinition{
			Name:       name,
			VarType:    c.Text(n.ChildByFieldName("type")),
			LineNo:     startLine(n),
			IsPublic:   isPublic(name),
			IsConstant: isConstantName(name),
		})
	case "attribute", "subscript":
		out.Events = append(out.Events, events.VariableAccess{
			Variable:   c.Text(left),
			AccessType: events.AccessWrite,
			LineNo:     startLine(n),
			Context:    c.Scope,
		})
	default:
		return Outcome{}, ErrUnsupportedConstruct
	}
	return out, nil
}

func pyAugmentedAssignment(c *Context, n *tree_sitter.Node) (Outcome, error) {
	left := n.ChildByFieldName("left")
	if left == nil {
		return Outcome{}, ErrUnsupportedConstruct
	}
	return Outcome{
		Events: []events.Event{events.VariableAccess{
			Variable:   c.Text(left),
			AccessType: events.AccessReadWrite,
			LineNo:     startLine(n),
			Context:    c.Scope,
		}},
		Recurse: only(n.ChildByFieldName("right")),
	}, nil
}

// isConstantName reports an all-caps name such as MAX_SIZE.
func isConstantName(name string) bool {
	hasLetter := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
			return false
		case r >= 'A' && r <= 'Z':
			hasLetter = true
		}
	}
	return hasLetter
}
