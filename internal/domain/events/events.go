// Package events defines the structural events a language parser emits for a
// source file, and FileEvents, the per-file collection handed to the index.
//
// Event is a closed set: only the variants declared in this package satisfy
// it. Lines are 1-indexed.
package events

// Kind names an event variant.
type Kind string

const (
	KindFunctionDefinition      Kind = "function_definition"
	KindClassDefinition         Kind = "class_definition"
	KindVariableDefinition      Kind = "variable_definition"
	KindImportStatement         Kind = "import_statement"
	KindConditionalBlock        Kind = "conditional_block"
	KindLoopBlock               Kind = "loop_block"
	KindTryBlock                Kind = "try_block"
	KindFunctionCall            Kind = "function_call"
	KindVariableAccess          Kind = "variable_access"
	KindClassInheritance        Kind = "class_inheritance"
	KindPythonDecorator         Kind = "python_decorator"
	KindPythonAsyncFunction     Kind = "python_async_function"
	KindPythonContextManager    Kind = "python_context_manager"
	KindPythonListComprehension Kind = "python_list_comprehension"
	KindDocComment              Kind = "doc_comment"
	KindComment                 Kind = "comment"
)

// Event is one structural fact about a file.
type Event interface {
	Kind() Kind
	// Line is the first line the event covers.
	Line() int
	isEvent()
}

// AccessType describes how a variable is touched.
type AccessType string

const (
	AccessRead      AccessType = "read"
	AccessWrite     AccessType = "write"
	AccessReadWrite AccessType = "read_write"
)

// DocType is what a doc comment documents.
type DocType string

const (
	DocFunction DocType = "function"
	DocClass    DocType = "class"
	DocModule   DocType = "module"
	DocVariable DocType = "variable"
)

// CommentType classifies a plain comment.
type CommentType string

const (
	CommentLine  CommentType = "line"
	CommentBlock CommentType = "block"
	CommentTodo  CommentType = "todo"
	CommentFixme CommentType = "fixme"
)

type FunctionDefinition struct {
	Name       string   `json:"name"`
	StartLine  int      `json:"start_line"`
	EndLine    int      `json:"end_line"`
	Parameters []string `json:"parameters"`
	ReturnType string   `json:"return_type,omitempty"`
	IsPublic   bool     `json:"is_public"`
}

type ClassDefinition struct {
	Name      string   `json:"name"`
	StartLine int      `json:"start_line"`
	EndLine   int      `json:"end_line"`
	Fields    []string `json:"fields,omitempty"`
	IsPublic  bool     `json:"is_public"`
}

type VariableDefinition struct {
	Name       string `json:"name"`
	VarType    string `json:"var_type,omitempty"`
	LineNo     int    `json:"line"`
	IsPublic   bool   `json:"is_public"`
	IsConstant bool   `json:"is_constant"`
}

type ImportStatement struct {
	Module     string   `json:"module"`
	Items      []string `json:"items,omitempty"`
	LineNo     int      `json:"line"`
	IsWildcard bool     `json:"is_wildcard"`
}

type ConditionalBlock struct {
	ConditionType    string `json:"condition_type"`
	ConditionSummary string `json:"condition_summary,omitempty"`
	StartLine        int    `json:"start_line"`
	EndLine          int    `json:"end_line"`
}

type LoopBlock struct {
	LoopType         string `json:"loop_type"`
	IteratorVariable string `json:"iterator_variable,omitempty"`
	Iterable         string `json:"iterable,omitempty"`
	StartLine        int    `json:"start_line"`
	EndLine          int    `json:"end_line"`
}

type TryBlock struct {
	StartLine      int      `json:"start_line"`
	EndLine        int      `json:"end_line"`
	ExceptionTypes []string `json:"exception_types,omitempty"`
	HasFinally     bool     `json:"has_finally"`
}

type FunctionCall struct {
	CallerFunction string   `json:"caller_function,omitempty"`
	Callee         string   `json:"callee"`
	LineNo         int      `json:"line"`
	Arguments      []string `json:"arguments,omitempty"`
}

type VariableAccess struct {
	Variable   string     `json:"variable"`
	AccessType AccessType `json:"access_type"`
	LineNo     int        `json:"line"`
	Context    string     `json:"context,omitempty"`
}

type ClassInheritance struct {
	ChildClass    string   `json:"child_class"`
	ParentClasses []string `json:"parent_classes"`
	LineNo        int      `json:"line"`
}

type PythonDecorator struct {
	Target    string `json:"target"`
	Decorator string `json:"decorator"`
	LineNo    int    `json:"line"`
}

type PythonAsyncFunction struct {
	FunctionName string `json:"function_name"`
	LineNo       int    `json:"line"`
}

type PythonContextManager struct {
	Variable          string `json:"variable,omitempty"`
	ContextExpression string `json:"context_expression"`
	LineNo            int    `json:"line"`
}

type PythonListComprehension struct {
	ResultExpression string `json:"result_expression"`
	IteratorVariable string `json:"iterator_variable,omitempty"`
	Iterable         string `json:"iterable,omitempty"`
	LineNo           int    `json:"line"`
}

type DocComment struct {
	Target  string  `json:"target,omitempty"`
	Content string  `json:"content"`
	LineNo  int     `json:"line"`
	DocType DocType `json:"doc_type"`
}

type Comment struct {
	Content     string      `json:"content"`
	LineNo      int         `json:"line"`
	CommentType CommentType `json:"comment_type"`
}

func (FunctionDefinition) Kind() Kind { return KindFunctionDefinition }
func (ClassDefinition) Kind() Kind { return KindClassDefinition }
func (VariableDefinition) Kind() Kind { return KindVariableDefinition }
func (ImportStatement) Kind() Kind { return KindImportStatement }
func (ConditionalBlock) Kind() Kind { return KindConditionalBlock }
func (LoopBlock) Kind() Kind { return KindLoopBlock }
func (TryBlock) Kind() Kind { return KindTryBlock }
func (FunctionCall) Kind() Kind { return KindFunctionCall }
func (VariableAccess) Kind() Kind { return KindVariableAccess }
func (ClassInheritance) Kind() Kind { return KindClassInheritance }
func (PythonDecorator) Kind() Kind { return KindPythonDecorator }
func (PythonAsyncFunction) Kind() Kind { return KindPythonAsyncFunction }
func (PythonContextManager) Kind() Kind { return KindPythonContextManager }
func (PythonListComprehension) Kind() Kind { return KindPythonListComprehension }
func (DocComment) Kind() Kind { return KindDocComment }
func (Comment) Kind() Kind { return KindComment }

func (e FunctionDefinition) Line() int { return e.StartLine }
func (e ClassDefinition) Line() int { return e.StartLine }
func (e VariableDefinition) Line() int { return e.LineNo }
func (e ImportStatement) Line() int { return e.LineNo }
func (e ConditionalBlock) Line() int { return e.StartLine }
func (e LoopBlock) Line() int { return e.StartLine }
func (e TryBlock) Line() int { return e.StartLine }
func (e FunctionCall) Line() int { return e.LineNo }
func (e VariableAccess) Line() int { return e.LineNo }
func (e ClassInheritance) Line() int { return e.LineNo }
func (e PythonDecorator) Line() int { return e.LineNo }
func (e PythonAsyncFunction) Line() int { return e.LineNo }
func (e PythonContextManager) Line() int { return e.LineNo }
func (e PythonListComprehension) Line() int { return e.LineNo }
func (e DocComment) Line() int { return e.LineNo }
func (e Comment) Line() int { return e.LineNo }

func (FunctionDefinition) isEvent() {}
func (ClassDefinition) isEvent() {}
func (VariableDefinition) isEvent() {}
func (ImportStatement) isEvent() {}
func (ConditionalBlock) isEvent() {}
func (LoopBlock) isEvent() {}
func (TryBlock) isEvent() {}
func (FunctionCall) isEvent() {}
func (VariableAccess) isEvent() {}
func (ClassInheritance) isEvent() {}
func (PythonDecorator) isEvent() {}
func (PythonAsyncFunction) isEvent() {}
func (PythonContextManager) isEvent() {}
func (PythonListComprehension) isEvent() {}
func (DocComment) isEvent() {}
func (Comment) isEvent() {}

// All returns a zero value of every variant. Codecs use it to register the
// concrete types behind the Event interface.
func All() []Event {
	return []Event{
		FunctionDefinition{}, ClassDefinition{}, VariableDefinition{},
		ImportStatement{}, ConditionalBlock{}, LoopBlock{}, TryBlock{},
		FunctionCall{}, VariableAccess{}, ClassInheritance{},
		PythonDecorator{}, PythonAsyncFunction{}, PythonContextManager{},
		PythonListComprehension{}, DocComment{}, Comment{},
	}
}
