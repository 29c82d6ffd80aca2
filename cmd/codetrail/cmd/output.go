package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/corey/codetrail/internal/domain/events"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

// writeJSON renders fe as indented JSON, each event tagged with its kind.
func writeJSON(w io.Writer, fe *events.FileEvents) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(fe)
}

// writeText renders fe for a terminal.
//
//	⚡ app.py (python) │ 12 events │ parsed 2s ago
//	     3  function_definition        foo(a, b: int)
func writeText(w io.Writer, fe *events.FileEvents) {
	fmt.Fprintf(w, "%s⚡ %s%s (%s) │ %d events │ parsed %s ago\n",
		colorBold, fe.Path, colorReset, fe.Language, fe.Len(),
		time.Since(fe.ParseTimestamp).Round(time.Second))
	for _, e := range fe.Events {
		fmt.Fprintf(w, "  %s%5d%s  %-26s %s\n", colorGray, e.Line(), colorReset, e.Kind(), describe(e))
	}
	if len(fe.Unsupported) > 0 {
		fmt.Fprintf(w, "  %sunsupported: %s%s\n", colorYellow, strings.Join(fe.Unsupported, ", "), colorReset)
	}
}

// describe is a one-line summary of e.
func describe(e events.Event) string {
	switch v := e.(type) {
	case events.FunctionDefinition:
		s := fmt.Sprintf("%s%s%s(%s)", colorCyan, v.Name, colorReset, strings.Join(v.Parameters, ", "))
		if v.ReturnType != "" {
			s += " -> " + v.ReturnType
		}
		return s
	case events.ClassDefinition:
		return colorCyan + v.Name + colorReset
	case events.VariableDefinition:
		if v.VarType != "" {
			return v.Name + ": " + v.VarType
		}
		return v.Name
	case events.ImportStatement:
		if len(v.Items) > 0 {
			return v.Module + " (" + strings.Join(v.Items, ", ") + ")"
		}
		return v.Module
	case events.ConditionalBlock:
		return v.ConditionType + " " + v.ConditionSummary
	case events.LoopBlock:
		return v.LoopType + " " + v.Iterable
	case events.TryBlock:
		return strings.Join(v.ExceptionTypes, ", ")
	case events.FunctionCall:
		if v.CallerFunction != "" {
			return v.CallerFunction + " → " + v.Callee
		}
		return v.Callee
	case events.VariableAccess:
		return fmt.Sprintf("%s (%s)", v.Variable, v.AccessType)
	case events.ClassInheritance:
		return v.ChildClass + " ← " + strings.Join(v.ParentClasses, ", ")
	case events.PythonDecorator:
		return "@" + v.Decorator + " " + v.Target
	case events.PythonAsyncFunction:
		return v.FunctionName
	case events.PythonContextManager:
		return v.ContextExpression
	case events.PythonListComprehension:
		return v.ResultExpression
	case events.DocComment:
		return firstLine(v.Content)
	case events.Comment:
		return fmt.Sprintf("[%s] %s", v.CommentType, firstLine(v.Content))
	default:
		return ""
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
