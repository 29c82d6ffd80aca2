package treesitter

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/corey/codetrail/internal/adapters/ahocorasick"
	"github.com/corey/codetrail/internal/domain/events"
)

// markerTypes maps task markers to the comment type they imply.
var markerTypes = map[string]events.CommentType{
	"TODO":  events.CommentTodo,
	"XXX":   events.CommentTodo,
	"HACK":  events.CommentTodo,
	"FIXME": events.CommentFixme,
	"BUG":   events.CommentFixme,
}

var markers = ahocorasick.NewMarkerScanner([]string{"TODO", "XXX", "HACK", "FIXME", "BUG"})

// classifyComment picks the comment type. The first task marker wins; a
// comment without one is a block or line comment by its opener.
func classifyComment(text string) events.CommentType {
	if m, ok := markers.First(text); ok {
		return markerTypes[m]
	}
	if strings.HasPrefix(text, "/*") || strings.Contains(text, "\n") {
		return events.CommentBlock
	}
	return events.CommentLine
}

func commentRule(c *Context, n *tree_sitter.Node) (Outcome, error) {
	text := c.Text(n)
	return Outcome{Events: []events.Event{events.Comment{
		Content:     text,
		LineNo:      startLine(n),
		CommentType: classifyComment(text),
	}}}, nil
}
