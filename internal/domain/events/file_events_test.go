package events

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFile() *FileEvents {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	f := NewFileEvents("/src/app.py", "python", now, now)
	f.Add(
		ImportStatement{Module: "os", LineNo: 1},
		FunctionDefinition{Name: "main", StartLine: 3, EndLine: 6, IsPublic: true},
		FunctionCall{CallerFunction: "main", Callee: "print", LineNo: 4},
		ClassDefinition{Name: "_Hidden", StartLine: 8, EndLine: 10},
		Comment{Content: "# TODO: tidy", LineNo: 4, CommentType: CommentTodo},
	)
	return f
}

func TestFileEvents_QueryHelpers(t *testing.T) {
	f := sampleFile()

	assert.Equal(t, 5, f.Len())
	require.Len(t, f.Functions(), 1)
	assert.Equal(t, "main", f.Functions()[0].Name)
	require.Len(t, f.Classes(), 1)
	assert.False(t, f.Classes()[0].IsPublic)
	require.Len(t, f.Imports(), 1)
	assert.Empty(t, f.Variables())
	require.Len(t, f.FunctionCalls(), 1)
	assert.Equal(t, "print", f.FunctionCalls()[0].Callee)
	assert.Len(t, f.OfKind(KindComment), 1)
}

func TestFileEvents_LineQueries(t *testing.T) {
	f := sampleFile()

	onFour := f.EventsByLine(4)
	require.Len(t, onFour, 2)
	assert.Equal(t, KindFunctionCall, onFour[0].Kind())
	assert.Equal(t, KindComment, onFour[1].Kind())

	// Range matches on the first line only: main starts at 3 even though it spans to 6.
	inRange := f.EventsInRange(3, 5)
	assert.Len(t, inRange, 3)
	assert.Empty(t, f.EventsInRange(11, 20))
}

func TestFileEvents_ParseIDAndUnsupported(t *testing.T) {
	a := sampleFile()
	b := sampleFile()

	_, err := uuid.Parse(a.ParseID)
	require.NoError(t, err)
	assert.NotEqual(t, a.ParseID, b.ParseID)

	a.MarkUnsupported("match_statement")
	a.MarkUnsupported("match_statement")
	a.MarkUnsupported("assignment")
	assert.Equal(t, []string{"match_statement", "assignment"}, a.Unsupported)
}

func TestAll_CoversEveryKind(t *testing.T) {
	seen := map[Kind]bool{}
	for _, e := range All() {
		seen[e.Kind()] = true
	}
	assert.Len(t, seen, 16)
}
