//go:build !lean

package treesitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/codetrail/internal/domain/events"
)

func TestRegistry_BuiltinGrammars(t *testing.T) {
	r := NewDefaultRegistry()

	assert.Subset(t, r.Languages(), []string{"c", "cpp", "java", "javascript", "php", "rust", "tsx", "typescript"})
	for path, lang := range map[string]string{
		"main.c":    "c",
		"util.h":    "c",
		"app.cc":    "cpp",
		"Main.java": "java",
		"index.mjs": "javascript",
		"view.tsx":  "tsx",
		"lib.rs":    "rust",
	} {
		p, ok := r.ParserFor(path)
		require.True(t, ok, path)
		assert.Equal(t, lang, p.Name(), path)
	}
}

func builtinParser(t *testing.T, path string) LanguageParser {
	t.Helper()
	p, ok := NewDefaultRegistry().ParserFor(path)
	require.True(t, ok)
	return p
}

func TestGeneric_Builtins(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		src    string
		want   string
		params []string
	}{
		{"c declarator", "m.c", "int add(int a, int b) {\n    return a + b;\n}\n", "add", []string{"int a", "int b"}},
		{"c pointer return", "m.c", "char *dup(const char *s) {\n    return 0;\n}\n", "dup", []string{"const char *s"}},
		{"rust", "lib.rs", "fn parse(input: &str) -> usize {\n    input.len()\n}\n", "parse", []string{"input: &str"}},
		{"javascript", "a.js", "function greet(name) {\n  return name;\n}\n", "greet", []string{"name"}},
		{"java", "A.java", "class A {\n  int size(int n) {\n    return n;\n  }\n}\n", "size", []string{"int n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe, err := ParseSource(builtinParser(t, tt.path), tt.path, []byte(tt.src), testModTime)
			require.NoError(t, err)
			fns := fe.Functions()
			require.Len(t, fns, 1)
			assert.Equal(t, tt.want, fns[0].Name)
			assert.Equal(t, tt.params, fns[0].Parameters)
		})
	}
}

func TestGeneric_RustReturnType(t *testing.T) {
	src := "fn _hidden() -> bool {\n    true\n}\n"
	fe, err := ParseSource(builtinParser(t, "x.rs"), "x.rs", []byte(src), testModTime)
	require.NoError(t, err)

	require.Len(t, fe.Functions(), 1)
	assert.Equal(t, events.FunctionDefinition{
		Name:       "_hidden",
		StartLine:  1,
		EndLine:    3,
		Parameters: []string{},
		ReturnType: "bool",
		IsPublic:   false,
	}, fe.Functions()[0])
}
