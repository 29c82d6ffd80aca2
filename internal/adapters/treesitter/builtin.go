//go:build !lean

package treesitter

// Grammars compiled into the default build. Building with -tags lean drops
// them; those languages can still be loaded at runtime by GrammarLoader.

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	ts_c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	ts_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	ts_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	ts_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	ts_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	ts_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

var jsFunctionKinds = []string{"function_declaration", "generator_function_declaration", "method_definition"}

// registerBuiltinGrammars adds the compiled-in Generic languages.
func registerBuiltinGrammars(r *Registry) {
	builtin := []struct {
		spec GrammarSpec
		lang *tree_sitter.Language
	}{
		{GrammarSpec{Name: "c", Extensions: []string{"c", "h"}, FunctionKinds: []string{"function_definition"}},
			tree_sitter.NewLanguage(ts_c.Language())},
		{GrammarSpec{Name: "cpp", Extensions: []string{"cpp", "cc", "cxx", "hpp", "hh", "hxx"}, FunctionKinds: []string{"function_definition"}},
			tree_sitter.NewLanguage(ts_cpp.Language())},
		{GrammarSpec{Name: "java", Extensions: []string{"java"}, FunctionKinds: []string{"method_declaration", "constructor_declaration"}},
			tree_sitter.NewLanguage(ts_java.Language())},
		{GrammarSpec{Name: "javascript", Extensions: []string{"js", "mjs", "cjs", "jsx"}, FunctionKinds: jsFunctionKinds},
			tree_sitter.NewLanguage(ts_javascript.Language())},
		{GrammarSpec{Name: "typescript", Extensions: []string{"ts", "mts", "cts"}, FunctionKinds: jsFunctionKinds},
			tree_sitter.NewLanguage(ts_typescript.LanguageTypescript())},
		{GrammarSpec{Name: "tsx", Extensions: []string{"tsx"}, FunctionKinds: jsFunctionKinds},
			tree_sitter.NewLanguage(ts_typescript.LanguageTSX())},
		{GrammarSpec{Name: "rust", Extensions: []string{"rs"}, FunctionKinds: []string{"function_item"}},
			tree_sitter.NewLanguage(ts_rust.Language())},
		{GrammarSpec{Name: "php", Extensions: []string{"php"}, FunctionKinds: []string{"function_definition", "method_declaration"}},
			tree_sitter.NewLanguage(ts_php.LanguagePHP())},
	}
	for _, b := range builtin {
		r.Register(NewGeneric(b.spec, b.lang))
	}
}
