//go:build lean

package treesitter

// registerBuiltinGrammars is a no-op in lean builds. Only Python and Go are
// compiled in; everything else comes from GrammarLoader.
func registerBuiltinGrammars(*Registry) {}
