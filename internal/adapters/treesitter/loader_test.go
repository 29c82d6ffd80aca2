package treesitter

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestGrammarSpec_Defaults(t *testing.T) {
	tests := []struct {
		spec    GrammarSpec
		library string
		symbol  string
	}{
		{GrammarSpec{Name: "lua"}, "lua", "tree_sitter_lua"},
		{GrammarSpec{Name: "c-sharp"}, "c-sharp", "tree_sitter_c_sharp"},
		{GrammarSpec{Name: "tsx", Library: "typescript"}, "typescript", "tree_sitter_tsx"},
		{GrammarSpec{Name: "objc", Symbol: "tree_sitter_objc"}, "objc", "tree_sitter_objc"},
	}
	for _, tt := range tests {
		t.Run(tt.spec.Name, func(t *testing.T) {
			assert.Equal(t, tt.library, tt.spec.library())
			assert.Equal(t, tt.symbol, tt.spec.symbol())
		})
	}
}

func TestLibExtension(t *testing.T) {
	if runtime.GOOS == "darwin" {
		assert.Equal(t, ".dylib", LibExtension())
	} else {
		assert.Equal(t, ".so", LibExtension())
	}
}

func TestDefaultGrammarPaths(t *testing.T) {
	paths := DefaultGrammarPaths("/project/root")
	require.NotEmpty(t, paths)
	assert.Equal(t, filepath.Join("/project/root", ".codetrail", "grammars"), paths[0])

	if home, err := os.UserHomeDir(); err == nil {
		require.Len(t, paths, 2)
		assert.Equal(t, filepath.Join(home, ".codetrail", "grammars"), paths[1])
		assert.Len(t, DefaultGrammarPaths(""), 1)
	}
}

func TestGrammarLoader_FindAndPriority(t *testing.T) {
	dir1, dir2 := t.TempDir(), t.TempDir()
	ext := LibExtension()
	touch(t, filepath.Join(dir1, "lua"+ext))
	touch(t, filepath.Join(dir2, "lua"+ext))
	touch(t, filepath.Join(dir2, "zig"+ext))

	gl := NewGrammarLoader([]string{dir1, dir2})
	assert.Equal(t, filepath.Join(dir1, "lua"+ext), gl.Find("lua"))
	assert.Equal(t, filepath.Join(dir2, "zig"+ext), gl.Find("zig"))
	assert.Equal(t, "", gl.Find("ruby"))
	assert.ElementsMatch(t, []string{"lua", "zig"}, gl.Installed())
}

func TestGrammarLoader_LoadNotFound(t *testing.T) {
	gl := NewGrammarLoader([]string{"/nonexistent/path"})
	_, err := gl.Load(GrammarSpec{Name: "lua"})
	assert.ErrorIs(t, err, ErrGrammarNotFound)
	assert.Empty(t, gl.Installed())
}

func TestGrammarLoader_Close(t *testing.T) {
	gl := NewGrammarLoader([]string{t.TempDir()})
	gl.Close()
	assert.Empty(t, gl.loaded)
	assert.Nil(t, gl.handles)
}
