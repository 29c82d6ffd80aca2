package gitignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/codetrail/pkg/logger"
)

func newTestMatcher(t *testing.T, gitignore, ignore string, extra ...string) (*Matcher, string) {
	t.Helper()
	root := t.TempDir()
	if gitignore != "" {
		require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte(gitignore), 0o644))
	}
	if ignore != "" {
		require.NoError(t, os.WriteFile(filepath.Join(root, ".ignore"), []byte(ignore), 0o644))
	}
	m, err := New(root, extra, logger.NewNop())
	require.NoError(t, err)
	return m, root
}

func TestMatcher_NegationReincludes(t *testing.T) {
	m, root := newTestMatcher(t, "*.log\n!keep.log\n", "")

	assert.True(t, m.IsIgnored(filepath.Join(root, "a.log")))
	assert.False(t, m.IsIgnored(filepath.Join(root, "keep.log")))
	assert.False(t, m.IsIgnored(filepath.Join(root, "main.rs")))
}

func TestMatcher_LaterSourcesOverrideEarlier(t *testing.T) {
	// .gitignore excludes *.gen.py, .ignore re-includes one, caller lines
	// exclude it again. Source order is .gitignore, .ignore, extra.
	m, _ := newTestMatcher(t, "*.gen.py\n", "!api.gen.py\n")
	assert.True(t, m.IsIgnored("x.gen.py"))
	assert.False(t, m.IsIgnored("api.gen.py"))

	m2, _ := newTestMatcher(t, "*.gen.py\n", "!api.gen.py\n", "api.gen.py")
	assert.True(t, m2.IsIgnored("api.gen.py"))
}

func TestMatcher_CommentsAndBlankLinesSkipped(t *testing.T) {
	m, _ := newTestMatcher(t, "# comment\n\n   \n*.tmp\n", "")

	assert.Equal(t, []string{"*.tmp"}, m.Patterns())
	assert.True(t, m.IsIgnored("x.tmp"))
}

func TestMatcher_DirectoryPatterns(t *testing.T) {
	m, root := newTestMatcher(t, "build/\n", "")

	assert.True(t, m.IsIgnoredDir(filepath.Join(root, "build")))
	assert.True(t, m.IsIgnored(filepath.Join(root, "build", "out.go")))
	assert.False(t, m.IsIgnoredDir(root), "root itself is never ignored")
}

func TestMatcher_OutsideRootNeverIgnored(t *testing.T) {
	m, _ := newTestMatcher(t, "*.log\n", "")

	other := filepath.Join(t.TempDir(), "a.log")
	assert.False(t, m.IsIgnored(other))
}

func TestMatcher_NoIgnoreFiles(t *testing.T) {
	m, root := newTestMatcher(t, "", "")

	assert.Empty(t, m.Patterns())
	assert.False(t, m.IsIgnored(filepath.Join(root, "anything.py")))
}
