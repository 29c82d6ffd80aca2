package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(content), 0o644))
	return root
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	root := t.TempDir()

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, root, cfg.Root)
	assert.Equal(t, DefaultDebounce, time.Duration(cfg.Debounce))
	assert.Len(t, cfg.Extensions, 20)
	assert.True(t, cfg.InitialScan)
	assert.Equal(t, filepath.Join(root, ".codetrail", "index.db"), cfg.StorePath())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	root := writeConfig(t, `
debounce = "250ms"
extensions = ["py", "go"]
fold_case = true
ignore = ["*.gen.py"]
files = ["scripts/tool.py"]
store = "/var/lib/codetrail.db"

[log]
level = "debug"

[metrics]
addr = "127.0.0.1:9464"

[[grammar]]
name = "lua"
extensions = ["lua"]
function_kinds = ["function_declaration"]
`)

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, time.Duration(cfg.Debounce))
	assert.Equal(t, []string{"py", "go"}, cfg.Extensions)
	assert.True(t, cfg.FoldCase)
	assert.Equal(t, []string{"*.gen.py"}, cfg.Ignore)
	assert.Equal(t, []string{"scripts/tool.py"}, cfg.Files)
	assert.Equal(t, "/var/lib/codetrail.db", cfg.StorePath())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:9464", cfg.Metrics.Addr)
	require.Len(t, cfg.Grammars, 1)
	assert.Equal(t, "lua", cfg.Grammars[0].Name)
	assert.True(t, cfg.InitialScan, "unset keys keep defaults")
}

func TestLoad_UnknownKey(t *testing.T) {
	root := writeConfig(t, "debounse = \"1s\"\n")

	_, err := Load(root)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "debounse")
}

func TestLoad_BadDuration(t *testing.T) {
	root := writeConfig(t, "debounce = \"soon\"\n")

	_, err := Load(root)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default("/p")
	cfg.Debounce = Duration(-time.Second)
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)

	cfg = Default("/p")
	cfg.Extensions = nil
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)

	cfg = Default("/p")
	cfg.Grammars = []Grammar{{Name: "lua"}}
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := Default("/p")
	cfg.Debounce = Duration(1500 * time.Millisecond)

	var buf bytes.Buffer
	require.NoError(t, cfg.Write(&buf))
	assert.Contains(t, buf.String(), `debounce = "1.5s"`)

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), buf.Bytes(), 0o644))
	loaded, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, cfg.Debounce, loaded.Debounce)
	assert.Equal(t, cfg.Extensions, loaded.Extensions)
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	require.NoError(t, Default("/p").Save(path))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}
