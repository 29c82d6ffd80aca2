package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtensionFilter_ExactMatch(t *testing.T) {
	f := NewExtensionFilter([]string{"rs", ".py"}, false)

	tests := []struct {
		path string
		want bool
	}{
		{"a.rs", true},
		{"/src/pkg/a.rs", true},
		{"a.py", true},
		{"a.RS", false},
		{"a.rs.bak", false},
		{"Makefile", false},
		{".bashrc", false},
		{"dir.rs/file", false},
		{"a.", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, f.IsSupported(tt.path))
		})
	}
}

func TestExtensionFilter_FoldCase(t *testing.T) {
	f := NewExtensionFilter([]string{"RS"}, true)

	assert.True(t, f.IsSupported("a.rs"))
	assert.True(t, f.IsSupported("a.Rs"))
	assert.False(t, f.IsSupported("a.go"))
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "go", Extension("/x/y/main.go"))
	assert.Equal(t, "gz", Extension("a.tar.gz"))
	assert.Equal(t, "", Extension(".gitignore"))
	assert.Equal(t, "", Extension("README"))
}

func TestDefaultExtensions(t *testing.T) {
	f := NewExtensionFilter(DefaultExtensions, false)
	assert.Len(t, f.Extensions(), 20)
	assert.True(t, f.IsSupported("x.yml"))
	assert.False(t, f.IsSupported("x.pyi"))
}
