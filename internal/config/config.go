// Package config loads codetrail settings from a TOML file in the project
// root. Every key is optional; missing keys keep their defaults and command
// line flags override file values.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/corey/codetrail/internal/domain/gate"
)

// FileName is the config file looked up in the project root.
const FileName = ".codetrail.toml"

// DefaultDebounce is the per-path debounce window when none is configured.
const DefaultDebounce = 3 * time.Second

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Duration is a time.Duration written as a Go duration string ("3s").
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config is the complete codetrail configuration.
type Config struct {
	Root        string   `toml:"root"`
	Files       []string `toml:"files"`
	Dirs        []string `toml:"dirs"`
	Debounce    Duration `toml:"debounce"`
	Extensions  []string `toml:"extensions"`
	FoldCase    bool     `toml:"fold_case"`
	Ignore      []string `toml:"ignore"`
	InitialScan bool     `toml:"initial_scan"`
	// Store is the bbolt file. Relative paths resolve against Root.
	Store        string    `toml:"store"`
	GrammarPaths []string  `toml:"grammar_paths"`
	Grammars     []Grammar `toml:"grammar"`
	// Socket enables the control socket used by show, status and stop.
	Socket       bool      `toml:"socket"`
	Log          Log       `toml:"log"`
	Metrics      Metrics   `toml:"metrics"`
}

// Grammar declares a language loaded from a shared library at runtime.
type Grammar struct {
	Name          string   `toml:"name"`
	Extensions    []string `toml:"extensions"`
	FunctionKinds []string `toml:"function_kinds"`
	Library       string   `toml:"library,omitempty"`
	Symbol        string   `toml:"symbol,omitempty"`
}

type Log struct {
	Dir   string `toml:"dir"`
	Level string `toml:"level"`
}

type Metrics struct {
	// Addr enables the /metrics endpoint when non-empty, e.g. "127.0.0.1:9464".
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration for root.
func Default(root string) *Config {
	exts := make([]string, len(gate.DefaultExtensions))
	copy(exts, gate.DefaultExtensions)
	return &Config{
		Root:        root,
		Debounce:    Duration(DefaultDebounce),
		Extensions:  exts,
		InitialScan: true,
		Socket:      true,
		Store:       filepath.Join(".codetrail", "index.db"),
		Log:         Log{Level: "info"},
	}
}

// Load reads <root>/.codetrail.toml over the defaults. A missing file is
// not an error.
func Load(root string) (*Config, error) {
	return LoadFile(root, filepath.Join(root, FileName))
}

// LoadFile reads path over the defaults for root.
func LoadFile(root, path string) (*Config, error) {
	cfg := Default(root)
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalid, path, strings.Join(keys, ", "))
	}
	if cfg.Root == "" {
		cfg.Root = root
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Debounce < 0 {
		return fmt.Errorf("%w: debounce must not be negative", ErrInvalid)
	}
	if len(c.Extensions) == 0 {
		return fmt.Errorf("%w: extensions must not be empty", ErrInvalid)
	}
	for i, g := range c.Grammars {
		if g.Name == "" {
			return fmt.Errorf("%w: grammar %d has no name", ErrInvalid, i)
		}
		if len(g.Extensions) == 0 {
			return fmt.Errorf("%w: grammar %s has no extensions", ErrInvalid, g.Name)
		}
	}
	return nil
}

// StorePath resolves Store against Root.
func (c *Config) StorePath() string {
	if filepath.IsAbs(c.Store) {
		return c.Store
	}
	return filepath.Join(c.Root, c.Store)
}

// Write encodes c as TOML.
func (c *Config) Write(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Save writes c to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
