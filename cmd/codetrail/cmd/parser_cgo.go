//go:build cgo

package cmd

import (
	"github.com/corey/codetrail/internal/adapters/treesitter"
	"github.com/corey/codetrail/internal/config"
	"github.com/corey/codetrail/internal/ports"
	"github.com/corey/codetrail/pkg/logger"
)

// newParser returns the tree-sitter registry with the compiled-in languages
// plus every [[grammar]] from cfg that loads. A grammar that fails to load is
// logged and skipped. The returned func releases loaded libraries.
func newParser(cfg *config.Config, log logger.Logger) (ports.Parser, func(), error) {
	reg := treesitter.NewDefaultRegistry()
	if len(cfg.Grammars) == 0 {
		return reg, func() {}, nil
	}

	paths := cfg.GrammarPaths
	if len(paths) == 0 {
		paths = treesitter.DefaultGrammarPaths(cfg.Root)
	}
	loader := treesitter.NewGrammarLoader(paths)
	for _, g := range cfg.Grammars {
		spec := treesitter.GrammarSpec{
			Name:          g.Name,
			Extensions:    g.Extensions,
			FunctionKinds: g.FunctionKinds,
			Library:       g.Library,
			Symbol:        g.Symbol,
		}
		if err := reg.RegisterGrammar(loader, spec); err != nil {
			log.Warn("grammar %s not loaded: %v", g.Name, err)
			continue
		}
		log.Info("grammar %s loaded for %v", g.Name, g.Extensions)
	}
	return reg, loader.Close, nil
}
