package cmd

import (
	"github.com/spf13/cobra"

	"github.com/corey/codetrail/internal/config"
)

// addConfigFlags registers the flags that override config file values.
func addConfigFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Duration("debounce", config.DefaultDebounce, "per-file debounce window")
	f.StringSlice("ext", nil, "allowed file extensions (replaces the configured list)")
	f.Bool("fold-case", false, "match extensions case-insensitively")
	f.StringSlice("file", nil, "watch only these files (globs allowed)")
	f.StringSlice("dir", nil, "additional directories to watch")
	f.StringSlice("ignore", nil, "extra gitignore-style patterns")
	f.Bool("no-scan", false, "skip the initial scan")
	f.Bool("no-socket", false, "do not serve the control socket")
	f.String("store", "", "index database path")
	f.String("metrics-addr", "", "serve Prometheus metrics on this address")
	f.String("log-level", "", "log level (debug, info, warn, error)")
	f.String("log-dir", "", "also write rotated logs to this directory")
}

// applyFlags copies explicitly set flags over cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	changed := func(name string) bool {
		fl := f.Lookup(name)
		return fl != nil && fl.Changed
	}

	if changed("debounce") {
		d, err := f.GetDuration("debounce")
		if err != nil {
			return err
		}
		cfg.Debounce = config.Duration(d)
	}
	for name, dst := range map[string]*[]string{
		"ext":    &cfg.Extensions,
		"file":   &cfg.Files,
		"dir":    &cfg.Dirs,
		"ignore": &cfg.Ignore,
	} {
		if !changed(name) {
			continue
		}
		v, err := f.GetStringSlice(name)
		if err != nil {
			return err
		}
		if name == "ignore" || name == "dir" {
			*dst = append(*dst, v...)
		} else {
			*dst = v
		}
	}
	if changed("fold-case") {
		cfg.FoldCase, _ = f.GetBool("fold-case")
	}
	if changed("no-scan") {
		noScan, _ := f.GetBool("no-scan")
		cfg.InitialScan = !noScan
	}
	if changed("no-socket") {
		noSocket, _ := f.GetBool("no-socket")
		cfg.Socket = !noSocket
	}
	for name, dst := range map[string]*string{
		"store":        &cfg.Store,
		"metrics-addr": &cfg.Metrics.Addr,
		"log-level":    &cfg.Log.Level,
		"log-dir":      &cfg.Log.Dir,
	} {
		if changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	return nil
}
