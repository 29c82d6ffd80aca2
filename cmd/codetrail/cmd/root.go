package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/corey/codetrail/internal/config"
)

var (
	flagRoot   string
	flagConfig string
)

var rootCmd = &cobra.Command{
	Use:           "codetrail",
	Short:         "codetrail: incremental structural indexer",
	Long:          "Watches a source tree and records functions, classes, imports, calls and comments for every changed file.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// projectRoot returns --root, or the cwd by default.
func projectRoot() string {
	if flagRoot != "" {
		abs, err := filepath.Abs(flagRoot)
		if err == nil {
			return abs
		}
	}
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return dir
}

// loadConfig reads the project config (or --config) and applies flag
// overrides registered on cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	root := projectRoot()
	path := flagConfig
	if path == "" {
		path = filepath.Join(root, config.FileName)
	}
	cfg, err := config.LoadFile(root, path)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Join(root, cfg.Root)
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", "", "project root (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: <root>/"+config.FileName+")")

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(configCmd)
}
