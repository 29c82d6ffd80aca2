package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/corey/codetrail/pkg/logger"
)

var parseText bool

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse one file and print its events",
	Long:  "Parses a file with the language registered for its extension and prints the events as JSON. Nothing is stored.",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&parseText, "text", false, "human-readable output instead of JSON")
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := logger.NewLogger("", cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	parser, release, err := newParser(cfg, log)
	if err != nil {
		return err
	}
	defer release()

	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	if !parser.Supports(path) {
		return fmt.Errorf("no language registered for %s", filepath.Base(path))
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	fe, err := parser.ParseFile(path, content)
	if err != nil {
		return err
	}

	if parseText {
		writeText(cmd.OutOrStdout(), fe)
		return nil
	}
	return writeJSON(cmd.OutOrStdout(), fe)
}
