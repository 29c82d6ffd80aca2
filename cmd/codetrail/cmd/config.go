package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/corey/codetrail/internal/config"
)

var configInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Prints the effective configuration as TOML: built-in defaults, then " + config.FileName + ", then flags.",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	addConfigFlags(configCmd)
	configCmd.Flags().BoolVar(&configInit, "init", false, "write the effective configuration to "+config.FileName)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if configInit {
		path := filepath.Join(cfg.Root, config.FileName)
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		saved := *cfg
		saved.Root = ""
		if err := saved.Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s⚡ wrote %s%s\n", colorBold, path, colorReset)
		return nil
	}
	return cfg.Write(cmd.OutOrStdout())
}
