package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/corey/codetrail/internal/adapters/bbolt"
	"github.com/corey/codetrail/internal/adapters/socket"
	"github.com/corey/codetrail/internal/app"
	"github.com/corey/codetrail/pkg/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the project and index changed files",
	Long: "Registers the project tree with the filesystem watcher, indexes every eligible file once, " +
		"then re-indexes files as they change until interrupted.",
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	addConfigFlags(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if socket.NewClient(socket.SocketPath(cfg.Root)).Ping() {
		fmt.Fprintf(os.Stderr, "⚡ codetrail already watching %s\n", cfg.Root)
		return nil
	}

	log, err := logger.NewLogger(cfg.Log.Dir, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	parser, release, err := newParser(cfg, log)
	if err != nil {
		return err
	}
	defer release()

	a, err := app.New(app.Config{Settings: cfg, Parser: parser, Logger: log})
	if err != nil {
		if bbolt.IsLocked(err) {
			return errors.New(diagnoseDBLock(cfg.StorePath()))
		}
		return fmt.Errorf("init: %w", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "⚡ codetrail watching %s\n", a.ProjectRoot)
	if err := a.Run(ctx); err != nil {
		log.Error("watch stopped: %v", err)
		return err
	}
	fmt.Fprintln(os.Stderr, "\n⚡ shutting down...")
	return nil
}
