package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/corey/codetrail/internal/adapters/bbolt"
	"github.com/corey/codetrail/internal/adapters/socket"
	"github.com/corey/codetrail/internal/app"
	"github.com/corey/codetrail/internal/config"
	"github.com/corey/codetrail/internal/domain/events"
)

var (
	showJSON bool
	showList bool
	showGlob string
)

var showCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Show stored events for a file",
	Long: "Reads the events recorded for a file by 'codetrail watch'. With --list, prints every indexed path. " +
		"Queries the running watcher when there is one, otherwise reads the index file directly.",
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print JSON")
	showCmd.Flags().BoolVar(&showList, "list", false, "list indexed paths")
	showCmd.Flags().StringVar(&showGlob, "glob", "", "with --list, only paths matching this glob (relative to the root)")
}

func runShow(cmd *cobra.Command, args []string) error {
	if !showList && len(args) == 0 {
		return errors.New("show needs a file, or --list")
	}
	if showGlob != "" && !doublestar.ValidatePattern(showGlob) {
		return fmt.Errorf("invalid glob %q", showGlob)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if client := socket.NewClient(socket.SocketPath(cfg.Root)); client.Ping() {
		return showRemote(client, args, out)
	}
	return showLocal(cfg, args, out)
}

// showRemote asks the running watcher, which holds the database lock.
func showRemote(client *socket.Client, args []string, out io.Writer) error {
	if showList {
		res, err := client.Files(showGlob)
		if err != nil {
			return err
		}
		for _, p := range res.Files {
			fmt.Fprintln(out, p)
		}
		return nil
	}
	path, err := targetPath(args[0])
	if err != nil {
		return err
	}
	res, err := client.Show(path)
	if err != nil {
		return err
	}
	return printEvents(out, path, res.Events)
}

// showLocal reads the index file directly.
func showLocal(cfg *config.Config, args []string, out io.Writer) error {
	dbPath := cfg.StorePath()
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("no index at %s; run 'codetrail watch' first", dbPath)
	}
	store, err := bbolt.NewStore(dbPath)
	if err != nil {
		if bbolt.IsLocked(err) {
			return errors.New(diagnoseDBLock(dbPath))
		}
		return err
	}
	defer store.Close()
	project := filepath.Base(cfg.Root)

	if showList {
		paths, err := store.Paths(project)
		if err != nil {
			return err
		}
		for _, p := range paths {
			if showGlob != "" {
				rel, err := filepath.Rel(cfg.Root, p)
				if err != nil {
					continue
				}
				if ok, _ := doublestar.Match(showGlob, filepath.ToSlash(rel)); !ok {
					continue
				}
			}
			fmt.Fprintln(out, p)
		}
		return nil
	}

	path, err := targetPath(args[0])
	if err != nil {
		return err
	}
	fe, err := store.Get(project, path)
	if err != nil {
		return err
	}
	return printEvents(out, path, fe)
}

// targetPath resolves arg the way the watcher keys its records.
func targetPath(arg string) (string, error) {
	if p, err := app.Canonicalize(arg); err == nil {
		return p, nil
	}
	return filepath.Abs(arg)
}

func printEvents(out io.Writer, path string, fe *events.FileEvents) error {
	if fe == nil {
		return fmt.Errorf("%s is not indexed", path)
	}
	if showJSON {
		return writeJSON(out, fe)
	}
	writeText(out, fe)
	return nil
}
