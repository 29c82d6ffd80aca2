package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corey/codetrail/internal/adapters/socket"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running watcher's state",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running watcher",
	Args:  cobra.NoArgs,
	RunE:  runStop,
}

func runStatus(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	sockPath := socket.SocketPath(root)
	client := socket.NewClient(sockPath)
	out := cmd.OutOrStdout()

	if !client.Ping() {
		fmt.Fprintf(out, "%s⚡ codetrail%s  %s✗ not watching%s %s\n", colorBold, colorReset, colorYellow, colorReset, root)
		return nil
	}
	st, err := client.Status()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s⚡ codetrail%s  %s✓ watching%s\n", colorBold, colorReset, colorGreen, colorReset)
	fmt.Fprintf(out, "  Root:       %s\n", st.Root)
	fmt.Fprintf(out, "  Indexed:    %d files\n", st.Indexed)
	fmt.Fprintf(out, "  Watching:   %d directories\n", st.WatchedDirs)
	fmt.Fprintf(out, "  Languages:  %s\n", strings.Join(st.Languages, ", "))
	fmt.Fprintf(out, "  Debounce:   %s\n", st.Debounce)
	fmt.Fprintf(out, "  Uptime:     %s\n", st.Uptime)
	fmt.Fprintf(out, "  Socket:     %s\n", sockPath)
	return nil
}

func runStop(cmd *cobra.Command, args []string) error {
	client := socket.NewClient(socket.SocketPath(projectRoot()))
	if !client.Ping() {
		fmt.Fprintln(cmd.OutOrStdout(), "⚡ codetrail is not watching")
		return nil
	}
	if err := client.Shutdown(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "⚡ codetrail stopped")
	return nil
}
