// ABOUTME: TUI command for the fuelwise CLI
// ABOUTME: Launches the interactive interface on the shared session

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fuelwise/fuelwise-cli/internal/tui"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive interface",
	Long: `Open the interactive interface: sign in, browse the dashboard, manage vehicles and export.

The session is shared with the other commands. With --store redis, every terminal
pointed at the same Redis signs in and out together.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runTUI(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// runTUI blocks until the interface exits and returns exit code
func runTUI(ctx context.Context, w io.Writer) int {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer a.Close()

	err = tui.Run(tui.Options{
		Session:   a.session,
		Router:    a.router,
		Client:    a.client,
		History:   a.history,
		ExportDir: a.cfg.ExportDir,
		Log:       a.log,
	})
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	return 0
}
