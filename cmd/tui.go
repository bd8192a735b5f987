// ABOUTME: TUI command for interactive record management
// ABOUTME: Launches the bubbletea interface with logs redirected to debug.log

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/markalston/dragon-catalog/internal/logger"
	"github.com/markalston/dragon-catalog/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive terminal interface",
	Long: `Browse, create, edit, and delete dragons in a full-screen terminal interface.
Logs are written to debug.log in the config directory.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(runTUI)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// runTUI starts the interactive interface and blocks until it exits
func runTUI(ctx context.Context, w io.Writer) int {
	rt, err := loadRuntime()
	if err != nil {
		return reportError(w, err)
	}

	closer, err := logger.InitFile(rt.cfg.ConfigDir, rt.cfg.LogLevel, rt.cfg.LogFormat)
	if err != nil {
		return reportError(w, fmt.Errorf("open debug log: %w", err))
	}
	defer closer.Close()

	slog.Info("Starting TUI", "api_url", rt.client.BaseURL(), "state", rt.guard.State())

	if err := tui.Run(rt.context(ctx), rt.catalog); err != nil {
		return reportError(w, err)
	}
	return 0
}
