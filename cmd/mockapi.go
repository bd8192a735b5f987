// ABOUTME: mockapi command serving the in-memory dragon collection
// ABOUTME: Lets the CLI and TUI run against a local store

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/markalston/dragon-catalog/internal/config"
	"github.com/markalston/dragon-catalog/internal/logger"
	"github.com/markalston/dragon-catalog/internal/mockapi"
)

const shutdownTimeout = 5 * time.Second

var (
	mockAddr     string
	mockBasePath string
	mockSeed     bool
)

var mockapiCmd = &cobra.Command{
	Use:   "mockapi",
	Short: "Serve an in-memory dragon collection",
	Long: `Serve an in-memory REST collection with the same contract as the hosted
store. Data lives only as long as the process.

Point the client at it with:
  dragon-catalog --api-url http://localhost:3000/api/v1/dragon list`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(func(ctx context.Context, w io.Writer) int {
			return runMockAPI(ctx, w, mockAddr, mockBasePath, mockSeed)
		})
	},
}

func init() {
	mockapiCmd.Flags().StringVar(&mockAddr, "addr", "", "Listen address (default from DRAGON_MOCK_ADDR or :3000)")
	mockapiCmd.Flags().StringVar(&mockBasePath, "base-path", "", "Collection path (default from DRAGON_MOCK_BASE_PATH or /api/v1/dragon)")
	mockapiCmd.Flags().BoolVar(&mockSeed, "seed", false, "Start with a few sample dragons")
	rootCmd.AddCommand(mockapiCmd)
}

// runMockAPI serves the store until ctx is cancelled
func runMockAPI(ctx context.Context, w io.Writer, addr, basePath string, seed bool) int {
	cfg, err := config.Load()
	if err != nil {
		return reportError(w, err)
	}
	logger.Init(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	if addr == "" {
		addr = cfg.MockAddr
	}
	if basePath == "" {
		basePath = cfg.MockBasePath
	}

	store := mockapi.NewStore()
	if seed {
		store.Seed(mockapi.DefaultSeed)
	}
	srv := mockapi.NewServer(store, basePath)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return reportError(w, fmt.Errorf("listen on %s: %w", addr, err))
	}

	httpServer := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Fprintf(w, "Mock store listening on http://%s%s (%d records)\n", ln.Addr(), srv.BasePath(), store.Len())

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return reportError(w, fmt.Errorf("shutdown: %w", err))
		}
		fmt.Fprintln(w, "Mock store stopped")
		return 0
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return 0
		}
		return reportError(w, err)
	}
}
