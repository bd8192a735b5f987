// ABOUTME: Root command for dragon-catalog CLI
// ABOUTME: Handles global flags, configuration, and shared runtime wiring

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/markalston/dragon-catalog/internal/catalog"
	"github.com/markalston/dragon-catalog/internal/client"
	"github.com/markalston/dragon-catalog/internal/config"
	"github.com/markalston/dragon-catalog/internal/logger"
	"github.com/markalston/dragon-catalog/internal/models"
	"github.com/markalston/dragon-catalog/internal/querycache"
	"github.com/markalston/dragon-catalog/internal/session"
)

var (
	apiURL     string
	configDir  string
	jsonOutput bool
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "dragon-catalog",
	Short: "Client for the dragon record store",
	Long: `dragon-catalog lists, creates, edits, and deletes dragon records kept in a
remote REST collection. Record commands require a prior login.

Environment Variables:
  DRAGON_API_URL       Collection URL (default: hosted mockapi collection)
  DRAGON_CONFIG_DIR    Where the session token is kept (default: XDG config dir)
  DRAGON_LOCALE        Language tag used to order names (default: en)
  DRAGON_HTTP_TIMEOUT  Transport timeout, 0 disables (default: 30s)
  LOG_LEVEL            debug, info, warn, error (default: warn)
  LOG_FORMAT           text, json (default: text)`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Collection URL (overrides DRAGON_API_URL)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Config directory (overrides DRAGON_CONFIG_DIR)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// GetAPIURL returns the API URL from flag, env, or default (in priority order)
func GetAPIURL(cfg *config.Config) string {
	if apiURL != "" {
		return config.EnsureScheme(apiURL)
	}
	return cfg.APIURL
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// runtime bundles the collaborators every command works with
type runtime struct {
	cfg     *config.Config
	guard   *session.Guard
	client  *client.Client
	catalog *catalog.Service
}

// loadRuntime reads configuration and wires the store client, cache, and session guard
func loadRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if configDir != "" {
		cfg.ConfigDir = configDir
	}
	logger.Init(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	url := GetAPIURL(cfg)
	if err := config.ValidateAPIURL(url); err != nil {
		return nil, err
	}

	guard, err := session.NewGuard(
		session.NewFileStore(cfg.ConfigDir),
		session.StaticVerifier{Username: cfg.Username, Password: cfg.Password},
		session.NewJWTIssuer([]byte(cfg.TokenSecret)),
	)
	if err != nil {
		return nil, err
	}

	c := client.New(url,
		client.WithTimeout(cfg.HTTPTimeout),
		client.WithLocale(cfg.LocaleTag()),
	)

	return &runtime{
		cfg:     cfg,
		guard:   guard,
		client:  c,
		catalog: catalog.NewService(c, querycache.New()),
	}, nil
}

// context returns parent carrying the session guard
func (rt *runtime) context(parent context.Context) context.Context {
	return session.WithGuard(parent, rt.guard)
}

// requireSession fails unless the guard in ctx is Authenticated
func requireSession(ctx context.Context) error {
	g, ok := session.FromContext(ctx)
	if !ok {
		return errors.New("no session available")
	}
	if err := g.Require(); err != nil {
		return fmt.Errorf("%w: run 'dragon-catalog login' first", err)
	}
	return nil
}

// exitCodeFor maps an error to the CLI exit code.
// 1 means the request was understood and rejected; 2 means it could not be carried out.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, client.ErrNotFound),
		errors.Is(err, session.ErrInvalidCredentials),
		errors.Is(err, models.ErrValidation):
		return 1
	default:
		return 2
	}
}

// reportError prints err and returns its exit code
func reportError(w io.Writer, err error) int {
	fmt.Fprintf(w, "Error: %v\n", err)
	return exitCodeFor(err)
}

// runCommand executes run with a signal-aware context and exits with its code
func runCommand(run func(ctx context.Context, w io.Writer) int) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx, os.Stdout)
	cancel()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
