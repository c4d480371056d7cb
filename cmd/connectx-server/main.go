package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/debayudh07/connectx/internal/config"
	"github.com/debayudh07/connectx/internal/observability/metrics"
	"github.com/debayudh07/connectx/internal/roles"
	"github.com/debayudh07/connectx/internal/server"
	"github.com/debayudh07/connectx/internal/storage"
	"github.com/debayudh07/connectx/internal/validation"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "connectx-server",
		Short:   "ConnectX server - bounty escrow and verification platform",
		Version: version,
	}

	// Default behavior (no subcommand) is to serve
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runServe()
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newKeysCmd())
	rootCmd.AddCommand(newRolesCmd())

	return rootCmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys",
	}

	cmd.AddCommand(newKeysCreateCmd())
	cmd.AddCommand(newKeysListCmd())
	cmd.AddCommand(newKeysRevokeCmd())

	return cmd
}

func newKeysCreateCmd() *cobra.Command {
	var name string
	var account string
	var outputFile string
	var quiet bool
	var show bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new API key bound to an account",
		Long: `Create a new API key. Every key is bound to an account address,
which becomes the caller identity for role and ownership checks.

The key is only shown once - it cannot be retrieved later.

EXAMPLES:
  # Create key, write to file (default)
  connectx-server keys create --name "alice" --account 0xabc...

  # Create key, print only (for piping to a secrets manager)
  connectx-server keys create --name "ci" --account 0xabc... --quiet

  # Create key, display on screen
  connectx-server keys create --name "alice" --account 0xabc... --show
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeysCreate(name, account, outputFile, quiet, show)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "name/label for the key (required)")
	cmd.Flags().StringVar(&account, "account", "", "account address the key acts as (required)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "write key to file (default: ./connectx-key-{name}.txt)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the key (for piping)")
	cmd.Flags().BoolVar(&show, "show", false, "display key on screen")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func newKeysListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeysList()
		},
	}
}

func newKeysRevokeCmd() *cobra.Command {
	var keyID string

	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke an API key",
		Long: `Revoke an API key to prevent further use.

Use 'connectx-server keys list' to find the key ID.

EXAMPLES:
  connectx-server keys revoke --id abc123
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeysRevoke(keyID)
		},
	}

	cmd.Flags().StringVar(&keyID, "id", "", "key ID to revoke (required)")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func newRolesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roles",
		Short: "Bootstrap platform roles",
		Long: `Grant, revoke, and list roles directly against the store.

This bypasses the API's role hierarchy and exists to bootstrap the
first DEFAULT_ADMIN. Day-to-day role management should go through the
admin API instead.`,
	}

	cmd.AddCommand(newRolesGrantCmd())
	cmd.AddCommand(newRolesRevokeCmd())
	cmd.AddCommand(newRolesListCmd())

	return cmd
}

func newRolesGrantCmd() *cobra.Command {
	var role, account string

	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Grant a role to an account",
		Long: `Grant a role directly, without hierarchy checks.

EXAMPLES:
  connectx-server roles grant --role DEFAULT_ADMIN --account 0xabc...
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRolesGrant(role, account)
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "role name (required)")
	cmd.Flags().StringVar(&account, "account", "", "account address (required)")
	_ = cmd.MarkFlagRequired("role")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func newRolesRevokeCmd() *cobra.Command {
	var role, account string

	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke a role from an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRolesRevoke(role, account)
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "role name (required)")
	cmd.Flags().StringVar(&account, "account", "", "account address (required)")
	_ = cmd.MarkFlagRequired("role")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func newRolesListCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts holding a role",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRolesList(role)
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "role name (required)")
	_ = cmd.MarkFlagRequired("role")

	return cmd
}

// quietStore opens the store for one-shot commands, logging errors only.
func quietStore() (storage.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	store, err := storage.New(cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		store.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return store, nil
}

// Key management commands

func runKeysCreate(name, account, outputFile string, quiet, show bool) error {
	if err := validation.ValidateAddress(account); err != nil {
		return fmt.Errorf("invalid account: %w", err)
	}

	store, err := quietStore()
	if err != nil {
		return err
	}
	defer store.Close()

	key, err := store.CreateAPIKey(context.Background(), name, account)
	if err != nil {
		return fmt.Errorf("creating API key: %w", err)
	}

	if quiet {
		fmt.Println(key)
		return nil
	}

	if show {
		fmt.Println("⚠️  API key (save this - it cannot be retrieved later):")
		fmt.Println()
		fmt.Println("   ", key)
		fmt.Println()
		return nil
	}

	if outputFile == "" {
		outputFile = fmt.Sprintf("./connectx-key-%s.txt", name)
	}

	dir := filepath.Dir(outputFile)
	if dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
	}

	if err := os.WriteFile(outputFile, []byte(key+"\n"), 0600); err != nil {
		return fmt.Errorf("writing key to file: %w", err)
	}

	fmt.Printf("✅ API key created: %s (acts as %s)\n", name, account)
	fmt.Printf("   Written to: %s (mode 0600)\n", outputFile)
	fmt.Println()
	fmt.Println("   ⚠️  This key cannot be retrieved later. Keep it safe!")
	fmt.Println()
	fmt.Println("   Usage:")
	fmt.Println("     export CONNECTX_API_KEY=$(cat", outputFile+")")
	fmt.Println("     connectx bounty list")

	return nil
}

func runKeysList() error {
	store, err := quietStore()
	if err != nil {
		return err
	}
	defer store.Close()

	keys, err := store.ListAPIKeys(context.Background())
	if err != nil {
		return fmt.Errorf("listing API keys: %w", err)
	}

	if len(keys) == 0 {
		fmt.Println("No API keys found")
		fmt.Println()
		fmt.Println("Create one with: connectx-server keys create --name \"my-key\" --account 0x...")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tACCOUNT\tCREATED\tLAST USED")
	for _, k := range keys {
		lastUsed := "never"
		if k.LastUsedAt > 0 {
			lastUsed = time.Unix(k.LastUsedAt, 0).UTC().Format(time.RFC3339)
		}
		created := time.Unix(k.CreatedAt, 0).UTC().Format(time.RFC3339)
		idDisplay := k.ID
		if len(k.ID) > 8 {
			idDisplay = k.ID[:8] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", idDisplay, k.Name, k.Account, created, lastUsed)
	}
	w.Flush()

	return nil
}

func runKeysRevoke(keyID string) error {
	store, err := quietStore()
	if err != nil {
		return err
	}
	defer store.Close()

	// Find the full key ID if a prefix was provided
	keys, err := store.ListAPIKeys(context.Background())
	if err != nil {
		return fmt.Errorf("listing API keys: %w", err)
	}

	var fullKeyID string
	for _, k := range keys {
		if k.ID == keyID || (len(keyID) >= 8 && strings.HasPrefix(k.ID, keyID)) {
			fullKeyID = k.ID
			break
		}
	}

	if fullKeyID == "" {
		return fmt.Errorf("key not found: %s", keyID)
	}

	if err := store.RevokeAPIKey(context.Background(), fullKeyID); err != nil {
		return fmt.Errorf("revoking API key: %w", err)
	}

	fmt.Printf("✅ API key revoked: %s\n", keyID)
	return nil
}

// Role bootstrap commands

func runRolesGrant(role, account string) error {
	if !roles.Valid(role) {
		return fmt.Errorf("unknown role: %s", role)
	}
	if err := validation.ValidateAddress(account); err != nil {
		return fmt.Errorf("invalid account: %w", err)
	}

	store, err := quietStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.GrantRole(context.Background(), role, account, "bootstrap"); err != nil {
		return fmt.Errorf("granting role: %w", err)
	}

	fmt.Printf("✅ %s granted to %s\n", role, account)
	return nil
}

func runRolesRevoke(role, account string) error {
	if !roles.Valid(role) {
		return fmt.Errorf("unknown role: %s", role)
	}

	store, err := quietStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.RevokeRole(context.Background(), role, account); err != nil {
		return fmt.Errorf("revoking role: %w", err)
	}

	fmt.Printf("✅ %s revoked from %s\n", role, account)
	return nil
}

func runRolesList(role string) error {
	if !roles.Valid(role) {
		return fmt.Errorf("unknown role: %s", role)
	}

	store, err := quietStore()
	if err != nil {
		return err
	}
	defer store.Close()

	accounts, err := store.ListRoleAccounts(context.Background(), role)
	if err != nil {
		return fmt.Errorf("listing role accounts: %w", err)
	}

	if len(accounts) == 0 {
		fmt.Printf("No accounts hold %s\n", role)
		return nil
	}
	for _, a := range accounts {
		fmt.Println(a)
	}
	return nil
}

// Server command

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg)
	logger.Info("starting connectx-server", "version", version)

	metrics.Init(cfg.Metrics.Enabled, "connectx")

	store, err := storage.New(cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(context.Background()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// Seed the platform config singleton on first boot. After that the
	// admin API owns these values.
	if err := store.EnsurePlatformConfig(context.Background(), &storage.PlatformConfig{
		PlatformFeeBps:       cfg.Platform.FeeBps,
		MinimumBountyAmount:  cfg.Platform.MinimumBountyAmount,
		MaximumClaimDuration: cfg.Platform.MaximumClaimDuration,
		FeeRecipient:         cfg.Platform.FeeRecipient,
	}); err != nil {
		return fmt.Errorf("seeding platform config: %w", err)
	}

	srv := server.New(cfg, store, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      srv.Handler(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Metrics get their own listener so the main API port stays clean
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Metrics.Port),
			Handler: srv.MetricsHandler(),
		}
		go func() {
			logger.Info("metrics listening", "addr", metricsServer.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errChan <- err
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			logger.Warn("metrics shutdown error", "error", err)
		}
	}
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
