//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/debayudh07/connectx/internal/config"
	"github.com/debayudh07/connectx/internal/server"
	"github.com/debayudh07/connectx/internal/storage"
	"github.com/debayudh07/connectx/pkg/client"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestContext holds shared test infrastructure
type TestContext struct {
	PostgresContainer *postgres.PostgresContainer
	ConnString        string
	TestServer        *httptest.Server
	Store             storage.Store
}

// setupPostgresE starts a Postgres container and returns the connection string
func setupPostgresE(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	postgresContainer, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("connectx"),
		postgres.WithUsername("connectx"),
		postgres.WithPassword("connectx"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connString, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = postgresContainer.Terminate(ctx)
		return nil, "", fmt.Errorf("failed to get postgres connection string: %w", err)
	}

	return postgresContainer, connString, nil
}

// startServerE starts the connectx server in-process
func startServerE(connString string) (*httptest.Server, storage.Store, error) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port: 8080,
			Host: "0.0.0.0",
		},
		Storage: config.StorageConfig{
			Type: "postgres",
			Postgres: config.PostgresConfig{
				URL: connString,
			},
		},
		Platform: config.PlatformConfig{
			FeeBps:               250,
			MinimumBountyAmount:  100_000,
			MaximumClaimDuration: 7 * 24 * 3600,
			FeeRecipient:         treasuryAddr,
		},
		Logging:   config.LoggingConfig{Level: "debug", Format: "text"},
		RateLimit: config.RateLimitConfig{Enabled: false},
		Security:  config.SecurityConfig{MaxBodySizeMB: 10},
		Proxy:     config.ProxyConfig{TrustProxy: false},
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// Create store
	store, err := storage.New(cfg.Storage, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create store: %w", err)
	}

	// Run migrations
	if err := store.Migrate(context.Background()); err != nil {
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Seed the platform config singleton
	if err := store.EnsurePlatformConfig(context.Background(), &storage.PlatformConfig{
		PlatformFeeBps:       cfg.Platform.FeeBps,
		MinimumBountyAmount:  cfg.Platform.MinimumBountyAmount,
		MaximumClaimDuration: cfg.Platform.MaximumClaimDuration,
		FeeRecipient:         cfg.Platform.FeeRecipient,
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to seed platform config: %w", err)
	}

	srv := server.New(cfg, store, logger)
	testServer := httptest.NewServer(srv.Handler())

	return testServer, store, nil
}

const treasuryAddr = "0xfee0000000000000000000000000000000000fee"

var addrCounter int

// newAddr returns a fresh account address for test isolation
func newAddr() string {
	addrCounter++
	return fmt.Sprintf("0x%040x", addrCounter)
}

// newClient creates a new API client for the test server
func newClient(testServer *httptest.Server, apiKey string) *client.Client {
	return client.New(testServer.URL, apiKey)
}

// createTestAPIKey creates a test API key bound to an account using the store directly
func createTestAPIKey(t *testing.T, store storage.Store, name, account string) string {
	key, err := store.CreateAPIKey(context.Background(), name, account)
	require.NoError(t, err, "Failed to create API key")
	return key
}

// grantRole grants a role directly through the store, bypassing the admin API
func grantRole(t *testing.T, store storage.Store, role, account string) {
	require.NoError(t, store.GrantRole(context.Background(), role, account, "e2e"),
		"Failed to grant %s to %s", role, account)
}

// fundAccount credits an account balance directly through the store
func fundAccount(t *testing.T, store storage.Store, account string, amount int64) {
	require.NoError(t, store.AdjustBalance(context.Background(), account, amount),
		"Failed to fund %s", account)
}

// assertHTTPError asserts that an error is an APIError with the expected code
func assertHTTPError(t *testing.T, err error, expectedCode string) {
	t.Helper()
	require.Error(t, err, "Expected an error")
	apiErr, ok := err.(*client.APIError)
	require.True(t, ok, "Error should be an APIError")
	require.Equal(t, expectedCode, apiErr.Code, "Error code mismatch")
}
