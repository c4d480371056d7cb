// Package auth provides authentication middleware and API key management.
// Every API key is bound to an account address; the bound account is the
// caller identity for all role and ownership checks downstream.
package auth

import (
	"context"
	"net/http"

	"github.com/debayudh07/connectx/internal/storage"
)

// Context key type for avoiding collisions
type contextKey string

const apiKeyContextKey contextKey = "apiKey"

// GetAPIKeyFromContext retrieves the API key info from context.
func GetAPIKeyFromContext(ctx context.Context) *storage.APIKey {
	if key, ok := ctx.Value(apiKeyContextKey).(*storage.APIKey); ok {
		return key
	}
	return nil
}

// CallerAccount retrieves the authenticated account address from context.
func CallerAccount(ctx context.Context) string {
	if key := GetAPIKeyFromContext(ctx); key != nil {
		return key.Account
	}
	return ""
}

// WithTestCaller returns a context carrying a synthetic API key bound to the
// given account. Test helper only.
func WithTestCaller(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, apiKeyContextKey, &storage.APIKey{ID: "test", Account: account})
}

// Middleware returns an HTTP middleware that validates API keys and resolves
// the caller account.
func Middleware(store storage.APIKeyStore, writeError func(w http.ResponseWriter, status int, code, message string)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := extractKey(r)
			if apiKey == "" {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "API key required")
				return
			}

			key, err := store.ValidateAPIKey(r.Context(), apiKey)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid API key")
				return
			}

			ctx := context.WithValue(r.Context(), apiKeyContextKey, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && auth[:7] == "Bearer " {
		return auth[7:]
	}
	return ""
}
