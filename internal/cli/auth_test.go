package cli

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withTempHome points credential storage at a throwaway directory.
func withTempHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	return dir
}

func TestCredentialsRoundTrip(t *testing.T) {
	withTempHome(t)

	require.NoError(t, saveCredential("http://server-a:8080", "cx_key_aaaa"))
	require.NoError(t, saveCredential("http://server-b:8080", "cx_key_bbbb"))

	assert.Equal(t, "cx_key_aaaa", getCredential("http://server-a:8080"))
	assert.Equal(t, "cx_key_bbbb", getCredential("http://server-b:8080"))
	assert.Equal(t, "", getCredential("http://unknown:8080"))

	// File carries secure permissions
	info, err := os.Stat(credentialsFilePath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestAuthLogout(t *testing.T) {
	withTempHome(t)

	require.NoError(t, saveCredential("http://server-a:8080", "cx_key_aaaa"))
	require.NoError(t, saveCredential("http://server-b:8080", "cx_key_bbbb"))

	require.NoError(t, runAuthLogout("http://server-a:8080", false))
	assert.Equal(t, "", getCredential("http://server-a:8080"))
	assert.Equal(t, "cx_key_bbbb", getCredential("http://server-b:8080"))

	require.NoError(t, runAuthLogout("", true))
	assert.Equal(t, "", getCredential("http://server-b:8080"))
}

func TestAuthLoginNonInteractive(t *testing.T) {
	withTempHome(t)

	validKey := "cx_key_" + strings.Repeat("ab", 32)
	bogusKey := "cx_key_" + strings.Repeat("cd", 32)

	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/stats" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("X-API-Key") == validKey {
			w.Write([]byte(`{"totalBounties":0,"totalLocked":0}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Invalid API key"}}`))
	}))
	defer mock.Close()

	require.NoError(t, runAuthLogin(mock.URL, validKey))
	assert.Equal(t, validKey, getCredential(mock.URL))

	err := runAuthLogin(mock.URL, bogusKey)
	assert.ErrorContains(t, err, "invalid API key")

	err = runAuthLogin(mock.URL, "not-a-key")
	assert.ErrorContains(t, err, "does not look like")
}

func TestValidateAPIKey(t *testing.T) {
	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") == "good" {
			w.Write([]byte(`{}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"UNAUTHORIZED"}}`))
	}))
	defer mock.Close()

	valid, err := validateAPIKey(mock.URL, "good")
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = validateAPIKey(mock.URL, "bad")
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "cx_key_a...wxyz", maskAPIKey("cx_key_abcdefghijklmnopqrstuvwxyz"))
}
