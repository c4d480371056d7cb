package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// KeyPrefix identifies ConnectX API keys so a pasted key can be sanity
// checked before any network round trip.
const KeyPrefix = "cx_key_"

// keyBytes is the length of the random part before hex encoding.
const keyBytes = 32

// GenerateAPIKey returns a new random API key. The plaintext is shown to the
// caller exactly once; only its hash is ever stored.
func GenerateAPIKey() (string, error) {
	raw := make([]byte, keyBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generating random bytes: %w", err)
	}
	return KeyPrefix + hex.EncodeToString(raw), nil
}

// HashAPIKey hashes an API key for storage.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// ValidFormat reports whether a string is shaped like a ConnectX API key.
// It says nothing about whether the key is live.
func ValidFormat(key string) bool {
	rest, ok := strings.CutPrefix(key, KeyPrefix)
	if !ok || len(rest) != 2*keyBytes {
		return false
	}
	_, err := hex.DecodeString(rest)
	return err == nil
}
