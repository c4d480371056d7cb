package storage

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// generateID generates a new UUID
func generateID() string {
	return uuid.New().String()
}

// generateAPIKey generates a new API key
func generateAPIKey() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return fmt.Sprintf("cx_key_%s", hex.EncodeToString(b))
}

// hashAPIKey hashes an API key for storage
func hashAPIKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

// encodeSkills serializes a skill list for a TEXT column.
func encodeSkills(skills []string) string {
	if len(skills) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(skills)
	return string(b)
}

// decodeSkills parses a serialized skill list. Tolerates the legacy
// comma-separated form for rows written before the JSON encoding.
func decodeSkills(raw string) []string {
	if raw == "" || raw == "[]" {
		return nil
	}
	var skills []string
	if err := json.Unmarshal([]byte(raw), &skills); err == nil {
		return skills
	}
	return strings.Split(raw, ",")
}

// encodeEventData serializes event payload for a TEXT column.
func encodeEventData(data map[string]any) string {
	if len(data) == 0 {
		return "{}"
	}
	b, _ := json.Marshal(data)
	return string(b)
}

// decodeEventData parses serialized event payload.
func decodeEventData(raw string) map[string]any {
	if raw == "" {
		return nil
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil
	}
	return data
}
