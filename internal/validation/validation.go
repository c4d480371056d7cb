// Package validation provides input validation for ConnectX.
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Account addresses: 0x-prefixed 20-byte hex, checksum not enforced
var addressRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// Difficulty levels accepted at bounty creation
var difficultyLevels = map[string]bool{
	"easy":   true,
	"medium": true,
	"hard":   true,
}

// ValidateAddress validates an account address
func ValidateAddress(addr string) error {
	if addr == "" {
		return errors.New("address cannot be empty")
	}
	if !addressRegex.MatchString(addr) {
		return errors.New("invalid address: must be 0x followed by 40 hex characters")
	}
	return nil
}

// ValidateAmount validates a bounty reward amount against the platform minimum
func ValidateAmount(amount, minimum int64) error {
	if amount <= 0 {
		return errors.New("amount must be positive")
	}
	if amount < minimum {
		return fmt.Errorf("amount %d below platform minimum %d", amount, minimum)
	}
	return nil
}

// ValidateTitle validates a bounty title
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return errors.New("title cannot be empty")
	}
	if len(title) > 200 {
		return errors.New("title too long (max 200 chars)")
	}
	return nil
}

// ValidateDifficulty validates a difficulty level
func ValidateDifficulty(level string) error {
	if !difficultyLevels[level] {
		return fmt.Errorf("invalid difficulty %q: must be easy, medium, or hard", level)
	}
	return nil
}

// ValidateSkills validates the required skill list
func ValidateSkills(skills []string) error {
	if len(skills) > 20 {
		return errors.New("too many skills (max 20)")
	}
	for _, s := range skills {
		if strings.TrimSpace(s) == "" {
			return errors.New("skill entries cannot be empty")
		}
		if len(s) > 64 {
			return errors.New("skill entry too long (max 64 chars)")
		}
	}
	return nil
}

// ValidatePRURL validates a pull request URL
func ValidatePRURL(raw string) error {
	if raw == "" {
		return errors.New("pr url cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid pr url: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("pr url must be http or https")
	}
	if u.Host == "" {
		return errors.New("pr url missing host")
	}
	return nil
}

// ValidateServiceURL validates a collaborator service endpoint. Empty is
// allowed: it unwires the adapter.
func ValidateServiceURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid service url: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("service url must be http or https")
	}
	if u.Host == "" {
		return errors.New("service url missing host")
	}
	return nil
}

// ValidateFeeBps validates a platform fee in basis points
func ValidateFeeBps(bps int64) error {
	if bps < 0 || bps > 10000 {
		return errors.New("fee must be between 0 and 10000 basis points")
	}
	return nil
}
