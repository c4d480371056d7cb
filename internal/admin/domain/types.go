// Package domain contains the business logic for platform administration:
// role grants, the pause switch, platform config changes, and account
// funding.
package domain

import (
	"errors"
	"time"

	"github.com/debayudh07/connectx/internal/storage"
)

// Common errors returned by the admin service.
var (
	ErrUnauthorized      = errors.New("not authorized")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrPaused            = errors.New("platform is paused")
	ErrNotFound          = errors.New("not found")
)

// PlatformConfig is the admin view of the platform config singleton.
type PlatformConfig struct {
	PlatformFeeBps       int64
	MinimumBountyAmount  int64
	MaximumClaimDuration time.Duration
	FeeRecipient         string
	Paused               bool
}

// ConfigChange is one entry in the config audit trail.
type ConfigChange struct {
	ID        string
	Field     string
	OldValue  string
	NewValue  string
	Actor     string
	CreatedAt time.Time
}

// CollaboratorEndpoints are the collaborator service URLs an admin can
// rewire at runtime.
type CollaboratorEndpoints struct {
	ReputationURL string
	BadgeMintURL  string
	VerifierURL   string
}

func configFromStorage(cfg *storage.PlatformConfig) *PlatformConfig {
	return &PlatformConfig{
		PlatformFeeBps:       cfg.PlatformFeeBps,
		MinimumBountyAmount:  cfg.MinimumBountyAmount,
		MaximumClaimDuration: time.Duration(cfg.MaximumClaimDuration) * time.Second,
		FeeRecipient:         cfg.FeeRecipient,
		Paused:               cfg.Paused,
	}
}

func changeFromStorage(a *storage.ConfigAudit) ConfigChange {
	return ConfigChange{
		ID:        a.ID,
		Field:     a.Field,
		OldValue:  a.OldValue,
		NewValue:  a.NewValue,
		Actor:     a.Actor,
		CreatedAt: time.Unix(a.CreatedAt, 0).UTC(),
	}
}
