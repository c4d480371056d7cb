package domain

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/debayudh07/connectx/internal/collab"
	"github.com/debayudh07/connectx/internal/events"
	"github.com/debayudh07/connectx/internal/roles"
	"github.com/debayudh07/connectx/internal/storage"
	"github.com/debayudh07/connectx/internal/validation"
)

// Store defines the storage operations needed by the admin domain.
type Store interface {
	storage.RoleStore
	storage.ConfigStore
	storage.AccountStore
	storage.EventStore

	InTx(ctx context.Context, fn func(storage.Store) error) error
}

type service struct {
	store  Store
	collab *collab.Registry
	now    func() time.Time
}

// NewService creates a new admin service.
func NewService(store Store, registry *collab.Registry) *service {
	return &service{
		store:  store,
		collab: registry,
		now:    time.Now,
	}
}

// GrantRole grants a role to an account. The caller must hold the role that
// administers the target role. Re-granting a held role is a no-op.
func (s *service) GrantRole(ctx context.Context, caller, role, account string) error {
	if err := validation.ValidateAddress(account); err != nil {
		return fmt.Errorf("%w: account: %v", ErrInvalidInput, err)
	}
	adminRole, err := roles.AdminOf(role)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return s.store.InTx(ctx, func(tx storage.Store) error {
		reg := roles.New(tx)
		if err := reg.RequireNotPaused(ctx); err != nil {
			return mapRolesErr(err)
		}
		if err := reg.RequireRole(ctx, adminRole, caller); err != nil {
			return mapRolesErr(err)
		}
		if err := reg.Grant(ctx, role, account, caller); err != nil {
			return fmt.Errorf("granting role: %w", err)
		}
		return tx.AppendEvent(ctx, &storage.Event{
			Type:  events.RoleGranted,
			Actor: caller,
			Data:  map[string]any{"role": role, "account": account},
		})
	})
}

// RevokeRole revokes a role from an account. Revoking an unheld role is a
// no-op.
func (s *service) RevokeRole(ctx context.Context, caller, role, account string) error {
	if err := validation.ValidateAddress(account); err != nil {
		return fmt.Errorf("%w: account: %v", ErrInvalidInput, err)
	}
	adminRole, err := roles.AdminOf(role)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return s.store.InTx(ctx, func(tx storage.Store) error {
		reg := roles.New(tx)
		if err := reg.RequireNotPaused(ctx); err != nil {
			return mapRolesErr(err)
		}
		if err := reg.RequireRole(ctx, adminRole, caller); err != nil {
			return mapRolesErr(err)
		}
		if err := reg.Revoke(ctx, role, account); err != nil {
			return fmt.Errorf("revoking role: %w", err)
		}
		return tx.AppendEvent(ctx, &storage.Event{
			Type:  events.RoleRevoked,
			Actor: caller,
			Data:  map[string]any{"role": role, "account": account},
		})
	})
}

// HasRole reports whether an account holds a role.
func (s *service) HasRole(ctx context.Context, role, account string) (bool, error) {
	ok, err := roles.New(s.store).HasRole(ctx, role, account)
	if err != nil {
		if errors.Is(err, roles.ErrUnknownRole) {
			return false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return false, err
	}
	return ok, nil
}

// RoleAccounts lists all accounts holding a role.
func (s *service) RoleAccounts(ctx context.Context, role string) ([]string, error) {
	accounts, err := roles.New(s.store).Accounts(ctx, role)
	if err != nil {
		if errors.Is(err, roles.ErrUnknownRole) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, err
	}
	return accounts, nil
}

// Pause halts all bounty mutations. Pause and Unpause are exempt from the
// pause gate themselves, so a paused platform can always be recovered.
func (s *service) Pause(ctx context.Context, caller string) error {
	return s.setPaused(ctx, caller, true, events.Paused)
}

// Unpause resumes bounty mutations.
func (s *service) Unpause(ctx context.Context, caller string) error {
	return s.setPaused(ctx, caller, false, events.Unpaused)
}

func (s *service) setPaused(ctx context.Context, caller string, paused bool, eventType string) error {
	return s.store.InTx(ctx, func(tx storage.Store) error {
		reg := roles.New(tx)
		if err := reg.RequireAnyRole(ctx, caller, roles.Admin, roles.DefaultAdmin); err != nil {
			return mapRolesErr(err)
		}
		if err := reg.SetPaused(ctx, paused); err != nil {
			return fmt.Errorf("setting pause flag: %w", err)
		}
		return tx.AppendEvent(ctx, &storage.Event{Type: eventType, Actor: caller})
	})
}

// SetPlatformFee updates the fee taken from each payout, in basis points.
func (s *service) SetPlatformFee(ctx context.Context, caller string, bps int64) error {
	if err := validation.ValidateFeeBps(bps); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.updateConfig(ctx, caller, "platform_fee_bps", events.PlatformFeeUpdated,
		func(cfg *storage.PlatformConfig) (oldValue, newValue string) {
			oldValue, newValue = strconv.FormatInt(cfg.PlatformFeeBps, 10), strconv.FormatInt(bps, 10)
			cfg.PlatformFeeBps = bps
			return oldValue, newValue
		})
}

// SetMinimumBountyAmount updates the smallest reward a bounty may carry,
// in micro-units.
func (s *service) SetMinimumBountyAmount(ctx context.Context, caller string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: minimum amount must be positive", ErrInvalidInput)
	}
	return s.updateConfig(ctx, caller, "minimum_bounty_amount", events.MinimumBountyAmountUpdated,
		func(cfg *storage.PlatformConfig) (oldValue, newValue string) {
			oldValue, newValue = strconv.FormatInt(cfg.MinimumBountyAmount, 10), strconv.FormatInt(amount, 10)
			cfg.MinimumBountyAmount = amount
			return oldValue, newValue
		})
}

// SetMaximumClaimDuration updates how long a claim can sit before the
// maintainer may cancel over it.
func (s *service) SetMaximumClaimDuration(ctx context.Context, caller string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: claim duration must be positive", ErrInvalidInput)
	}
	secs := int64(d / time.Second)
	return s.updateConfig(ctx, caller, "maximum_claim_duration", events.MaximumClaimDurationUpdated,
		func(cfg *storage.PlatformConfig) (oldValue, newValue string) {
			oldValue, newValue = strconv.FormatInt(cfg.MaximumClaimDuration, 10), strconv.FormatInt(secs, 10)
			cfg.MaximumClaimDuration = secs
			return oldValue, newValue
		})
}

// SetFeeRecipient updates where platform fees go. Empty disables fee
// collection entirely.
func (s *service) SetFeeRecipient(ctx context.Context, caller, recipient string) error {
	if recipient != "" {
		if err := validation.ValidateAddress(recipient); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	return s.updateConfig(ctx, caller, "fee_recipient", events.FeeRecipientUpdated,
		func(cfg *storage.PlatformConfig) (oldValue, newValue string) {
			oldValue, newValue = cfg.FeeRecipient, recipient
			cfg.FeeRecipient = recipient
			return oldValue, newValue
		})
}

func (s *service) updateConfig(ctx context.Context, caller, field, eventType string, apply func(*storage.PlatformConfig) (oldValue, newValue string)) error {
	return s.store.InTx(ctx, func(tx storage.Store) error {
		reg := roles.New(tx)
		if err := reg.RequireAnyRole(ctx, caller, roles.Admin, roles.DefaultAdmin); err != nil {
			return mapRolesErr(err)
		}

		cfg, err := tx.GetPlatformConfig(ctx)
		if err != nil {
			return fmt.Errorf("loading platform config: %w", err)
		}
		oldValue, newValue := apply(cfg)
		if err := tx.SetPlatformConfig(ctx, cfg); err != nil {
			return fmt.Errorf("writing platform config: %w", err)
		}

		if err := tx.AppendConfigAudit(ctx, &storage.ConfigAudit{
			Field:     field,
			OldValue:  oldValue,
			NewValue:  newValue,
			Actor:     caller,
			CreatedAt: s.now().Unix(),
		}); err != nil {
			return fmt.Errorf("recording config audit: %w", err)
		}
		return tx.AppendEvent(ctx, &storage.Event{
			Type:  eventType,
			Actor: caller,
			Data:  map[string]any{"field": field, "old": oldValue, "new": newValue},
		})
	})
}

// SetCollaborators rewires the collaborator service endpoints without a
// restart. Endpoints live in memory; the audit trail records each rewiring.
func (s *service) SetCollaborators(ctx context.Context, caller string, e CollaboratorEndpoints) error {
	for _, u := range []string{e.ReputationURL, e.BadgeMintURL, e.VerifierURL} {
		if err := validation.ValidateServiceURL(u); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	err := s.store.InTx(ctx, func(tx storage.Store) error {
		reg := roles.New(tx)
		if err := reg.RequireAnyRole(ctx, caller, roles.Admin, roles.DefaultAdmin); err != nil {
			return mapRolesErr(err)
		}
		old := s.collab.Endpoints()
		if err := tx.AppendConfigAudit(ctx, &storage.ConfigAudit{
			Field:     "collaborators",
			OldValue:  fmt.Sprintf("reputation=%s badges=%s verifier=%s", old.Reputation, old.BadgeMint, old.Verifier),
			NewValue:  fmt.Sprintf("reputation=%s badges=%s verifier=%s", e.ReputationURL, e.BadgeMintURL, e.VerifierURL),
			Actor:     caller,
			CreatedAt: s.now().Unix(),
		}); err != nil {
			return fmt.Errorf("recording config audit: %w", err)
		}
		return tx.AppendEvent(ctx, &storage.Event{
			Type:  events.CollaboratorAddressUpdated,
			Actor: caller,
			Data: map[string]any{
				"reputation": e.ReputationURL,
				"badges":     e.BadgeMintURL,
				"verifier":   e.VerifierURL,
			},
		})
	})
	if err != nil {
		return err
	}

	s.collab.SetEndpoints(collab.Endpoints{
		Reputation: e.ReputationURL,
		BadgeMint:  e.BadgeMintURL,
		Verifier:   e.VerifierURL,
	})
	return nil
}

// Collaborators returns the currently wired collaborator endpoints.
func (s *service) Collaborators(ctx context.Context) CollaboratorEndpoints {
	e := s.collab.Endpoints()
	return CollaboratorEndpoints{
		ReputationURL: e.Reputation,
		BadgeMintURL:  e.BadgeMint,
		VerifierURL:   e.Verifier,
	}
}

// Deposit credits an account's available balance. This is the money-in
// record; value arrives out of band.
func (s *service) Deposit(ctx context.Context, caller, account string, amount int64) error {
	if err := validation.ValidateAddress(account); err != nil {
		return fmt.Errorf("%w: account: %v", ErrInvalidInput, err)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: deposit amount must be positive", ErrInvalidInput)
	}

	return s.store.InTx(ctx, func(tx storage.Store) error {
		reg := roles.New(tx)
		if err := reg.RequireAnyRole(ctx, caller, roles.Admin, roles.DefaultAdmin); err != nil {
			return mapRolesErr(err)
		}
		if err := tx.AdjustBalance(ctx, account, amount); err != nil {
			return fmt.Errorf("crediting account: %w", err)
		}
		return tx.AppendEvent(ctx, &storage.Event{
			Type:  events.Deposit,
			Actor: caller,
			Data:  map[string]any{"account": account, "amount": amount},
		})
	})
}

// Withdraw debits an account's available balance. Escrowed value is out of
// reach; only the free balance can leave.
func (s *service) Withdraw(ctx context.Context, caller, account string, amount int64) error {
	if err := validation.ValidateAddress(account); err != nil {
		return fmt.Errorf("%w: account: %v", ErrInvalidInput, err)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: withdrawal amount must be positive", ErrInvalidInput)
	}

	return s.store.InTx(ctx, func(tx storage.Store) error {
		reg := roles.New(tx)
		if err := reg.RequireAnyRole(ctx, caller, roles.Admin, roles.DefaultAdmin); err != nil {
			return mapRolesErr(err)
		}
		if err := tx.AdjustBalance(ctx, account, -amount); err != nil {
			if errors.Is(err, storage.ErrInsufficientFunds) {
				return fmt.Errorf("%w: account %s", ErrInsufficientFunds, account)
			}
			return fmt.Errorf("debiting account: %w", err)
		}
		return tx.AppendEvent(ctx, &storage.Event{
			Type:  events.EmergencyWithdraw,
			Actor: caller,
			Data:  map[string]any{"account": account, "amount": amount},
		})
	})
}

// GetConfig returns the current platform config.
func (s *service) GetConfig(ctx context.Context) (*PlatformConfig, error) {
	cfg, err := s.store.GetPlatformConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading platform config: %w", err)
	}
	return configFromStorage(cfg), nil
}

// ListAudit returns the config audit trail, oldest first.
func (s *service) ListAudit(ctx context.Context) ([]ConfigChange, error) {
	audits, err := s.store.ListConfigAudit(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing config audit: %w", err)
	}
	out := make([]ConfigChange, 0, len(audits))
	for i := range audits {
		out = append(out, changeFromStorage(&audits[i]))
	}
	return out, nil
}

func mapRolesErr(err error) error {
	switch {
	case errors.Is(err, roles.ErrMissingRole):
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	case errors.Is(err, roles.ErrPaused):
		return ErrPaused
	default:
		return err
	}
}
