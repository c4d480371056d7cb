// Package roles implements the role registry: a (role, account) relation plus
// the global pause flag. Every privileged check is a direct lookup.
package roles

import (
	"context"
	"errors"
	"fmt"

	"github.com/debayudh07/connectx/internal/storage"
)

// Role names
const (
	DefaultAdmin = "DEFAULT_ADMIN"
	Admin        = "ADMIN"
	Maintainer   = "MAINTAINER"
	Verifier     = "VERIFIER"
)

// Common errors returned by the registry.
var (
	ErrUnknownRole = errors.New("unknown role")
	ErrMissingRole = errors.New("missing required role")
	ErrPaused      = errors.New("platform is paused")
)

// roleAdmins maps each role to the role that administers it.
var roleAdmins = map[string]string{
	DefaultAdmin: DefaultAdmin,
	Admin:        DefaultAdmin,
	Maintainer:   Admin,
	Verifier:     Admin,
}

// Valid reports whether a role name is known.
func Valid(role string) bool {
	_, ok := roleAdmins[role]
	return ok
}

// AdminOf returns the role that administers the given role.
func AdminOf(role string) (string, error) {
	admin, ok := roleAdmins[role]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}
	return admin, nil
}

// Store defines the storage operations needed by the registry.
type Store interface {
	GrantRole(ctx context.Context, role, account, grantedBy string) error
	RevokeRole(ctx context.Context, role, account string) error
	HasRole(ctx context.Context, role, account string) (bool, error)
	ListRoleAccounts(ctx context.Context, role string) ([]string, error)
	GetPlatformConfig(ctx context.Context) (*storage.PlatformConfig, error)
	SetPlatformConfig(ctx context.Context, cfg *storage.PlatformConfig) error
}

// Registry is a thin, stateless view over a store. Constructing one per
// transaction-scoped store keeps role checks inside the caller's unit of work.
type Registry struct {
	store Store
}

// New creates a registry over the given store.
func New(store Store) *Registry {
	return &Registry{store: store}
}

// HasRole reports whether an account holds a role.
func (r *Registry) HasRole(ctx context.Context, role, account string) (bool, error) {
	if !Valid(role) {
		return false, fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}
	return r.store.HasRole(ctx, role, account)
}

// RequireRole fails with ErrMissingRole if the account does not hold the role.
func (r *Registry) RequireRole(ctx context.Context, role, account string) error {
	ok, err := r.HasRole(ctx, role, account)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s requires %s", ErrMissingRole, account, role)
	}
	return nil
}

// RequireAnyRole fails with ErrMissingRole unless the account holds at least
// one of the given roles.
func (r *Registry) RequireAnyRole(ctx context.Context, account string, roleList ...string) error {
	for _, role := range roleList {
		ok, err := r.HasRole(ctx, role, account)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return fmt.Errorf("%w: %s requires one of %v", ErrMissingRole, account, roleList)
}

// Grant grants a role to an account. Re-granting a held role is a no-op.
func (r *Registry) Grant(ctx context.Context, role, account, grantedBy string) error {
	if !Valid(role) {
		return fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}
	return r.store.GrantRole(ctx, role, account, grantedBy)
}

// Revoke revokes a role from an account. Revoking an unheld role is a no-op.
func (r *Registry) Revoke(ctx context.Context, role, account string) error {
	if !Valid(role) {
		return fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}
	return r.store.RevokeRole(ctx, role, account)
}

// Accounts lists all accounts holding a role.
func (r *Registry) Accounts(ctx context.Context, role string) ([]string, error) {
	if !Valid(role) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}
	return r.store.ListRoleAccounts(ctx, role)
}

// Paused reports the global pause flag.
func (r *Registry) Paused(ctx context.Context) (bool, error) {
	cfg, err := r.store.GetPlatformConfig(ctx)
	if err != nil {
		return false, err
	}
	return cfg.Paused, nil
}

// RequireNotPaused fails with ErrPaused while the platform is paused.
func (r *Registry) RequireNotPaused(ctx context.Context) error {
	paused, err := r.Paused(ctx)
	if err != nil {
		return err
	}
	if paused {
		return ErrPaused
	}
	return nil
}

// SetPaused writes the global pause flag.
func (r *Registry) SetPaused(ctx context.Context, paused bool) error {
	cfg, err := r.store.GetPlatformConfig(ctx)
	if err != nil {
		return err
	}
	cfg.Paused = paused
	return r.store.SetPlatformConfig(ctx, cfg)
}
