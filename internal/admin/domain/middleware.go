package domain

import (
	"context"
	"log/slog"
	"time"
)

// loggingService is the interface required for logging middleware.
type loggingService interface {
	GrantRole(ctx context.Context, caller, role, account string) error
	RevokeRole(ctx context.Context, caller, role, account string) error
	HasRole(ctx context.Context, role, account string) (bool, error)
	RoleAccounts(ctx context.Context, role string) ([]string, error)
	Pause(ctx context.Context, caller string) error
	Unpause(ctx context.Context, caller string) error
	SetPlatformFee(ctx context.Context, caller string, bps int64) error
	SetMinimumBountyAmount(ctx context.Context, caller string, amount int64) error
	SetMaximumClaimDuration(ctx context.Context, caller string, d time.Duration) error
	SetFeeRecipient(ctx context.Context, caller, recipient string) error
	SetCollaborators(ctx context.Context, caller string, e CollaboratorEndpoints) error
	Collaborators(ctx context.Context) CollaboratorEndpoints
	Deposit(ctx context.Context, caller, account string, amount int64) error
	Withdraw(ctx context.Context, caller, account string, amount int64) error
	GetConfig(ctx context.Context) (*PlatformConfig, error)
	ListAudit(ctx context.Context) ([]ConfigChange, error)
}

// LoggingMiddleware returns a service middleware that logs all operations.
func LoggingMiddleware(logger *slog.Logger) func(loggingService) *loggingMiddleware {
	return func(next loggingService) *loggingMiddleware {
		return &loggingMiddleware{
			next:   next,
			logger: logger,
		}
	}
}

type loggingMiddleware struct {
	next   loggingService
	logger *slog.Logger
}

func (m *loggingMiddleware) GrantRole(ctx context.Context, caller, role, account string) error {
	start := time.Now()
	err := m.next.GrantRole(ctx, caller, role, account)
	m.logger.Info("GrantRole",
		"caller", caller,
		"role", role,
		"account", account,
		"duration", time.Since(start),
		"error", err,
	)
	return err
}

func (m *loggingMiddleware) RevokeRole(ctx context.Context, caller, role, account string) error {
	start := time.Now()
	err := m.next.RevokeRole(ctx, caller, role, account)
	m.logger.Info("RevokeRole",
		"caller", caller,
		"role", role,
		"account", account,
		"duration", time.Since(start),
		"error", err,
	)
	return err
}

func (m *loggingMiddleware) HasRole(ctx context.Context, role, account string) (bool, error) {
	start := time.Now()
	ok, err := m.next.HasRole(ctx, role, account)
	m.logger.Debug("HasRole",
		"role", role,
		"account", account,
		"duration", time.Since(start),
		"error", err,
	)
	return ok, err
}

func (m *loggingMiddleware) RoleAccounts(ctx context.Context, role string) ([]string, error) {
	start := time.Now()
	accounts, err := m.next.RoleAccounts(ctx, role)
	m.logger.Debug("RoleAccounts",
		"role", role,
		"duration", time.Since(start),
		"error", err,
	)
	return accounts, err
}

func (m *loggingMiddleware) Pause(ctx context.Context, caller string) error {
	start := time.Now()
	err := m.next.Pause(ctx, caller)
	m.logger.Warn("Pause",
		"caller", caller,
		"duration", time.Since(start),
		"error", err,
	)
	return err
}

func (m *loggingMiddleware) Unpause(ctx context.Context, caller string) error {
	start := time.Now()
	err := m.next.Unpause(ctx, caller)
	m.logger.Warn("Unpause",
		"caller", caller,
		"duration", time.Since(start),
		"error", err,
	)
	return err
}

func (m *loggingMiddleware) SetPlatformFee(ctx context.Context, caller string, bps int64) error {
	start := time.Now()
	err := m.next.SetPlatformFee(ctx, caller, bps)
	m.logger.Info("SetPlatformFee",
		"caller", caller,
		"bps", bps,
		"duration", time.Since(start),
		"error", err,
	)
	return err
}

func (m *loggingMiddleware) SetMinimumBountyAmount(ctx context.Context, caller string, amount int64) error {
	start := time.Now()
	err := m.next.SetMinimumBountyAmount(ctx, caller, amount)
	m.logger.Info("SetMinimumBountyAmount",
		"caller", caller,
		"amount", amount,
		"duration", time.Since(start),
		"error", err,
	)
	return err
}

func (m *loggingMiddleware) SetMaximumClaimDuration(ctx context.Context, caller string, d time.Duration) error {
	start := time.Now()
	err := m.next.SetMaximumClaimDuration(ctx, caller, d)
	m.logger.Info("SetMaximumClaimDuration",
		"caller", caller,
		"claimDuration", d,
		"duration", time.Since(start),
		"error", err,
	)
	return err
}

func (m *loggingMiddleware) SetFeeRecipient(ctx context.Context, caller, recipient string) error {
	start := time.Now()
	err := m.next.SetFeeRecipient(ctx, caller, recipient)
	m.logger.Info("SetFeeRecipient",
		"caller", caller,
		"recipient", recipient,
		"duration", time.Since(start),
		"error", err,
	)
	return err
}

func (m *loggingMiddleware) SetCollaborators(ctx context.Context, caller string, e CollaboratorEndpoints) error {
	start := time.Now()
	err := m.next.SetCollaborators(ctx, caller, e)
	m.logger.Info("SetCollaborators",
		"caller", caller,
		"reputation", e.ReputationURL,
		"badges", e.BadgeMintURL,
		"verifier", e.VerifierURL,
		"duration", time.Since(start),
		"error", err,
	)
	return err
}

func (m *loggingMiddleware) Collaborators(ctx context.Context) CollaboratorEndpoints {
	return m.next.Collaborators(ctx)
}

func (m *loggingMiddleware) Deposit(ctx context.Context, caller, account string, amount int64) error {
	start := time.Now()
	err := m.next.Deposit(ctx, caller, account, amount)
	m.logger.Info("Deposit",
		"caller", caller,
		"account", account,
		"amount", amount,
		"duration", time.Since(start),
		"error", err,
	)
	return err
}

func (m *loggingMiddleware) Withdraw(ctx context.Context, caller, account string, amount int64) error {
	start := time.Now()
	err := m.next.Withdraw(ctx, caller, account, amount)
	m.logger.Warn("Withdraw",
		"caller", caller,
		"account", account,
		"amount", amount,
		"duration", time.Since(start),
		"error", err,
	)
	return err
}

func (m *loggingMiddleware) GetConfig(ctx context.Context) (*PlatformConfig, error) {
	start := time.Now()
	cfg, err := m.next.GetConfig(ctx)
	m.logger.Debug("GetConfig",
		"duration", time.Since(start),
		"error", err,
	)
	return cfg, err
}

func (m *loggingMiddleware) ListAudit(ctx context.Context) ([]ConfigChange, error) {
	start := time.Now()
	changes, err := m.next.ListAudit(ctx)
	m.logger.Debug("ListAudit",
		"duration", time.Since(start),
		"error", err,
	)
	return changes, err
}
