package domain

import (
	"context"
	"log/slog"
	"time"
)

// loggingService is the interface required for logging middleware.
type loggingService interface {
	Create(ctx context.Context, caller string, req CreateRequest) (*Bounty, error)
	Claim(ctx context.Context, caller string, id int64) (*Bounty, error)
	Submit(ctx context.Context, caller string, id int64, prURL, description string) (*Bounty, error)
	VerifyAndPay(ctx context.Context, caller string, id int64) (*Bounty, error)
	Dispute(ctx context.Context, caller string, id int64, reason string) (*Bounty, error)
	Resolve(ctx context.Context, caller string, id int64, payDeveloper bool, note string) (*Bounty, error)
	Cancel(ctx context.Context, caller string, id int64) (*Bounty, error)
	Get(ctx context.Context, id int64) (*Bounty, error)
	List(ctx context.Context, filter ListFilter, pagination PaginationParams) (*ListResult, error)
	Submissions(ctx context.Context, id int64) ([]Submission, error)
	Events(ctx context.Context, id int64) ([]Event, error)
	MaintainerBounties(ctx context.Context, maintainer string) ([]Bounty, error)
	DeveloperClaims(ctx context.Context, developer string) ([]Bounty, error)
	DeveloperCompletions(ctx context.Context, developer string) ([]Bounty, error)
	Balance(ctx context.Context, address string) (int64, error)
	Stats(ctx context.Context) (*Stats, error)
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

func (m *loggingMiddleware) Create(ctx context.Context, caller string, req CreateRequest) (*Bounty, error) {
	start := time.Now()
	b, err := m.next.Create(ctx, caller, req)
	m.logger.Info("Create",
		"caller", caller,
		"rewardAmount", req.RewardAmount,
		"difficulty", req.Difficulty,
		"duration", time.Since(start),
		"error", err,
	)
	return b, err
}

func (m *loggingMiddleware) Claim(ctx context.Context, caller string, id int64) (*Bounty, error) {
	start := time.Now()
	b, err := m.next.Claim(ctx, caller, id)
	m.logger.Info("Claim",
		"caller", caller,
		"bounty", id,
		"duration", time.Since(start),
		"error", err,
	)
	return b, err
}

func (m *loggingMiddleware) Submit(ctx context.Context, caller string, id int64, prURL, description string) (*Bounty, error) {
	start := time.Now()
	b, err := m.next.Submit(ctx, caller, id, prURL, description)
	m.logger.Info("Submit",
		"caller", caller,
		"bounty", id,
		"prUrl", prURL,
		"duration", time.Since(start),
		"error", err,
	)
	return b, err
}

func (m *loggingMiddleware) VerifyAndPay(ctx context.Context, caller string, id int64) (*Bounty, error) {
	start := time.Now()
	b, err := m.next.VerifyAndPay(ctx, caller, id)
	m.logger.Info("VerifyAndPay",
		"caller", caller,
		"bounty", id,
		"duration", time.Since(start),
		"error", err,
	)
	return b, err
}

func (m *loggingMiddleware) Dispute(ctx context.Context, caller string, id int64, reason string) (*Bounty, error) {
	start := time.Now()
	b, err := m.next.Dispute(ctx, caller, id, reason)
	m.logger.Info("Dispute",
		"caller", caller,
		"bounty", id,
		"duration", time.Since(start),
		"error", err,
	)
	return b, err
}

func (m *loggingMiddleware) Resolve(ctx context.Context, caller string, id int64, payDeveloper bool, note string) (*Bounty, error) {
	start := time.Now()
	b, err := m.next.Resolve(ctx, caller, id, payDeveloper, note)
	m.logger.Info("Resolve",
		"caller", caller,
		"bounty", id,
		"payDeveloper", payDeveloper,
		"duration", time.Since(start),
		"error", err,
	)
	return b, err
}

func (m *loggingMiddleware) Cancel(ctx context.Context, caller string, id int64) (*Bounty, error) {
	start := time.Now()
	b, err := m.next.Cancel(ctx, caller, id)
	m.logger.Info("Cancel",
		"caller", caller,
		"bounty", id,
		"duration", time.Since(start),
		"error", err,
	)
	return b, err
}

func (m *loggingMiddleware) Get(ctx context.Context, id int64) (*Bounty, error) {
	start := time.Now()
	b, err := m.next.Get(ctx, id)
	m.logger.Debug("Get",
		"bounty", id,
		"duration", time.Since(start),
		"error", err,
	)
	return b, err
}

func (m *loggingMiddleware) List(ctx context.Context, filter ListFilter, pagination PaginationParams) (*ListResult, error) {
	start := time.Now()
	result, err := m.next.List(ctx, filter, pagination)
	m.logger.Debug("List",
		"status", filter.Status,
		"limit", pagination.Limit,
		"duration", time.Since(start),
		"error", err,
	)
	return result, err
}

func (m *loggingMiddleware) Submissions(ctx context.Context, id int64) ([]Submission, error) {
	start := time.Now()
	subs, err := m.next.Submissions(ctx, id)
	m.logger.Debug("Submissions",
		"bounty", id,
		"duration", time.Since(start),
		"error", err,
	)
	return subs, err
}

func (m *loggingMiddleware) Events(ctx context.Context, id int64) ([]Event, error) {
	start := time.Now()
	evts, err := m.next.Events(ctx, id)
	m.logger.Debug("Events",
		"bounty", id,
		"duration", time.Since(start),
		"error", err,
	)
	return evts, err
}

func (m *loggingMiddleware) MaintainerBounties(ctx context.Context, maintainer string) ([]Bounty, error) {
	start := time.Now()
	list, err := m.next.MaintainerBounties(ctx, maintainer)
	m.logger.Debug("MaintainerBounties",
		"maintainer", maintainer,
		"duration", time.Since(start),
		"error", err,
	)
	return list, err
}

func (m *loggingMiddleware) DeveloperClaims(ctx context.Context, developer string) ([]Bounty, error) {
	start := time.Now()
	list, err := m.next.DeveloperClaims(ctx, developer)
	m.logger.Debug("DeveloperClaims",
		"developer", developer,
		"duration", time.Since(start),
		"error", err,
	)
	return list, err
}

func (m *loggingMiddleware) DeveloperCompletions(ctx context.Context, developer string) ([]Bounty, error) {
	start := time.Now()
	list, err := m.next.DeveloperCompletions(ctx, developer)
	m.logger.Debug("DeveloperCompletions",
		"developer", developer,
		"duration", time.Since(start),
		"error", err,
	)
	return list, err
}

func (m *loggingMiddleware) Balance(ctx context.Context, address string) (int64, error) {
	start := time.Now()
	balance, err := m.next.Balance(ctx, address)
	m.logger.Debug("Balance",
		"address", address,
		"duration", time.Since(start),
		"error", err,
	)
	return balance, err
}

func (m *loggingMiddleware) Stats(ctx context.Context) (*Stats, error) {
	start := time.Now()
	stats, err := m.next.Stats(ctx)
	m.logger.Debug("Stats",
		"duration", time.Since(start),
		"error", err,
	)
	return stats, err
}
