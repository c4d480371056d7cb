package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/debayudh07/connectx/internal/config"
)

// Bounty statuses as persisted.
const (
	StatusOpen      = "open"
	StatusClaimed   = "claimed"
	StatusSubmitted = "submitted"
	StatusDisputed  = "disputed"
	StatusPaid      = "paid"
	StatusCancelled = "cancelled"
)

// BountyStore handles bounty record operations
type BountyStore interface {
	CreateBounty(ctx context.Context, b *Bounty) (int64, error)
	GetBounty(ctx context.Context, id int64) (*Bounty, error)
	UpdateBounty(ctx context.Context, b *Bounty) error
	ListBounties(ctx context.Context, filter BountyFilter, pagination PaginationParams) (*PaginatedResult[Bounty], error)
	CountBounties(ctx context.Context) (int64, error)
	ListBountiesByMaintainer(ctx context.Context, maintainer string) ([]Bounty, error)
	ListBountiesByDeveloper(ctx context.Context, developer string, completedOnly bool) ([]Bounty, error)
}

// SubmissionStore handles the append-only submission log per bounty
type SubmissionStore interface {
	AppendSubmission(ctx context.Context, sub *Submission) (int, error)
	ListSubmissions(ctx context.Context, bountyID int64) ([]Submission, error)
	LatestSubmission(ctx context.Context, bountyID int64) (*Submission, error)
	MarkSubmissionVerified(ctx context.Context, bountyID int64, seq int) error
}

// RoleStore handles the (role, account) relation
type RoleStore interface {
	GrantRole(ctx context.Context, role, account, grantedBy string) error
	RevokeRole(ctx context.Context, role, account string) error
	HasRole(ctx context.Context, role, account string) (bool, error)
	ListRoleAccounts(ctx context.Context, role string) ([]string, error)
}

// ConfigStore handles the platform config singleton and its audit trail
type ConfigStore interface {
	GetPlatformConfig(ctx context.Context) (*PlatformConfig, error)
	SetPlatformConfig(ctx context.Context, cfg *PlatformConfig) error
	EnsurePlatformConfig(ctx context.Context, defaults *PlatformConfig) error
	AppendConfigAudit(ctx context.Context, a *ConfigAudit) error
	ListConfigAudit(ctx context.Context) ([]ConfigAudit, error)
}

// EscrowStore handles per-bounty escrow locks
type EscrowStore interface {
	CreateLock(ctx context.Context, bountyID, amount int64) error
	GetLock(ctx context.Context, bountyID int64) (*EscrowLock, error)
	ReleaseLock(ctx context.Context, bountyID int64) error
	TotalLocked(ctx context.Context) (int64, error)
}

// AccountStore handles per-account balances
type AccountStore interface {
	GetBalance(ctx context.Context, address string) (int64, error)
	AdjustBalance(ctx context.Context, address string, delta int64) error
}

// EventStore handles the append-only event log
type EventStore interface {
	AppendEvent(ctx context.Context, e *Event) error
	ListEvents(ctx context.Context, bountyID int64) ([]Event, error)
}

// APIKeyStore handles API key operations
type APIKeyStore interface {
	CreateAPIKey(ctx context.Context, name, account string) (key string, err error)
	ValidateAPIKey(ctx context.Context, key string) (*APIKey, error)
	ListAPIKeys(ctx context.Context) ([]APIKey, error)
	RevokeAPIKey(ctx context.Context, id string) error
}

// Store combines all storage interfaces with lifecycle methods.
// Domain services define their own minimal interfaces based on their actual usage.
type Store interface {
	BountyStore
	SubmissionStore
	RoleStore
	ConfigStore
	EscrowStore
	AccountStore
	EventStore
	APIKeyStore

	// InTx runs fn against a transaction-scoped store. All writes made by fn
	// commit together or not at all. Calling InTx on an already
	// transaction-scoped store reuses the open transaction.
	InTx(ctx context.Context, fn func(Store) error) error

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}

// Bounty represents a funded unit of work. Timestamps are unix seconds;
// zero means unset. Amounts are micro-units (1_000_000 = 1.000000).
type Bounty struct {
	ID             int64
	Maintainer     string
	RewardAmount   int64
	Status         string
	ClaimedBy      string
	Deadline       int64
	Title          string
	Description    string
	IssueURL       string
	RepoURL        string
	RequiredSkills []string
	Difficulty     string
	IsCompleted    bool
	CreatedAt      int64
	ClaimedAt      int64
	SubmittedAt    int64
	VerifiedAt     int64
}

// Submission is one entry in a bounty's append-only submission log.
type Submission struct {
	BountyID    int64
	Seq         int
	Developer   string
	PRURL       string
	Description string
	SubmittedAt int64
	IsVerified  bool
}

// PlatformConfig is the admin-mutable singleton.
type PlatformConfig struct {
	PlatformFeeBps       int64
	MinimumBountyAmount  int64
	MaximumClaimDuration int64 // seconds
	FeeRecipient         string
	Paused               bool
}

// ConfigAudit records one config change (old/new value).
type ConfigAudit struct {
	ID        string
	Field     string
	OldValue  string
	NewValue  string
	Actor     string
	CreatedAt int64
}

// EscrowLock is the locked value held against one bounty.
type EscrowLock struct {
	BountyID  int64
	Amount    int64
	Released  bool
	CreatedAt int64
}

// Event is one row in the append-only event log. BountyID is 0 for
// platform-level events (role grants, pause, config changes).
type Event struct {
	ID        string
	BountyID  int64
	Type      string
	Actor     string
	Data      map[string]any
	CreatedAt int64
}

// APIKey represents an API key bound to an account address.
type APIKey struct {
	ID         string
	Name       string
	KeyHash    string
	Account    string
	CreatedAt  int64
	LastUsedAt int64
	RevokedAt  int64
}

// BountyFilter contains filter options for listing bounties
type BountyFilter struct {
	Status     string
	Maintainer string
	Developer  string
}

// PaginationParams contains pagination options
type PaginationParams struct {
	Limit  int
	Cursor int64 // last seen bounty id, 0 for the first page
}

// PaginatedResult contains paginated results
type PaginatedResult[T any] struct {
	Data       []T
	HasMore    bool
	NextCursor int64
}

// New creates a new store based on configuration
func New(cfg config.StorageConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Type {
	case "sqlite":
		return NewSQLiteStore(cfg.SQLite.Path, logger)
	case "postgres":
		return NewPostgresStore(cfg.Postgres.URL, logger)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
