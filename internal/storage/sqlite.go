package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so every query method can run
// inside or outside a transaction unchanged.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db     *sql.DB
	q      dbtx
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger}
	s.q = db
	return s, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// InTx runs fn against a transaction-scoped copy of the store.
func (s *SQLiteStore) InTx(ctx context.Context, fn func(Store) error) error {
	if _, ok := s.q.(*sql.Tx); ok {
		// Already inside a transaction
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	txStore := &SQLiteStore{db: s.db, q: tx, logger: s.logger}
	if err := fn(txStore); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Migrate runs database migrations
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	schema := `
	-- Bounties
	CREATE TABLE IF NOT EXISTS bounties (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		maintainer TEXT NOT NULL,
		reward_amount INTEGER NOT NULL,
		status TEXT NOT NULL,
		claimed_by TEXT NOT NULL DEFAULT '',
		deadline INTEGER NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		issue_url TEXT NOT NULL DEFAULT '',
		repo_url TEXT NOT NULL DEFAULT '',
		required_skills TEXT NOT NULL DEFAULT '[]',
		difficulty TEXT NOT NULL,
		is_completed INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		claimed_at INTEGER NOT NULL DEFAULT 0,
		submitted_at INTEGER NOT NULL DEFAULT 0,
		verified_at INTEGER NOT NULL DEFAULT 0
	);

	-- Submissions (append-only per bounty)
	CREATE TABLE IF NOT EXISTS submissions (
		bounty_id INTEGER NOT NULL REFERENCES bounties(id),
		seq INTEGER NOT NULL,
		developer TEXT NOT NULL,
		pr_url TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		submitted_at INTEGER NOT NULL,
		is_verified INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (bounty_id, seq)
	);

	-- Role grants
	CREATE TABLE IF NOT EXISTS roles (
		role TEXT NOT NULL,
		account TEXT NOT NULL,
		granted_by TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		PRIMARY KEY (role, account)
	);

	-- Platform config singleton
	CREATE TABLE IF NOT EXISTS platform_config (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		platform_fee_bps INTEGER NOT NULL,
		minimum_bounty_amount INTEGER NOT NULL,
		maximum_claim_duration INTEGER NOT NULL,
		fee_recipient TEXT NOT NULL,
		paused INTEGER NOT NULL DEFAULT 0
	);

	-- Config change audit trail
	CREATE TABLE IF NOT EXISTS config_audit (
		id TEXT PRIMARY KEY,
		field TEXT NOT NULL,
		old_value TEXT NOT NULL,
		new_value TEXT NOT NULL,
		actor TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	-- Escrow locks
	CREATE TABLE IF NOT EXISTS escrow_locks (
		bounty_id INTEGER PRIMARY KEY REFERENCES bounties(id),
		amount INTEGER NOT NULL,
		released INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);

	-- Account balances
	CREATE TABLE IF NOT EXISTS accounts (
		address TEXT PRIMARY KEY,
		balance INTEGER NOT NULL DEFAULT 0
	);

	-- Event log
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		bounty_id INTEGER NOT NULL DEFAULT 0,
		type TEXT NOT NULL,
		actor TEXT NOT NULL DEFAULT '',
		data TEXT NOT NULL DEFAULT '{}',
		created_at INTEGER NOT NULL
	);

	-- API keys
	CREATE TABLE IF NOT EXISTS api_keys (
		id TEXT PRIMARY KEY,
		key_hash TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		account TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		last_used_at INTEGER NOT NULL DEFAULT 0,
		revoked_at INTEGER NOT NULL DEFAULT 0
	);

	-- Indexes
	CREATE INDEX IF NOT EXISTS idx_bounties_status ON bounties(status);
	CREATE INDEX IF NOT EXISTS idx_bounties_maintainer ON bounties(maintainer);
	CREATE INDEX IF NOT EXISTS idx_bounties_claimed_by ON bounties(claimed_by);
	CREATE INDEX IF NOT EXISTS idx_events_bounty ON events(bounty_id);
	`

	_, err := s.q.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	s.logger.Info("database migrations complete")
	return nil
}

const bountyColumns = `id, maintainer, reward_amount, status, claimed_by, deadline, title, description,
	issue_url, repo_url, required_skills, difficulty, is_completed,
	created_at, claimed_at, submitted_at, verified_at`

func scanBounty(row interface{ Scan(...any) error }) (*Bounty, error) {
	var b Bounty
	var skills string
	err := row.Scan(
		&b.ID, &b.Maintainer, &b.RewardAmount, &b.Status, &b.ClaimedBy, &b.Deadline, &b.Title, &b.Description,
		&b.IssueURL, &b.RepoURL, &skills, &b.Difficulty, &b.IsCompleted,
		&b.CreatedAt, &b.ClaimedAt, &b.SubmittedAt, &b.VerifiedAt,
	)
	if err != nil {
		return nil, err
	}
	b.RequiredSkills = decodeSkills(skills)
	return &b, nil
}

// CreateBounty inserts a bounty and returns its assigned sequential id
func (s *SQLiteStore) CreateBounty(ctx context.Context, b *Bounty) (int64, error) {
	query := `
		INSERT INTO bounties (maintainer, reward_amount, status, claimed_by, deadline, title, description,
			issue_url, repo_url, required_skills, difficulty, is_completed,
			created_at, claimed_at, submitted_at, verified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := s.q.ExecContext(ctx, query,
		b.Maintainer, b.RewardAmount, b.Status, b.ClaimedBy, b.Deadline, b.Title, b.Description,
		b.IssueURL, b.RepoURL, encodeSkills(b.RequiredSkills), b.Difficulty, b.IsCompleted,
		b.CreatedAt, b.ClaimedAt, b.SubmittedAt, b.VerifiedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetBounty retrieves a bounty by id
func (s *SQLiteStore) GetBounty(ctx context.Context, id int64) (*Bounty, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+bountyColumns+` FROM bounties WHERE id = ?`, id)
	b, err := scanBounty(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return b, err
}

// UpdateBounty writes back the mutable bounty fields
func (s *SQLiteStore) UpdateBounty(ctx context.Context, b *Bounty) error {
	query := `
		UPDATE bounties
		SET status = ?, claimed_by = ?, is_completed = ?,
			claimed_at = ?, submitted_at = ?, verified_at = ?
		WHERE id = ?
	`
	res, err := s.q.ExecContext(ctx, query,
		b.Status, b.ClaimedBy, b.IsCompleted,
		b.ClaimedAt, b.SubmittedAt, b.VerifiedAt, b.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListBounties lists bounties with filtering and cursor-based pagination
func (s *SQLiteStore) ListBounties(ctx context.Context, filter BountyFilter, pagination PaginationParams) (*PaginatedResult[Bounty], error) {
	query := `SELECT ` + bountyColumns + ` FROM bounties WHERE id > ?`
	args := []any{pagination.Cursor}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.Maintainer != "" {
		query += ` AND maintainer = ?`
		args = append(args, filter.Maintainer)
	}
	if filter.Developer != "" {
		query += ` AND claimed_by = ?`
		args = append(args, filter.Developer)
	}
	query += ` ORDER BY id LIMIT ?`
	args = append(args, pagination.Limit+1)

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bounties []Bounty
	for rows.Next() {
		b, err := scanBounty(rows)
		if err != nil {
			return nil, err
		}
		bounties = append(bounties, *b)
	}

	hasMore := len(bounties) > pagination.Limit
	if hasMore {
		bounties = bounties[:pagination.Limit]
	}
	var nextCursor int64
	if len(bounties) > 0 {
		nextCursor = bounties[len(bounties)-1].ID
	}

	return &PaginatedResult[Bounty]{
		Data:       bounties,
		HasMore:    hasMore,
		NextCursor: nextCursor,
	}, rows.Err()
}

// CountBounties returns the total number of bounties ever created
func (s *SQLiteStore) CountBounties(ctx context.Context) (int64, error) {
	var n int64
	err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM bounties`).Scan(&n)
	return n, err
}

// ListBountiesByMaintainer lists all bounties created by an account
func (s *SQLiteStore) ListBountiesByMaintainer(ctx context.Context, maintainer string) ([]Bounty, error) {
	return s.listBountiesWhere(ctx, `maintainer = ?`, maintainer)
}

// ListBountiesByDeveloper lists bounties claimed (or completed) by an account
func (s *SQLiteStore) ListBountiesByDeveloper(ctx context.Context, developer string, completedOnly bool) ([]Bounty, error) {
	if completedOnly {
		return s.listBountiesWhere(ctx, `claimed_by = ? AND is_completed = 1`, developer)
	}
	return s.listBountiesWhere(ctx, `claimed_by = ?`, developer)
}

func (s *SQLiteStore) listBountiesWhere(ctx context.Context, where string, args ...any) ([]Bounty, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+bountyColumns+` FROM bounties WHERE `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bounties []Bounty
	for rows.Next() {
		b, err := scanBounty(rows)
		if err != nil {
			return nil, err
		}
		bounties = append(bounties, *b)
	}
	return bounties, rows.Err()
}

// AppendSubmission appends a submission to a bounty's log and returns its sequence index
func (s *SQLiteStore) AppendSubmission(ctx context.Context, sub *Submission) (int, error) {
	var seq int
	err := s.q.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM submissions WHERE bounty_id = ?`, sub.BountyID).Scan(&seq)
	if err != nil {
		return 0, err
	}

	query := `
		INSERT INTO submissions (bounty_id, seq, developer, pr_url, description, submitted_at, is_verified)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.q.ExecContext(ctx, query, sub.BountyID, seq, sub.Developer, sub.PRURL, sub.Description, sub.SubmittedAt, sub.IsVerified)
	if err != nil {
		return 0, err
	}
	sub.Seq = seq
	return seq, nil
}

// ListSubmissions lists a bounty's submissions in append order
func (s *SQLiteStore) ListSubmissions(ctx context.Context, bountyID int64) ([]Submission, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT bounty_id, seq, developer, pr_url, description, submitted_at, is_verified FROM submissions WHERE bounty_id = ? ORDER BY seq`,
		bountyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []Submission
	for rows.Next() {
		var sub Submission
		if err := rows.Scan(&sub.BountyID, &sub.Seq, &sub.Developer, &sub.PRURL, &sub.Description, &sub.SubmittedAt, &sub.IsVerified); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// LatestSubmission returns the most recent submission for a bounty
func (s *SQLiteStore) LatestSubmission(ctx context.Context, bountyID int64) (*Submission, error) {
	var sub Submission
	err := s.q.QueryRowContext(ctx,
		`SELECT bounty_id, seq, developer, pr_url, description, submitted_at, is_verified FROM submissions WHERE bounty_id = ? ORDER BY seq DESC LIMIT 1`,
		bountyID).Scan(&sub.BountyID, &sub.Seq, &sub.Developer, &sub.PRURL, &sub.Description, &sub.SubmittedAt, &sub.IsVerified)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return &sub, err
}

// MarkSubmissionVerified flags one submission as the verified one
func (s *SQLiteStore) MarkSubmissionVerified(ctx context.Context, bountyID int64, seq int) error {
	res, err := s.q.ExecContext(ctx, `UPDATE submissions SET is_verified = 1 WHERE bounty_id = ? AND seq = ?`, bountyID, seq)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GrantRole grants a role to an account (no-op if already granted)
func (s *SQLiteStore) GrantRole(ctx context.Context, role, account, grantedBy string) error {
	query := `INSERT OR IGNORE INTO roles (role, account, granted_by, created_at) VALUES (?, ?, ?, ?)`
	_, err := s.q.ExecContext(ctx, query, role, account, grantedBy, time.Now().Unix())
	return err
}

// RevokeRole revokes a role from an account (no-op if not granted)
func (s *SQLiteStore) RevokeRole(ctx context.Context, role, account string) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM roles WHERE role = ? AND account = ?`, role, account)
	return err
}

// HasRole reports whether an account holds a role
func (s *SQLiteStore) HasRole(ctx context.Context, role, account string) (bool, error) {
	var count int
	err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM roles WHERE role = ? AND account = ?`, role, account).Scan(&count)
	return count > 0, err
}

// ListRoleAccounts lists all accounts holding a role
func (s *SQLiteStore) ListRoleAccounts(ctx context.Context, role string) ([]string, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT account FROM roles WHERE role = ? ORDER BY account`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// GetPlatformConfig retrieves the platform config singleton
func (s *SQLiteStore) GetPlatformConfig(ctx context.Context) (*PlatformConfig, error) {
	var cfg PlatformConfig
	err := s.q.QueryRowContext(ctx,
		`SELECT platform_fee_bps, minimum_bounty_amount, maximum_claim_duration, fee_recipient, paused FROM platform_config WHERE id = 1`,
	).Scan(&cfg.PlatformFeeBps, &cfg.MinimumBountyAmount, &cfg.MaximumClaimDuration, &cfg.FeeRecipient, &cfg.Paused)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return &cfg, err
}

// SetPlatformConfig writes the platform config singleton
func (s *SQLiteStore) SetPlatformConfig(ctx context.Context, cfg *PlatformConfig) error {
	query := `
		UPDATE platform_config
		SET platform_fee_bps = ?, minimum_bounty_amount = ?, maximum_claim_duration = ?, fee_recipient = ?, paused = ?
		WHERE id = 1
	`
	_, err := s.q.ExecContext(ctx, query, cfg.PlatformFeeBps, cfg.MinimumBountyAmount, cfg.MaximumClaimDuration, cfg.FeeRecipient, cfg.Paused)
	return err
}

// EnsurePlatformConfig seeds the config row if it does not exist yet
func (s *SQLiteStore) EnsurePlatformConfig(ctx context.Context, defaults *PlatformConfig) error {
	query := `
		INSERT OR IGNORE INTO platform_config (id, platform_fee_bps, minimum_bounty_amount, maximum_claim_duration, fee_recipient, paused)
		VALUES (1, ?, ?, ?, ?, ?)
	`
	_, err := s.q.ExecContext(ctx, query, defaults.PlatformFeeBps, defaults.MinimumBountyAmount, defaults.MaximumClaimDuration, defaults.FeeRecipient, defaults.Paused)
	return err
}

// AppendConfigAudit records one config change
func (s *SQLiteStore) AppendConfigAudit(ctx context.Context, a *ConfigAudit) error {
	if a.ID == "" {
		a.ID = generateID()
	}
	query := `INSERT INTO config_audit (id, field, old_value, new_value, actor, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.q.ExecContext(ctx, query, a.ID, a.Field, a.OldValue, a.NewValue, a.Actor, a.CreatedAt)
	return err
}

// ListConfigAudit lists config changes oldest-first
func (s *SQLiteStore) ListConfigAudit(ctx context.Context) ([]ConfigAudit, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, field, old_value, new_value, actor, created_at FROM config_audit ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var audits []ConfigAudit
	for rows.Next() {
		var a ConfigAudit
		if err := rows.Scan(&a.ID, &a.Field, &a.OldValue, &a.NewValue, &a.Actor, &a.CreatedAt); err != nil {
			return nil, err
		}
		audits = append(audits, a)
	}
	return audits, rows.Err()
}

// CreateLock records escrowed value for a bounty
func (s *SQLiteStore) CreateLock(ctx context.Context, bountyID, amount int64) error {
	query := `INSERT INTO escrow_locks (bounty_id, amount, released, created_at) VALUES (?, ?, 0, ?)`
	_, err := s.q.ExecContext(ctx, query, bountyID, amount, time.Now().Unix())
	return err
}

// GetLock retrieves the escrow lock for a bounty
func (s *SQLiteStore) GetLock(ctx context.Context, bountyID int64) (*EscrowLock, error) {
	var l EscrowLock
	err := s.q.QueryRowContext(ctx,
		`SELECT bounty_id, amount, released, created_at FROM escrow_locks WHERE bounty_id = ?`, bountyID,
	).Scan(&l.BountyID, &l.Amount, &l.Released, &l.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return &l, err
}

// ReleaseLock flips a lock to released. Fails if already released so each
// lock can only ever be paid out or refunded once.
func (s *SQLiteStore) ReleaseLock(ctx context.Context, bountyID int64) error {
	res, err := s.q.ExecContext(ctx, `UPDATE escrow_locks SET released = 1 WHERE bounty_id = ? AND released = 0`, bountyID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, getErr := s.GetLock(ctx, bountyID); getErr != nil {
			return getErr
		}
		return ErrLockReleased
	}
	return nil
}

// TotalLocked sums all unreleased escrow locks
func (s *SQLiteStore) TotalLocked(ctx context.Context) (int64, error) {
	var total int64
	err := s.q.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount), 0) FROM escrow_locks WHERE released = 0`).Scan(&total)
	return total, err
}

// GetBalance returns an account's balance (0 for unknown accounts)
func (s *SQLiteStore) GetBalance(ctx context.Context, address string) (int64, error) {
	var balance int64
	err := s.q.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE address = ?`, address).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return balance, err
}

// AdjustBalance applies a delta to an account balance. A delta that would
// make the balance negative fails with ErrInsufficientFunds.
func (s *SQLiteStore) AdjustBalance(ctx context.Context, address string, delta int64) error {
	if _, err := s.q.ExecContext(ctx, `INSERT INTO accounts (address, balance) VALUES (?, 0) ON CONFLICT(address) DO NOTHING`, address); err != nil {
		return err
	}
	res, err := s.q.ExecContext(ctx, `UPDATE accounts SET balance = balance + ? WHERE address = ? AND balance + ? >= 0`, delta, address, delta)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInsufficientFunds
	}
	return nil
}

// AppendEvent records one event
func (s *SQLiteStore) AppendEvent(ctx context.Context, e *Event) error {
	if e.ID == "" {
		e.ID = generateID()
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	query := `INSERT INTO events (id, bounty_id, type, actor, data, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.q.ExecContext(ctx, query, e.ID, e.BountyID, e.Type, e.Actor, encodeEventData(e.Data), e.CreatedAt)
	return err
}

// ListEvents lists events for a bounty oldest-first
func (s *SQLiteStore) ListEvents(ctx context.Context, bountyID int64) ([]Event, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, bounty_id, type, actor, data, created_at FROM events WHERE bounty_id = ? ORDER BY created_at, id`, bountyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var data string
		if err := rows.Scan(&e.ID, &e.BountyID, &e.Type, &e.Actor, &data, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Data = decodeEventData(data)
		events = append(events, e)
	}
	return events, rows.Err()
}

// CreateAPIKey creates a new API key bound to an account
func (s *SQLiteStore) CreateAPIKey(ctx context.Context, name, account string) (string, error) {
	key := generateAPIKey()
	hash := hashAPIKey(key)
	id := generateID()
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO api_keys (id, key_hash, name, account, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, hash, name, account, time.Now().Unix())
	if err != nil {
		return "", err
	}
	return key, nil
}

// ValidateAPIKey validates an API key
func (s *SQLiteStore) ValidateAPIKey(ctx context.Context, key string) (*APIKey, error) {
	hash := hashAPIKey(key)
	var ak APIKey
	err := s.q.QueryRowContext(ctx,
		`SELECT id, key_hash, name, account, created_at FROM api_keys WHERE key_hash = ? AND revoked_at = 0`, hash,
	).Scan(&ak.ID, &ak.KeyHash, &ak.Name, &ak.Account, &ak.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	// Update last used
	_, _ = s.q.ExecContext(ctx, `UPDATE api_keys SET last_used_at = ? WHERE id = ?`, time.Now().Unix(), ak.ID)
	return &ak, nil
}

// ListAPIKeys lists all active API keys
func (s *SQLiteStore) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, name, account, created_at, last_used_at FROM api_keys WHERE revoked_at = 0`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []APIKey
	for rows.Next() {
		var k APIKey
		if err := rows.Scan(&k.ID, &k.Name, &k.Account, &k.CreatedAt, &k.LastUsedAt); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// RevokeAPIKey revokes an API key
func (s *SQLiteStore) RevokeAPIKey(ctx context.Context, id string) error {
	_, err := s.q.ExecContext(ctx, `UPDATE api_keys SET revoked_at = ? WHERE id = ?`, time.Now().Unix(), id)
	return err
}
