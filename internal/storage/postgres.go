package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	db     *sql.DB
	q      dbtx
	logger *slog.Logger
}

// NewPostgresStore creates a new Postgres store
func NewPostgresStore(url string, logger *slog.Logger) (*PostgresStore, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s := &PostgresStore{db: db, logger: logger}
	s.q = db
	return s, nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// InTx runs fn against a transaction-scoped copy of the store.
func (s *PostgresStore) InTx(ctx context.Context, fn func(Store) error) error {
	if _, ok := s.q.(*sql.Tx); ok {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	txStore := &PostgresStore{db: s.db, q: tx, logger: s.logger}
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
func (s *PostgresStore) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS bounties (
		id BIGSERIAL PRIMARY KEY,
		maintainer TEXT NOT NULL,
		reward_amount BIGINT NOT NULL,
		status TEXT NOT NULL,
		claimed_by TEXT NOT NULL DEFAULT '',
		deadline BIGINT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		issue_url TEXT NOT NULL DEFAULT '',
		repo_url TEXT NOT NULL DEFAULT '',
		required_skills TEXT NOT NULL DEFAULT '[]',
		difficulty TEXT NOT NULL,
		is_completed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at BIGINT NOT NULL,
		claimed_at BIGINT NOT NULL DEFAULT 0,
		submitted_at BIGINT NOT NULL DEFAULT 0,
		verified_at BIGINT NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS submissions (
		bounty_id BIGINT NOT NULL REFERENCES bounties(id),
		seq INTEGER NOT NULL,
		developer TEXT NOT NULL,
		pr_url TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		submitted_at BIGINT NOT NULL,
		is_verified BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (bounty_id, seq)
	);

	CREATE TABLE IF NOT EXISTS roles (
		role TEXT NOT NULL,
		account TEXT NOT NULL,
		granted_by TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL,
		PRIMARY KEY (role, account)
	);

	CREATE TABLE IF NOT EXISTS platform_config (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		platform_fee_bps BIGINT NOT NULL,
		minimum_bounty_amount BIGINT NOT NULL,
		maximum_claim_duration BIGINT NOT NULL,
		fee_recipient TEXT NOT NULL,
		paused BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE TABLE IF NOT EXISTS config_audit (
		id UUID PRIMARY KEY,
		field TEXT NOT NULL,
		old_value TEXT NOT NULL,
		new_value TEXT NOT NULL,
		actor TEXT NOT NULL,
		created_at BIGINT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS escrow_locks (
		bounty_id BIGINT PRIMARY KEY REFERENCES bounties(id),
		amount BIGINT NOT NULL,
		released BOOLEAN NOT NULL DEFAULT FALSE,
		created_at BIGINT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS accounts (
		address TEXT PRIMARY KEY,
		balance BIGINT NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS events (
		id UUID PRIMARY KEY,
		bounty_id BIGINT NOT NULL DEFAULT 0,
		type TEXT NOT NULL,
		actor TEXT NOT NULL DEFAULT '',
		data TEXT NOT NULL DEFAULT '{}',
		created_at BIGINT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS api_keys (
		id UUID PRIMARY KEY,
		key_hash TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		account TEXT NOT NULL,
		created_at BIGINT NOT NULL,
		last_used_at BIGINT NOT NULL DEFAULT 0,
		revoked_at BIGINT NOT NULL DEFAULT 0
	);

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

// CreateBounty inserts a bounty and returns its assigned sequential id
func (s *PostgresStore) CreateBounty(ctx context.Context, b *Bounty) (int64, error) {
	query := `
		INSERT INTO bounties (maintainer, reward_amount, status, claimed_by, deadline, title, description,
			issue_url, repo_url, required_skills, difficulty, is_completed,
			created_at, claimed_at, submitted_at, verified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`
	var id int64
	err := s.q.QueryRowContext(ctx, query,
		b.Maintainer, b.RewardAmount, b.Status, b.ClaimedBy, b.Deadline, b.Title, b.Description,
		b.IssueURL, b.RepoURL, encodeSkills(b.RequiredSkills), b.Difficulty, b.IsCompleted,
		b.CreatedAt, b.ClaimedAt, b.SubmittedAt, b.VerifiedAt,
	).Scan(&id)
	return id, err
}

// GetBounty retrieves a bounty by id
func (s *PostgresStore) GetBounty(ctx context.Context, id int64) (*Bounty, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+bountyColumns+` FROM bounties WHERE id = $1`, id)
	b, err := scanBounty(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return b, err
}

// UpdateBounty writes back the mutable bounty fields
func (s *PostgresStore) UpdateBounty(ctx context.Context, b *Bounty) error {
	query := `
		UPDATE bounties
		SET status = $1, claimed_by = $2, is_completed = $3,
			claimed_at = $4, submitted_at = $5, verified_at = $6
		WHERE id = $7
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
func (s *PostgresStore) ListBounties(ctx context.Context, filter BountyFilter, pagination PaginationParams) (*PaginatedResult[Bounty], error) {
	query := `SELECT ` + bountyColumns + ` FROM bounties WHERE id > $1`
	args := []any{pagination.Cursor}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.Maintainer != "" {
		args = append(args, filter.Maintainer)
		query += fmt.Sprintf(` AND maintainer = $%d`, len(args))
	}
	if filter.Developer != "" {
		args = append(args, filter.Developer)
		query += fmt.Sprintf(` AND claimed_by = $%d`, len(args))
	}
	args = append(args, pagination.Limit+1)
	query += fmt.Sprintf(` ORDER BY id LIMIT $%d`, len(args))

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
func (s *PostgresStore) CountBounties(ctx context.Context) (int64, error) {
	var n int64
	err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM bounties`).Scan(&n)
	return n, err
}

// ListBountiesByMaintainer lists all bounties created by an account
func (s *PostgresStore) ListBountiesByMaintainer(ctx context.Context, maintainer string) ([]Bounty, error) {
	return s.listBountiesWhere(ctx, `maintainer = $1`, maintainer)
}

// ListBountiesByDeveloper lists bounties claimed (or completed) by an account
func (s *PostgresStore) ListBountiesByDeveloper(ctx context.Context, developer string, completedOnly bool) ([]Bounty, error) {
	if completedOnly {
		return s.listBountiesWhere(ctx, `claimed_by = $1 AND is_completed = TRUE`, developer)
	}
	return s.listBountiesWhere(ctx, `claimed_by = $1`, developer)
}

func (s *PostgresStore) listBountiesWhere(ctx context.Context, where string, args ...any) ([]Bounty, error) {
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
func (s *PostgresStore) AppendSubmission(ctx context.Context, sub *Submission) (int, error) {
	var seq int
	err := s.q.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM submissions WHERE bounty_id = $1`, sub.BountyID).Scan(&seq)
	if err != nil {
		return 0, err
	}

	query := `
		INSERT INTO submissions (bounty_id, seq, developer, pr_url, description, submitted_at, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.q.ExecContext(ctx, query, sub.BountyID, seq, sub.Developer, sub.PRURL, sub.Description, sub.SubmittedAt, sub.IsVerified)
	if err != nil {
		return 0, err
	}
	sub.Seq = seq
	return seq, nil
}

// ListSubmissions lists a bounty's submissions in append order
func (s *PostgresStore) ListSubmissions(ctx context.Context, bountyID int64) ([]Submission, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT bounty_id, seq, developer, pr_url, description, submitted_at, is_verified FROM submissions WHERE bounty_id = $1 ORDER BY seq`,
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
func (s *PostgresStore) LatestSubmission(ctx context.Context, bountyID int64) (*Submission, error) {
	var sub Submission
	err := s.q.QueryRowContext(ctx,
		`SELECT bounty_id, seq, developer, pr_url, description, submitted_at, is_verified FROM submissions WHERE bounty_id = $1 ORDER BY seq DESC LIMIT 1`,
		bountyID).Scan(&sub.BountyID, &sub.Seq, &sub.Developer, &sub.PRURL, &sub.Description, &sub.SubmittedAt, &sub.IsVerified)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return &sub, err
}

// MarkSubmissionVerified flags one submission as the verified one
func (s *PostgresStore) MarkSubmissionVerified(ctx context.Context, bountyID int64, seq int) error {
	res, err := s.q.ExecContext(ctx, `UPDATE submissions SET is_verified = TRUE WHERE bounty_id = $1 AND seq = $2`, bountyID, seq)
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
func (s *PostgresStore) GrantRole(ctx context.Context, role, account, grantedBy string) error {
	query := `INSERT INTO roles (role, account, granted_by, created_at) VALUES ($1, $2, $3, $4) ON CONFLICT (role, account) DO NOTHING`
	_, err := s.q.ExecContext(ctx, query, role, account, grantedBy, time.Now().Unix())
	return err
}

// RevokeRole revokes a role from an account (no-op if not granted)
func (s *PostgresStore) RevokeRole(ctx context.Context, role, account string) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM roles WHERE role = $1 AND account = $2`, role, account)
	return err
}

// HasRole reports whether an account holds a role
func (s *PostgresStore) HasRole(ctx context.Context, role, account string) (bool, error) {
	var count int
	err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM roles WHERE role = $1 AND account = $2`, role, account).Scan(&count)
	return count > 0, err
}

// ListRoleAccounts lists all accounts holding a role
func (s *PostgresStore) ListRoleAccounts(ctx context.Context, role string) ([]string, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT account FROM roles WHERE role = $1 ORDER BY account`, role)
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
func (s *PostgresStore) GetPlatformConfig(ctx context.Context) (*PlatformConfig, error) {
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
func (s *PostgresStore) SetPlatformConfig(ctx context.Context, cfg *PlatformConfig) error {
	query := `
		UPDATE platform_config
		SET platform_fee_bps = $1, minimum_bounty_amount = $2, maximum_claim_duration = $3, fee_recipient = $4, paused = $5
		WHERE id = 1
	`
	_, err := s.q.ExecContext(ctx, query, cfg.PlatformFeeBps, cfg.MinimumBountyAmount, cfg.MaximumClaimDuration, cfg.FeeRecipient, cfg.Paused)
	return err
}

// EnsurePlatformConfig seeds the config row if it does not exist yet
func (s *PostgresStore) EnsurePlatformConfig(ctx context.Context, defaults *PlatformConfig) error {
	query := `
		INSERT INTO platform_config (id, platform_fee_bps, minimum_bounty_amount, maximum_claim_duration, fee_recipient, paused)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.q.ExecContext(ctx, query, defaults.PlatformFeeBps, defaults.MinimumBountyAmount, defaults.MaximumClaimDuration, defaults.FeeRecipient, defaults.Paused)
	return err
}

// AppendConfigAudit records one config change
func (s *PostgresStore) AppendConfigAudit(ctx context.Context, a *ConfigAudit) error {
	if a.ID == "" {
		a.ID = generateID()
	}
	query := `INSERT INTO config_audit (id, field, old_value, new_value, actor, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.q.ExecContext(ctx, query, a.ID, a.Field, a.OldValue, a.NewValue, a.Actor, a.CreatedAt)
	return err
}

// ListConfigAudit lists config changes oldest-first
func (s *PostgresStore) ListConfigAudit(ctx context.Context) ([]ConfigAudit, error) {
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
func (s *PostgresStore) CreateLock(ctx context.Context, bountyID, amount int64) error {
	query := `INSERT INTO escrow_locks (bounty_id, amount, released, created_at) VALUES ($1, $2, FALSE, $3)`
	_, err := s.q.ExecContext(ctx, query, bountyID, amount, time.Now().Unix())
	return err
}

// GetLock retrieves the escrow lock for a bounty
func (s *PostgresStore) GetLock(ctx context.Context, bountyID int64) (*EscrowLock, error) {
	var l EscrowLock
	err := s.q.QueryRowContext(ctx,
		`SELECT bounty_id, amount, released, created_at FROM escrow_locks WHERE bounty_id = $1`, bountyID,
	).Scan(&l.BountyID, &l.Amount, &l.Released, &l.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return &l, err
}

// ReleaseLock flips a lock to released exactly once
func (s *PostgresStore) ReleaseLock(ctx context.Context, bountyID int64) error {
	res, err := s.q.ExecContext(ctx, `UPDATE escrow_locks SET released = TRUE WHERE bounty_id = $1 AND released = FALSE`, bountyID)
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
func (s *PostgresStore) TotalLocked(ctx context.Context) (int64, error) {
	var total int64
	err := s.q.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount), 0) FROM escrow_locks WHERE released = FALSE`).Scan(&total)
	return total, err
}

// GetBalance returns an account's balance (0 for unknown accounts)
func (s *PostgresStore) GetBalance(ctx context.Context, address string) (int64, error) {
	var balance int64
	err := s.q.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE address = $1`, address).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return balance, err
}

// AdjustBalance applies a delta to an account balance
func (s *PostgresStore) AdjustBalance(ctx context.Context, address string, delta int64) error {
	if _, err := s.q.ExecContext(ctx, `INSERT INTO accounts (address, balance) VALUES ($1, 0) ON CONFLICT (address) DO NOTHING`, address); err != nil {
		return err
	}
	res, err := s.q.ExecContext(ctx, `UPDATE accounts SET balance = balance + $1 WHERE address = $2 AND balance + $1 >= 0`, delta, address)
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
func (s *PostgresStore) AppendEvent(ctx context.Context, e *Event) error {
	if e.ID == "" {
		e.ID = generateID()
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	query := `INSERT INTO events (id, bounty_id, type, actor, data, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.q.ExecContext(ctx, query, e.ID, e.BountyID, e.Type, e.Actor, encodeEventData(e.Data), e.CreatedAt)
	return err
}

// ListEvents lists events for a bounty oldest-first
func (s *PostgresStore) ListEvents(ctx context.Context, bountyID int64) ([]Event, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, bounty_id, type, actor, data, created_at FROM events WHERE bounty_id = $1 ORDER BY created_at, id`, bountyID)
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
func (s *PostgresStore) CreateAPIKey(ctx context.Context, name, account string) (string, error) {
	key := generateAPIKey()
	hash := hashAPIKey(key)
	id := generateID()
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO api_keys (id, key_hash, name, account, created_at) VALUES ($1, $2, $3, $4, $5)`,
		id, hash, name, account, time.Now().Unix())
	if err != nil {
		return "", err
	}
	return key, nil
}

// ValidateAPIKey validates an API key
func (s *PostgresStore) ValidateAPIKey(ctx context.Context, key string) (*APIKey, error) {
	hash := hashAPIKey(key)
	var ak APIKey
	err := s.q.QueryRowContext(ctx,
		`SELECT id, key_hash, name, account, created_at FROM api_keys WHERE key_hash = $1 AND revoked_at = 0`, hash,
	).Scan(&ak.ID, &ak.KeyHash, &ak.Name, &ak.Account, &ak.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	_, _ = s.q.ExecContext(ctx, `UPDATE api_keys SET last_used_at = $1 WHERE id = $2`, time.Now().Unix(), ak.ID)
	return &ak, nil
}

// ListAPIKeys lists all active API keys
func (s *PostgresStore) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
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
func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id string) error {
	_, err := s.q.ExecContext(ctx, `UPDATE api_keys SET revoked_at = $1 WHERE id = $2`, time.Now().Unix(), id)
	return err
}
