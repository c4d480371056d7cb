package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"log/slog"
)

func TestSQLiteStore(t *testing.T) {
	// Create temp directory for test database
	tmpDir, err := os.MkdirTemp("", "connectx-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	dbPath := filepath.Join(tmpDir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	store, err := NewSQLiteStore(dbPath, logger)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	var bountyID int64

	t.Run("CreateAndGetBounty", func(t *testing.T) {
		b := &Bounty{
			Maintainer:     "maintainer-1",
			RewardAmount:   5_000_000,
			Status:         StatusOpen,
			Deadline:       1900000000,
			Title:          "Fix flaky websocket reconnect",
			Description:    "Reconnect loop drops messages under load",
			IssueURL:       "https://github.com/acme/relay/issues/42",
			RepoURL:        "https://github.com/acme/relay",
			RequiredSkills: []string{"go", "websockets"},
			Difficulty:     "hard",
		}

		id, err := store.CreateBounty(ctx, b)
		if err != nil {
			t.Fatalf("CreateBounty() error = %v", err)
		}
		if id == 0 {
			t.Fatal("CreateBounty() returned id 0")
		}
		bountyID = id

		got, err := store.GetBounty(ctx, id)
		if err != nil {
			t.Fatalf("GetBounty() error = %v", err)
		}
		if got.Maintainer != b.Maintainer {
			t.Errorf("GetBounty().Maintainer = %v, want %v", got.Maintainer, b.Maintainer)
		}
		if got.RewardAmount != b.RewardAmount {
			t.Errorf("GetBounty().RewardAmount = %v, want %v", got.RewardAmount, b.RewardAmount)
		}
		if got.Status != StatusOpen {
			t.Errorf("GetBounty().Status = %v, want %v", got.Status, StatusOpen)
		}
		if len(got.RequiredSkills) != 2 || got.RequiredSkills[0] != "go" {
			t.Errorf("GetBounty().RequiredSkills = %v, want [go websockets]", got.RequiredSkills)
		}
		if got.CreatedAt == 0 {
			t.Error("GetBounty().CreatedAt = 0, want set")
		}
	})

	t.Run("GetBountyNotFound", func(t *testing.T) {
		_, err := store.GetBounty(ctx, 99999)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("GetBounty(99999) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("UpdateBounty", func(t *testing.T) {
		b, err := store.GetBounty(ctx, bountyID)
		if err != nil {
			t.Fatal(err)
		}
		b.Status = StatusClaimed
		b.ClaimedBy = "dev-1"
		b.ClaimedAt = 1800000000

		if err := store.UpdateBounty(ctx, b); err != nil {
			t.Fatalf("UpdateBounty() error = %v", err)
		}

		got, err := store.GetBounty(ctx, bountyID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != StatusClaimed {
			t.Errorf("Status = %v, want %v", got.Status, StatusClaimed)
		}
		if got.ClaimedBy != "dev-1" {
			t.Errorf("ClaimedBy = %v, want dev-1", got.ClaimedBy)
		}
	})

	t.Run("ListBountiesFilterAndPagination", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			_, err := store.CreateBounty(ctx, &Bounty{
				Maintainer:   "maintainer-2",
				RewardAmount: 1_000_000,
				Status:       StatusOpen,
				Title:        "batch bounty",
				Difficulty:   "easy",
			})
			if err != nil {
				t.Fatal(err)
			}
		}

		res, err := store.ListBounties(ctx, BountyFilter{Maintainer: "maintainer-2"}, PaginationParams{Limit: 2})
		if err != nil {
			t.Fatalf("ListBounties() error = %v", err)
		}
		if len(res.Data) != 2 {
			t.Fatalf("ListBounties() returned %d rows, want 2", len(res.Data))
		}
		if !res.HasMore {
			t.Error("HasMore = false, want true")
		}

		res2, err := store.ListBounties(ctx, BountyFilter{Maintainer: "maintainer-2"}, PaginationParams{Limit: 2, Cursor: res.NextCursor})
		if err != nil {
			t.Fatal(err)
		}
		if len(res2.Data) != 1 {
			t.Errorf("second page returned %d rows, want 1", len(res2.Data))
		}
		if res2.HasMore {
			t.Error("second page HasMore = true, want false")
		}

		byStatus, err := store.ListBounties(ctx, BountyFilter{Status: StatusClaimed}, PaginationParams{Limit: 10})
		if err != nil {
			t.Fatal(err)
		}
		if len(byStatus.Data) != 1 || byStatus.Data[0].ID != bountyID {
			t.Errorf("status filter returned %v, want just bounty %d", byStatus.Data, bountyID)
		}
	})

	t.Run("ListBountiesByDeveloper", func(t *testing.T) {
		all, err := store.ListBountiesByDeveloper(ctx, "dev-1", false)
		if err != nil {
			t.Fatalf("ListBountiesByDeveloper() error = %v", err)
		}
		if len(all) != 1 {
			t.Fatalf("ListBountiesByDeveloper(all) returned %d, want 1", len(all))
		}

		completed, err := store.ListBountiesByDeveloper(ctx, "dev-1", true)
		if err != nil {
			t.Fatal(err)
		}
		if len(completed) != 0 {
			t.Errorf("ListBountiesByDeveloper(completed) returned %d, want 0", len(completed))
		}
	})

	t.Run("Submissions", func(t *testing.T) {
		seq, err := store.AppendSubmission(ctx, &Submission{
			BountyID:  bountyID,
			Developer: "dev-1",
			PRURL:     "https://github.com/acme/relay/pull/7",
		})
		if err != nil {
			t.Fatalf("AppendSubmission() error = %v", err)
		}
		if seq != 1 {
			t.Errorf("first submission seq = %d, want 1", seq)
		}

		seq2, err := store.AppendSubmission(ctx, &Submission{
			BountyID:  bountyID,
			Developer: "dev-1",
			PRURL:     "https://github.com/acme/relay/pull/8",
		})
		if err != nil {
			t.Fatal(err)
		}
		if seq2 != 2 {
			t.Errorf("second submission seq = %d, want 2", seq2)
		}

		latest, err := store.LatestSubmission(ctx, bountyID)
		if err != nil {
			t.Fatalf("LatestSubmission() error = %v", err)
		}
		if latest.Seq != 2 || !strings.HasSuffix(latest.PRURL, "/8") {
			t.Errorf("LatestSubmission() = %+v, want seq 2 pull/8", latest)
		}

		if err := store.MarkSubmissionVerified(ctx, bountyID, 2); err != nil {
			t.Fatalf("MarkSubmissionVerified() error = %v", err)
		}

		subs, err := store.ListSubmissions(ctx, bountyID)
		if err != nil {
			t.Fatal(err)
		}
		if len(subs) != 2 {
			t.Fatalf("ListSubmissions() returned %d, want 2", len(subs))
		}
		if subs[0].IsVerified {
			t.Error("submission 1 verified, want unverified")
		}
		if !subs[1].IsVerified {
			t.Error("submission 2 unverified, want verified")
		}
	})

	t.Run("Roles", func(t *testing.T) {
		if err := store.GrantRole(ctx, "VERIFIER_ROLE", "verifier-1", "admin-1"); err != nil {
			t.Fatalf("GrantRole() error = %v", err)
		}
		// Granting twice is a no-op
		if err := store.GrantRole(ctx, "VERIFIER_ROLE", "verifier-1", "admin-1"); err != nil {
			t.Fatalf("GrantRole() second call error = %v", err)
		}

		has, err := store.HasRole(ctx, "VERIFIER_ROLE", "verifier-1")
		if err != nil {
			t.Fatal(err)
		}
		if !has {
			t.Error("HasRole() = false, want true")
		}

		accounts, err := store.ListRoleAccounts(ctx, "VERIFIER_ROLE")
		if err != nil {
			t.Fatal(err)
		}
		if len(accounts) != 1 || accounts[0] != "verifier-1" {
			t.Errorf("ListRoleAccounts() = %v, want [verifier-1]", accounts)
		}

		if err := store.RevokeRole(ctx, "VERIFIER_ROLE", "verifier-1"); err != nil {
			t.Fatalf("RevokeRole() error = %v", err)
		}
		has, err = store.HasRole(ctx, "VERIFIER_ROLE", "verifier-1")
		if err != nil {
			t.Fatal(err)
		}
		if has {
			t.Error("HasRole() after revoke = true, want false")
		}
	})

	t.Run("PlatformConfig", func(t *testing.T) {
		defaults := &PlatformConfig{
			PlatformFeeBps:       250,
			MinimumBountyAmount:  1_000_000,
			MaximumClaimDuration: 30 * 24 * 3600,
		}
		if err := store.EnsurePlatformConfig(ctx, defaults); err != nil {
			t.Fatalf("EnsurePlatformConfig() error = %v", err)
		}

		cfg, err := store.GetPlatformConfig(ctx)
		if err != nil {
			t.Fatalf("GetPlatformConfig() error = %v", err)
		}
		if cfg.PlatformFeeBps != 250 {
			t.Errorf("PlatformFeeBps = %d, want 250", cfg.PlatformFeeBps)
		}

		cfg.PlatformFeeBps = 300
		cfg.Paused = true
		if err := store.SetPlatformConfig(ctx, cfg); err != nil {
			t.Fatalf("SetPlatformConfig() error = %v", err)
		}

		// EnsurePlatformConfig must not clobber an existing row
		if err := store.EnsurePlatformConfig(ctx, defaults); err != nil {
			t.Fatal(err)
		}
		cfg, err = store.GetPlatformConfig(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.PlatformFeeBps != 300 {
			t.Errorf("PlatformFeeBps after ensure = %d, want 300", cfg.PlatformFeeBps)
		}
		if !cfg.Paused {
			t.Error("Paused = false, want true")
		}
	})

	t.Run("ConfigAudit", func(t *testing.T) {
		if err := store.AppendConfigAudit(ctx, &ConfigAudit{
			Field:    "platform_fee_bps",
			OldValue: "250",
			NewValue: "300",
			Actor:    "admin-1",
		}); err != nil {
			t.Fatalf("AppendConfigAudit() error = %v", err)
		}

		audits, err := store.ListConfigAudit(ctx)
		if err != nil {
			t.Fatalf("ListConfigAudit() error = %v", err)
		}
		if len(audits) != 1 {
			t.Fatalf("ListConfigAudit() returned %d, want 1", len(audits))
		}
		if audits[0].Field != "platform_fee_bps" || audits[0].NewValue != "300" {
			t.Errorf("audit = %+v, want platform_fee_bps 250->300", audits[0])
		}
	})

	t.Run("EscrowLocks", func(t *testing.T) {
		if err := store.CreateLock(ctx, bountyID, 5_000_000); err != nil {
			t.Fatalf("CreateLock() error = %v", err)
		}

		lock, err := store.GetLock(ctx, bountyID)
		if err != nil {
			t.Fatalf("GetLock() error = %v", err)
		}
		if lock.Amount != 5_000_000 || lock.Released {
			t.Errorf("GetLock() = %+v, want amount 5000000 unreleased", lock)
		}

		total, err := store.TotalLocked(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if total != 5_000_000 {
			t.Errorf("TotalLocked() = %d, want 5000000", total)
		}

		if err := store.ReleaseLock(ctx, bountyID); err != nil {
			t.Fatalf("ReleaseLock() error = %v", err)
		}
		if err := store.ReleaseLock(ctx, bountyID); !errors.Is(err, ErrLockReleased) {
			t.Errorf("ReleaseLock() second call error = %v, want ErrLockReleased", err)
		}
		if err := store.ReleaseLock(ctx, 99999); !errors.Is(err, ErrNotFound) {
			t.Errorf("ReleaseLock(99999) error = %v, want ErrNotFound", err)
		}

		total, err = store.TotalLocked(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if total != 0 {
			t.Errorf("TotalLocked() after release = %d, want 0", total)
		}
	})

	t.Run("Balances", func(t *testing.T) {
		balance, err := store.GetBalance(ctx, "fresh-account")
		if err != nil {
			t.Fatalf("GetBalance() error = %v", err)
		}
		if balance != 0 {
			t.Errorf("GetBalance(unknown) = %d, want 0", balance)
		}

		if err := store.AdjustBalance(ctx, "fresh-account", 10_000_000); err != nil {
			t.Fatalf("AdjustBalance(+) error = %v", err)
		}
		if err := store.AdjustBalance(ctx, "fresh-account", -4_000_000); err != nil {
			t.Fatalf("AdjustBalance(-) error = %v", err)
		}

		balance, err = store.GetBalance(ctx, "fresh-account")
		if err != nil {
			t.Fatal(err)
		}
		if balance != 6_000_000 {
			t.Errorf("GetBalance() = %d, want 6000000", balance)
		}

		err = store.AdjustBalance(ctx, "fresh-account", -7_000_000)
		if !errors.Is(err, ErrInsufficientFunds) {
			t.Errorf("AdjustBalance(overdraw) error = %v, want ErrInsufficientFunds", err)
		}
	})

	t.Run("Events", func(t *testing.T) {
		if err := store.AppendEvent(ctx, &Event{
			BountyID: bountyID,
			Type:     "bounty_claimed",
			Actor:    "dev-1",
			Data:     map[string]any{"developer": "dev-1"},
		}); err != nil {
			t.Fatalf("AppendEvent() error = %v", err)
		}

		events, err := store.ListEvents(ctx, bountyID)
		if err != nil {
			t.Fatalf("ListEvents() error = %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("ListEvents() returned %d, want 1", len(events))
		}
		if events[0].Type != "bounty_claimed" {
			t.Errorf("event type = %v, want bounty_claimed", events[0].Type)
		}
		if dev, ok := events[0].Data["developer"].(string); !ok || dev != "dev-1" {
			t.Errorf("event data developer = %v, want dev-1", events[0].Data["developer"])
		}
		if events[0].ID == "" || events[0].CreatedAt == 0 {
			t.Error("event ID or CreatedAt not populated")
		}
	})

	t.Run("APIKeys", func(t *testing.T) {
		key, err := store.CreateAPIKey(ctx, "ci-bot", "maintainer-1")
		if err != nil {
			t.Fatalf("CreateAPIKey() error = %v", err)
		}
		if !strings.HasPrefix(key, "cx_key_") {
			t.Errorf("key = %v, want cx_key_ prefix", key)
		}

		ak, err := store.ValidateAPIKey(ctx, key)
		if err != nil {
			t.Fatalf("ValidateAPIKey() error = %v", err)
		}
		if ak.Name != "ci-bot" || ak.Account != "maintainer-1" {
			t.Errorf("ValidateAPIKey() = %+v, want ci-bot/maintainer-1", ak)
		}

		if _, err := store.ValidateAPIKey(ctx, "cx_key_bogus"); !errors.Is(err, ErrNotFound) {
			t.Errorf("ValidateAPIKey(bogus) error = %v, want ErrNotFound", err)
		}

		keys, err := store.ListAPIKeys(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(keys) != 1 {
			t.Fatalf("ListAPIKeys() returned %d, want 1", len(keys))
		}

		if err := store.RevokeAPIKey(ctx, ak.ID); err != nil {
			t.Fatalf("RevokeAPIKey() error = %v", err)
		}
		if _, err := store.ValidateAPIKey(ctx, key); !errors.Is(err, ErrNotFound) {
			t.Errorf("ValidateAPIKey() after revoke error = %v, want ErrNotFound", err)
		}
		keys, err = store.ListAPIKeys(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(keys) != 0 {
			t.Errorf("ListAPIKeys() after revoke returned %d, want 0", len(keys))
		}
	})

	t.Run("InTxRollback", func(t *testing.T) {
		boom := errors.New("boom")
		err := store.InTx(ctx, func(tx Store) error {
			if err := tx.AdjustBalance(ctx, "tx-account", 1_000_000); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("InTx() error = %v, want boom", err)
		}

		balance, err := store.GetBalance(ctx, "tx-account")
		if err != nil {
			t.Fatal(err)
		}
		if balance != 0 {
			t.Errorf("balance after rollback = %d, want 0", balance)
		}
	})

	t.Run("InTxCommit", func(t *testing.T) {
		err := store.InTx(ctx, func(tx Store) error {
			if err := tx.AdjustBalance(ctx, "tx-account", 2_000_000); err != nil {
				return err
			}
			// Nested InTx reuses the open transaction
			return tx.InTx(ctx, func(inner Store) error {
				return inner.AdjustBalance(ctx, "tx-account", 1_000_000)
			})
		})
		if err != nil {
			t.Fatalf("InTx() error = %v", err)
		}

		balance, err := store.GetBalance(ctx, "tx-account")
		if err != nil {
			t.Fatal(err)
		}
		if balance != 3_000_000 {
			t.Errorf("balance after commit = %d, want 3000000", balance)
		}
	})

	t.Run("CountBounties", func(t *testing.T) {
		count, err := store.CountBounties(ctx)
		if err != nil {
			t.Fatalf("CountBounties() error = %v", err)
		}
		if count != 4 {
			t.Errorf("CountBounties() = %d, want 4", count)
		}
	})
}
