package domain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/debayudh07/connectx/internal/collab"
	"github.com/debayudh07/connectx/internal/escrow"
	"github.com/debayudh07/connectx/internal/events"
	"github.com/debayudh07/connectx/internal/observability/metrics"
	"github.com/debayudh07/connectx/internal/roles"
	"github.com/debayudh07/connectx/internal/storage"
	"github.com/debayudh07/connectx/internal/validation"
)

// Reputation deltas per difficulty level, applied on verified payout.
var reputationDeltas = map[string]int64{
	"easy":   10,
	"medium": 25,
	"hard":   50,
}

// Store defines the storage operations needed by the bounty domain. The
// transaction-scoped store handed to InTx callbacks carries the same surface,
// so every mutation runs as one unit of work.
type Store interface {
	storage.BountyStore
	storage.SubmissionStore
	storage.RoleStore
	storage.ConfigStore
	storage.EscrowStore
	storage.AccountStore
	storage.EventStore

	InTx(ctx context.Context, fn func(storage.Store) error) error
}

type service struct {
	store  Store
	collab *collab.Registry
	now    func() time.Time

	mu       sync.Mutex
	inFlight map[int64]bool
}

// NewService creates a new bounty service.
func NewService(store Store, registry *collab.Registry) *service {
	return &service{
		store:    store,
		collab:   registry,
		now:      time.Now,
		inFlight: make(map[int64]bool),
	}
}

// enter marks a bounty as having an operation in flight. A collaborator
// service calling back into the lifecycle for the same bounty fails instead
// of deadlocking or interleaving.
func (s *service) enter(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[id] {
		return fmt.Errorf("%w: bounty %d", ErrReentrant, id)
	}
	s.inFlight[id] = true
	return nil
}

func (s *service) exit(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, id)
}

// Create creates a bounty and locks its reward in escrow. The caller must
// hold the MAINTAINER role and carry a sufficient balance.
func (s *service) Create(ctx context.Context, caller string, req CreateRequest) (*Bounty, error) {
	if err := validation.ValidateAddress(caller); err != nil {
		return nil, fmt.Errorf("%w: caller: %v", ErrInvalidInput, err)
	}
	if err := validation.ValidateTitle(req.Title); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validation.ValidateDifficulty(req.Difficulty); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validation.ValidateSkills(req.RequiredSkills); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := s.now()
	if !req.Deadline.After(now) {
		return nil, fmt.Errorf("%w: deadline must be in the future", ErrInvalidInput)
	}

	var created *storage.Bounty
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		reg := roles.New(tx)
		if err := reg.RequireNotPaused(ctx); err != nil {
			return mapRolesErr(err)
		}
		if err := reg.RequireRole(ctx, roles.Maintainer, caller); err != nil {
			return mapRolesErr(err)
		}

		cfg, err := tx.GetPlatformConfig(ctx)
		if err != nil {
			return fmt.Errorf("loading platform config: %w", err)
		}
		if err := validation.ValidateAmount(req.RewardAmount, cfg.MinimumBountyAmount); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}

		b := &storage.Bounty{
			Maintainer:     caller,
			RewardAmount:   req.RewardAmount,
			Status:         storage.StatusOpen,
			Deadline:       req.Deadline.Unix(),
			Title:          req.Title,
			Description:    req.Description,
			IssueURL:       req.IssueURL,
			RepoURL:        req.RepoURL,
			RequiredSkills: req.RequiredSkills,
			Difficulty:     req.Difficulty,
			CreatedAt:      now.Unix(),
		}
		id, err := tx.CreateBounty(ctx, b)
		if err != nil {
			return fmt.Errorf("creating bounty: %w", err)
		}
		b.ID = id

		if err := escrow.New(tx).Lock(ctx, id, caller, req.RewardAmount); err != nil {
			if errors.Is(err, escrow.ErrInsufficientFunds) {
				return fmt.Errorf("%w: %v", ErrInsufficientFunds, err)
			}
			return err
		}

		if err := tx.AppendEvent(ctx, &storage.Event{
			BountyID: id,
			Type:     events.BountyCreated,
			Actor:    caller,
			Data:     map[string]any{"rewardAmount": req.RewardAmount, "title": req.Title},
		}); err != nil {
			return fmt.Errorf("recording event: %w", err)
		}

		created = b
		return nil
	})
	metrics.BountyOperation("create", opStatus(err))
	if err != nil {
		return nil, err
	}
	return fromStorage(created), nil
}

// Claim assigns an open bounty to the caller. Deadlines are evaluated here,
// lazily; nothing expires a bounty in the background.
func (s *service) Claim(ctx context.Context, caller string, id int64) (*Bounty, error) {
	if err := validation.ValidateAddress(caller); err != nil {
		return nil, fmt.Errorf("%w: caller: %v", ErrInvalidInput, err)
	}
	if err := s.enter(id); err != nil {
		return nil, err
	}
	defer s.exit(id)

	var claimed *storage.Bounty
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		if err := roles.New(tx).RequireNotPaused(ctx); err != nil {
			return mapRolesErr(err)
		}

		b, err := s.getBounty(ctx, tx, id)
		if err != nil {
			return err
		}
		if b.Status != storage.StatusOpen {
			return fmt.Errorf("%w: bounty %d is %s, not open", ErrInvalidState, id, b.Status)
		}
		now := s.now().Unix()
		if b.Deadline != 0 && now >= b.Deadline {
			return fmt.Errorf("%w: bounty %d deadline has passed", ErrInvalidState, id)
		}
		if caller == b.Maintainer {
			return fmt.Errorf("%w: maintainer cannot claim own bounty", ErrUnauthorized)
		}

		b.Status = storage.StatusClaimed
		b.ClaimedBy = caller
		b.ClaimedAt = now
		if err := tx.UpdateBounty(ctx, b); err != nil {
			return fmt.Errorf("updating bounty: %w", err)
		}

		if err := tx.AppendEvent(ctx, &storage.Event{
			BountyID: id,
			Type:     events.BountyClaimed,
			Actor:    caller,
		}); err != nil {
			return fmt.Errorf("recording event: %w", err)
		}

		claimed = b
		return nil
	})
	metrics.BountyOperation("claim", opStatus(err))
	if err != nil {
		return nil, err
	}
	return fromStorage(claimed), nil
}

// Submit records the claimant's work against a claimed bounty. When a
// submission verifier is wired, a rejected pre-check aborts the submission.
func (s *service) Submit(ctx context.Context, caller string, id int64, prURL, description string) (*Bounty, error) {
	if err := validation.ValidatePRURL(prURL); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.enter(id); err != nil {
		return nil, err
	}
	defer s.exit(id)

	var submitted *storage.Bounty
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		if err := roles.New(tx).RequireNotPaused(ctx); err != nil {
			return mapRolesErr(err)
		}

		b, err := s.getBounty(ctx, tx, id)
		if err != nil {
			return err
		}
		if b.Status != storage.StatusClaimed {
			return fmt.Errorf("%w: bounty %d is %s, not claimed", ErrInvalidState, id, b.Status)
		}
		if caller != b.ClaimedBy {
			return fmt.Errorf("%w: only the claimant can submit", ErrUnauthorized)
		}

		if verifier := s.collab.Verifier(); verifier != nil {
			result, err := verifier.VerifySubmission(ctx, id, caller, prURL)
			if err != nil {
				return fmt.Errorf("submission pre-check: %w", err)
			}
			if !result.Valid {
				return fmt.Errorf("%w: submission rejected: %s", ErrInvalidInput, result.Feedback)
			}
		}

		now := s.now().Unix()
		if _, err := tx.AppendSubmission(ctx, &storage.Submission{
			BountyID:    id,
			Developer:   caller,
			PRURL:       prURL,
			Description: description,
			SubmittedAt: now,
		}); err != nil {
			return fmt.Errorf("appending submission: %w", err)
		}

		b.Status = storage.StatusSubmitted
		b.SubmittedAt = now
		if err := tx.UpdateBounty(ctx, b); err != nil {
			return fmt.Errorf("updating bounty: %w", err)
		}

		if err := tx.AppendEvent(ctx, &storage.Event{
			BountyID: id,
			Type:     events.BountySubmitted,
			Actor:    caller,
			Data:     map[string]any{"prUrl": prURL},
		}); err != nil {
			return fmt.Errorf("recording event: %w", err)
		}

		submitted = b
		return nil
	})
	metrics.BountyOperation("submit", opStatus(err))
	if err != nil {
		return nil, err
	}
	return fromStorage(submitted), nil
}

// VerifyAndPay accepts the active submission and pays out the escrow, fee
// split applied. Reputation and badge side effects run inside the same
// transaction, so a collaborator failure rolls back the payout too.
func (s *service) VerifyAndPay(ctx context.Context, caller string, id int64) (*Bounty, error) {
	if err := s.enter(id); err != nil {
		return nil, err
	}
	defer s.exit(id)

	var paid *storage.Bounty
	var developerShare, fee int64
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		reg := roles.New(tx)
		if err := reg.RequireNotPaused(ctx); err != nil {
			return mapRolesErr(err)
		}
		if err := reg.RequireAnyRole(ctx, caller, roles.Verifier, roles.Admin); err != nil {
			return mapRolesErr(err)
		}

		b, err := s.getBounty(ctx, tx, id)
		if err != nil {
			return err
		}
		if b.Status != storage.StatusSubmitted {
			return fmt.Errorf("%w: bounty %d is %s, not submitted", ErrInvalidState, id, b.Status)
		}

		sub, err := tx.LatestSubmission(ctx, id)
		if err != nil {
			return fmt.Errorf("loading submission: %w", err)
		}
		if err := tx.MarkSubmissionVerified(ctx, id, sub.Seq); err != nil {
			return fmt.Errorf("marking submission verified: %w", err)
		}

		if err := tx.AppendEvent(ctx, &storage.Event{
			BountyID: id,
			Type:     events.BountyVerified,
			Actor:    caller,
			Data:     map[string]any{"submissionSeq": sub.Seq},
		}); err != nil {
			return fmt.Errorf("recording event: %w", err)
		}

		developerShare, fee, err = s.payDeveloper(ctx, tx, b, caller)
		if err != nil {
			return err
		}

		paid = b
		return nil
	})
	metrics.BountyOperation("verify_and_pay", opStatus(err))
	if err != nil {
		return nil, err
	}
	metrics.Payout("developer", developerShare)
	metrics.Payout("fee", fee)
	return fromStorage(paid), nil
}

// payDeveloper runs the shared payout path: fee split, escrow release,
// terminal Paid status, payout event, then collaborator side effects. The
// caller is responsible for status checks. Returns the amounts paid to the
// developer and the fee recipient.
func (s *service) payDeveloper(ctx context.Context, tx storage.Store, b *storage.Bounty, actor string) (developerShare, fee int64, err error) {
	cfg, err := tx.GetPlatformConfig(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("loading platform config: %w", err)
	}

	developerShare, fee = escrow.SplitFee(b.RewardAmount, cfg.PlatformFeeBps)
	if cfg.FeeRecipient == "" {
		// Nowhere to send the fee, so the developer receives the full amount.
		developerShare, fee = b.RewardAmount, 0
	}
	if err := escrow.New(tx).Payout(ctx, b.ID, b.ClaimedBy, developerShare, cfg.FeeRecipient, fee); err != nil {
		return 0, 0, fmt.Errorf("paying out escrow: %w", err)
	}

	b.Status = storage.StatusPaid
	b.IsCompleted = true
	b.VerifiedAt = s.now().Unix()
	if err := tx.UpdateBounty(ctx, b); err != nil {
		return 0, 0, fmt.Errorf("updating bounty: %w", err)
	}

	if err := tx.AppendEvent(ctx, &storage.Event{
		BountyID: b.ID,
		Type:     events.BountyPaid,
		Actor:    actor,
		Data:     map[string]any{"developerShare": developerShare, "fee": fee, "recipient": b.ClaimedBy},
	}); err != nil {
		return 0, 0, fmt.Errorf("recording event: %w", err)
	}

	if rep := s.collab.Reputation(); rep != nil {
		delta := reputationDeltas[b.Difficulty]
		if err := rep.UpdateReputation(ctx, b.ClaimedBy, delta, b.RequiredSkills); err != nil {
			return 0, 0, fmt.Errorf("updating reputation: %w", err)
		}
	}
	if badges := s.collab.Badges(); badges != nil {
		if err := badges.MintBadge(ctx, b.ClaimedBy, "bounty_completion", b.IssueURL); err != nil {
			return 0, 0, fmt.Errorf("minting badge: %w", err)
		}
	}
	return developerShare, fee, nil
}

// Dispute flags a claimed or submitted bounty for admin resolution.
func (s *service) Dispute(ctx context.Context, caller string, id int64, reason string) (*Bounty, error) {
	if err := s.enter(id); err != nil {
		return nil, err
	}
	defer s.exit(id)

	var disputed *storage.Bounty
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		reg := roles.New(tx)
		if err := reg.RequireNotPaused(ctx); err != nil {
			return mapRolesErr(err)
		}

		b, err := s.getBounty(ctx, tx, id)
		if err != nil {
			return err
		}
		if b.Status != storage.StatusClaimed && b.Status != storage.StatusSubmitted {
			return fmt.Errorf("%w: bounty %d is %s, cannot dispute", ErrInvalidState, id, b.Status)
		}

		if caller != b.Maintainer && caller != b.ClaimedBy {
			if err := reg.RequireAnyRole(ctx, caller, roles.Verifier, roles.Admin); err != nil {
				return fmt.Errorf("%w: only parties to the bounty, verifiers, or admins can dispute", ErrUnauthorized)
			}
		}

		b.Status = storage.StatusDisputed
		if err := tx.UpdateBounty(ctx, b); err != nil {
			return fmt.Errorf("updating bounty: %w", err)
		}

		if err := tx.AppendEvent(ctx, &storage.Event{
			BountyID: id,
			Type:     events.BountyDisputed,
			Actor:    caller,
			Data:     map[string]any{"reason": reason},
		}); err != nil {
			return fmt.Errorf("recording event: %w", err)
		}

		disputed = b
		return nil
	})
	metrics.BountyOperation("dispute", opStatus(err))
	if err != nil {
		return nil, err
	}
	return fromStorage(disputed), nil
}

// Resolve settles a disputed bounty. payDeveloper=true pays out through the
// regular fee-split path; false refunds the maintainer and cancels.
func (s *service) Resolve(ctx context.Context, caller string, id int64, payDeveloper bool, note string) (*Bounty, error) {
	if err := s.enter(id); err != nil {
		return nil, err
	}
	defer s.exit(id)

	var resolved *storage.Bounty
	var developerShare, fee int64
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		reg := roles.New(tx)
		if err := reg.RequireNotPaused(ctx); err != nil {
			return mapRolesErr(err)
		}
		if err := reg.RequireRole(ctx, roles.Admin, caller); err != nil {
			return mapRolesErr(err)
		}

		b, err := s.getBounty(ctx, tx, id)
		if err != nil {
			return err
		}
		if b.Status != storage.StatusDisputed {
			return fmt.Errorf("%w: bounty %d is %s, not disputed", ErrInvalidState, id, b.Status)
		}

		if payDeveloper {
			if sub, err := tx.LatestSubmission(ctx, id); err == nil {
				if err := tx.MarkSubmissionVerified(ctx, id, sub.Seq); err != nil {
					return fmt.Errorf("marking submission verified: %w", err)
				}
			} else if !errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("loading submission: %w", err)
			}
			developerShare, fee, err = s.payDeveloper(ctx, tx, b, caller)
			if err != nil {
				return err
			}
		} else {
			if err := escrow.New(tx).Refund(ctx, id, b.Maintainer, b.RewardAmount); err != nil {
				return fmt.Errorf("refunding escrow: %w", err)
			}
			b.Status = storage.StatusCancelled
			if err := tx.UpdateBounty(ctx, b); err != nil {
				return fmt.Errorf("updating bounty: %w", err)
			}
			if err := tx.AppendEvent(ctx, &storage.Event{
				BountyID: id,
				Type:     events.BountyCancelled,
				Actor:    caller,
				Data:     map[string]any{"resolution": note},
			}); err != nil {
				return fmt.Errorf("recording event: %w", err)
			}
		}

		resolved = b
		return nil
	})
	metrics.BountyOperation("resolve", opStatus(err))
	if err != nil {
		return nil, err
	}
	if payDeveloper {
		metrics.Payout("developer", developerShare)
		metrics.Payout("fee", fee)
	} else {
		metrics.Payout("refund", resolved.RewardAmount)
	}
	return fromStorage(resolved), nil
}

// Cancel refunds and closes a bounty. Open bounties cancel immediately; a
// claimed bounty cancels only after the claim duration has expired. Expired
// claims never revert to Open on their own.
func (s *service) Cancel(ctx context.Context, caller string, id int64) (*Bounty, error) {
	if err := s.enter(id); err != nil {
		return nil, err
	}
	defer s.exit(id)

	var cancelled *storage.Bounty
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		if err := roles.New(tx).RequireNotPaused(ctx); err != nil {
			return mapRolesErr(err)
		}

		b, err := s.getBounty(ctx, tx, id)
		if err != nil {
			return err
		}
		if caller != b.Maintainer {
			return fmt.Errorf("%w: only the maintainer can cancel", ErrUnauthorized)
		}

		switch b.Status {
		case storage.StatusOpen:
			// fine
		case storage.StatusClaimed:
			cfg, err := tx.GetPlatformConfig(ctx)
			if err != nil {
				return fmt.Errorf("loading platform config: %w", err)
			}
			if s.now().Unix() <= b.ClaimedAt+cfg.MaximumClaimDuration {
				return fmt.Errorf("%w: claim on bounty %d has not expired", ErrInvalidState, id)
			}
		default:
			return fmt.Errorf("%w: bounty %d is %s, cannot cancel", ErrInvalidState, id, b.Status)
		}

		if err := escrow.New(tx).Refund(ctx, id, b.Maintainer, b.RewardAmount); err != nil {
			return fmt.Errorf("refunding escrow: %w", err)
		}

		b.Status = storage.StatusCancelled
		if err := tx.UpdateBounty(ctx, b); err != nil {
			return fmt.Errorf("updating bounty: %w", err)
		}

		if err := tx.AppendEvent(ctx, &storage.Event{
			BountyID: id,
			Type:     events.BountyCancelled,
			Actor:    caller,
		}); err != nil {
			return fmt.Errorf("recording event: %w", err)
		}

		cancelled = b
		return nil
	})
	metrics.BountyOperation("cancel", opStatus(err))
	if err != nil {
		return nil, err
	}
	metrics.Payout("refund", cancelled.RewardAmount)
	return fromStorage(cancelled), nil
}

// Get returns one bounty.
func (s *service) Get(ctx context.Context, id int64) (*Bounty, error) {
	b, err := s.getBounty(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	return fromStorage(b), nil
}

// List returns a page of bounties matching the filter.
func (s *service) List(ctx context.Context, filter ListFilter, pagination PaginationParams) (*ListResult, error) {
	if pagination.Limit <= 0 || pagination.Limit > 100 {
		pagination.Limit = 50
	}
	result, err := s.store.ListBounties(ctx,
		storage.BountyFilter{Status: filter.Status, Maintainer: filter.Maintainer, Developer: filter.Developer},
		storage.PaginationParams{Limit: pagination.Limit, Cursor: pagination.Cursor},
	)
	if err != nil {
		return nil, fmt.Errorf("listing bounties: %w", err)
	}

	out := &ListResult{
		Bounties:   make([]Bounty, 0, len(result.Data)),
		HasMore:    result.HasMore,
		NextCursor: result.NextCursor,
	}
	for i := range result.Data {
		out.Bounties = append(out.Bounties, *fromStorage(&result.Data[i]))
	}
	return out, nil
}

// Submissions returns a bounty's submission log, oldest first.
func (s *service) Submissions(ctx context.Context, id int64) ([]Submission, error) {
	if _, err := s.getBounty(ctx, s.store, id); err != nil {
		return nil, err
	}
	subs, err := s.store.ListSubmissions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing submissions: %w", err)
	}
	out := make([]Submission, 0, len(subs))
	for i := range subs {
		out = append(out, submissionFromStorage(&subs[i]))
	}
	return out, nil
}

// Events returns a bounty's event log, oldest first.
func (s *service) Events(ctx context.Context, id int64) ([]Event, error) {
	if _, err := s.getBounty(ctx, s.store, id); err != nil {
		return nil, err
	}
	evts, err := s.store.ListEvents(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	out := make([]Event, 0, len(evts))
	for i := range evts {
		out = append(out, eventFromStorage(&evts[i]))
	}
	return out, nil
}

// MaintainerBounties returns all bounties created by a maintainer.
func (s *service) MaintainerBounties(ctx context.Context, maintainer string) ([]Bounty, error) {
	if err := validation.ValidateAddress(maintainer); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	list, err := s.store.ListBountiesByMaintainer(ctx, maintainer)
	if err != nil {
		return nil, fmt.Errorf("listing maintainer bounties: %w", err)
	}
	return fromStorageList(list), nil
}

// DeveloperClaims returns all bounties a developer has claimed.
func (s *service) DeveloperClaims(ctx context.Context, developer string) ([]Bounty, error) {
	if err := validation.ValidateAddress(developer); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	list, err := s.store.ListBountiesByDeveloper(ctx, developer, false)
	if err != nil {
		return nil, fmt.Errorf("listing developer claims: %w", err)
	}
	return fromStorageList(list), nil
}

// DeveloperCompletions returns the bounties a developer has been paid for.
func (s *service) DeveloperCompletions(ctx context.Context, developer string) ([]Bounty, error) {
	if err := validation.ValidateAddress(developer); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	list, err := s.store.ListBountiesByDeveloper(ctx, developer, true)
	if err != nil {
		return nil, fmt.Errorf("listing developer completions: %w", err)
	}
	return fromStorageList(list), nil
}

// Balance returns an account's available balance in micro-units.
func (s *service) Balance(ctx context.Context, address string) (int64, error) {
	if err := validation.ValidateAddress(address); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	balance, err := s.store.GetBalance(ctx, address)
	if err != nil {
		return 0, fmt.Errorf("getting balance: %w", err)
	}
	return balance, nil
}

// Stats returns platform totals.
func (s *service) Stats(ctx context.Context) (*Stats, error) {
	total, err := s.store.CountBounties(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting bounties: %w", err)
	}
	locked, err := s.store.TotalLocked(ctx)
	if err != nil {
		return nil, fmt.Errorf("summing locked escrow: %w", err)
	}
	return &Stats{TotalBounties: total, TotalLocked: locked}, nil
}

func (s *service) getBounty(ctx context.Context, store storage.BountyStore, id int64) (*storage.Bounty, error) {
	b, err := store.GetBounty(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: bounty %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("getting bounty: %w", err)
	}
	return b, nil
}

func fromStorageList(list []storage.Bounty) []Bounty {
	out := make([]Bounty, 0, len(list))
	for i := range list {
		out = append(out, *fromStorage(&list[i]))
	}
	return out
}

func opStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// mapRolesErr translates role registry errors into the domain taxonomy.
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
