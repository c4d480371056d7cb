// Package escrow implements the escrow ledger: per-bounty locked value and
// the fee-split payout and refund paths. Amounts are int64 micro-units so fee
// splits are exact integer arithmetic.
package escrow

import (
	"context"
	"errors"
	"fmt"

	"github.com/debayudh07/connectx/internal/storage"
)

// Common errors returned by the ledger.
var (
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrAlreadyReleased   = errors.New("escrow already released")
	ErrAmountMismatch    = errors.New("release amount does not match locked amount")
)

// Store defines the storage operations needed by the ledger.
type Store interface {
	CreateLock(ctx context.Context, bountyID, amount int64) error
	GetLock(ctx context.Context, bountyID int64) (*storage.EscrowLock, error)
	ReleaseLock(ctx context.Context, bountyID int64) error
	TotalLocked(ctx context.Context) (int64, error)
	GetBalance(ctx context.Context, address string) (int64, error)
	AdjustBalance(ctx context.Context, address string, delta int64) error
}

// Ledger is a stateless view over a store. Construct one per
// transaction-scoped store so money movement shares the caller's unit of work.
type Ledger struct {
	store Store
}

// New creates a ledger over the given store.
func New(store Store) *Ledger {
	return &Ledger{store: store}
}

// SplitFee computes the fee-split for a payout. fee = amount * bps / 10000,
// truncated; the developer share is the remainder so the two always sum to
// the full locked amount.
func SplitFee(amount, feeBps int64) (developerShare, fee int64) {
	fee = amount * feeBps / 10000
	return amount - fee, fee
}

// Lock debits the maintainer's balance and locks the value against a bounty.
func (l *Ledger) Lock(ctx context.Context, bountyID int64, maintainer string, amount int64) error {
	if err := l.store.AdjustBalance(ctx, maintainer, -amount); err != nil {
		if errors.Is(err, storage.ErrInsufficientFunds) {
			return fmt.Errorf("%w: locking %d for bounty %d", ErrInsufficientFunds, amount, bountyID)
		}
		return fmt.Errorf("debiting maintainer: %w", err)
	}
	if err := l.store.CreateLock(ctx, bountyID, amount); err != nil {
		return fmt.Errorf("creating lock: %w", err)
	}
	return nil
}

// Payout releases a bounty's lock and splits it between the developer and the
// fee recipient. The split must account for the full locked amount. A second
// release of the same lock fails, which is what makes the conservation
// invariant mechanically checkable.
func (l *Ledger) Payout(ctx context.Context, bountyID int64, recipient string, amount int64, feeRecipient string, fee int64) error {
	lock, err := l.store.GetLock(ctx, bountyID)
	if err != nil {
		return fmt.Errorf("getting lock: %w", err)
	}
	if amount+fee != lock.Amount {
		return fmt.Errorf("%w: %d + %d != %d", ErrAmountMismatch, amount, fee, lock.Amount)
	}

	if err := l.store.ReleaseLock(ctx, bountyID); err != nil {
		if errors.Is(err, storage.ErrLockReleased) {
			return fmt.Errorf("%w: bounty %d", ErrAlreadyReleased, bountyID)
		}
		return fmt.Errorf("releasing lock: %w", err)
	}

	if err := l.store.AdjustBalance(ctx, recipient, amount); err != nil {
		return fmt.Errorf("crediting recipient: %w", err)
	}
	if fee > 0 {
		if err := l.store.AdjustBalance(ctx, feeRecipient, fee); err != nil {
			return fmt.Errorf("crediting fee recipient: %w", err)
		}
	}
	return nil
}

// Refund releases a bounty's lock and returns the full value to the
// maintainer.
func (l *Ledger) Refund(ctx context.Context, bountyID int64, maintainer string, amount int64) error {
	lock, err := l.store.GetLock(ctx, bountyID)
	if err != nil {
		return fmt.Errorf("getting lock: %w", err)
	}
	if amount != lock.Amount {
		return fmt.Errorf("%w: %d != %d", ErrAmountMismatch, amount, lock.Amount)
	}

	if err := l.store.ReleaseLock(ctx, bountyID); err != nil {
		if errors.Is(err, storage.ErrLockReleased) {
			return fmt.Errorf("%w: bounty %d", ErrAlreadyReleased, bountyID)
		}
		return fmt.Errorf("releasing lock: %w", err)
	}

	if err := l.store.AdjustBalance(ctx, maintainer, amount); err != nil {
		return fmt.Errorf("crediting maintainer: %w", err)
	}
	return nil
}

// TotalLocked sums all unreleased locks.
func (l *Ledger) TotalLocked(ctx context.Context) (int64, error) {
	return l.store.TotalLocked(ctx)
}

// Balance returns an account's balance.
func (l *Ledger) Balance(ctx context.Context, address string) (int64, error) {
	return l.store.GetBalance(ctx, address)
}
