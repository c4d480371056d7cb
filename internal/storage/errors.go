package storage

import "errors"

// Common storage errors
var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrLockReleased      = errors.New("escrow lock already released")
)
