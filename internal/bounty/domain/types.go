// Package domain contains the business logic for the bounty lifecycle.
package domain

import (
	"errors"
	"time"

	"github.com/debayudh07/connectx/internal/storage"
)

// Common errors returned by the bounty service. Every failure is one of
// these categories, wrapped with detail.
var (
	ErrNotFound          = errors.New("bounty not found")
	ErrUnauthorized      = errors.New("not authorized")
	ErrInvalidState      = errors.New("invalid bounty state")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrPaused            = errors.New("platform is paused")
	ErrReentrant         = errors.New("operation already in flight")
)

// Bounty is the domain view of a bounty. Zero timestamps mean unset.
type Bounty struct {
	ID             int64
	Maintainer     string
	RewardAmount   int64
	Status         string
	ClaimedBy      string
	Deadline       time.Time
	Title          string
	Description    string
	IssueURL       string
	RepoURL        string
	RequiredSkills []string
	Difficulty     string
	IsCompleted    bool
	CreatedAt      time.Time
	ClaimedAt      time.Time
	SubmittedAt    time.Time
	VerifiedAt     time.Time
}

// Submission is one entry in a bounty's submission log.
type Submission struct {
	BountyID    int64
	Seq         int
	Developer   string
	PRURL       string
	Description string
	SubmittedAt time.Time
	IsVerified  bool
}

// Event is one entry in a bounty's event log.
type Event struct {
	ID        string
	BountyID  int64
	Type      string
	Actor     string
	Data      map[string]any
	CreatedAt time.Time
}

// CreateRequest is the request to create a new bounty.
type CreateRequest struct {
	RewardAmount   int64
	Deadline       time.Time
	Title          string
	Description    string
	IssueURL       string
	RepoURL        string
	RequiredSkills []string
	Difficulty     string
}

// ListFilter contains filter options for listing bounties.
type ListFilter struct {
	Status     string
	Maintainer string
	Developer  string
}

// PaginationParams contains pagination options.
type PaginationParams struct {
	Limit  int
	Cursor int64
}

// ListResult is one page of bounties.
type ListResult struct {
	Bounties   []Bounty
	HasMore    bool
	NextCursor int64
}

// Stats summarizes the platform.
type Stats struct {
	TotalBounties int64
	TotalLocked   int64
}

func fromStorage(b *storage.Bounty) *Bounty {
	return &Bounty{
		ID:             b.ID,
		Maintainer:     b.Maintainer,
		RewardAmount:   b.RewardAmount,
		Status:         b.Status,
		ClaimedBy:      b.ClaimedBy,
		Deadline:       unixTime(b.Deadline),
		Title:          b.Title,
		Description:    b.Description,
		IssueURL:       b.IssueURL,
		RepoURL:        b.RepoURL,
		RequiredSkills: b.RequiredSkills,
		Difficulty:     b.Difficulty,
		IsCompleted:    b.IsCompleted,
		CreatedAt:      unixTime(b.CreatedAt),
		ClaimedAt:      unixTime(b.ClaimedAt),
		SubmittedAt:    unixTime(b.SubmittedAt),
		VerifiedAt:     unixTime(b.VerifiedAt),
	}
}

func submissionFromStorage(s *storage.Submission) Submission {
	return Submission{
		BountyID:    s.BountyID,
		Seq:         s.Seq,
		Developer:   s.Developer,
		PRURL:       s.PRURL,
		Description: s.Description,
		SubmittedAt: unixTime(s.SubmittedAt),
		IsVerified:  s.IsVerified,
	}
}

func eventFromStorage(e *storage.Event) Event {
	return Event{
		ID:        e.ID,
		BountyID:  e.BountyID,
		Type:      e.Type,
		Actor:     e.Actor,
		Data:      e.Data,
		CreatedAt: unixTime(e.CreatedAt),
	}
}

func unixTime(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
