// Package transport provides HTTP request/response types for the bounty domain.
package transport

import (
	"time"

	"github.com/debayudh07/connectx/internal/bounty/domain"
)

// CreateBountyRequest is the HTTP request body for creating a bounty.
// Amounts are micro-units, timestamps unix seconds.
type CreateBountyRequest struct {
	RewardAmount   int64    `json:"rewardAmount"`
	Deadline       int64    `json:"deadline"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	IssueURL       string   `json:"issueUrl,omitempty"`
	RepoURL        string   `json:"repoUrl,omitempty"`
	RequiredSkills []string `json:"requiredSkills,omitempty"`
	Difficulty     string   `json:"difficulty"`
}

// ToDomain converts CreateBountyRequest to domain.CreateRequest.
func (r CreateBountyRequest) ToDomain() domain.CreateRequest {
	return domain.CreateRequest{
		RewardAmount:   r.RewardAmount,
		Deadline:       time.Unix(r.Deadline, 0).UTC(),
		Title:          r.Title,
		Description:    r.Description,
		IssueURL:       r.IssueURL,
		RepoURL:        r.RepoURL,
		RequiredSkills: r.RequiredSkills,
		Difficulty:     r.Difficulty,
	}
}

// SubmitRequest is the HTTP request body for submitting work.
type SubmitRequest struct {
	PRURL       string `json:"prUrl"`
	Description string `json:"description,omitempty"`
}

// DisputeRequest is the HTTP request body for disputing a bounty.
type DisputeRequest struct {
	Reason string `json:"reason"`
}

// ResolveRequest is the HTTP request body for resolving a dispute.
type ResolveRequest struct {
	PayDeveloper bool   `json:"payDeveloper"`
	Note         string `json:"note,omitempty"`
}

// BountyResponse is the HTTP representation of a bounty.
type BountyResponse struct {
	ID             int64    `json:"id"`
	Maintainer     string   `json:"maintainer"`
	RewardAmount   int64    `json:"rewardAmount"`
	Status         string   `json:"status"`
	ClaimedBy      string   `json:"claimedBy,omitempty"`
	Deadline       int64    `json:"deadline,omitempty"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	IssueURL       string   `json:"issueUrl,omitempty"`
	RepoURL        string   `json:"repoUrl,omitempty"`
	RequiredSkills []string `json:"requiredSkills,omitempty"`
	Difficulty     string   `json:"difficulty"`
	IsCompleted    bool     `json:"isCompleted"`
	CreatedAt      int64    `json:"createdAt,omitempty"`
	ClaimedAt      int64    `json:"claimedAt,omitempty"`
	SubmittedAt    int64    `json:"submittedAt,omitempty"`
	VerifiedAt     int64    `json:"verifiedAt,omitempty"`
}

// FromDomain converts a domain.Bounty to a BountyResponse.
func FromDomain(b *domain.Bounty) BountyResponse {
	return BountyResponse{
		ID:             b.ID,
		Maintainer:     b.Maintainer,
		RewardAmount:   b.RewardAmount,
		Status:         b.Status,
		ClaimedBy:      b.ClaimedBy,
		Deadline:       unixOrZero(b.Deadline),
		Title:          b.Title,
		Description:    b.Description,
		IssueURL:       b.IssueURL,
		RepoURL:        b.RepoURL,
		RequiredSkills: b.RequiredSkills,
		Difficulty:     b.Difficulty,
		IsCompleted:    b.IsCompleted,
		CreatedAt:      unixOrZero(b.CreatedAt),
		ClaimedAt:      unixOrZero(b.ClaimedAt),
		SubmittedAt:    unixOrZero(b.SubmittedAt),
		VerifiedAt:     unixOrZero(b.VerifiedAt),
	}
}

// SubmissionResponse is the HTTP representation of a submission.
type SubmissionResponse struct {
	BountyID    int64  `json:"bountyId"`
	Seq         int    `json:"seq"`
	Developer   string `json:"developer"`
	PRURL       string `json:"prUrl"`
	Description string `json:"description,omitempty"`
	SubmittedAt int64  `json:"submittedAt"`
	IsVerified  bool   `json:"isVerified"`
}

func submissionResponse(s *domain.Submission) SubmissionResponse {
	return SubmissionResponse{
		BountyID:    s.BountyID,
		Seq:         s.Seq,
		Developer:   s.Developer,
		PRURL:       s.PRURL,
		Description: s.Description,
		SubmittedAt: unixOrZero(s.SubmittedAt),
		IsVerified:  s.IsVerified,
	}
}

// EventResponse is the HTTP representation of an event log entry.
type EventResponse struct {
	ID        string         `json:"id"`
	BountyID  int64          `json:"bountyId,omitempty"`
	Type      string         `json:"type"`
	Actor     string         `json:"actor"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt int64          `json:"createdAt"`
}

func eventResponse(e *domain.Event) EventResponse {
	return EventResponse{
		ID:        e.ID,
		BountyID:  e.BountyID,
		Type:      e.Type,
		Actor:     e.Actor,
		Data:      e.Data,
		CreatedAt: unixOrZero(e.CreatedAt),
	}
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
