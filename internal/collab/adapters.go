// Package collab holds the adapters for the externally-owned collaborator
// services: reputation scoring, achievement badge minting, and the optional
// submission pre-check. Adapters are consulted synchronously; a configured
// adapter that fails aborts the surrounding bounty operation.
package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/debayudh07/connectx/internal/observability/metrics"
)

// ReputationService updates a developer's reputation score.
type ReputationService interface {
	UpdateReputation(ctx context.Context, developer string, scoreDelta int64, skillsUsed []string) error
}

// BadgeMintService issues a non-fungible achievement record.
type BadgeMintService interface {
	MintBadge(ctx context.Context, recipient, badgeType, metadataURI string) error
}

// SubmissionVerifier pre-checks a submission before it is accepted.
type SubmissionVerifier interface {
	VerifySubmission(ctx context.Context, bountyID int64, developer, prURL string) (*VerifyResult, error)
}

// VerifyResult is the outcome of a submission pre-check.
type VerifyResult struct {
	Valid    bool   `json:"valid"`
	Feedback string `json:"feedback,omitempty"`
}

// Endpoints holds the configured collaborator service URLs. Empty means the
// adapter is unwired and its calls are skipped.
type Endpoints struct {
	Reputation string
	BadgeMint  string
	Verifier   string
}

// Registry holds the currently wired adapters. Endpoints can be swapped at
// runtime by an admin without restarting the server.
type Registry struct {
	mu         sync.RWMutex
	endpoints  Endpoints
	reputation ReputationService
	badges     BadgeMintService
	verifier   SubmissionVerifier
	client     *http.Client
}

// NewRegistry creates an empty registry. Adapters stay unwired until
// SetEndpoints or SetServices is called.
func NewRegistry() *Registry {
	return &Registry{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// SetEndpoints rewires the HTTP adapters. An empty URL unwires that adapter.
func (r *Registry) SetEndpoints(e Endpoints) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.endpoints = e
	r.reputation = nil
	r.badges = nil
	r.verifier = nil
	if e.Reputation != "" {
		r.reputation = &httpReputation{baseURL: e.Reputation, client: r.client}
	}
	if e.BadgeMint != "" {
		r.badges = &httpBadgeMinter{baseURL: e.BadgeMint, client: r.client}
	}
	if e.Verifier != "" {
		r.verifier = &httpVerifier{baseURL: e.Verifier, client: r.client}
	}
}

// SetServices wires adapter implementations directly. Used by tests and by
// in-process deployments.
func (r *Registry) SetServices(rep ReputationService, badges BadgeMintService, verifier SubmissionVerifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reputation = rep
	r.badges = badges
	r.verifier = verifier
}

// Endpoints returns the currently configured endpoints.
func (r *Registry) Endpoints() Endpoints {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.endpoints
}

// Reputation returns the wired reputation adapter, or nil.
func (r *Registry) Reputation() ReputationService {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.reputation
}

// Badges returns the wired badge mint adapter, or nil.
func (r *Registry) Badges() BadgeMintService {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.badges
}

// Verifier returns the wired submission verifier, or nil.
func (r *Registry) Verifier() SubmissionVerifier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.verifier
}

// HTTP adapters

type httpReputation struct {
	baseURL string
	client  *http.Client
}

func (a *httpReputation) UpdateReputation(ctx context.Context, developer string, scoreDelta int64, skillsUsed []string) error {
	body := map[string]any{
		"developer":  developer,
		"scoreDelta": scoreDelta,
		"skillsUsed": skillsUsed,
	}
	err := postJSON(ctx, a.client, a.baseURL+"/api/v1/reputation/update", body, nil)
	metrics.CollaboratorCall("reputation", callStatus(err))
	return err
}

type httpBadgeMinter struct {
	baseURL string
	client  *http.Client
}

func (a *httpBadgeMinter) MintBadge(ctx context.Context, recipient, badgeType, metadataURI string) error {
	body := map[string]any{
		"recipient":   recipient,
		"badgeType":   badgeType,
		"metadataUri": metadataURI,
	}
	err := postJSON(ctx, a.client, a.baseURL+"/api/v1/badges/mint", body, nil)
	metrics.CollaboratorCall("badges", callStatus(err))
	return err
}

type httpVerifier struct {
	baseURL string
	client  *http.Client
}

func (a *httpVerifier) VerifySubmission(ctx context.Context, bountyID int64, developer, prURL string) (*VerifyResult, error) {
	body := map[string]any{
		"bountyId":  bountyID,
		"developer": developer,
		"prUrl":     prURL,
	}
	var result VerifyResult
	err := postJSON(ctx, a.client, a.baseURL+"/api/v1/submissions/verify", body, &result)
	metrics.CollaboratorCall("verifier", callStatus(err))
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func callStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func postJSON(ctx context.Context, client *http.Client, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s returned %d: %s", url, resp.StatusCode, bytes.TrimSpace(msg))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
