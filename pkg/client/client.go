// Package client provides a Go client for the ConnectX API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client is a ConnectX API client
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// New creates a new ConnectX client
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Bounty represents a bounty on the platform. Amounts are micro-units,
// timestamps unix seconds (0 = unset).
type Bounty struct {
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

// Submission represents one work submission against a bounty
type Submission struct {
	BountyID    int64  `json:"bountyId"`
	Seq         int    `json:"seq"`
	Developer   string `json:"developer"`
	PRURL       string `json:"prUrl"`
	Description string `json:"description,omitempty"`
	SubmittedAt int64  `json:"submittedAt"`
	IsVerified  bool   `json:"isVerified"`
}

// Event represents one entry in a bounty's event log
type Event struct {
	ID        string         `json:"id"`
	BountyID  int64          `json:"bountyId,omitempty"`
	Type      string         `json:"type"`
	Actor     string         `json:"actor"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt int64          `json:"createdAt"`
}

// CreateBountyRequest is the request for creating a bounty
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

// SubmitRequest is the request for submitting work
type SubmitRequest struct {
	PRURL       string `json:"prUrl"`
	Description string `json:"description,omitempty"`
}

// ResolveRequest is the request for resolving a dispute
type ResolveRequest struct {
	PayDeveloper bool   `json:"payDeveloper"`
	Note         string `json:"note,omitempty"`
}

// ListBountiesOptions filters and paginates bounty listings
type ListBountiesOptions struct {
	Status     string
	Maintainer string
	Developer  string
	Limit      int
	Cursor     int64
}

// ListBountiesResponse is the response for listing bounties
type ListBountiesResponse struct {
	Data       []Bounty   `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Pagination contains pagination info
type Pagination struct {
	Limit      int   `json:"limit"`
	HasMore    bool  `json:"hasMore"`
	NextCursor int64 `json:"nextCursor,omitempty"`
}

// PlatformConfig is the platform configuration
type PlatformConfig struct {
	PlatformFeeBps              int64  `json:"platformFeeBps"`
	MinimumBountyAmount         int64  `json:"minimumBountyAmount"`
	MaximumClaimDurationSeconds int64  `json:"maximumClaimDurationSeconds"`
	FeeRecipient                string `json:"feeRecipient,omitempty"`
	Paused                      bool   `json:"paused"`
}

// Stats is the platform-wide summary
type Stats struct {
	TotalBounties int64 `json:"totalBounties"`
	TotalLocked   int64 `json:"totalLocked"`
}

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CreateBounty creates a bounty and locks its reward in escrow
func (c *Client) CreateBounty(ctx context.Context, req CreateBountyRequest) (*Bounty, error) {
	var b Bounty
	if err := c.post(ctx, "/api/v1/bounties", req, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// GetBounty gets a bounty by ID
func (c *Client) GetBounty(ctx context.Context, id int64) (*Bounty, error) {
	var b Bounty
	if err := c.get(ctx, bountyPath(id, ""), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBounties lists bounties, optionally filtered
func (c *Client) ListBounties(ctx context.Context, opts ListBountiesOptions) (*ListBountiesResponse, error) {
	q := url.Values{}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	if opts.Maintainer != "" {
		q.Set("maintainer", opts.Maintainer)
	}
	if opts.Developer != "" {
		q.Set("developer", opts.Developer)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor > 0 {
		q.Set("cursor", strconv.FormatInt(opts.Cursor, 10))
	}

	path := "/api/v1/bounties"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListBountiesResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClaimBounty claims an open bounty for the authenticated account
func (c *Client) ClaimBounty(ctx context.Context, id int64) (*Bounty, error) {
	var b Bounty
	if err := c.post(ctx, bountyPath(id, "claim"), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// SubmitWork submits a pull request against a claimed bounty
func (c *Client) SubmitWork(ctx context.Context, id int64, req SubmitRequest) (*Bounty, error) {
	var b Bounty
	if err := c.post(ctx, bountyPath(id, "submissions"), req, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// VerifyBounty approves the latest submission and pays the developer
func (c *Client) VerifyBounty(ctx context.Context, id int64) (*Bounty, error) {
	var b Bounty
	if err := c.post(ctx, bountyPath(id, "verify"), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// DisputeBounty flags a bounty for admin resolution
func (c *Client) DisputeBounty(ctx context.Context, id int64, reason string) (*Bounty, error) {
	var b Bounty
	body := map[string]string{"reason": reason}
	if err := c.post(ctx, bountyPath(id, "dispute"), body, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// ResolveBounty settles a disputed bounty
func (c *Client) ResolveBounty(ctx context.Context, id int64, req ResolveRequest) (*Bounty, error) {
	var b Bounty
	if err := c.post(ctx, bountyPath(id, "resolve"), req, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// CancelBounty refunds and closes a bounty
func (c *Client) CancelBounty(ctx context.Context, id int64) (*Bounty, error) {
	var b Bounty
	if err := c.post(ctx, bountyPath(id, "cancel"), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// ListSubmissions lists all submissions against a bounty
func (c *Client) ListSubmissions(ctx context.Context, id int64) ([]Submission, error) {
	var resp struct {
		Data []Submission `json:"data"`
	}
	if err := c.get(ctx, bountyPath(id, "submissions"), &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ListEvents lists a bounty's event log
func (c *Client) ListEvents(ctx context.Context, id int64) ([]Event, error) {
	var resp struct {
		Data []Event `json:"data"`
	}
	if err := c.get(ctx, bountyPath(id, "events"), &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// MaintainerBounties lists bounties created by an account
func (c *Client) MaintainerBounties(ctx context.Context, address string) ([]Bounty, error) {
	return c.accountBounties(ctx, address, "bounties")
}

// DeveloperClaims lists bounties claimed by an account
func (c *Client) DeveloperClaims(ctx context.Context, address string) ([]Bounty, error) {
	return c.accountBounties(ctx, address, "claims")
}

// DeveloperCompletions lists completed bounties for an account
func (c *Client) DeveloperCompletions(ctx context.Context, address string) ([]Bounty, error) {
	return c.accountBounties(ctx, address, "completions")
}

func (c *Client) accountBounties(ctx context.Context, address, kind string) ([]Bounty, error) {
	var resp struct {
		Data []Bounty `json:"data"`
	}
	path := fmt.Sprintf("/api/v1/accounts/%s/%s", url.PathEscape(address), kind)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Balance gets an account's available balance in micro-units
func (c *Client) Balance(ctx context.Context, address string) (int64, error) {
	var resp struct {
		Balance int64 `json:"balance"`
	}
	if err := c.get(ctx, "/api/v1/accounts/"+url.PathEscape(address)+"/balance", &resp); err != nil {
		return 0, err
	}
	return resp.Balance, nil
}

// GetStats gets platform-wide totals
func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	var s Stats
	if err := c.get(ctx, "/api/v1/stats", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// HasRole checks whether an account holds a role
func (c *Client) HasRole(ctx context.Context, role, address string) (bool, error) {
	var resp struct {
		Granted bool `json:"granted"`
	}
	path := fmt.Sprintf("/api/v1/roles/%s/%s", url.PathEscape(role), url.PathEscape(address))
	if err := c.get(ctx, path, &resp); err != nil {
		return false, err
	}
	return resp.Granted, nil
}

// RoleAccounts lists accounts holding a role
func (c *Client) RoleAccounts(ctx context.Context, role string) ([]string, error) {
	var resp struct {
		Accounts []string `json:"accounts"`
	}
	if err := c.get(ctx, "/api/v1/roles/"+url.PathEscape(role), &resp); err != nil {
		return nil, err
	}
	return resp.Accounts, nil
}

// GrantRole grants a role to an account
func (c *Client) GrantRole(ctx context.Context, role, account string) error {
	body := map[string]string{"role": role, "account": account}
	return c.post(ctx, "/api/v1/admin/roles/grant", body, nil)
}

// RevokeRole revokes a role from an account
func (c *Client) RevokeRole(ctx context.Context, role, account string) error {
	body := map[string]string{"role": role, "account": account}
	return c.post(ctx, "/api/v1/admin/roles/revoke", body, nil)
}

// Pause halts all mutating platform operations
func (c *Client) Pause(ctx context.Context) error {
	return c.post(ctx, "/api/v1/admin/pause", nil, nil)
}

// Unpause lifts a pause
func (c *Client) Unpause(ctx context.Context) error {
	return c.post(ctx, "/api/v1/admin/unpause", nil, nil)
}

// GetConfig gets the platform configuration
func (c *Client) GetConfig(ctx context.Context) (*PlatformConfig, error) {
	var cfg PlatformConfig
	if err := c.get(ctx, "/api/v1/admin/config", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetPlatformFee updates the platform fee in basis points
func (c *Client) SetPlatformFee(ctx context.Context, feeBps int64) error {
	return c.put(ctx, "/api/v1/admin/config/fee", map[string]int64{"feeBps": feeBps})
}

// SetMinimumBountyAmount updates the minimum bounty amount in micro-units
func (c *Client) SetMinimumBountyAmount(ctx context.Context, amount int64) error {
	return c.put(ctx, "/api/v1/admin/config/min-amount", map[string]int64{"amount": amount})
}

// SetMaximumClaimDuration updates the maximum claim duration in seconds
func (c *Client) SetMaximumClaimDuration(ctx context.Context, seconds int64) error {
	return c.put(ctx, "/api/v1/admin/config/claim-duration", map[string]int64{"seconds": seconds})
}

// SetFeeRecipient updates the fee recipient. Empty disables fee collection.
func (c *Client) SetFeeRecipient(ctx context.Context, recipient string) error {
	return c.put(ctx, "/api/v1/admin/config/fee-recipient", map[string]string{"recipient": recipient})
}

// Deposit credits an account's balance
func (c *Client) Deposit(ctx context.Context, account string, amount int64) error {
	body := map[string]any{"account": account, "amount": amount}
	return c.post(ctx, "/api/v1/admin/deposit", body, nil)
}

// Withdraw debits an account's balance
func (c *Client) Withdraw(ctx context.Context, account string, amount int64) error {
	body := map[string]any{"account": account, "amount": amount}
	return c.post(ctx, "/api/v1/admin/withdraw", body, nil)
}

func bountyPath(id int64, suffix string) string {
	path := "/api/v1/bounties/" + strconv.FormatInt(id, 10)
	if suffix != "" {
		path += "/" + suffix
	}
	return path
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	return c.do(req, result)
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	return c.send(ctx, http.MethodPost, path, body, result)
}

func (c *Client) put(ctx context.Context, path string, body any) error {
	return c.send(ctx, http.MethodPut, path, body, nil)
}

func (c *Client) send(ctx context.Context, method, path string, body, result any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result any) error {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.parseError(resp)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func (c *Client) parseError(resp *http.Response) error {
	var errResp struct {
		Error APIError `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return &errResp.Error
}
