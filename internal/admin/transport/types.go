// Package transport provides HTTP request/response types for administration.
package transport

// RoleChangeRequest is the HTTP request body for granting or revoking a role.
type RoleChangeRequest struct {
	Role    string `json:"role"`
	Account string `json:"account"`
}

// SetFeeRequest is the HTTP request body for updating the platform fee.
type SetFeeRequest struct {
	FeeBps int64 `json:"feeBps"`
}

// SetMinAmountRequest is the HTTP request body for updating the minimum
// bounty amount, in micro-units.
type SetMinAmountRequest struct {
	Amount int64 `json:"amount"`
}

// SetClaimDurationRequest is the HTTP request body for updating the maximum
// claim duration.
type SetClaimDurationRequest struct {
	Seconds int64 `json:"seconds"`
}

// SetFeeRecipientRequest is the HTTP request body for updating the fee
// recipient. Empty disables fee collection.
type SetFeeRecipientRequest struct {
	Recipient string `json:"recipient"`
}

// CollaboratorsRequest carries collaborator service endpoints. Empty URLs
// unwire the corresponding adapter.
type CollaboratorsRequest struct {
	ReputationURL string `json:"reputationUrl"`
	BadgeMintURL  string `json:"badgeMintUrl"`
	VerifierURL   string `json:"verifierUrl"`
}

// FundsRequest is the HTTP request body for deposits and withdrawals.
type FundsRequest struct {
	Account string `json:"account"`
	Amount  int64  `json:"amount"`
}

// ConfigResponse is the HTTP representation of the platform config.
type ConfigResponse struct {
	PlatformFeeBps              int64  `json:"platformFeeBps"`
	MinimumBountyAmount         int64  `json:"minimumBountyAmount"`
	MaximumClaimDurationSeconds int64  `json:"maximumClaimDurationSeconds"`
	FeeRecipient                string `json:"feeRecipient,omitempty"`
	Paused                      bool   `json:"paused"`
}

// AuditEntryResponse is one config audit entry.
type AuditEntryResponse struct {
	ID        string `json:"id"`
	Field     string `json:"field"`
	OldValue  string `json:"oldValue"`
	NewValue  string `json:"newValue"`
	Actor     string `json:"actor"`
	CreatedAt int64  `json:"createdAt"`
}
