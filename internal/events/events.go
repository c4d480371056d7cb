// Package events defines the event types appended to the audit log, one per
// state transition or config change.
package events

// Bounty lifecycle events
const (
	BountyCreated   = "BountyCreated"
	BountyClaimed   = "BountyClaimed"
	BountySubmitted = "BountySubmitted"
	BountyVerified  = "BountyVerified"
	BountyPaid      = "BountyPaid"
	BountyDisputed  = "BountyDisputed"
	BountyCancelled = "BountyCancelled"
)

// Role and pause events
const (
	RoleGranted = "RoleGranted"
	RoleRevoked = "RoleRevoked"
	Paused      = "Paused"
	Unpaused    = "Unpaused"
)

// Config and funds events
const (
	PlatformFeeUpdated            = "PlatformFeeUpdated"
	MinimumBountyAmountUpdated    = "MinimumBountyAmountUpdated"
	MaximumClaimDurationUpdated   = "MaximumClaimDurationUpdated"
	FeeRecipientUpdated           = "FeeRecipientUpdated"
	CollaboratorAddressUpdated    = "CollaboratorAddressUpdated"
	Deposit                       = "Deposit"
	EmergencyWithdraw             = "EmergencyWithdraw"
)
