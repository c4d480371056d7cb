// Package transport provides HTTP handlers for platform administration.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/debayudh07/connectx/internal/admin/domain"
	"github.com/debayudh07/connectx/internal/auth"
)

// Service defines the admin service interface for HTTP transport.
type Service interface {
	GrantRole(ctx context.Context, caller, role, account string) error
	RevokeRole(ctx context.Context, caller, role, account string) error
	HasRole(ctx context.Context, role, account string) (bool, error)
	RoleAccounts(ctx context.Context, role string) ([]string, error)
	Pause(ctx context.Context, caller string) error
	Unpause(ctx context.Context, caller string) error
	SetPlatformFee(ctx context.Context, caller string, bps int64) error
	SetMinimumBountyAmount(ctx context.Context, caller string, amount int64) error
	SetMaximumClaimDuration(ctx context.Context, caller string, d time.Duration) error
	SetFeeRecipient(ctx context.Context, caller, recipient string) error
	SetCollaborators(ctx context.Context, caller string, e domain.CollaboratorEndpoints) error
	Collaborators(ctx context.Context) domain.CollaboratorEndpoints
	Deposit(ctx context.Context, caller, account string, amount int64) error
	Withdraw(ctx context.Context, caller, account string, amount int64) error
	GetConfig(ctx context.Context) (*domain.PlatformConfig, error)
	ListAudit(ctx context.Context) ([]domain.ConfigChange, error)
}

// Handler handles HTTP requests for platform administration.
type Handler struct {
	svc Service
}

// NewHandler creates a new admin HTTP handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterReadRoutes registers read-only admin routes (no auth required).
func (h *Handler) RegisterReadRoutes(r chi.Router) {
	r.Get("/roles/{role}", h.handleRoleAccounts)
	r.Get("/roles/{role}/{address}", h.handleHasRole)
}

// RegisterAdminRoutes registers privileged admin routes (auth required).
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/roles/grant", h.handleGrantRole)
	r.Post("/roles/revoke", h.handleRevokeRole)
	r.Post("/pause", h.handlePause)
	r.Post("/unpause", h.handleUnpause)
	r.Get("/config", h.handleGetConfig)
	r.Get("/config/audit", h.handleListAudit)
	r.Put("/config/fee", h.handleSetFee)
	r.Put("/config/min-amount", h.handleSetMinAmount)
	r.Put("/config/claim-duration", h.handleSetClaimDuration)
	r.Put("/config/fee-recipient", h.handleSetFeeRecipient)
	r.Put("/config/collaborators", h.handleSetCollaborators)
	r.Get("/config/collaborators", h.handleGetCollaborators)
	r.Post("/deposit", h.handleDeposit)
	r.Post("/withdraw", h.handleWithdraw)
}

func (h *Handler) handleGrantRole(w http.ResponseWriter, r *http.Request) {
	h.handleRoleChange(w, r, h.svc.GrantRole)
}

func (h *Handler) handleRevokeRole(w http.ResponseWriter, r *http.Request) {
	h.handleRoleChange(w, r, h.svc.RevokeRole)
}

func (h *Handler) handleRoleChange(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, caller, role, account string) error) {
	caller, ok := callerAccount(w, r)
	if !ok {
		return
	}

	var req RoleChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON")
		return
	}

	if err := apply(r.Context(), caller, req.Role, req.Account); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"role":    req.Role,
		"account": req.Account,
	})
}

func (h *Handler) handleHasRole(w http.ResponseWriter, r *http.Request) {
	role := chi.URLParam(r, "role")
	address := chi.URLParam(r, "address")

	ok, err := h.svc.HasRole(r.Context(), role, address)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"role":    role,
		"account": address,
		"granted": ok,
	})
}

func (h *Handler) handleRoleAccounts(w http.ResponseWriter, r *http.Request) {
	role := chi.URLParam(r, "role")

	accounts, err := h.svc.RoleAccounts(r.Context(), role)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if accounts == nil {
		accounts = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"role":     role,
		"accounts": accounts,
	})
}

func (h *Handler) handlePause(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerAccount(w, r)
	if !ok {
		return
	}
	if err := h.svc.Pause(r.Context(), caller); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"paused": true})
}

func (h *Handler) handleUnpause(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerAccount(w, r)
	if !ok {
		return
	}
	if err := h.svc.Unpause(r.Context(), caller); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"paused": false})
}

func (h *Handler) handleSetFee(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerAccount(w, r)
	if !ok {
		return
	}
	var req SetFeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON")
		return
	}
	if err := h.svc.SetPlatformFee(r.Context(), caller, req.FeeBps); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"feeBps": req.FeeBps})
}

func (h *Handler) handleSetMinAmount(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerAccount(w, r)
	if !ok {
		return
	}
	var req SetMinAmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON")
		return
	}
	if err := h.svc.SetMinimumBountyAmount(r.Context(), caller, req.Amount); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"minimumBountyAmount": req.Amount})
}

func (h *Handler) handleSetClaimDuration(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerAccount(w, r)
	if !ok {
		return
	}
	var req SetClaimDurationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON")
		return
	}
	if err := h.svc.SetMaximumClaimDuration(r.Context(), caller, time.Duration(req.Seconds)*time.Second); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"maximumClaimDurationSeconds": req.Seconds})
}

func (h *Handler) handleSetFeeRecipient(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerAccount(w, r)
	if !ok {
		return
	}
	var req SetFeeRecipientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON")
		return
	}
	if err := h.svc.SetFeeRecipient(r.Context(), caller, req.Recipient); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"feeRecipient": req.Recipient})
}

func (h *Handler) handleSetCollaborators(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerAccount(w, r)
	if !ok {
		return
	}
	var req CollaboratorsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON")
		return
	}
	if err := h.svc.SetCollaborators(r.Context(), caller, domain.CollaboratorEndpoints{
		ReputationURL: req.ReputationURL,
		BadgeMintURL:  req.BadgeMintURL,
		VerifierURL:   req.VerifierURL,
	}); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *Handler) handleGetCollaborators(w http.ResponseWriter, r *http.Request) {
	e := h.svc.Collaborators(r.Context())
	writeJSON(w, http.StatusOK, CollaboratorsRequest{
		ReputationURL: e.ReputationURL,
		BadgeMintURL:  e.BadgeMintURL,
		VerifierURL:   e.VerifierURL,
	})
}

func (h *Handler) handleDeposit(w http.ResponseWriter, r *http.Request) {
	h.handleFundsMove(w, r, h.svc.Deposit)
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	h.handleFundsMove(w, r, h.svc.Withdraw)
}

func (h *Handler) handleFundsMove(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, caller, account string, amount int64) error) {
	caller, ok := callerAccount(w, r)
	if !ok {
		return
	}
	var req FundsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON")
		return
	}
	if err := apply(r.Context(), caller, req.Account, req.Amount); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"account": req.Account,
		"amount":  req.Amount,
	})
}

func (h *Handler) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.GetConfig(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ConfigResponse{
		PlatformFeeBps:              cfg.PlatformFeeBps,
		MinimumBountyAmount:         cfg.MinimumBountyAmount,
		MaximumClaimDurationSeconds: int64(cfg.MaximumClaimDuration / time.Second),
		FeeRecipient:                cfg.FeeRecipient,
		Paused:                      cfg.Paused,
	})
}

func (h *Handler) handleListAudit(w http.ResponseWriter, r *http.Request) {
	changes, err := h.svc.ListAudit(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	data := make([]AuditEntryResponse, len(changes))
	for i, c := range changes {
		data[i] = AuditEntryResponse{
			ID:        c.ID,
			Field:     c.Field,
			OldValue:  c.OldValue,
			NewValue:  c.NewValue,
			Actor:     c.Actor,
			CreatedAt: c.CreatedAt.Unix(),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

// Helper functions

func callerAccount(w http.ResponseWriter, r *http.Request) (string, bool) {
	account := auth.CallerAccount(r.Context())
	if account == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "API key is not bound to an account")
		return "", false
	}
	return account, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		writeError(w, http.StatusPaymentRequired, "INSUFFICIENT_FUNDS", err.Error())
	case errors.Is(err, domain.ErrPaused):
		writeError(w, http.StatusServiceUnavailable, "PAUSED", "Platform is paused")
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
