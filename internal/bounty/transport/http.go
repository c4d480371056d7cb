// Package transport provides HTTP handlers for the bounty domain.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/debayudh07/connectx/internal/auth"
	"github.com/debayudh07/connectx/internal/bounty/domain"
)

// Service defines the bounty service interface for HTTP transport.
type Service interface {
	Create(ctx context.Context, caller string, req domain.CreateRequest) (*domain.Bounty, error)
	Claim(ctx context.Context, caller string, id int64) (*domain.Bounty, error)
	Submit(ctx context.Context, caller string, id int64, prURL, description string) (*domain.Bounty, error)
	VerifyAndPay(ctx context.Context, caller string, id int64) (*domain.Bounty, error)
	Dispute(ctx context.Context, caller string, id int64, reason string) (*domain.Bounty, error)
	Resolve(ctx context.Context, caller string, id int64, payDeveloper bool, note string) (*domain.Bounty, error)
	Cancel(ctx context.Context, caller string, id int64) (*domain.Bounty, error)
	Get(ctx context.Context, id int64) (*domain.Bounty, error)
	List(ctx context.Context, filter domain.ListFilter, pagination domain.PaginationParams) (*domain.ListResult, error)
	Submissions(ctx context.Context, id int64) ([]domain.Submission, error)
	Events(ctx context.Context, id int64) ([]domain.Event, error)
	MaintainerBounties(ctx context.Context, maintainer string) ([]domain.Bounty, error)
	DeveloperClaims(ctx context.Context, developer string) ([]domain.Bounty, error)
	DeveloperCompletions(ctx context.Context, developer string) ([]domain.Bounty, error)
	Balance(ctx context.Context, address string) (int64, error)
	Stats(ctx context.Context) (*domain.Stats, error)
}

// Handler handles HTTP requests for bounties.
type Handler struct {
	svc Service
}

// NewHandler creates a new bounty HTTP handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterReadRoutes registers read-only bounty routes (no auth required).
func (h *Handler) RegisterReadRoutes(r chi.Router) {
	r.Get("/bounties", h.handleList)
	r.Get("/bounties/{id}", h.handleGet)
	r.Get("/bounties/{id}/submissions", h.handleSubmissions)
	r.Get("/bounties/{id}/events", h.handleEvents)
	r.Get("/accounts/{address}/bounties", h.handleMaintainerBounties)
	r.Get("/accounts/{address}/claims", h.handleDeveloperClaims)
	r.Get("/accounts/{address}/completions", h.handleDeveloperCompletions)
	r.Get("/accounts/{address}/balance", h.handleBalance)
	r.Get("/stats", h.handleStats)
}

// RegisterWriteRoutes registers mutating bounty routes (auth required).
func (h *Handler) RegisterWriteRoutes(r chi.Router) {
	r.Post("/bounties", h.handleCreate)
	r.Post("/bounties/{id}/claim", h.handleClaim)
	r.Post("/bounties/{id}/submissions", h.handleSubmit)
	r.Post("/bounties/{id}/verify", h.handleVerify)
	r.Post("/bounties/{id}/dispute", h.handleDispute)
	r.Post("/bounties/{id}/resolve", h.handleResolve)
	r.Post("/bounties/{id}/cancel", h.handleCancel)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerAccount(w, r)
	if !ok {
		return
	}

	var req CreateBountyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON")
		return
	}

	b, err := h.svc.Create(r.Context(), caller, req.ToDomain())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, FromDomain(b))
}

func (h *Handler) handleClaim(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerAccount(w, r)
	if !ok {
		return
	}
	id, ok := bountyID(w, r)
	if !ok {
		return
	}

	b, err := h.svc.Claim(r.Context(), caller, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FromDomain(b))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerAccount(w, r)
	if !ok {
		return
	}
	id, ok := bountyID(w, r)
	if !ok {
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON")
		return
	}

	b, err := h.svc.Submit(r.Context(), caller, id, req.PRURL, req.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FromDomain(b))
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerAccount(w, r)
	if !ok {
		return
	}
	id, ok := bountyID(w, r)
	if !ok {
		return
	}

	b, err := h.svc.VerifyAndPay(r.Context(), caller, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FromDomain(b))
}

func (h *Handler) handleDispute(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerAccount(w, r)
	if !ok {
		return
	}
	id, ok := bountyID(w, r)
	if !ok {
		return
	}

	var req DisputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON")
		return
	}

	b, err := h.svc.Dispute(r.Context(), caller, id, req.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FromDomain(b))
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerAccount(w, r)
	if !ok {
		return
	}
	id, ok := bountyID(w, r)
	if !ok {
		return
	}

	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON")
		return
	}

	b, err := h.svc.Resolve(r.Context(), caller, id, req.PayDeveloper, req.Note)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FromDomain(b))
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerAccount(w, r)
	if !ok {
		return
	}
	id, ok := bountyID(w, r)
	if !ok {
		return
	}

	b, err := h.svc.Cancel(r.Context(), caller, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FromDomain(b))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := bountyID(w, r)
	if !ok {
		return
	}

	b, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FromDomain(b))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	var cursor int64
	if c := r.URL.Query().Get("cursor"); c != "" {
		if parsed, err := strconv.ParseInt(c, 10, 64); err == nil && parsed > 0 {
			cursor = parsed
		}
	}

	result, err := h.svc.List(r.Context(), domain.ListFilter{
		Status:     r.URL.Query().Get("status"),
		Maintainer: r.URL.Query().Get("maintainer"),
		Developer:  r.URL.Query().Get("developer"),
	}, domain.PaginationParams{
		Limit:  limit,
		Cursor: cursor,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	data := make([]BountyResponse, len(result.Bounties))
	for i := range result.Bounties {
		data[i] = FromDomain(&result.Bounties[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data": data,
		"pagination": map[string]any{
			"limit":      limit,
			"hasMore":    result.HasMore,
			"nextCursor": result.NextCursor,
		},
	})
}

func (h *Handler) handleSubmissions(w http.ResponseWriter, r *http.Request) {
	id, ok := bountyID(w, r)
	if !ok {
		return
	}

	subs, err := h.svc.Submissions(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	data := make([]SubmissionResponse, len(subs))
	for i := range subs {
		data[i] = submissionResponse(&subs[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := bountyID(w, r)
	if !ok {
		return
	}

	evts, err := h.svc.Events(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	data := make([]EventResponse, len(evts))
	for i := range evts {
		data[i] = eventResponse(&evts[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

func (h *Handler) handleMaintainerBounties(w http.ResponseWriter, r *http.Request) {
	h.writeBountyList(w, r, h.svc.MaintainerBounties)
}

func (h *Handler) handleDeveloperClaims(w http.ResponseWriter, r *http.Request) {
	h.writeBountyList(w, r, h.svc.DeveloperClaims)
}

func (h *Handler) handleDeveloperCompletions(w http.ResponseWriter, r *http.Request) {
	h.writeBountyList(w, r, h.svc.DeveloperCompletions)
}

func (h *Handler) writeBountyList(w http.ResponseWriter, r *http.Request, fetch func(context.Context, string) ([]domain.Bounty, error)) {
	address := chi.URLParam(r, "address")
	list, err := fetch(r.Context(), address)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	data := make([]BountyResponse, len(list))
	for i := range list {
		data[i] = FromDomain(&list[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	balance, err := h.svc.Balance(r.Context(), address)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"address": address,
		"balance": balance,
	})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalBounties": stats.TotalBounties,
		"totalLocked":   stats.TotalLocked,
	})
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

func bountyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid bounty id")
		return 0, false
	}
	return id, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		writeError(w, http.StatusConflict, "INVALID_STATE", err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		writeError(w, http.StatusPaymentRequired, "INSUFFICIENT_FUNDS", err.Error())
	case errors.Is(err, domain.ErrPaused):
		writeError(w, http.StatusServiceUnavailable, "PAUSED", "Platform is paused")
	case errors.Is(err, domain.ErrReentrant):
		writeError(w, http.StatusConflict, "REENTRANT", err.Error())
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
