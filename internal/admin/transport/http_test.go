package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debayudh07/connectx/internal/admin/domain"
	"github.com/debayudh07/connectx/internal/auth"
)

const (
	adminAddr = "0x2222222222222222222222222222222222222222"
	userAddr  = "0x4444444444444444444444444444444444444444"
)

// mockService implements Service for testing
type mockService struct {
	roleGrants map[string]map[string]bool
	config     domain.PlatformConfig
	collab     domain.CollaboratorEndpoints
	balances   map[string]int64
	err        error
}

func newMockService() *mockService {
	return &mockService{
		roleGrants: make(map[string]map[string]bool),
		config: domain.PlatformConfig{
			PlatformFeeBps:       250,
			MinimumBountyAmount:  100_000,
			MaximumClaimDuration: 7 * 24 * time.Hour,
		},
		balances: make(map[string]int64),
	}
}

func (m *mockService) GrantRole(ctx context.Context, caller, role, account string) error {
	if m.err != nil {
		return m.err
	}
	if m.roleGrants[role] == nil {
		m.roleGrants[role] = make(map[string]bool)
	}
	m.roleGrants[role][account] = true
	return nil
}

func (m *mockService) RevokeRole(ctx context.Context, caller, role, account string) error {
	if m.err != nil {
		return m.err
	}
	delete(m.roleGrants[role], account)
	return nil
}

func (m *mockService) HasRole(ctx context.Context, role, account string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.roleGrants[role][account], nil
}

func (m *mockService) RoleAccounts(ctx context.Context, role string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []string
	for a := range m.roleGrants[role] {
		out = append(out, a)
	}
	return out, nil
}

func (m *mockService) Pause(ctx context.Context, caller string) error {
	m.config.Paused = true
	return nil
}

func (m *mockService) Unpause(ctx context.Context, caller string) error {
	m.config.Paused = false
	return nil
}

func (m *mockService) SetPlatformFee(ctx context.Context, caller string, bps int64) error {
	if m.err != nil {
		return m.err
	}
	m.config.PlatformFeeBps = bps
	return nil
}

func (m *mockService) SetMinimumBountyAmount(ctx context.Context, caller string, amount int64) error {
	m.config.MinimumBountyAmount = amount
	return nil
}

func (m *mockService) SetMaximumClaimDuration(ctx context.Context, caller string, d time.Duration) error {
	m.config.MaximumClaimDuration = d
	return nil
}

func (m *mockService) SetFeeRecipient(ctx context.Context, caller, recipient string) error {
	m.config.FeeRecipient = recipient
	return nil
}

func (m *mockService) SetCollaborators(ctx context.Context, caller string, e domain.CollaboratorEndpoints) error {
	if m.err != nil {
		return m.err
	}
	m.collab = e
	return nil
}

func (m *mockService) Collaborators(ctx context.Context) domain.CollaboratorEndpoints {
	return m.collab
}

func (m *mockService) Deposit(ctx context.Context, caller, account string, amount int64) error {
	if m.err != nil {
		return m.err
	}
	m.balances[account] += amount
	return nil
}

func (m *mockService) Withdraw(ctx context.Context, caller, account string, amount int64) error {
	if m.err != nil {
		return m.err
	}
	if m.balances[account] < amount {
		return domain.ErrInsufficientFunds
	}
	m.balances[account] -= amount
	return nil
}

func (m *mockService) GetConfig(ctx context.Context) (*domain.PlatformConfig, error) {
	cfg := m.config
	return &cfg, nil
}

func (m *mockService) ListAudit(ctx context.Context) ([]domain.ConfigChange, error) {
	return []domain.ConfigChange{{ID: "a1", Field: "platform_fee_bps", OldValue: "250", NewValue: "300", Actor: adminAddr}}, nil
}

func asCaller(account string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithTestCaller(r.Context(), account)))
		})
	}
}

func setupRouter(svc Service, caller string) *chi.Mux {
	r := chi.NewRouter()
	h := NewHandler(svc)
	r.Route("/api/v1", func(r chi.Router) {
		h.RegisterReadRoutes(r)
		r.Route("/admin", func(r chi.Router) {
			if caller != "" {
				r.Use(asCaller(caller))
			}
			h.RegisterAdminRoutes(r)
		})
	})
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func putJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(data))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_GrantAndCheckRole(t *testing.T) {
	svc := newMockService()
	router := setupRouter(svc, adminAddr)

	rec := postJSON(t, router, "/api/v1/admin/roles/grant", RoleChangeRequest{Role: "MAINTAINER", Account: userAddr})
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/roles/MAINTAINER/"+userAddr, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Granted bool `json:"granted"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Granted)
}

func TestHandler_GrantRoleUnauthorized(t *testing.T) {
	svc := newMockService()
	svc.err = domain.ErrUnauthorized
	router := setupRouter(svc, userAddr)

	rec := postJSON(t, router, "/api/v1/admin/roles/grant", RoleChangeRequest{Role: "ADMIN", Account: userAddr})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandler_GrantRoleNoCaller(t *testing.T) {
	router := setupRouter(newMockService(), "")

	rec := postJSON(t, router, "/api/v1/admin/roles/grant", RoleChangeRequest{Role: "ADMIN", Account: userAddr})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_PauseUnpause(t *testing.T) {
	svc := newMockService()
	router := setupRouter(svc, adminAddr)

	rec := postJSON(t, router, "/api/v1/admin/pause", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.config.Paused)

	rec = postJSON(t, router, "/api/v1/admin/unpause", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, svc.config.Paused)
}

func TestHandler_SetFee(t *testing.T) {
	svc := newMockService()
	router := setupRouter(svc, adminAddr)

	rec := putJSON(t, router, "/api/v1/admin/config/fee", SetFeeRequest{FeeBps: 300})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(300), svc.config.PlatformFeeBps)
}

func TestHandler_SetFeeInvalid(t *testing.T) {
	svc := newMockService()
	svc.err = domain.ErrInvalidInput
	router := setupRouter(svc, adminAddr)

	rec := putJSON(t, router, "/api/v1/admin/config/fee", SetFeeRequest{FeeBps: 20_000})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_SetCollaborators(t *testing.T) {
	svc := newMockService()
	router := setupRouter(svc, adminAddr)

	rec := putJSON(t, router, "/api/v1/admin/config/collaborators", CollaboratorsRequest{
		ReputationURL: "http://rep.local",
		VerifierURL:   "http://ver.local",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://rep.local", svc.collab.ReputationURL)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/config/collaborators", nil)
	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, req)
	require.Equal(t, http.StatusOK, getRec.Code)
}

func TestHandler_DepositWithdraw(t *testing.T) {
	svc := newMockService()
	router := setupRouter(svc, adminAddr)

	rec := postJSON(t, router, "/api/v1/admin/deposit", FundsRequest{Account: userAddr, Amount: 1_000_000})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1_000_000), svc.balances[userAddr])

	rec = postJSON(t, router, "/api/v1/admin/withdraw", FundsRequest{Account: userAddr, Amount: 2_000_000})
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
}

func TestHandler_GetConfig(t *testing.T) {
	router := setupRouter(newMockService(), adminAddr)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/config", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ConfigResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(250), resp.PlatformFeeBps)
	assert.Equal(t, int64(7*24*3600), resp.MaximumClaimDurationSeconds)
}

func TestHandler_Audit(t *testing.T) {
	router := setupRouter(newMockService(), adminAddr)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/config/audit", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []AuditEntryResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "platform_fee_bps", resp.Data[0].Field)
}
