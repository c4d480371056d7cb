package domain

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debayudh07/connectx/internal/collab"
	"github.com/debayudh07/connectx/internal/roles"
	"github.com/debayudh07/connectx/internal/storage"
)

const (
	maintainerAddr = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	developerAddr  = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	verifierAddr   = "0xcccccccccccccccccccccccccccccccccccccccc"
	adminAddr      = "0xdddddddddddddddddddddddddddddddddddddddd"
	treasuryAddr   = "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"
)

// mockStore implements storage.Store for testing. InTx snapshots the maps
// and restores them when the callback fails, so rollback behavior is
// observable in tests.
type mockStore struct {
	nextID      int64
	bounties    map[int64]*storage.Bounty
	submissions map[int64][]storage.Submission
	roleGrants  map[string]map[string]bool
	config      storage.PlatformConfig
	audits      []storage.ConfigAudit
	locks       map[int64]*storage.EscrowLock
	balances    map[string]int64
	events      []storage.Event
}

func newMockStore() *mockStore {
	return &mockStore{
		nextID:      1,
		bounties:    make(map[int64]*storage.Bounty),
		submissions: make(map[int64][]storage.Submission),
		roleGrants:  make(map[string]map[string]bool),
		config: storage.PlatformConfig{
			PlatformFeeBps:       250,
			MinimumBountyAmount:  100_000,
			MaximumClaimDuration: 7 * 24 * 3600,
			FeeRecipient:         treasuryAddr,
		},
		locks:    make(map[int64]*storage.EscrowLock),
		balances: make(map[string]int64),
	}
}

func (m *mockStore) snapshot() *mockStore {
	snap := &mockStore{
		nextID:      m.nextID,
		bounties:    make(map[int64]*storage.Bounty, len(m.bounties)),
		submissions: make(map[int64][]storage.Submission, len(m.submissions)),
		roleGrants:  make(map[string]map[string]bool, len(m.roleGrants)),
		config:      m.config,
		audits:      append([]storage.ConfigAudit(nil), m.audits...),
		locks:       make(map[int64]*storage.EscrowLock, len(m.locks)),
		balances:    make(map[string]int64, len(m.balances)),
		events:      append([]storage.Event(nil), m.events...),
	}
	for id, b := range m.bounties {
		copied := *b
		snap.bounties[id] = &copied
	}
	for id, subs := range m.submissions {
		snap.submissions[id] = append([]storage.Submission(nil), subs...)
	}
	for role, accounts := range m.roleGrants {
		copied := make(map[string]bool, len(accounts))
		for a, v := range accounts {
			copied[a] = v
		}
		snap.roleGrants[role] = copied
	}
	for id, l := range m.locks {
		copied := *l
		snap.locks[id] = &copied
	}
	for addr, bal := range m.balances {
		snap.balances[addr] = bal
	}
	return snap
}

func (m *mockStore) InTx(ctx context.Context, fn func(storage.Store) error) error {
	snap := m.snapshot()
	if err := fn(m); err != nil {
		*m = *snap
		return err
	}
	return nil
}

func (m *mockStore) CreateBounty(ctx context.Context, b *storage.Bounty) (int64, error) {
	id := m.nextID
	m.nextID++
	copied := *b
	copied.ID = id
	m.bounties[id] = &copied
	return id, nil
}

func (m *mockStore) GetBounty(ctx context.Context, id int64) (*storage.Bounty, error) {
	b, ok := m.bounties[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (m *mockStore) UpdateBounty(ctx context.Context, b *storage.Bounty) error {
	if _, ok := m.bounties[b.ID]; !ok {
		return storage.ErrNotFound
	}
	copied := *b
	m.bounties[b.ID] = &copied
	return nil
}

func (m *mockStore) ListBounties(ctx context.Context, filter storage.BountyFilter, pagination storage.PaginationParams) (*storage.PaginatedResult[storage.Bounty], error) {
	var out []storage.Bounty
	for _, b := range m.bounties {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return &storage.PaginatedResult[storage.Bounty]{Data: out}, nil
}

func (m *mockStore) CountBounties(ctx context.Context) (int64, error) {
	return int64(len(m.bounties)), nil
}

func (m *mockStore) ListBountiesByMaintainer(ctx context.Context, maintainer string) ([]storage.Bounty, error) {
	var out []storage.Bounty
	for _, b := range m.bounties {
		if b.Maintainer == maintainer {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *mockStore) ListBountiesByDeveloper(ctx context.Context, developer string, completedOnly bool) ([]storage.Bounty, error) {
	var out []storage.Bounty
	for _, b := range m.bounties {
		if b.ClaimedBy != developer {
			continue
		}
		if completedOnly && !b.IsCompleted {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (m *mockStore) AppendSubmission(ctx context.Context, sub *storage.Submission) (int, error) {
	seq := len(m.submissions[sub.BountyID]) + 1
	copied := *sub
	copied.Seq = seq
	m.submissions[sub.BountyID] = append(m.submissions[sub.BountyID], copied)
	return seq, nil
}

func (m *mockStore) ListSubmissions(ctx context.Context, bountyID int64) ([]storage.Submission, error) {
	return append([]storage.Submission(nil), m.submissions[bountyID]...), nil
}

func (m *mockStore) LatestSubmission(ctx context.Context, bountyID int64) (*storage.Submission, error) {
	subs := m.submissions[bountyID]
	if len(subs) == 0 {
		return nil, storage.ErrNotFound
	}
	copied := subs[len(subs)-1]
	return &copied, nil
}

func (m *mockStore) MarkSubmissionVerified(ctx context.Context, bountyID int64, seq int) error {
	subs := m.submissions[bountyID]
	for i := range subs {
		if subs[i].Seq == seq {
			subs[i].IsVerified = true
			return nil
		}
	}
	return storage.ErrNotFound
}

func (m *mockStore) GrantRole(ctx context.Context, role, account, grantedBy string) error {
	if m.roleGrants[role] == nil {
		m.roleGrants[role] = make(map[string]bool)
	}
	m.roleGrants[role][account] = true
	return nil
}

func (m *mockStore) RevokeRole(ctx context.Context, role, account string) error {
	delete(m.roleGrants[role], account)
	return nil
}

func (m *mockStore) HasRole(ctx context.Context, role, account string) (bool, error) {
	return m.roleGrants[role][account], nil
}

func (m *mockStore) ListRoleAccounts(ctx context.Context, role string) ([]string, error) {
	var out []string
	for a := range m.roleGrants[role] {
		out = append(out, a)
	}
	sort.Strings(out)
	return out, nil
}

func (m *mockStore) GetPlatformConfig(ctx context.Context) (*storage.PlatformConfig, error) {
	cfg := m.config
	return &cfg, nil
}

func (m *mockStore) SetPlatformConfig(ctx context.Context, cfg *storage.PlatformConfig) error {
	m.config = *cfg
	return nil
}

func (m *mockStore) EnsurePlatformConfig(ctx context.Context, defaults *storage.PlatformConfig) error {
	return nil
}

func (m *mockStore) AppendConfigAudit(ctx context.Context, a *storage.ConfigAudit) error {
	m.audits = append(m.audits, *a)
	return nil
}

func (m *mockStore) ListConfigAudit(ctx context.Context) ([]storage.ConfigAudit, error) {
	return append([]storage.ConfigAudit(nil), m.audits...), nil
}

func (m *mockStore) CreateLock(ctx context.Context, bountyID, amount int64) error {
	m.locks[bountyID] = &storage.EscrowLock{BountyID: bountyID, Amount: amount}
	return nil
}

func (m *mockStore) GetLock(ctx context.Context, bountyID int64) (*storage.EscrowLock, error) {
	l, ok := m.locks[bountyID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *l
	return &copied, nil
}

func (m *mockStore) ReleaseLock(ctx context.Context, bountyID int64) error {
	l, ok := m.locks[bountyID]
	if !ok {
		return storage.ErrNotFound
	}
	if l.Released {
		return storage.ErrLockReleased
	}
	l.Released = true
	return nil
}

func (m *mockStore) TotalLocked(ctx context.Context) (int64, error) {
	var total int64
	for _, l := range m.locks {
		if !l.Released {
			total += l.Amount
		}
	}
	return total, nil
}

func (m *mockStore) GetBalance(ctx context.Context, address string) (int64, error) {
	return m.balances[address], nil
}

func (m *mockStore) AdjustBalance(ctx context.Context, address string, delta int64) error {
	if m.balances[address]+delta < 0 {
		return storage.ErrInsufficientFunds
	}
	m.balances[address] += delta
	return nil
}

func (m *mockStore) AppendEvent(ctx context.Context, e *storage.Event) error {
	m.events = append(m.events, *e)
	return nil
}

func (m *mockStore) ListEvents(ctx context.Context, bountyID int64) ([]storage.Event, error) {
	var out []storage.Event
	for _, e := range m.events {
		if e.BountyID == bountyID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockStore) CreateAPIKey(ctx context.Context, name, account string) (string, error) {
	return "", nil
}

func (m *mockStore) ValidateAPIKey(ctx context.Context, key string) (*storage.APIKey, error) {
	return nil, storage.ErrNotFound
}

func (m *mockStore) ListAPIKeys(ctx context.Context) ([]storage.APIKey, error) { return nil, nil }
func (m *mockStore) RevokeAPIKey(ctx context.Context, id string) error        { return nil }
func (m *mockStore) Close() error                                             { return nil }
func (m *mockStore) Migrate(ctx context.Context) error                        { return nil }

func (m *mockStore) eventTypes(bountyID int64) []string {
	var out []string
	for _, e := range m.events {
		if e.BountyID == bountyID {
			out = append(out, e.Type)
		}
	}
	return out
}

// totalMoney sums balances and unreleased locks so conservation is checkable.
func (m *mockStore) totalMoney() int64 {
	var total int64
	for _, bal := range m.balances {
		total += bal
	}
	for _, l := range m.locks {
		if !l.Released {
			total += l.Amount
		}
	}
	return total
}

// Collaborator fakes

type fakeReputation struct {
	calls []repCall
	fail  error
}

type repCall struct {
	developer  string
	scoreDelta int64
	skillsUsed []string
}

func (f *fakeReputation) UpdateReputation(ctx context.Context, developer string, scoreDelta int64, skillsUsed []string) error {
	if f.fail != nil {
		return f.fail
	}
	f.calls = append(f.calls, repCall{developer, scoreDelta, skillsUsed})
	return nil
}

type fakeBadgeMinter struct {
	calls []badgeCall
	fail  error
	hook  func() error
}

type badgeCall struct {
	recipient   string
	badgeType   string
	metadataURI string
}

func (f *fakeBadgeMinter) MintBadge(ctx context.Context, recipient, badgeType, metadataURI string) error {
	if f.hook != nil {
		if err := f.hook(); err != nil {
			return err
		}
	}
	if f.fail != nil {
		return f.fail
	}
	f.calls = append(f.calls, badgeCall{recipient, badgeType, metadataURI})
	return nil
}

type fakeVerifier struct {
	result collab.VerifyResult
	fail   error
}

func (f *fakeVerifier) VerifySubmission(ctx context.Context, bountyID int64, developer, prURL string) (*collab.VerifyResult, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	result := f.result
	return &result, nil
}

// Fixture helpers

func newTestService(t *testing.T) (*service, *mockStore, *collab.Registry) {
	t.Helper()
	store := newMockStore()
	store.roleGrants[roles.Maintainer] = map[string]bool{maintainerAddr: true}
	store.roleGrants[roles.Verifier] = map[string]bool{verifierAddr: true}
	store.roleGrants[roles.Admin] = map[string]bool{adminAddr: true}
	store.balances[maintainerAddr] = 10_000_000

	registry := collab.NewRegistry()
	svc := NewService(store, registry)
	return svc, store, registry
}

func createRequest() CreateRequest {
	return CreateRequest{
		RewardAmount:   1_000_000,
		Deadline:       time.Now().Add(30 * 24 * time.Hour),
		Title:          "Fix flaky retry backoff",
		Description:    "Retries fire immediately under load",
		IssueURL:       "https://github.com/acme/widgets/issues/42",
		RepoURL:        "https://github.com/acme/widgets",
		RequiredSkills: []string{"go", "networking"},
		Difficulty:     "medium",
	}
}

func createAndClaim(t *testing.T, svc *service) *Bounty {
	t.Helper()
	ctx := context.Background()
	b, err := svc.Create(ctx, maintainerAddr, createRequest())
	require.NoError(t, err)
	b, err = svc.Claim(ctx, developerAddr, b.ID)
	require.NoError(t, err)
	return b
}

func createClaimSubmit(t *testing.T, svc *service) *Bounty {
	t.Helper()
	b := createAndClaim(t, svc)
	b, err := svc.Submit(context.Background(), developerAddr, b.ID, "https://github.com/acme/widgets/pull/7", "fixed")
	require.NoError(t, err)
	return b
}

// Tests

func TestCreateLocksEscrow(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	before := store.totalMoney()
	b, err := svc.Create(ctx, maintainerAddr, createRequest())
	require.NoError(t, err)

	assert.Equal(t, storage.StatusOpen, b.Status)
	assert.Equal(t, int64(9_000_000), store.balances[maintainerAddr])
	lock, err := store.GetLock(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), lock.Amount)
	assert.False(t, lock.Released)
	assert.Equal(t, before, store.totalMoney(), "creation moves money, never mints it")
	assert.Equal(t, []string{"BountyCreated"}, store.eventTypes(b.ID))
}

func TestCreateRequiresMaintainerRole(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), developerAddr, createRequest())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreateInsufficientFunds(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.balances[maintainerAddr] = 500_000

	_, err := svc.Create(context.Background(), maintainerAddr, createRequest())
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, int64(500_000), store.balances[maintainerAddr], "failed create leaves balance untouched")
	assert.Empty(t, store.bounties, "failed create rolls back the bounty row")
}

func TestCreateBelowMinimum(t *testing.T) {
	svc, _, _ := newTestService(t)
	req := createRequest()
	req.RewardAmount = 50_000

	_, err := svc.Create(context.Background(), maintainerAddr, req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateDeadlineInPast(t *testing.T) {
	svc, _, _ := newTestService(t)
	req := createRequest()
	req.Deadline = time.Now().Add(-time.Hour)

	_, err := svc.Create(context.Background(), maintainerAddr, req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestClaimExclusivity(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	b := createAndClaim(t, svc)

	_, err := svc.Claim(ctx, "0x1234567890123456789012345678901234567890", b.ID)
	assert.ErrorIs(t, err, ErrInvalidState, "a claimed bounty cannot be claimed again")

	got, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, developerAddr, got.ClaimedBy, "first claimant keeps the claim")
}

func TestClaimOwnBounty(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	b, err := svc.Create(ctx, maintainerAddr, createRequest())
	require.NoError(t, err)

	_, err = svc.Claim(ctx, maintainerAddr, b.ID)
	assert.ErrorIs(t, err, ErrUnauthorized, "self-claim is an authorization failure")
}

func TestClaimAfterDeadline(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	b, err := svc.Create(ctx, maintainerAddr, createRequest())
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(31 * 24 * time.Hour) }
	_, err = svc.Claim(ctx, developerAddr, b.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestClaimAtDeadlineInstant(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	deadline := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	req := createRequest()
	req.Deadline = deadline
	b, err := svc.Create(ctx, maintainerAddr, req)
	require.NoError(t, err)

	svc.now = func() time.Time { return deadline }
	_, err = svc.Claim(ctx, developerAddr, b.ID)
	assert.ErrorIs(t, err, ErrInvalidState, "a claim exactly at the deadline is too late")
}

func TestClaimNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Claim(context.Background(), developerAddr, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitOnlyClaimant(t *testing.T) {
	svc, _, _ := newTestService(t)
	b := createAndClaim(t, svc)

	_, err := svc.Submit(context.Background(), verifierAddr, b.ID, "https://github.com/acme/widgets/pull/7", "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSubmitVerifierRejects(t *testing.T) {
	svc, store, registry := newTestService(t)
	registry.SetServices(nil, nil, &fakeVerifier{result: collab.VerifyResult{Valid: false, Feedback: "tests missing"}})
	b := createAndClaim(t, svc)

	_, err := svc.Submit(context.Background(), developerAddr, b.ID, "https://github.com/acme/widgets/pull/7", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "tests missing")
	assert.Equal(t, storage.StatusClaimed, store.bounties[b.ID].Status)
	assert.Empty(t, store.submissions[b.ID], "rejected submission is not recorded")
}

func TestSubmitVerifierUnavailable(t *testing.T) {
	svc, _, registry := newTestService(t)
	registry.SetServices(nil, nil, &fakeVerifier{fail: errors.New("verifier down")})
	b := createAndClaim(t, svc)

	_, err := svc.Submit(context.Background(), developerAddr, b.ID, "https://github.com/acme/widgets/pull/7", "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidInput, "adapter failure is not an input error")
}

func TestVerifyAndPayFeeSplit(t *testing.T) {
	svc, store, registry := newTestService(t)
	rep := &fakeReputation{}
	badges := &fakeBadgeMinter{}
	registry.SetServices(rep, badges, nil)

	before := store.totalMoney()
	b := createClaimSubmit(t, svc)

	paid, err := svc.VerifyAndPay(context.Background(), verifierAddr, b.ID)
	require.NoError(t, err)

	assert.Equal(t, storage.StatusPaid, paid.Status)
	assert.True(t, paid.IsCompleted)
	assert.Equal(t, int64(975_000), store.balances[developerAddr], "developer share after 2.5% fee")
	assert.Equal(t, int64(25_000), store.balances[treasuryAddr], "platform fee")
	assert.True(t, store.locks[b.ID].Released)
	assert.Equal(t, before, store.totalMoney(), "payout conserves money")

	require.Len(t, rep.calls, 1)
	assert.Equal(t, developerAddr, rep.calls[0].developer)
	assert.Equal(t, int64(25), rep.calls[0].scoreDelta, "medium difficulty delta")
	assert.Equal(t, []string{"go", "networking"}, rep.calls[0].skillsUsed)

	require.Len(t, badges.calls, 1)
	assert.Equal(t, developerAddr, badges.calls[0].recipient)
	assert.Equal(t, "https://github.com/acme/widgets/issues/42", badges.calls[0].metadataURI)

	assert.Equal(t, []string{"BountyCreated", "BountyClaimed", "BountySubmitted", "BountyVerified", "BountyPaid"},
		store.eventTypes(b.ID))

	subs, err := store.ListSubmissions(context.Background(), b.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.True(t, subs[0].IsVerified)
}

func TestVerifyAndPayUnauthorized(t *testing.T) {
	svc, _, _ := newTestService(t)
	b := createClaimSubmit(t, svc)

	_, err := svc.VerifyAndPay(context.Background(), developerAddr, b.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyAndPayWrongState(t *testing.T) {
	svc, _, _ := newTestService(t)
	b := createAndClaim(t, svc)

	_, err := svc.VerifyAndPay(context.Background(), verifierAddr, b.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestVerifyAndPayCollaboratorFailureRollsBack(t *testing.T) {
	svc, store, registry := newTestService(t)
	registry.SetServices(&fakeReputation{}, &fakeBadgeMinter{fail: errors.New("mint failed")}, nil)
	b := createClaimSubmit(t, svc)

	_, err := svc.VerifyAndPay(context.Background(), verifierAddr, b.ID)
	require.Error(t, err)

	assert.Equal(t, storage.StatusSubmitted, store.bounties[b.ID].Status, "payout rolled back")
	assert.Equal(t, int64(0), store.balances[developerAddr])
	assert.Equal(t, int64(0), store.balances[treasuryAddr])
	assert.False(t, store.locks[b.ID].Released, "escrow stays locked after rollback")
}

func TestVerifyAndPayNoFeeRecipient(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.config.FeeRecipient = ""
	b := createClaimSubmit(t, svc)

	_, err := svc.VerifyAndPay(context.Background(), adminAddr, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), store.balances[developerAddr], "full amount with no fee recipient")
}

func TestDisputeAndResolveRefund(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	b := createClaimSubmit(t, svc)

	before := store.totalMoney()
	_, err := svc.Dispute(ctx, maintainerAddr, b.ID, "work does not match the issue")
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, adminAddr, b.ID, false, "maintainer is right")
	require.NoError(t, err)

	assert.Equal(t, storage.StatusCancelled, resolved.Status)
	assert.Equal(t, int64(10_000_000), store.balances[maintainerAddr], "full refund")
	assert.Equal(t, int64(0), store.balances[developerAddr])
	assert.Equal(t, before, store.totalMoney())
}

func TestResolvePayDeveloper(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	b := createClaimSubmit(t, svc)

	_, err := svc.Dispute(ctx, developerAddr, b.ID, "verification is overdue")
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, adminAddr, b.ID, true, "work is fine")
	require.NoError(t, err)

	assert.Equal(t, storage.StatusPaid, resolved.Status)
	assert.Equal(t, int64(975_000), store.balances[developerAddr], "resolution pays through the same fee split")
	assert.Equal(t, int64(25_000), store.balances[treasuryAddr])
}

func TestResolveRequiresAdmin(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	b := createClaimSubmit(t, svc)
	_, err := svc.Dispute(ctx, maintainerAddr, b.ID, "disagreement")
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, verifierAddr, b.ID, false, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestDisputeByOutsider(t *testing.T) {
	svc, _, _ := newTestService(t)
	b := createAndClaim(t, svc)

	_, err := svc.Dispute(context.Background(), "0x1234567890123456789012345678901234567890", b.ID, "drive-by")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCancelOpenRefunds(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	b, err := svc.Create(ctx, maintainerAddr, createRequest())
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, maintainerAddr, b.ID)
	require.NoError(t, err)
	assert.Equal(t, storage.StatusCancelled, cancelled.Status)
	assert.Equal(t, int64(10_000_000), store.balances[maintainerAddr])
	assert.True(t, store.locks[b.ID].Released)
}

func TestCancelClaimedBeforeExpiry(t *testing.T) {
	svc, _, _ := newTestService(t)
	b := createAndClaim(t, svc)

	_, err := svc.Cancel(context.Background(), maintainerAddr, b.ID)
	assert.ErrorIs(t, err, ErrInvalidState, "active claim blocks cancellation")
}

func TestCancelClaimedAfterExpiry(t *testing.T) {
	svc, store, _ := newTestService(t)
	b := createAndClaim(t, svc)

	svc.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
	cancelled, err := svc.Cancel(context.Background(), maintainerAddr, b.ID)
	require.NoError(t, err)
	assert.Equal(t, storage.StatusCancelled, cancelled.Status)
	assert.Equal(t, int64(10_000_000), store.balances[maintainerAddr])
}

func TestCancelByNonMaintainer(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	b, err := svc.Create(ctx, maintainerAddr, createRequest())
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, developerAddr, b.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestTerminalStatesAreFinal(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	b := createClaimSubmit(t, svc)
	_, err := svc.VerifyAndPay(ctx, verifierAddr, b.ID)
	require.NoError(t, err)

	_, err = svc.Claim(ctx, developerAddr, b.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = svc.Cancel(ctx, maintainerAddr, b.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = svc.VerifyAndPay(ctx, verifierAddr, b.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = svc.Dispute(ctx, maintainerAddr, b.ID, "too late")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestPausedBlocksMutations(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	b, err := svc.Create(ctx, maintainerAddr, createRequest())
	require.NoError(t, err)

	store.config.Paused = true

	_, err = svc.Create(ctx, maintainerAddr, createRequest())
	assert.ErrorIs(t, err, ErrPaused)
	_, err = svc.Claim(ctx, developerAddr, b.ID)
	assert.ErrorIs(t, err, ErrPaused)
	_, err = svc.Cancel(ctx, maintainerAddr, b.ID)
	assert.ErrorIs(t, err, ErrPaused)

	_, err = svc.Get(ctx, b.ID)
	assert.NoError(t, err, "reads keep working while paused")
}

func TestReentrantCollaboratorCall(t *testing.T) {
	svc, _, registry := newTestService(t)
	b := createClaimSubmit(t, svc)

	var inner error
	badges := &fakeBadgeMinter{}
	badges.hook = func() error {
		_, inner = svc.Cancel(context.Background(), maintainerAddr, b.ID)
		return nil
	}
	registry.SetServices(nil, badges, nil)

	_, err := svc.VerifyAndPay(context.Background(), verifierAddr, b.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, inner, ErrReentrant, "callback into the same bounty is rejected")
}

func TestListFiltersByStatus(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, maintainerAddr, createRequest())
	require.NoError(t, err)
	createAndClaim(t, svc)

	open, err := svc.List(ctx, ListFilter{Status: storage.StatusOpen}, PaginationParams{})
	require.NoError(t, err)
	assert.Len(t, open.Bounties, 1)

	claimed, err := svc.List(ctx, ListFilter{Status: storage.StatusClaimed}, PaginationParams{})
	require.NoError(t, err)
	assert.Len(t, claimed.Bounties, 1)
}

func TestDeveloperViews(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	b := createClaimSubmit(t, svc)

	claims, err := svc.DeveloperClaims(ctx, developerAddr)
	require.NoError(t, err)
	assert.Len(t, claims, 1)

	completions, err := svc.DeveloperCompletions(ctx, developerAddr)
	require.NoError(t, err)
	assert.Empty(t, completions, "unpaid bounty is not a completion")

	_, err = svc.VerifyAndPay(ctx, verifierAddr, b.ID)
	require.NoError(t, err)

	completions, err = svc.DeveloperCompletions(ctx, developerAddr)
	require.NoError(t, err)
	assert.Len(t, completions, 1)
}

func TestStats(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, maintainerAddr, createRequest())
	require.NoError(t, err)
	req := createRequest()
	req.RewardAmount = 2_000_000
	_, err = svc.Create(ctx, maintainerAddr, req)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalBounties)
	assert.Equal(t, int64(3_000_000), stats.TotalLocked)
}
