package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/mentorship-service/internal/config"
	"github.com/spec-kit/mentorship-service/internal/domain"
	"github.com/spec-kit/mentorship-service/internal/events"
	"github.com/spec-kit/mentorship-service/internal/scoring"
	apperrors "github.com/spec-kit/mentorship-service/pkg/util/errorutil"
)

type fakeUserRepo struct {
	users map[string]*domain.User
	order []string
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		repo.users[u.ID] = u
		repo.order = append(repo.order, u.ID)
	}
	return repo
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		r.order = append(r.order, user.ID)
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) ListActiveByRole(_ context.Context, role domain.UserRole, limit, offset int) ([]domain.User, error) {
	var result []domain.User
	for _, id := range r.order {
		user := r.users[id]
		if user.Role == role && user.Status == domain.UserStatusActive {
			result = append(result, *user)
		}
	}
	return result, nil
}

type fakeOverrideRepo struct {
	mu       sync.Mutex
	seq      int
	requests map[string]*domain.OverrideRequest
	order    []string
	names    map[string]string
	// beforeCAS runs between the service's read and its compare-and-set,
	// to stage a concurrent resolution.
	beforeCAS func()
}

func newFakeOverrideRepo() *fakeOverrideRepo {
	return &fakeOverrideRepo{
		requests: make(map[string]*domain.OverrideRequest),
		names:    make(map[string]string),
	}
}

func (r *fakeOverrideRepo) Create(_ context.Context, request *domain.OverrideRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	request.ID = fmt.Sprintf("req-%d", r.seq)
	request.CreatedAt = time.Now()
	cloned := *request
	r.requests[request.ID] = &cloned
	r.order = append(r.order, request.ID)
	return nil
}

func (r *fakeOverrideRepo) GetByID(_ context.Context, id string) (*domain.OverrideRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cloned := *request
	return &cloned, nil
}

func (r *fakeOverrideRepo) FindPendingByPair(_ context.Context, mentorID, menteeID string) (*domain.OverrideRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		request := r.requests[id]
		if request.MentorID == mentorID && request.MenteeID == menteeID && request.Status == domain.OverrideStatusPending {
			cloned := *request
			return &cloned, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeOverrideRepo) ListPending(_ context.Context) ([]domain.QueueItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.QueueItem
	for _, id := range r.order {
		request := r.requests[id]
		if request.Status != domain.OverrideStatusPending {
			continue
		}
		result = append(result, domain.QueueItem{
			OverrideRequest: *request,
			MenteeName:      r.names[request.MenteeID],
			MentorName:      r.names[request.MentorID],
		})
	}
	return result, nil
}

func (r *fakeOverrideRepo) ListExpiredPending(_ context.Context, now time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, id := range r.order {
		request := r.requests[id]
		if request.Status == domain.OverrideStatusPending && !now.Before(request.ExpiresAt) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *fakeOverrideRepo) CompareAndSetStatus(_ context.Context, id string, expected, next domain.OverrideStatus, resolvedBy *string, resolvedAt time.Time) (bool, error) {
	if r.beforeCAS != nil {
		r.beforeCAS()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.requests[id]
	if !ok || request.Status != expected {
		return false, nil
	}
	request.Status = next
	request.ResolvedBy = resolvedBy
	request.ResolvedAt = &resolvedAt
	return true, nil
}

type recordingDispatcher struct {
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) typesSeen() []events.EventType {
	types := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		types = append(types, e.Type)
	}
	return types
}

type overrideFixture struct {
	service    *OverrideService
	users      *fakeUserRepo
	overrides  *fakeOverrideRepo
	dispatcher *recordingDispatcher
	clock      *time.Time
}

func newOverrideFixture(t *testing.T, users ...*domain.User) *overrideFixture {
	t.Helper()
	scorer, err := scoring.New(scoring.AlgorithmTagBasedV1, scoring.Config{})
	require.NoError(t, err)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	userRepo := newFakeUserRepo(users...)
	overrideRepo := newFakeOverrideRepo()
	for _, u := range users {
		overrideRepo.names[u.ID] = u.Name
	}
	dispatcher := &recordingDispatcher{}

	svc := NewOverrideService(config.MatchingConfig{
		OverrideGapThreshold: 2,
		RequestExpiration:    72 * time.Hour,
	}, OverrideDependencies{
		UserRepo:     userRepo,
		OverrideRepo: overrideRepo,
		Scorer:       scorer,
		Dispatcher:   dispatcher,
		Clock:        func() time.Time { return now },
	})
	return &overrideFixture{service: svc, users: userRepo, overrides: overrideRepo, dispatcher: dispatcher, clock: &now}
}

func mentee(id string, tier domain.ReputationTier) *domain.User {
	return &domain.User{ID: id, Name: "Mentee " + id, Role: domain.RoleMentee, Tier: tier, CareerStage: domain.StageEarlyCareer, Status: domain.UserStatusActive}
}

func mentor(id string, tier domain.ReputationTier) *domain.User {
	return &domain.User{ID: id, Name: "Mentor " + id, Role: domain.RoleMentor, Tier: tier, CareerStage: domain.StageSenior, Status: domain.UserStatusActive}
}

func TestRequestBookingBelowThresholdApprovesImmediately(t *testing.T) {
	fx := newOverrideFixture(t, mentee("m1", domain.TierGold), mentor("r1", domain.TierPlatinum))

	decision, err := fx.service.RequestBooking(context.Background(), "m1", "r1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeApprovedImmediately, decision.Outcome)
	assert.Equal(t, 1, decision.TierDifference)
	assert.Nil(t, decision.Request)
	assert.Empty(t, fx.overrides.requests)
	assert.Equal(t, []events.EventType{events.EventBookingApproved}, fx.dispatcher.typesSeen())
}

func TestRequestBookingNegativeGapApprovesImmediately(t *testing.T) {
	fx := newOverrideFixture(t, mentee("m1", domain.TierPlatinum), mentor("r1", domain.TierBronze))

	decision, err := fx.service.RequestBooking(context.Background(), "m1", "r1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeApprovedImmediately, decision.Outcome)
	assert.Equal(t, -3, decision.TierDifference)
}

func TestRequestBookingAtThresholdCreatesPendingRequest(t *testing.T) {
	fx := newOverrideFixture(t, mentee("m1", domain.TierBronze), mentor("r1", domain.TierGold))

	decision, err := fx.service.RequestBooking(context.Background(), "m1", "r1")
	require.NoError(t, err)
	assert.Equal(t, OutcomePendingApproval, decision.Outcome)
	require.NotNil(t, decision.Request)

	request := decision.Request
	assert.Equal(t, domain.OverrideStatusPending, request.Status)
	assert.Equal(t, domain.TierBronze, request.MenteeTier)
	assert.Equal(t, domain.TierGold, request.MentorTier)
	assert.Equal(t, 2, request.TierDifference)
	assert.Equal(t, fx.clock.Add(72*time.Hour), request.ExpiresAt)
	assert.NotZero(t, request.Score.Total)
	assert.Equal(t, []events.EventType{events.EventOverrideRequestCreated}, fx.dispatcher.typesSeen())
}

func TestRequestBookingIdempotentPerPair(t *testing.T) {
	fx := newOverrideFixture(t, mentee("m1", domain.TierBronze), mentor("r1", domain.TierPlatinum))

	first, err := fx.service.RequestBooking(context.Background(), "m1", "r1")
	require.NoError(t, err)
	second, err := fx.service.RequestBooking(context.Background(), "m1", "r1")
	require.NoError(t, err)

	assert.Equal(t, first.Request.ID, second.Request.ID)
	assert.Len(t, fx.overrides.requests, 1)
	// only the first attempt publishes a creation event
	assert.Equal(t, []events.EventType{events.EventOverrideRequestCreated}, fx.dispatcher.typesSeen())
}

func TestRequestBookingValidatesRoles(t *testing.T) {
	coordinator := &domain.User{ID: "c1", Role: domain.RoleCoordinator, Tier: domain.TierPlatinum, Status: domain.UserStatusActive}
	fx := newOverrideFixture(t, mentee("m1", domain.TierBronze), coordinator)

	_, err := fx.service.RequestBooking(context.Background(), "m1", "c1")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, err = fx.service.RequestBooking(context.Background(), "c1", "m1")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, err = fx.service.RequestBooking(context.Background(), "m1", "ghost")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestApproveResolvesExactlyOnce(t *testing.T) {
	fx := newOverrideFixture(t, mentee("m1", domain.TierBronze), mentor("r1", domain.TierPlatinum))
	decision, err := fx.service.RequestBooking(context.Background(), "m1", "r1")
	require.NoError(t, err)
	id := decision.Request.ID

	approved, err := fx.service.Approve(context.Background(), id, "coord-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OverrideStatusApproved, approved.Status)
	require.NotNil(t, approved.ResolvedBy)
	assert.Equal(t, "coord-1", *approved.ResolvedBy)
	assert.NotNil(t, approved.ResolvedAt)

	_, err = fx.service.Approve(context.Background(), id, "coord-2")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "INVALID_STATE"))

	_, err = fx.service.Decline(context.Background(), id, "coord-2")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "INVALID_STATE"))
}

func TestDeclineResolvesAgainstMentee(t *testing.T) {
	fx := newOverrideFixture(t, mentee("m1", domain.TierBronze), mentor("r1", domain.TierPlatinum))
	decision, err := fx.service.RequestBooking(context.Background(), "m1", "r1")
	require.NoError(t, err)

	declined, err := fx.service.Decline(context.Background(), decision.Request.ID, "coord-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OverrideStatusDeclined, declined.Status)
	assert.Contains(t, fx.dispatcher.typesSeen(), events.EventOverrideDeclined)
}

func TestApproveLosesCompareAndSetRace(t *testing.T) {
	fx := newOverrideFixture(t, mentee("m1", domain.TierBronze), mentor("r1", domain.TierPlatinum))
	decision, err := fx.service.RequestBooking(context.Background(), "m1", "r1")
	require.NoError(t, err)
	id := decision.Request.ID

	// a concurrent coordinator declines between our read and our write
	fx.overrides.beforeCAS = func() {
		fx.overrides.beforeCAS = nil
		req := fx.overrides.requests[id]
		req.Status = domain.OverrideStatusDeclined
	}

	_, err = fx.service.Approve(context.Background(), id, "coord-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "INVALID_STATE"))
	assert.Equal(t, domain.OverrideStatusDeclined, fx.overrides.requests[id].Status)
}

func TestExpireLifecycle(t *testing.T) {
	fx := newOverrideFixture(t, mentee("m1", domain.TierBronze), mentor("r1", domain.TierPlatinum))
	decision, err := fx.service.RequestBooking(context.Background(), "m1", "r1")
	require.NoError(t, err)
	id := decision.Request.ID

	// not yet due
	_, err = fx.service.Expire(context.Background(), id)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "INVALID_STATE"))

	*fx.clock = fx.clock.Add(73 * time.Hour)

	expired, err := fx.service.Expire(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.OverrideStatusExpired, expired.Status)

	// expiring again is a no-op, not an error
	again, err := fx.service.Expire(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.OverrideStatusExpired, again.Status)
}

func TestExpireRejectsResolvedRequest(t *testing.T) {
	fx := newOverrideFixture(t, mentee("m1", domain.TierBronze), mentor("r1", domain.TierPlatinum))
	decision, err := fx.service.RequestBooking(context.Background(), "m1", "r1")
	require.NoError(t, err)
	id := decision.Request.ID

	_, err = fx.service.Decline(context.Background(), id, "coord-1")
	require.NoError(t, err)

	*fx.clock = fx.clock.Add(96 * time.Hour)
	_, err = fx.service.Expire(context.Background(), id)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "INVALID_STATE"))
}

func TestBulkApproveReportsPerItemOutcomes(t *testing.T) {
	fx := newOverrideFixture(t,
		mentee("m1", domain.TierBronze), mentor("r1", domain.TierPlatinum),
		mentee("m2", domain.TierBronze), mentor("r2", domain.TierPlatinum),
	)
	a, err := fx.service.RequestBooking(context.Background(), "m1", "r1")
	require.NoError(t, err)
	b, err := fx.service.RequestBooking(context.Background(), "m2", "r2")
	require.NoError(t, err)
	_, err = fx.service.Decline(context.Background(), b.Request.ID, "coord-0")
	require.NoError(t, err)

	result := fx.service.BulkApprove(context.Background(), []string{a.Request.ID, b.Request.ID, "missing"}, "coord-1")

	require.Len(t, result.Items, 3)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, BulkOutcomeSucceeded, result.Items[0].Outcome)
	assert.Equal(t, BulkOutcomeAlreadyTerminal, result.Items[1].Outcome)
	assert.Equal(t, BulkOutcomeNotFound, result.Items[2].Outcome)

	// the stale items did not block the healthy one
	assert.Equal(t, domain.OverrideStatusApproved, fx.overrides.requests[a.Request.ID].Status)
	assert.Equal(t, domain.OverrideStatusDeclined, fx.overrides.requests[b.Request.ID].Status)
}

func TestExpireOverdueSweepsOnlyDueRequests(t *testing.T) {
	fx := newOverrideFixture(t,
		mentee("m1", domain.TierBronze), mentor("r1", domain.TierPlatinum),
		mentee("m2", domain.TierBronze), mentor("r2", domain.TierPlatinum),
	)
	first, err := fx.service.RequestBooking(context.Background(), "m1", "r1")
	require.NoError(t, err)

	*fx.clock = fx.clock.Add(48 * time.Hour)
	second, err := fx.service.RequestBooking(context.Background(), "m2", "r2")
	require.NoError(t, err)

	*fx.clock = fx.clock.Add(30 * time.Hour) // first is 78h old, second 30h

	expired, err := fx.service.ExpireOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	assert.Equal(t, domain.OverrideStatusExpired, fx.overrides.requests[first.Request.ID].Status)
	assert.Equal(t, domain.OverrideStatusPending, fx.overrides.requests[second.Request.ID].Status)
}
