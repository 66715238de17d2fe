package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/mentorship-service/internal/config"
	"github.com/spec-kit/mentorship-service/internal/domain"
	"github.com/spec-kit/mentorship-service/internal/events"
	"github.com/spec-kit/mentorship-service/internal/repository"
	"github.com/spec-kit/mentorship-service/internal/scoring"
	apperrors "github.com/spec-kit/mentorship-service/pkg/util/errorutil"
)

// BookingOutcome is the policy decision for a booking attempt.
type BookingOutcome string

const (
	OutcomeApprovedImmediately BookingOutcome = "APPROVED_IMMEDIATELY"
	OutcomePendingApproval     BookingOutcome = "PENDING_APPROVAL"
)

// BookingDecision is the result of evaluating a mentee's booking attempt.
type BookingDecision struct {
	Outcome        BookingOutcome
	TierDifference int
	Request        *domain.OverrideRequest
}

// BulkOutcome classifies what happened to a single id inside a bulk operation.
type BulkOutcome string

const (
	BulkOutcomeSucceeded       BulkOutcome = "SUCCEEDED"
	BulkOutcomeAlreadyTerminal BulkOutcome = "ALREADY_TERMINAL"
	BulkOutcomeNotFound        BulkOutcome = "NOT_FOUND"
	BulkOutcomeFailed          BulkOutcome = "FAILED"
)

// BulkItemResult is the per-id outcome of a bulk transition.
type BulkItemResult struct {
	RequestID string
	Outcome   BulkOutcome
}

// BulkResult aggregates per-id outcomes; the batch itself never fails.
type BulkResult struct {
	Items     []BulkItemResult
	Succeeded int
}

// OverrideService owns the tier-gap override policy and the request
// lifecycle. It is the single writer of request status; all transitions
// go through the repository's compare-and-set.
type OverrideService struct {
	users      repository.UserRepository
	overrides  repository.OverrideRequestRepository
	scorer     scoring.Scorer
	dispatcher events.Dispatcher
	threshold  int
	expiration time.Duration
	now        func() time.Time
}

// OverrideDependencies bundles collaborators for the service.
type OverrideDependencies struct {
	UserRepo     repository.UserRepository
	OverrideRepo repository.OverrideRequestRepository
	Scorer       scoring.Scorer
	Dispatcher   events.Dispatcher
	// Clock overrides wall-clock time in tests.
	Clock func() time.Time
}

// NewOverrideService constructs the service from the matching policy config.
func NewOverrideService(cfg config.MatchingConfig, deps OverrideDependencies) *OverrideService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	threshold := cfg.OverrideGapThreshold
	if threshold < 1 {
		threshold = 2
	}
	expiration := cfg.RequestExpiration
	if expiration <= 0 {
		expiration = 72 * time.Hour
	}
	return &OverrideService{
		users:      deps.UserRepo,
		overrides:  deps.OverrideRepo,
		scorer:     deps.Scorer,
		dispatcher: deps.Dispatcher,
		threshold:  threshold,
		expiration: expiration,
		now:        clock,
	}
}

// RequestBooking evaluates a mentee's attempt to book a mentor. Below the
// gap threshold the booking proceeds directly; at or above it the attempt
// is parked behind a pending override request. Repeated attempts for the
// same pair return the existing pending request instead of duplicating it.
func (s *OverrideService) RequestBooking(ctx context.Context, menteeID, mentorID string) (*BookingDecision, error) {
	mentee, err := s.getUser(ctx, menteeID, "mentee")
	if err != nil {
		return nil, err
	}
	mentor, err := s.getUser(ctx, mentorID, "mentor")
	if err != nil {
		return nil, err
	}
	if mentee.Role != domain.RoleMentee {
		return nil, apperrors.NewValidationError("booking requester must be a mentee", map[string]any{"user_id": menteeID})
	}
	if mentor.Role != domain.RoleMentor {
		return nil, apperrors.NewValidationError("booking target must be a mentor", map[string]any{"user_id": mentorID})
	}

	diff := domain.TierDifference(mentor.Tier, mentee.Tier)
	if diff < s.threshold {
		s.publish(ctx, events.Event{
			Type:  events.EventBookingApproved,
			Actor: menteeActor(mentee.ID),
			Payload: events.BookingApprovedPayload{
				MenteeID:       mentee.ID,
				MentorID:       mentor.ID,
				TierDifference: diff,
			},
		})
		return &BookingDecision{Outcome: OutcomeApprovedImmediately, TierDifference: diff}, nil
	}

	existing, err := s.overrides.FindPendingByPair(ctx, mentor.ID, mentee.ID)
	if err == nil {
		return &BookingDecision{Outcome: OutcomePendingApproval, TierDifference: diff, Request: existing}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	now := s.now()
	request := &domain.OverrideRequest{
		MenteeID:       mentee.ID,
		MentorID:       mentor.ID,
		MenteeTier:     mentee.Tier,
		MentorTier:     mentor.Tier,
		TierDifference: diff,
		Score:          s.scorer.Score(mentee, mentor),
		Status:         domain.OverrideStatusPending,
		ExpiresAt:      now.Add(s.expiration),
	}
	if err := s.overrides.Create(ctx, request); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventOverrideRequestCreated,
		RequestID: request.ID,
		Actor:     menteeActor(mentee.ID),
		Payload: events.OverrideRequestCreatedPayload{
			MenteeID:       mentee.ID,
			MentorID:       mentor.ID,
			TierDifference: diff,
			ScoreTotal:     request.Score.Total,
		},
	})
	return &BookingDecision{Outcome: OutcomePendingApproval, TierDifference: diff, Request: request}, nil
}

// Approve resolves a pending request in the mentee's favor, unblocking
// the booking.
func (s *OverrideService) Approve(ctx context.Context, requestID, coordinatorID string) (*domain.OverrideRequest, error) {
	return s.resolve(ctx, requestID, domain.OverrideStatusApproved, &coordinatorID, events.EventOverrideApproved)
}

// Decline resolves a pending request against the mentee, terminating the
// booking attempt.
func (s *OverrideService) Decline(ctx context.Context, requestID, coordinatorID string) (*domain.OverrideRequest, error) {
	return s.resolve(ctx, requestID, domain.OverrideStatusDeclined, &coordinatorID, events.EventOverrideDeclined)
}

// Expire moves an overdue pending request to its expired terminal state.
// Expiring an already-expired request is a no-op; expiring a request that
// is approved, declined, or not yet due is an invalid-state error.
func (s *OverrideService) Expire(ctx context.Context, requestID string) (*domain.OverrideRequest, error) {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status == domain.OverrideStatusExpired {
		return request, nil
	}
	if request.Status.IsTerminal() {
		return nil, apperrors.NewInvalidState("request already resolved", map[string]any{
			"request_id": requestID,
			"status":     request.Status,
		})
	}
	now := s.now()
	if now.Before(request.ExpiresAt) {
		return nil, apperrors.NewInvalidState("request not yet due to expire", map[string]any{
			"request_id": requestID,
			"expires_at": request.ExpiresAt,
		})
	}

	ok, err := s.overrides.CompareAndSetStatus(ctx, requestID, domain.OverrideStatusPending, domain.OverrideStatusExpired, nil, now)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !ok {
		// lost the race; a concurrent expirer winning is still a no-op
		current, err := s.getRequest(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if current.Status == domain.OverrideStatusExpired {
			return current, nil
		}
		return nil, apperrors.NewInvalidState("request already resolved", map[string]any{
			"request_id": requestID,
			"status":     current.Status,
		})
	}

	request.Status = domain.OverrideStatusExpired
	request.ResolvedAt = &now
	s.publish(ctx, events.Event{
		Type:      events.EventOverrideExpired,
		RequestID: request.ID,
		Actor:     events.Actor{Role: domain.RoleCoordinator},
		Payload: events.OverrideResolvedPayload{
			MenteeID:  request.MenteeID,
			MentorID:  request.MentorID,
			OldStatus: domain.OverrideStatusPending,
			NewStatus: domain.OverrideStatusExpired,
		},
	})
	return request, nil
}

// BulkApprove applies Approve to each id independently and reports per-id
// outcomes; one stale item never blocks the rest of the batch.
func (s *OverrideService) BulkApprove(ctx context.Context, requestIDs []string, coordinatorID string) BulkResult {
	return s.bulkResolve(ctx, requestIDs, coordinatorID, s.Approve)
}

// BulkDecline applies Decline to each id independently.
func (s *OverrideService) BulkDecline(ctx context.Context, requestIDs []string, coordinatorID string) BulkResult {
	return s.bulkResolve(ctx, requestIDs, coordinatorID, s.Decline)
}

// ExpireOverdue expires every pending request whose deadline has passed.
// Used by the sweep worker; safe to run concurrently with coordinators.
func (s *OverrideService) ExpireOverdue(ctx context.Context) (int, error) {
	ids, err := s.overrides.ListExpiredPending(ctx, s.now())
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	expired := 0
	for _, id := range ids {
		if _, err := s.Expire(ctx, id); err == nil {
			expired++
		}
	}
	return expired, nil
}

// GetRequest fetches a request by id.
func (s *OverrideService) GetRequest(ctx context.Context, requestID string) (*domain.OverrideRequest, error) {
	return s.getRequest(ctx, requestID)
}

func (s *OverrideService) resolve(ctx context.Context, requestID string, next domain.OverrideStatus, coordinatorID *string, eventType events.EventType) (*domain.OverrideRequest, error) {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != domain.OverrideStatusPending {
		return nil, apperrors.NewInvalidState("request already resolved", map[string]any{
			"request_id": requestID,
			"status":     request.Status,
		})
	}

	now := s.now()
	ok, err := s.overrides.CompareAndSetStatus(ctx, requestID, domain.OverrideStatusPending, next, coordinatorID, now)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !ok {
		// the compare-and-set is the arbiter: exactly one resolution wins
		current, err := s.getRequest(ctx, requestID)
		if err != nil {
			return nil, err
		}
		return nil, apperrors.NewInvalidState("request already resolved", map[string]any{
			"request_id": requestID,
			"status":     current.Status,
		})
	}

	request.Status = next
	request.ResolvedBy = coordinatorID
	request.ResolvedAt = &now
	s.publish(ctx, events.Event{
		Type:      eventType,
		RequestID: request.ID,
		Actor:     events.Actor{Role: domain.RoleCoordinator, UserID: coordinatorID},
		Payload: events.OverrideResolvedPayload{
			MenteeID:      request.MenteeID,
			MentorID:      request.MentorID,
			OldStatus:     domain.OverrideStatusPending,
			NewStatus:     next,
			CoordinatorID: coordinatorID,
		},
	})
	return request, nil
}

func (s *OverrideService) bulkResolve(ctx context.Context, requestIDs []string, coordinatorID string, transition func(context.Context, string, string) (*domain.OverrideRequest, error)) BulkResult {
	result := BulkResult{Items: make([]BulkItemResult, 0, len(requestIDs))}
	for _, id := range requestIDs {
		outcome := BulkOutcomeSucceeded
		if _, err := transition(ctx, id, coordinatorID); err != nil {
			switch {
			case apperrors.IsCode(err, "INVALID_STATE"):
				outcome = BulkOutcomeAlreadyTerminal
			case apperrors.IsCode(err, "NOT_FOUND"):
				outcome = BulkOutcomeNotFound
			default:
				outcome = BulkOutcomeFailed
			}
		} else {
			result.Succeeded++
		}
		result.Items = append(result.Items, BulkItemResult{RequestID: id, Outcome: outcome})
	}
	return result
}

func (s *OverrideService) getUser(ctx context.Context, id, resource string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound(resource, map[string]any{"user_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func (s *OverrideService) getRequest(ctx context.Context, id string) (*domain.OverrideRequest, error) {
	request, err := s.overrides.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("override request", map[string]any{"request_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return request, nil
}

func (s *OverrideService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func menteeActor(userID string) events.Actor {
	return events.Actor{Role: domain.RoleMentee, UserID: &userID}
}
