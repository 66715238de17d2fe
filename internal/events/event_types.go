package events

import (
	"time"

	"github.com/spec-kit/mentorship-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventOverrideRequestCreated EventType = "override_request_created"
	EventOverrideApproved       EventType = "override_approved"
	EventOverrideDeclined       EventType = "override_declined"
	EventOverrideExpired        EventType = "override_expired"
	EventBookingApproved        EventType = "booking_approved"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Role   domain.UserRole `json:"role"`
	UserID *string         `json:"user_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RequestID string      `json:"request_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// OverrideRequestCreatedPayload payload.
type OverrideRequestCreatedPayload struct {
	MenteeID       string  `json:"mentee_id"`
	MentorID       string  `json:"mentor_id"`
	TierDifference int     `json:"tier_difference"`
	ScoreTotal     float64 `json:"score_total"`
}

// OverrideResolvedPayload payload for approve/decline/expire.
type OverrideResolvedPayload struct {
	MenteeID      string                `json:"mentee_id"`
	MentorID      string                `json:"mentor_id"`
	OldStatus     domain.OverrideStatus `json:"old_status"`
	NewStatus     domain.OverrideStatus `json:"new_status"`
	CoordinatorID *string               `json:"coordinator_id,omitempty"`
}

// BookingApprovedPayload signals the booking collaborator that a booking
// may proceed without an override request.
type BookingApprovedPayload struct {
	MenteeID       string `json:"mentee_id"`
	MentorID       string `json:"mentor_id"`
	TierDifference int    `json:"tier_difference"`
}
