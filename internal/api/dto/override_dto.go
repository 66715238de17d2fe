package dto

import (
	"time"

	"github.com/spec-kit/mentorship-service/internal/domain"
)

// BookingAttemptRequest payload.
type BookingAttemptRequest struct {
	MentorID string `json:"mentor_id"`
}

// OverrideRequestResponse exposes a request record.
type OverrideRequestResponse struct {
	ID             string                `json:"id"`
	MenteeID       string                `json:"mentee_id"`
	MentorID       string                `json:"mentor_id"`
	MenteeTier     domain.ReputationTier `json:"mentee_tier"`
	MentorTier     domain.ReputationTier `json:"mentor_tier"`
	TierDifference int                   `json:"tier_difference"`
	Score          MatchScoreResponse    `json:"score"`
	Status         domain.OverrideStatus `json:"status"`
	CreatedAt      time.Time             `json:"created_at"`
	ExpiresAt      time.Time             `json:"expires_at"`
	ResolvedBy     *string               `json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time            `json:"resolved_at,omitempty"`
}

// BookingDecisionResponse is the policy verdict for a booking attempt.
type BookingDecisionResponse struct {
	Outcome        string                   `json:"outcome"`
	TierDifference int                      `json:"tier_difference"`
	Request        *OverrideRequestResponse `json:"request,omitempty"`
}

// QueueItemResponse is one row of the coordinator queue.
type QueueItemResponse struct {
	OverrideRequestResponse
	MenteeName string `json:"mentee_name"`
	MentorName string `json:"mentor_name"`
}

// QueueResponse carries the ordered queue plus the counts needed to
// classify an empty render.
type QueueResponse struct {
	Items          []QueueItemResponse `json:"items"`
	FullCount      int                 `json:"full_count"`
	FilteredCount  int                 `json:"filtered_count"`
	DisplayedCount int                 `json:"displayed_count"`
	EmptyState     string              `json:"empty_state"`
}

// BulkResolveRequest payload.
type BulkResolveRequest struct {
	RequestIDs []string `json:"request_ids"`
}

// BulkItemResponse is the per-id verdict of a bulk operation.
type BulkItemResponse struct {
	RequestID string `json:"request_id"`
	Outcome   string `json:"outcome"`
}

// BulkResolveResponse aggregates per-id verdicts.
type BulkResolveResponse struct {
	Items     []BulkItemResponse `json:"items"`
	Succeeded int                `json:"succeeded"`
}
