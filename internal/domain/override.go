package domain

import "time"

// OverrideStatus enumerates lifecycle states for override requests.
type OverrideStatus string

const (
	OverrideStatusPending  OverrideStatus = "PENDING"
	OverrideStatusApproved OverrideStatus = "APPROVED"
	OverrideStatusDeclined OverrideStatus = "DECLINED"
	OverrideStatusExpired  OverrideStatus = "EXPIRED"
)

// IsTerminal reports whether the status is a terminal resolution.
// Terminal requests are immutable.
func (s OverrideStatus) IsTerminal() bool {
	return s == OverrideStatusApproved || s == OverrideStatusDeclined || s == OverrideStatusExpired
}

// OverrideRequest is the aggregate for a tier-gapped booking awaiting
// coordinator approval. Tier values and the match score are frozen at
// creation time and do not track later profile changes.
type OverrideRequest struct {
	ID             string
	MenteeID       string
	MentorID       string
	MenteeTier     ReputationTier
	MentorTier     ReputationTier
	TierDifference int
	Score          MatchScore
	Status         OverrideStatus
	CreatedAt      time.Time
	ExpiresAt      time.Time
	ResolvedBy     *string
	ResolvedAt     *time.Time
}

// IsOverdue reports whether a pending request has passed its expiration.
func (r *OverrideRequest) IsOverdue(now time.Time) bool {
	return r.Status == OverrideStatusPending && !now.Before(r.ExpiresAt)
}

// QueueItem is the coordinator-facing view of a pending request, joined
// with the display names the queue sorts on.
type QueueItem struct {
	OverrideRequest
	MenteeName string
	MentorName string
}
