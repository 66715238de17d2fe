package dto

import "github.com/spec-kit/mentorship-service/internal/domain"

// MatchScoreResponse is the composite score with its breakdown.
type MatchScoreResponse struct {
	Algorithm        string             `json:"algorithm"`
	Total            float64            `json:"total"`
	TagOverlap       float64            `json:"tag_overlap"`
	StageMatch       float64            `json:"stage_match"`
	ReputationCompat float64            `json:"reputation_compat"`
	Bucket           domain.ScoreBucket `json:"bucket"`
}

// RankedMentorResponse is one candidate in the mentee's ranked list.
type RankedMentorResponse struct {
	MentorID         string                `json:"mentor_id"`
	Name             string                `json:"name"`
	Tier             domain.ReputationTier `json:"tier"`
	CareerStage      domain.CareerStage    `json:"career_stage"`
	Tags             []string              `json:"tags"`
	Score            MatchScoreResponse    `json:"score"`
	TierDifference   int                   `json:"tier_difference"`
	RequiresOverride bool                  `json:"requires_override"`
}
