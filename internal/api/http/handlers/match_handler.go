package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/mentorship-service/internal/api/dto"
	"github.com/spec-kit/mentorship-service/internal/auth"
	"github.com/spec-kit/mentorship-service/internal/domain"
	"github.com/spec-kit/mentorship-service/internal/service"
	apperrors "github.com/spec-kit/mentorship-service/pkg/util/errorutil"
)

// MatchHandler serves mentee-facing mentor ranking endpoints.
type MatchHandler struct {
	service *service.MatchService
}

// NewMatchHandler constructs handler.
func NewMatchHandler(matchService *service.MatchService) *MatchHandler {
	return &MatchHandler{service: matchService}
}

// RankMentors GET /mentors/ranked.
func (h *MatchHandler) RankMentors(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("mentee required")
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	ranked, err := h.service.RankMentors(c.Context(), principal.User.ID, limit)
	if err != nil {
		return err
	}

	items := make([]dto.RankedMentorResponse, 0, len(ranked))
	for i := range ranked {
		items = append(items, rankedMentorResponse(&ranked[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func rankedMentorResponse(r *service.RankedMentor) dto.RankedMentorResponse {
	return dto.RankedMentorResponse{
		MentorID:         r.Mentor.ID,
		Name:             r.Mentor.Name,
		Tier:             r.Mentor.Tier,
		CareerStage:      r.Mentor.CareerStage,
		Tags:             r.Mentor.Tags,
		Score:            matchScoreResponse(r.Score),
		TierDifference:   r.TierDifference,
		RequiresOverride: r.RequiresOverride,
	}
}

func matchScoreResponse(score domain.MatchScore) dto.MatchScoreResponse {
	return dto.MatchScoreResponse{
		Algorithm:        score.Algorithm,
		Total:            score.Total,
		TagOverlap:       score.TagOverlap,
		StageMatch:       score.StageMatch,
		ReputationCompat: score.ReputationCompat,
		Bucket:           score.Bucket(),
	}
}
