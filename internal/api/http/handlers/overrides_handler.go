package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/mentorship-service/internal/api/dto"
	"github.com/spec-kit/mentorship-service/internal/auth"
	"github.com/spec-kit/mentorship-service/internal/domain"
	"github.com/spec-kit/mentorship-service/internal/service"
	apperrors "github.com/spec-kit/mentorship-service/pkg/util/errorutil"
)

// OverridesHandler serves booking attempts and the coordinator workflow.
type OverridesHandler struct {
	overrides *service.OverrideService
	queue     *service.QueueService
}

// NewOverridesHandler constructs handler.
func NewOverridesHandler(overrideService *service.OverrideService, queueService *service.QueueService) *OverridesHandler {
	return &OverridesHandler{overrides: overrideService, queue: queueService}
}

// AttemptBooking POST /bookings/attempts.
func (h *OverridesHandler) AttemptBooking(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("mentee required")
	}
	var req dto.BookingAttemptRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.MentorID) == "" {
		return apperrors.NewValidationError("mentor_id required", nil)
	}

	decision, err := h.overrides.RequestBooking(c.Context(), principal.User.ID, req.MentorID)
	if err != nil {
		return err
	}

	status := http.StatusOK
	if decision.Outcome == service.OutcomePendingApproval {
		status = http.StatusAccepted
	}
	return c.Status(status).JSON(fiber.Map{"data": bookingDecisionResponse(decision)})
}

// PendingQueue GET /overrides/queue.
func (h *OverridesHandler) PendingQueue(c *fiber.Ctx) error {
	query := service.QueueQuery{
		Filter: service.FilterCriteria{
			MentorTiers:     parseTiers(c.Query("mentor_tiers")),
			MenteeTiers:     parseTiers(c.Query("mentee_tiers")),
			TierDifferences: parseInts(c.Query("tier_differences")),
			ScoreBuckets:    parseBuckets(c.Query("score_buckets")),
		},
		Sort:            service.ParseSortOption(c.Query("sort"), c.Query("direction")),
		LocallyResolved: splitList(c.Query("locally_resolved")),
	}

	result, err := h.queue.PendingQueue(c.Context(), query)
	if err != nil {
		return err
	}

	items := make([]dto.QueueItemResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, queueItemResponse(&result.Items[i]))
	}
	return c.JSON(fiber.Map{"data": dto.QueueResponse{
		Items:          items,
		FullCount:      result.FullCount,
		FilteredCount:  result.FilteredCount,
		DisplayedCount: result.DisplayedCount,
		EmptyState:     string(result.EmptyState),
	}})
}

// Approve POST /overrides/:id/approve.
func (h *OverridesHandler) Approve(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("coordinator required")
	}
	request, err := h.overrides.Approve(c.Context(), c.Params("id"), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": overrideResponse(request)})
}

// Decline POST /overrides/:id/decline.
func (h *OverridesHandler) Decline(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("coordinator required")
	}
	request, err := h.overrides.Decline(c.Context(), c.Params("id"), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": overrideResponse(request)})
}

// BulkApprove POST /overrides/bulk/approve.
func (h *OverridesHandler) BulkApprove(c *fiber.Ctx) error {
	return h.bulkResolve(c, h.overrides.BulkApprove)
}

// BulkDecline POST /overrides/bulk/decline.
func (h *OverridesHandler) BulkDecline(c *fiber.Ctx) error {
	return h.bulkResolve(c, h.overrides.BulkDecline)
}

// GetRequest GET /overrides/:id.
func (h *OverridesHandler) GetRequest(c *fiber.Ctx) error {
	request, err := h.overrides.GetRequest(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": overrideResponse(request)})
}

func (h *OverridesHandler) bulkResolve(c *fiber.Ctx, op func(ctx context.Context, ids []string, coordinatorID string) service.BulkResult) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("coordinator required")
	}
	var req dto.BulkResolveRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.RequestIDs) == 0 {
		return apperrors.NewValidationError("request_ids required", nil)
	}

	result := op(c.Context(), req.RequestIDs, principal.User.ID)

	items := make([]dto.BulkItemResponse, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, dto.BulkItemResponse{RequestID: item.RequestID, Outcome: string(item.Outcome)})
	}
	return c.JSON(fiber.Map{"data": dto.BulkResolveResponse{Items: items, Succeeded: result.Succeeded}})
}

func bookingDecisionResponse(decision *service.BookingDecision) dto.BookingDecisionResponse {
	resp := dto.BookingDecisionResponse{
		Outcome:        string(decision.Outcome),
		TierDifference: decision.TierDifference,
	}
	if decision.Request != nil {
		request := overrideResponse(decision.Request)
		resp.Request = &request
	}
	return resp
}

func overrideResponse(request *domain.OverrideRequest) dto.OverrideRequestResponse {
	return dto.OverrideRequestResponse{
		ID:             request.ID,
		MenteeID:       request.MenteeID,
		MentorID:       request.MentorID,
		MenteeTier:     request.MenteeTier,
		MentorTier:     request.MentorTier,
		TierDifference: request.TierDifference,
		Score:          matchScoreResponse(request.Score),
		Status:         request.Status,
		CreatedAt:      request.CreatedAt,
		ExpiresAt:      request.ExpiresAt,
		ResolvedBy:     request.ResolvedBy,
		ResolvedAt:     request.ResolvedAt,
	}
}

func queueItemResponse(item *domain.QueueItem) dto.QueueItemResponse {
	return dto.QueueItemResponse{
		OverrideRequestResponse: overrideResponse(&item.OverrideRequest),
		MenteeName:              item.MenteeName,
		MentorName:              item.MentorName,
	}
}

func parseTiers(raw string) []domain.ReputationTier {
	parts := splitList(raw)
	tiers := make([]domain.ReputationTier, 0, len(parts))
	for _, part := range parts {
		tiers = append(tiers, domain.ReputationTier(strings.ToUpper(part)))
	}
	return tiers
}

func parseBuckets(raw string) []domain.ScoreBucket {
	parts := splitList(raw)
	buckets := make([]domain.ScoreBucket, 0, len(parts))
	for _, part := range parts {
		buckets = append(buckets, domain.ScoreBucket(strings.ToUpper(part)))
	}
	return buckets
}

func parseInts(raw string) []int {
	parts := splitList(raw)
	values := make([]int, 0, len(parts))
	for _, part := range parts {
		if parsed, err := strconv.Atoi(part); err == nil {
			values = append(values, parsed)
		}
	}
	return values
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
