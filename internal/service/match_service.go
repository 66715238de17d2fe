package service

import (
	"context"
	"errors"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/mentorship-service/internal/config"
	"github.com/spec-kit/mentorship-service/internal/domain"
	"github.com/spec-kit/mentorship-service/internal/persistence"
	"github.com/spec-kit/mentorship-service/internal/repository"
	"github.com/spec-kit/mentorship-service/internal/scoring"
	apperrors "github.com/spec-kit/mentorship-service/pkg/util/errorutil"
)

const maxCandidates = 1000

// RankedMentor is one candidate in a mentee's ranked mentor list.
type RankedMentor struct {
	Mentor           domain.User
	Score            domain.MatchScore
	TierDifference   int
	RequiresOverride bool
}

// MatchService ranks mentor candidates for a mentee.
type MatchService struct {
	users     repository.UserRepository
	scorer    scoring.Scorer
	cache     *persistence.MatchScoreCache
	threshold int
}

// MatchDependencies bundles collaborators for the service.
type MatchDependencies struct {
	UserRepo repository.UserRepository
	Scorer   scoring.Scorer
	// ScoreCache is optional; a nil cache means every score is recomputed.
	ScoreCache *persistence.MatchScoreCache
}

// NewMatchService constructs the service.
func NewMatchService(cfg config.MatchingConfig, deps MatchDependencies) *MatchService {
	threshold := cfg.OverrideGapThreshold
	if threshold < 1 {
		threshold = 2
	}
	return &MatchService{
		users:     deps.UserRepo,
		scorer:    deps.Scorer,
		cache:     deps.ScoreCache,
		threshold: threshold,
	}
}

// RankMentors scores every active mentor against the mentee and returns
// the top candidates by descending score. Ties keep mentor creation order
// so the ranking is reproducible across calls.
func (s *MatchService) RankMentors(ctx context.Context, menteeID string, limit int) ([]RankedMentor, error) {
	mentee, err := s.users.GetByID(ctx, menteeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("mentee", map[string]any{"user_id": menteeID})
		}
		return nil, apperrors.MapError(err)
	}
	if mentee.Role != domain.RoleMentee {
		return nil, apperrors.NewValidationError("ranking is available to mentees only", map[string]any{"user_id": menteeID})
	}

	mentors, err := s.users.ListActiveByRole(ctx, domain.RoleMentor, maxCandidates, 0)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	ranked := make([]RankedMentor, 0, len(mentors))
	for i := range mentors {
		mentor := mentors[i]
		score := s.scorePair(ctx, mentee, &mentor)
		diff := domain.TierDifference(mentor.Tier, mentee.Tier)
		ranked = append(ranked, RankedMentor{
			Mentor:           mentor,
			Score:            score,
			TierDifference:   diff,
			RequiresOverride: diff >= s.threshold,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score.Total > ranked[j].Score.Total
	})

	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// ScorePair computes the match score for one mentee/mentor pair.
func (s *MatchService) ScorePair(ctx context.Context, menteeID, mentorID string) (*domain.MatchScore, error) {
	mentee, err := s.users.GetByID(ctx, menteeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("mentee", map[string]any{"user_id": menteeID})
		}
		return nil, apperrors.MapError(err)
	}
	mentor, err := s.users.GetByID(ctx, mentorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("mentor", map[string]any{"user_id": mentorID})
		}
		return nil, apperrors.MapError(err)
	}
	score := s.scorePair(ctx, mentee, mentor)
	return &score, nil
}

func (s *MatchService) scorePair(ctx context.Context, mentee, mentor *domain.User) domain.MatchScore {
	if cached, ok := s.cache.Get(ctx, s.scorer.Algorithm(), mentee.ID, mentor.ID); ok {
		return *cached
	}
	score := s.scorer.Score(mentee, mentor)
	s.cache.Set(ctx, mentee.ID, mentor.ID, score)
	return score
}
