package scoring

import (
	"strings"

	"github.com/spec-kit/mentorship-service/internal/domain"
)

// tagBasedV1 weights tag overlap, career-stage proximity, and reputation
// compatibility into a 0-100 composite.
type tagBasedV1 struct {
	cfg Config
}

func newTagBasedV1(cfg Config) *tagBasedV1 {
	return &tagBasedV1{cfg: cfg}
}

func (s *tagBasedV1) Algorithm() string {
	return AlgorithmTagBasedV1
}

func (s *tagBasedV1) Score(mentee, mentor *domain.User) domain.MatchScore {
	tag := jaccard(mentee.Tags, mentor.Tags) * s.cfg.TagWeight
	stage := s.stageCredit(domain.StageDistance(mentee.CareerStage, mentor.CareerStage)) * s.cfg.StageWeight
	rep := s.gapCredit(domain.TierDifference(mentor.Tier, mentee.Tier)) * s.cfg.ReputationWeight

	return domain.MatchScore{
		Algorithm:        AlgorithmTagBasedV1,
		Total:            tag + stage + rep,
		TagOverlap:       tag,
		StageMatch:       stage,
		ReputationCompat: rep,
	}
}

// jaccard returns |A∩B|/|A∪B| over normalized tags; zero when either set
// is empty rather than dividing by zero.
func jaccard(a, b []string) float64 {
	setA := normalizeTags(a)
	setB := normalizeTags(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	intersection := 0
	for tag := range setA {
		if _, ok := setB[tag]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func normalizeTags(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		set[tag] = struct{}{}
	}
	return set
}

func (s *tagBasedV1) stageCredit(distance int) float64 {
	if distance < 0 || distance >= len(s.cfg.StageProximity) {
		return 0
	}
	return s.cfg.StageProximity[distance]
}

// gapCredit rewards moderate gaps and penalizes extreme ones. Negative
// gaps (mentor below mentee) are treated by magnitude; gaps past the
// table earn the last entry so credit stays non-increasing.
func (s *tagBasedV1) gapCredit(gap int) float64 {
	if gap < 0 {
		gap = -gap
	}
	if gap >= len(s.cfg.GapCredit) {
		return s.cfg.GapCredit[len(s.cfg.GapCredit)-1]
	}
	return s.cfg.GapCredit[gap]
}
