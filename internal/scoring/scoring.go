// Package scoring computes mentee/mentor compatibility scores. Algorithms
// are versioned strategies selected by name so new variants can ship
// alongside old ones without changing callers.
package scoring

import (
	"fmt"

	"github.com/spec-kit/mentorship-service/internal/domain"
)

// AlgorithmTagBasedV1 is the default weighted tag/stage/reputation scorer.
const AlgorithmTagBasedV1 = "tag-based-v1"

// Scorer computes a deterministic MatchScore for a mentee/mentor pair.
// Implementations are pure: no side effects, identical inputs yield an
// identical score and breakdown.
type Scorer interface {
	Algorithm() string
	Score(mentee, mentor *domain.User) domain.MatchScore
}

// Config carries the policy inputs for score computation. Zero values are
// replaced with the tag-based-v1 defaults.
type Config struct {
	// Component weights; the maximum attainable total is their sum.
	TagWeight        float64
	StageWeight      float64
	ReputationWeight float64
	// StageProximity maps career-stage distance to credit in [0,1].
	// Index is the distance; distances past the end earn zero.
	StageProximity []float64
	// GapCredit maps absolute tier gap to credit in [0,1]. Must be
	// non-increasing; gaps past the end earn the last entry.
	GapCredit []float64
}

func (c Config) withDefaults() Config {
	if c.TagWeight <= 0 {
		c.TagWeight = 60
	}
	if c.StageWeight <= 0 {
		c.StageWeight = 20
	}
	if c.ReputationWeight <= 0 {
		c.ReputationWeight = 20
	}
	if len(c.StageProximity) == 0 {
		c.StageProximity = []float64{1.0, 0.5, 0.0}
	}
	if len(c.GapCredit) == 0 {
		c.GapCredit = []float64{1.0, 1.0, 0.6, 0.2}
	}
	return c
}

// New returns the scorer registered under the given algorithm version.
func New(algorithm string, cfg Config) (Scorer, error) {
	switch algorithm {
	case AlgorithmTagBasedV1, "":
		return newTagBasedV1(cfg.withDefaults()), nil
	default:
		return nil, fmt.Errorf("unknown scoring algorithm %q", algorithm)
	}
}
