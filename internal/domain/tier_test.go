package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierDifferenceAntisymmetry(t *testing.T) {
	for _, a := range AllTiers {
		for _, b := range AllTiers {
			assert.Equal(t, TierDifference(a, b), -TierDifference(b, a),
				"TierDifference(%s,%s) must negate under swap", a, b)
		}
	}
}

func TestTierDifferenceSign(t *testing.T) {
	assert.Equal(t, 3, TierDifference(TierPlatinum, TierBronze))
	assert.Equal(t, -3, TierDifference(TierBronze, TierPlatinum))
	assert.Equal(t, 0, TierDifference(TierGold, TierGold))
}

func TestTierOrdinalsAscending(t *testing.T) {
	prev := 0
	for _, tier := range AllTiers {
		require.True(t, tier.IsValid())
		require.Greater(t, tier.Value(), prev, "tiers must be strictly ordered")
		prev = tier.Value()
	}
	assert.Equal(t, 0, ReputationTier("DIAMOND").Value())
	assert.False(t, ReputationTier("DIAMOND").IsValid())
}

func TestStageDistance(t *testing.T) {
	assert.Equal(t, 0, StageDistance(StageMidCareer, StageMidCareer))
	assert.Equal(t, 4, StageDistance(StageStudent, StageExecutive))
	assert.Equal(t, StageDistance(StageSenior, StageEarlyCareer), StageDistance(StageEarlyCareer, StageSenior))
}

func TestScoreBucketBoundaries(t *testing.T) {
	cases := []struct {
		total  float64
		bucket ScoreBucket
	}{
		{0, BucketLow},
		{39.9, BucketLow},
		{40, BucketFair},
		{59.9, BucketFair},
		{60, BucketGood},
		{79.9, BucketGood},
		{80, BucketExcellent},
		{100, BucketExcellent},
	}
	for _, tc := range cases {
		score := MatchScore{Total: tc.total}
		assert.Equal(t, tc.bucket, score.Bucket(), "total=%v", tc.total)
	}
}
