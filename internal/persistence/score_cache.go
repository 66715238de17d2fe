package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/mentorship-service/internal/domain"
)

// MatchScoreCache caches computed match scores in Redis. Scores are
// deterministic per algorithm version, so algorithm+pair is a safe key.
// Misses and transport errors are indistinguishable to callers; the cache
// only ever saves recomputation.
type MatchScoreCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMatchScoreCache builds the cache; a nil client disables it.
func NewMatchScoreCache(r *Redis, ttl time.Duration) *MatchScoreCache {
	if r == nil || r.Client == nil {
		return &MatchScoreCache{}
	}
	return &MatchScoreCache{client: r.Client, ttl: ttl}
}

// Get returns the cached score for the pair, or false on miss.
func (c *MatchScoreCache) Get(ctx context.Context, algorithm, menteeID, mentorID string) (*domain.MatchScore, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, scoreKey(algorithm, menteeID, mentorID)).Bytes()
	if err != nil {
		// redis.Nil and transport errors alike are treated as a miss.
		return nil, false
	}
	var score domain.MatchScore
	if err := json.Unmarshal(raw, &score); err != nil {
		return nil, false
	}
	return &score, true
}

// Set stores the score for the pair; failures are swallowed.
func (c *MatchScoreCache) Set(ctx context.Context, menteeID, mentorID string, score domain.MatchScore) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(score)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, scoreKey(score.Algorithm, menteeID, mentorID), raw, c.ttl).Err()
}

func scoreKey(algorithm, menteeID, mentorID string) string {
	return fmt.Sprintf("matchscore:%s:%s:%s", algorithm, menteeID, mentorID)
}
