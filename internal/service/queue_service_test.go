package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/mentorship-service/internal/domain"
)

var queueNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type seedItem struct {
	menteeName string
	mentorName string
	menteeTier domain.ReputationTier
	mentorTier domain.ReputationTier
	scoreTotal float64
	age        time.Duration
	ttl        time.Duration
}

func seedQueue(t *testing.T, items ...seedItem) (*QueueService, []string) {
	t.Helper()
	repo := newFakeOverrideRepo()
	ids := make([]string, 0, len(items))
	for i, item := range items {
		ttl := item.ttl
		if ttl == 0 {
			ttl = 72 * time.Hour
		}
		id := fmt.Sprintf("req-%d", i+1)
		menteeID := fmt.Sprintf("mentee-%d", i+1)
		mentorID := fmt.Sprintf("mentor-%d", i+1)
		repo.names[menteeID] = item.menteeName
		repo.names[mentorID] = item.mentorName
		repo.requests[id] = &domain.OverrideRequest{
			ID:             id,
			MenteeID:       menteeID,
			MentorID:       mentorID,
			MenteeTier:     item.menteeTier,
			MentorTier:     item.mentorTier,
			TierDifference: domain.TierDifference(item.mentorTier, item.menteeTier),
			Score:          domain.MatchScore{Total: item.scoreTotal},
			Status:         domain.OverrideStatusPending,
			CreatedAt:      queueNow.Add(-item.age),
			ExpiresAt:      queueNow.Add(-item.age).Add(ttl),
		}
		repo.order = append(repo.order, id)
		ids = append(ids, id)
	}
	return NewQueueService(repo, func() time.Time { return queueNow }), ids
}

func itemIDs(items []domain.QueueItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func TestPendingQueueUnfilteredPreservesCreationOrder(t *testing.T) {
	svc, ids := seedQueue(t,
		seedItem{menteeTier: domain.TierBronze, mentorTier: domain.TierGold, scoreTotal: 50, age: 3 * time.Hour},
		seedItem{menteeTier: domain.TierSilver, mentorTier: domain.TierPlatinum, scoreTotal: 70, age: 2 * time.Hour},
		seedItem{menteeTier: domain.TierBronze, mentorTier: domain.TierPlatinum, scoreTotal: 90, age: 1 * time.Hour},
	)

	result, err := svc.PendingQueue(context.Background(), QueueQuery{Sort: SortOption{Field: SortByMatchScore, Direction: SortAsc}})
	require.NoError(t, err)
	assert.Equal(t, 3, result.FullCount)
	assert.Equal(t, 3, result.FilteredCount)
	assert.Equal(t, 3, result.DisplayedCount)
	assert.Equal(t, EmptyStateNone, result.EmptyState)
	assert.Equal(t, ids, itemIDs(result.Items))
}

func TestPendingQueueExcludesOverdueLazily(t *testing.T) {
	svc, ids := seedQueue(t,
		seedItem{menteeTier: domain.TierBronze, mentorTier: domain.TierGold, age: 80 * time.Hour}, // past 72h ttl
		seedItem{menteeTier: domain.TierBronze, mentorTier: domain.TierGold, age: 2 * time.Hour},
	)

	result, err := svc.PendingQueue(context.Background(), QueueQuery{Sort: DefaultSortOption})
	require.NoError(t, err)
	assert.Equal(t, 1, result.FullCount)
	assert.Equal(t, []string{ids[1]}, itemIDs(result.Items))
}

func TestPendingQueueFiltersByMentorTier(t *testing.T) {
	svc, ids := seedQueue(t,
		seedItem{menteeTier: domain.TierBronze, mentorTier: domain.TierGold, age: 3 * time.Hour},
		seedItem{menteeTier: domain.TierBronze, mentorTier: domain.TierPlatinum, age: 2 * time.Hour},
		seedItem{menteeTier: domain.TierSilver, mentorTier: domain.TierPlatinum, age: 1 * time.Hour},
	)

	result, err := svc.PendingQueue(context.Background(), QueueQuery{
		Filter: FilterCriteria{MentorTiers: []domain.ReputationTier{domain.TierPlatinum}},
		Sort:   DefaultSortOption,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.FullCount)
	assert.Equal(t, 2, result.FilteredCount)
	assert.Equal(t, []string{ids[1], ids[2]}, itemIDs(result.Items))
}

func TestPendingQueueConjunctiveFilterFamilies(t *testing.T) {
	svc, ids := seedQueue(t,
		seedItem{menteeTier: domain.TierBronze, mentorTier: domain.TierPlatinum, scoreTotal: 85, age: 3 * time.Hour}, // diff 3
		seedItem{menteeTier: domain.TierBronze, mentorTier: domain.TierGold, scoreTotal: 85, age: 2 * time.Hour},     // diff 2
		seedItem{menteeTier: domain.TierBronze, mentorTier: domain.TierPlatinum, scoreTotal: 30, age: 1 * time.Hour}, // low score
	)

	result, err := svc.PendingQueue(context.Background(), QueueQuery{
		Filter: FilterCriteria{
			TierDifferences: []int{3},
			ScoreBuckets:    []domain.ScoreBucket{domain.BucketExcellent},
		},
		Sort: DefaultSortOption,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{ids[0]}, itemIDs(result.Items))
}

func TestPendingQueueInvalidFilterValuesWidenToAllSelected(t *testing.T) {
	svc, _ := seedQueue(t,
		seedItem{menteeTier: domain.TierBronze, mentorTier: domain.TierGold, age: time.Hour},
	)

	result, err := svc.PendingQueue(context.Background(), QueueQuery{
		Filter: FilterCriteria{
			MentorTiers:  []domain.ReputationTier{"DIAMOND"},
			ScoreBuckets: []domain.ScoreBucket{"STELLAR"},
		},
		Sort: DefaultSortOption,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.DisplayedCount, "unknown values must not filter everything out")
}

func TestPendingQueueSortFields(t *testing.T) {
	svc, ids := seedQueue(t,
		seedItem{menteeName: "Carol", mentorName: "zed", scoreTotal: 50, menteeTier: domain.TierBronze, mentorTier: domain.TierGold, age: 3 * time.Hour},
		seedItem{menteeName: "alice", mentorName: "Yuri", scoreTotal: 90, menteeTier: domain.TierBronze, mentorTier: domain.TierGold, age: 2 * time.Hour},
		seedItem{menteeName: "Bob", mentorName: "xena", scoreTotal: 70, menteeTier: domain.TierBronze, mentorTier: domain.TierGold, age: 1 * time.Hour},
	)

	cases := []struct {
		name string
		sort SortOption
		want []string
	}{
		{"longest pending first", SortOption{SortByTimePending, SortDesc}, []string{ids[0], ids[1], ids[2]}},
		{"shortest pending first", SortOption{SortByTimePending, SortAsc}, []string{ids[2], ids[1], ids[0]}},
		{"soonest expiration first", SortOption{SortByExpiration, SortAsc}, []string{ids[0], ids[1], ids[2]}},
		{"mentee name a-z case-insensitive", SortOption{SortByMenteeName, SortAsc}, []string{ids[1], ids[2], ids[0]}},
		{"mentor name z-a", SortOption{SortByMentorName, SortDesc}, []string{ids[0], ids[1], ids[2]}},
		{"highest score first", SortOption{SortByMatchScore, SortDesc}, []string{ids[1], ids[2], ids[0]}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := svc.PendingQueue(context.Background(), QueueQuery{Sort: tc.sort})
			require.NoError(t, err)
			assert.Equal(t, tc.want, itemIDs(result.Items))
		})
	}
}

func TestPendingQueueStableSortBreaksTiesByCreation(t *testing.T) {
	svc, ids := seedQueue(t,
		seedItem{scoreTotal: 50, menteeTier: domain.TierBronze, mentorTier: domain.TierGold, age: 3 * time.Hour},
		seedItem{scoreTotal: 50, menteeTier: domain.TierBronze, mentorTier: domain.TierGold, age: 2 * time.Hour},
		seedItem{scoreTotal: 50, menteeTier: domain.TierBronze, mentorTier: domain.TierGold, age: 1 * time.Hour},
	)

	result, err := svc.PendingQueue(context.Background(), QueueQuery{Sort: SortOption{SortByMatchScore, SortDesc}})
	require.NoError(t, err)
	assert.Equal(t, ids, itemIDs(result.Items), "equal scores keep creation order")
}

func TestPendingQueueSubtractsLocallyResolved(t *testing.T) {
	svc, ids := seedQueue(t,
		seedItem{menteeTier: domain.TierBronze, mentorTier: domain.TierGold, age: 2 * time.Hour},
		seedItem{menteeTier: domain.TierBronze, mentorTier: domain.TierGold, age: 1 * time.Hour},
	)

	result, err := svc.PendingQueue(context.Background(), QueueQuery{
		Sort:            DefaultSortOption,
		LocallyResolved: []string{ids[0]},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.FullCount)
	assert.Equal(t, 2, result.FilteredCount)
	assert.Equal(t, 1, result.DisplayedCount)
	assert.Equal(t, []string{ids[1]}, itemIDs(result.Items))
}

func TestPendingQueueEmptyStates(t *testing.T) {
	t.Run("no requests", func(t *testing.T) {
		svc, _ := seedQueue(t)
		result, err := svc.PendingQueue(context.Background(), QueueQuery{Sort: DefaultSortOption})
		require.NoError(t, err)
		assert.Equal(t, EmptyStateNoRequests, result.EmptyState)
	})

	t.Run("all filtered out", func(t *testing.T) {
		svc, _ := seedQueue(t,
			seedItem{menteeTier: domain.TierBronze, mentorTier: domain.TierGold, age: time.Hour},
		)
		result, err := svc.PendingQueue(context.Background(), QueueQuery{
			Filter: FilterCriteria{MentorTiers: []domain.ReputationTier{domain.TierPlatinum}},
			Sort:   DefaultSortOption,
		})
		require.NoError(t, err)
		assert.Equal(t, EmptyStateAllFilteredOut, result.EmptyState)
	})

	t.Run("all locally resolved", func(t *testing.T) {
		svc, ids := seedQueue(t,
			seedItem{menteeTier: domain.TierBronze, mentorTier: domain.TierGold, age: time.Hour},
		)
		result, err := svc.PendingQueue(context.Background(), QueueQuery{
			Sort:            DefaultSortOption,
			LocallyResolved: ids,
		})
		require.NoError(t, err)
		assert.Equal(t, EmptyStateLocallyResolved, result.EmptyState)
	})
}

func TestParseSortOptionSubstitutesDefaults(t *testing.T) {
	assert.Equal(t, DefaultSortOption, ParseSortOption("", ""))
	assert.Equal(t, DefaultSortOption, ParseSortOption("bogus", "sideways"))
	assert.Equal(t, SortOption{SortByMatchScore, SortAsc}, ParseSortOption(" Match_Score ", "ASC"))
	assert.Equal(t, SortOption{SortByExpiration, SortDesc}, ParseSortOption("expiration", "nope"))
}
