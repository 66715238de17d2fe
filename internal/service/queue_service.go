package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/spec-kit/mentorship-service/internal/domain"
	"github.com/spec-kit/mentorship-service/internal/repository"
	apperrors "github.com/spec-kit/mentorship-service/pkg/util/errorutil"
)

// FilterCriteria narrows the coordinator queue. Each family is a set of
// accepted values; a family with every value selected imposes no
// constraint. Empty or malformed families are normalized to all-selected
// rather than filtering to nothing.
type FilterCriteria struct {
	MentorTiers     []domain.ReputationTier
	MenteeTiers     []domain.ReputationTier
	TierDifferences []int
	ScoreBuckets    []domain.ScoreBucket
}

// SortField enumerates the queue sort keys.
type SortField string

const (
	SortByTimePending SortField = "time_pending"
	SortByExpiration  SortField = "expiration"
	SortByMenteeName  SortField = "mentee_name"
	SortByMentorName  SortField = "mentor_name"
	SortByMatchScore  SortField = "match_score"
)

// SortDirection orders a sort field ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortOption pairs a field with a direction; ten combinations total.
type SortOption struct {
	Field     SortField
	Direction SortDirection
}

// DefaultSortOption shows the longest-pending requests first.
var DefaultSortOption = SortOption{Field: SortByTimePending, Direction: SortDesc}

// ParseSortOption maps raw query input to a SortOption, substituting the
// default for unknown values instead of failing.
func ParseSortOption(field, direction string) SortOption {
	opt := DefaultSortOption
	switch SortField(strings.ToLower(strings.TrimSpace(field))) {
	case SortByTimePending, SortByExpiration, SortByMenteeName, SortByMentorName, SortByMatchScore:
		opt.Field = SortField(strings.ToLower(strings.TrimSpace(field)))
	}
	switch SortDirection(strings.ToLower(strings.TrimSpace(direction))) {
	case SortAsc, SortDesc:
		opt.Direction = SortDirection(strings.ToLower(strings.TrimSpace(direction)))
	}
	return opt
}

// EmptyState classifies why a queue render has nothing to show.
type EmptyState string

const (
	EmptyStateNone            EmptyState = "NONE"
	EmptyStateNoRequests      EmptyState = "NO_REQUESTS"
	EmptyStateAllFilteredOut  EmptyState = "ALL_FILTERED_OUT"
	EmptyStateLocallyResolved EmptyState = "ALL_LOCALLY_RESOLVED"
)

// QueueQuery is one coordinator view request.
type QueueQuery struct {
	Filter FilterCriteria
	Sort   SortOption
	// LocallyResolved holds ids the client has optimistically removed
	// pending server confirmation; they are subtracted from display only
	// and rebuilt from authoritative state on the next fetch.
	LocallyResolved []string
}

// QueueResult is the ordered, filtered queue plus the counts the client
// needs to classify an empty render.
type QueueResult struct {
	Items          []domain.QueueItem
	FullCount      int
	FilteredCount  int
	DisplayedCount int
	EmptyState     EmptyState
}

// QueueService shapes the pending override set for coordinators. The
// repository supplies authoritative pending rows in creation order; all
// filtering, sorting, and overlay subtraction happens here, purely.
type QueueService struct {
	overrides repository.OverrideRequestRepository
	now       func() time.Time
}

// NewQueueService constructs the service.
func NewQueueService(overrides repository.OverrideRequestRepository, clock func() time.Time) *QueueService {
	if clock == nil {
		clock = time.Now
	}
	return &QueueService{overrides: overrides, now: clock}
}

// PendingQueue returns the coordinator's view of pending requests.
// Requests past their expiration are excluded lazily, without waiting for
// the sweep to make the expiration durable.
func (s *QueueService) PendingQueue(ctx context.Context, query QueueQuery) (*QueueResult, error) {
	items, err := s.overrides.ListPending(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	now := s.now()
	alive := items[:0:0]
	for _, item := range items {
		if item.IsOverdue(now) {
			continue
		}
		alive = append(alive, item)
	}

	criteria := NormalizeFilter(query.Filter)
	filtered := ApplyFilter(alive, criteria)

	resolved := make(map[string]struct{}, len(query.LocallyResolved))
	for _, id := range query.LocallyResolved {
		resolved[id] = struct{}{}
	}
	displayed := make([]domain.QueueItem, 0, len(filtered))
	for _, item := range filtered {
		if _, ok := resolved[item.ID]; ok {
			continue
		}
		displayed = append(displayed, item)
	}

	SortItems(displayed, query.Sort)

	return &QueueResult{
		Items:          displayed,
		FullCount:      len(alive),
		FilteredCount:  len(filtered),
		DisplayedCount: len(displayed),
		EmptyState:     ClassifyEmptyState(len(alive), len(filtered), len(displayed)),
	}, nil
}

// NormalizeFilter drops unknown values and widens empty families to
// all-selected, so "no filter applied" and "filtered to nothing" stay
// distinguishable.
func NormalizeFilter(criteria FilterCriteria) FilterCriteria {
	mentorTiers := validTiers(criteria.MentorTiers)
	if len(mentorTiers) == 0 {
		mentorTiers = append([]domain.ReputationTier(nil), domain.AllTiers...)
	}
	menteeTiers := validTiers(criteria.MenteeTiers)
	if len(menteeTiers) == 0 {
		menteeTiers = append([]domain.ReputationTier(nil), domain.AllTiers...)
	}

	diffs := make([]int, 0, len(criteria.TierDifferences))
	for _, d := range criteria.TierDifferences {
		if d >= 0 {
			diffs = append(diffs, d)
		}
	}

	buckets := make([]domain.ScoreBucket, 0, len(criteria.ScoreBuckets))
	for _, b := range criteria.ScoreBuckets {
		if b.IsValid() {
			buckets = append(buckets, b)
		}
	}
	if len(buckets) == 0 {
		buckets = append([]domain.ScoreBucket(nil), domain.AllScoreBuckets...)
	}

	return FilterCriteria{
		MentorTiers:     mentorTiers,
		MenteeTiers:     menteeTiers,
		TierDifferences: diffs,
		ScoreBuckets:    buckets,
	}
}

// ApplyFilter keeps items matching every criterion family conjunctively.
// The input order (creation order) is preserved.
func ApplyFilter(items []domain.QueueItem, criteria FilterCriteria) []domain.QueueItem {
	mentorTiers := tierSet(criteria.MentorTiers)
	menteeTiers := tierSet(criteria.MenteeTiers)
	diffs := intSet(criteria.TierDifferences)
	buckets := bucketSet(criteria.ScoreBuckets)

	result := make([]domain.QueueItem, 0, len(items))
	for _, item := range items {
		if _, ok := mentorTiers[item.MentorTier]; !ok {
			continue
		}
		if _, ok := menteeTiers[item.MenteeTier]; !ok {
			continue
		}
		if len(diffs) > 0 {
			if _, ok := diffs[item.TierDifference]; !ok {
				continue
			}
		}
		if _, ok := buckets[item.Score.Bucket()]; !ok {
			continue
		}
		result = append(result, item)
	}
	return result
}

// SortItems orders the slice by the chosen key. The sort is stable and
// the input arrives in creation order, so ties keep creation order.
func SortItems(items []domain.QueueItem, opt SortOption) {
	less := lessFunc(opt.Field)
	if opt.Direction == SortDesc {
		inner := less
		less = func(a, b *domain.QueueItem) bool { return inner(b, a) }
	}
	sort.SliceStable(items, func(i, j int) bool {
		return less(&items[i], &items[j])
	})
}

// ClassifyEmptyState distinguishes the three reasons a queue can render
// empty, from counts alone.
func ClassifyEmptyState(fullCount, filteredCount, displayedCount int) EmptyState {
	switch {
	case displayedCount > 0:
		return EmptyStateNone
	case fullCount == 0:
		return EmptyStateNoRequests
	case filteredCount == 0:
		return EmptyStateAllFilteredOut
	default:
		return EmptyStateLocallyResolved
	}
}

func lessFunc(field SortField) func(a, b *domain.QueueItem) bool {
	switch field {
	case SortByExpiration:
		return func(a, b *domain.QueueItem) bool { return a.ExpiresAt.Before(b.ExpiresAt) }
	case SortByMenteeName:
		return func(a, b *domain.QueueItem) bool {
			return strings.ToLower(a.MenteeName) < strings.ToLower(b.MenteeName)
		}
	case SortByMentorName:
		return func(a, b *domain.QueueItem) bool {
			return strings.ToLower(a.MentorName) < strings.ToLower(b.MentorName)
		}
	case SortByMatchScore:
		return func(a, b *domain.QueueItem) bool { return a.Score.Total < b.Score.Total }
	default:
		// time_pending ascending = least time in queue first = newest first
		return func(a, b *domain.QueueItem) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
}

func validTiers(tiers []domain.ReputationTier) []domain.ReputationTier {
	result := make([]domain.ReputationTier, 0, len(tiers))
	for _, tier := range tiers {
		if tier.IsValid() {
			result = append(result, tier)
		}
	}
	return result
}

func tierSet(tiers []domain.ReputationTier) map[domain.ReputationTier]struct{} {
	set := make(map[domain.ReputationTier]struct{}, len(tiers))
	for _, tier := range tiers {
		set[tier] = struct{}{}
	}
	return set
}

func intSet(values []int) map[int]struct{} {
	set := make(map[int]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func bucketSet(buckets []domain.ScoreBucket) map[domain.ScoreBucket]struct{} {
	set := make(map[domain.ScoreBucket]struct{}, len(buckets))
	for _, b := range buckets {
		set[b] = struct{}{}
	}
	return set
}
