package domain

// MatchScore is the composite 0-100 compatibility score for a
// mentee/mentor pair, with its weighted component breakdown. Derived on
// demand and never mutated; identical inputs always yield identical scores.
type MatchScore struct {
	Algorithm        string  `json:"algorithm"`
	Total            float64 `json:"total"`
	TagOverlap       float64 `json:"tag_overlap"`
	StageMatch       float64 `json:"stage_match"`
	ReputationCompat float64 `json:"reputation_compat"`
}

// ScoreBucket labels a quartile-style score range used by coordinator filters.
type ScoreBucket string

const (
	BucketLow       ScoreBucket = "LOW"       // total < 40
	BucketFair      ScoreBucket = "FAIR"      // 40 <= total < 60
	BucketGood      ScoreBucket = "GOOD"      // 60 <= total < 80
	BucketExcellent ScoreBucket = "EXCELLENT" // total >= 80
)

// AllScoreBuckets lists buckets in ascending order.
var AllScoreBuckets = []ScoreBucket{BucketLow, BucketFair, BucketGood, BucketExcellent}

// IsValid reports whether the bucket is a known label.
func (b ScoreBucket) IsValid() bool {
	switch b {
	case BucketLow, BucketFair, BucketGood, BucketExcellent:
		return true
	}
	return false
}

// Bucket classifies the total score into its filter bucket.
func (m MatchScore) Bucket() ScoreBucket {
	switch {
	case m.Total >= 80:
		return BucketExcellent
	case m.Total >= 60:
		return BucketGood
	case m.Total >= 40:
		return BucketFair
	default:
		return BucketLow
	}
}
