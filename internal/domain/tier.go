package domain

// ReputationTier enumerates mentor/mentee reputation levels.
type ReputationTier string

const (
	TierBronze   ReputationTier = "BRONZE"
	TierSilver   ReputationTier = "SILVER"
	TierGold     ReputationTier = "GOLD"
	TierPlatinum ReputationTier = "PLATINUM"
)

// AllTiers lists tiers in ascending order.
var AllTiers = []ReputationTier{TierBronze, TierSilver, TierGold, TierPlatinum}

var tierValues = map[ReputationTier]int{
	TierBronze:   1,
	TierSilver:   2,
	TierGold:     3,
	TierPlatinum: 4,
}

// Value maps a tier to its ordinal (bronze=1 .. platinum=4). Unknown tiers map to 0.
func (t ReputationTier) Value() int {
	return tierValues[t]
}

// IsValid reports whether the tier is one of the known constants.
func (t ReputationTier) IsValid() bool {
	_, ok := tierValues[t]
	return ok
}

// TierDifference returns mentor ordinal minus mentee ordinal.
// Negative when the mentor sits below the mentee; only positive gaps can trip the override threshold.
func TierDifference(mentorTier, menteeTier ReputationTier) int {
	return mentorTier.Value() - menteeTier.Value()
}

// CareerStage enumerates career progression categories, ordered.
type CareerStage string

const (
	StageStudent     CareerStage = "STUDENT"
	StageEarlyCareer CareerStage = "EARLY_CAREER"
	StageMidCareer   CareerStage = "MID_CAREER"
	StageSenior      CareerStage = "SENIOR"
	StageExecutive   CareerStage = "EXECUTIVE"
)

var stageValues = map[CareerStage]int{
	StageStudent:     1,
	StageEarlyCareer: 2,
	StageMidCareer:   3,
	StageSenior:      4,
	StageExecutive:   5,
}

// Value maps a stage to its ordinal. Unknown stages map to 0.
func (s CareerStage) Value() int {
	return stageValues[s]
}

// IsValid reports whether the stage is one of the known constants.
func (s CareerStage) IsValid() bool {
	_, ok := stageValues[s]
	return ok
}

// StageDistance returns the absolute ordinal distance between two stages.
func StageDistance(a, b CareerStage) int {
	d := a.Value() - b.Value()
	if d < 0 {
		return -d
	}
	return d
}
