package ranking

import (
	"math"
	"sort"
	"unicode/utf8"

	"shopsense/domain"
)

// PolicyConfig tunes the secondary scoring adjustments applied on top of
// the fused composite score.
type PolicyConfig struct {
	// Margin boost multiplies the composite score when the item's
	// margin percentage exceeds the threshold. Applied before the
	// additive terms. The mixed multiplicative/additive shape is
	// intentional and must not be normalized without product review.
	MarginBoostThresholdPct float64
	MarginBoostFactor       float64

	// Context bonus added when the candidate's recorded context equals
	// the request's context tag.
	ContextBonus float64

	// Frequency boost is min(log(occurrences+1)/10, cap).
	FrequencyBoostCap float64

	// Flat penalty for text candidates longer than the ceiling.
	LengthPenalty        float64
	LengthPenaltyCeiling int
}

func DefaultPolicy() PolicyConfig {
	return PolicyConfig{
		MarginBoostThresholdPct: 25,
		MarginBoostFactor:       1.1,
		ContextBonus:            0.1,
		FrequencyBoostCap:       0.3,
		LengthPenalty:           0.1,
		LengthPenaltyCeiling:    50,
	}
}

// Rank computes finalScore for every candidate and returns them sorted
// descending. The sort is stable: equal scores keep the first-seen order
// fusion produced. Truncation to the requested count is the caller's
// job and happens after ranking, never before.
func Rank(cands []domain.Candidate, rctx domain.RankingContext, p PolicyConfig) []domain.Candidate {
	for i := range cands {
		cands[i].FinalScore = finalScore(&cands[i], rctx, p)
	}

	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].FinalScore > cands[j].FinalScore
	})

	return cands
}

func finalScore(c *domain.Candidate, rctx domain.RankingContext, p PolicyConfig) float64 {
	base := c.CompositeScore

	if c.Attributes.MarginPct != nil && *c.Attributes.MarginPct > p.MarginBoostThresholdPct {
		base *= p.MarginBoostFactor
	}

	boost := frequencyBoost(c.Attributes.Occurrences, p.FrequencyBoostCap)

	if rctx.ContextTag != "" && c.Attributes.ContextTag != "" &&
		NormalizeIdentity(c.Attributes.ContextTag) == NormalizeIdentity(rctx.ContextTag) {
		boost += p.ContextBonus
	}

	penalty := 0.0
	if p.LengthPenaltyCeiling > 0 && displayLength(c) > p.LengthPenaltyCeiling {
		penalty = p.LengthPenalty
	}

	return base + boost - penalty
}

func frequencyBoost(occurrences int, ceiling float64) float64 {
	if occurrences <= 0 {
		return 0
	}
	boost := math.Log(float64(occurrences)+1) / 10
	if boost > ceiling {
		return ceiling
	}
	return boost
}

// displayLength is the rune count of whatever the item renders as: the
// suggestion text for search features, the product name otherwise.
func displayLength(c *domain.Candidate) int {
	if c.Attributes.Text != "" {
		return utf8.RuneCountInString(c.Attributes.Text)
	}
	if c.Attributes.Name != "" {
		return utf8.RuneCountInString(c.Attributes.Name)
	}
	return utf8.RuneCountInString(c.Identity)
}
