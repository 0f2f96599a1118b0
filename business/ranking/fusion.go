package ranking

import (
	"strings"

	"shopsense/domain"
)

// NormalizeIdentity lowers and trims an identity so text candidates
// dedupe case-insensitively.
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

// Fuse groups candidates by normalized identity and computes one
// composite score per group:
//
//	compositeScore = Σ strategyScore_i × weight_i
//
// over every strategy that surfaced the identity. Strategies that did
// not surface it contribute 0, not a penalty, so two weak consensus
// strategies can outrank one strong outlier. Fusion and deduplication
// are one pass: the output has exactly one entry per identity, in
// first-seen order.
//
// Attribute merge is first-seen-wins, except reasons, which concatenate
// across contributing strategies. If the same strategy surfaces the
// same identity twice, the higher raw score wins (no double counting).
func Fuse(cands []domain.Candidate, weights map[string]float64) []domain.Candidate {
	if len(cands) == 0 {
		return nil
	}

	byIdentity := make(map[string]*domain.Candidate, len(cands))
	order := make([]string, 0, len(cands))

	for i := range cands {
		c := cands[i]
		key := NormalizeIdentity(c.Identity)
		if key == "" {
			continue
		}

		agg, seen := byIdentity[key]
		if !seen {
			merged := domain.Candidate{
				Identity:       c.Identity,
				StrategyScores: make(map[string]float64, len(c.StrategyScores)),
				Attributes:     c.Attributes,
			}
			for s, v := range c.StrategyScores {
				merged.StrategyScores[s] = v
			}
			for _, r := range c.Reasons {
				merged.AddReason(r)
			}
			byIdentity[key] = &merged
			order = append(order, key)
			continue
		}

		for s, v := range c.StrategyScores {
			if prev, ok := agg.StrategyScores[s]; !ok || v > prev {
				agg.StrategyScores[s] = v
			}
		}
		for _, r := range c.Reasons {
			agg.AddReason(r)
		}
	}

	out := make([]domain.Candidate, 0, len(order))
	for _, key := range order {
		agg := byIdentity[key]

		composite := 0.0
		for s, v := range agg.StrategyScores {
			composite += v * weights[s]
		}
		agg.CompositeScore = composite

		out = append(out, *agg)
	}

	return out
}

// WeightsFor flattens the enabled strategies into a name -> weight map.
// Disabled strategies get no entry, so their scores fuse to zero.
func WeightsFor(strategies []domain.StrategyConfig) map[string]float64 {
	weights := make(map[string]float64, len(strategies))
	for _, s := range strategies {
		if !s.Enabled || s.Weight < 0 {
			continue
		}
		weights[s.Name] = s.Weight
	}
	return weights
}
