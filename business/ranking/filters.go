package ranking

import (
	"shopsense/domain"
)

// Predicate decides whether a candidate survives filtering. Returning
// true keeps the candidate. Predicates are independent of each other;
// their order only matters for short-circuit efficiency.
//
// Policy: a predicate that cannot evaluate because the candidate is
// missing the attribute it needs must fail open (keep), so incomplete
// data degrades filtering instead of silently starving results.
type Predicate func(c domain.Candidate, rctx domain.RankingContext) bool

// ApplyFilters runs the pipeline, dropping candidates that fail any
// predicate.
func ApplyFilters(cands []domain.Candidate, rctx domain.RankingContext, preds []Predicate) []domain.Candidate {
	if len(preds) == 0 {
		return cands
	}

	out := cands[:0:0]
	for _, c := range cands {
		keep := true
		for _, p := range preds {
			if !p(c, rctx) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, c)
		}
	}
	return out
}

// EligibilityFilter drops items restricted to tiers or industries the
// caller does not belong to. Unrestricted items and unknown caller
// segments pass.
func EligibilityFilter(c domain.Candidate, rctx domain.RankingContext) bool {
	if len(c.Attributes.Tiers) > 0 && rctx.Tier != "" {
		if !containsFold(c.Attributes.Tiers, rctx.Tier) {
			return false
		}
	}
	if len(c.Attributes.Industries) > 0 && rctx.Industry != "" {
		if !containsFold(c.Attributes.Industries, rctx.Industry) {
			return false
		}
	}
	return true
}

// StockFilter drops unavailable items unless the request asked for them.
// Unknown availability passes.
func StockFilter(c domain.Candidate, rctx domain.RankingContext) bool {
	if rctx.IncludeOutOfStock {
		return true
	}
	if c.Attributes.InStock == nil {
		return true
	}
	return *c.Attributes.InStock
}

// PriceRangeFilter drops items whose effective price falls outside the
// request's explicit bounds. Items without a price pass.
func PriceRangeFilter(c domain.Candidate, rctx domain.RankingContext) bool {
	if c.Attributes.Price == nil {
		return true
	}
	price := *c.Attributes.Price
	if rctx.PriceMin != nil && price < *rctx.PriceMin {
		return false
	}
	if rctx.PriceMax != nil && price > *rctx.PriceMax {
		return false
	}
	return true
}

// ContextFilter hard-restricts candidates to the request's context tag.
// Installed only on recommendation features; for search suggestions the
// context match is a scoring bonus instead (see the ranking policy).
func ContextFilter(c domain.Candidate, rctx domain.RankingContext) bool {
	if rctx.ContextTag == "" {
		return true
	}
	if c.Attributes.ContextTag == "" {
		return true
	}
	return NormalizeIdentity(c.Attributes.ContextTag) == NormalizeIdentity(rctx.ContextTag)
}

func containsFold(list []string, want string) bool {
	for _, v := range list {
		if NormalizeIdentity(v) == NormalizeIdentity(want) {
			return true
		}
	}
	return false
}
