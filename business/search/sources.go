package search

import (
	"context"
	"fmt"

	"shopsense/business/ranking"
	"shopsense/domain"
)

// Strategy names shared between the search engines and their configs.
const (
	StrategyExact    = "exact_match"
	StrategyPrefix   = "prefix_match"
	StrategyFuzzy    = "fuzzy_match"
	StrategySemantic = "semantic_match"
)

// SearchTermRepository retrieves dictionary terms (product names,
// categories, historical queries). Prefix lookups run in SQL; the fuzzy
// and semantic strategies scan an in-memory slice.
type SearchTermRepository interface {
	FindByPrefix(ctx context.Context, prefix string, limit int) ([]domain.SearchTerm, error)
	FindAll(ctx context.Context, limit int) ([]domain.SearchTerm, error)
}

const scanLimit = 2000

func termCandidate(term domain.SearchTerm, strategy string, score float64, reason string) domain.Candidate {
	c := domain.Candidate{
		Identity: Normalize(term.Term),
		Attributes: domain.CandidateAttributes{
			Text:        term.Term,
			Category:    term.Kind,
			ContextTag:  term.ContextTag,
			Occurrences: term.UseCount,
		},
	}
	c.AddScore(strategy, score)
	c.AddReason(reason)
	return c
}

// ExactMatchSource surfaces dictionary terms equal to the query.
type ExactMatchSource struct {
	Repo SearchTermRepository
}

func (s *ExactMatchSource) Name() string { return StrategyExact }

func (s *ExactMatchSource) Find(ctx context.Context, rctx domain.RankingContext) ([]domain.Candidate, error) {
	query := Normalize(rctx.Query)
	if query == "" {
		return nil, nil
	}

	terms, err := s.Repo.FindByPrefix(ctx, query, rctx.Limit*3)
	if err != nil {
		return nil, fmt.Errorf("exact match lookup: %w", err)
	}

	var out []domain.Candidate
	for _, t := range terms {
		if Normalize(t.Term) != query {
			continue
		}
		out = append(out, termCandidate(t, StrategyExact, 1.0, "exact match"))
	}
	return out, nil
}

// PrefixSource surfaces dictionary terms starting with the query,
// scored by popularity.
type PrefixSource struct {
	Repo SearchTermRepository
}

func (s *PrefixSource) Name() string { return StrategyPrefix }

func (s *PrefixSource) Find(ctx context.Context, rctx domain.RankingContext) ([]domain.Candidate, error) {
	query := Normalize(rctx.Query)
	if query == "" {
		return nil, nil
	}

	terms, err := s.Repo.FindByPrefix(ctx, query, rctx.Limit*3)
	if err != nil {
		return nil, fmt.Errorf("prefix lookup: %w", err)
	}

	out := make([]domain.Candidate, 0, len(terms))
	for _, t := range terms {
		score := t.Score
		if score <= 0 {
			score = 0.5
		}
		out = append(out, termCandidate(t, StrategyPrefix, score,
			fmt.Sprintf("completes %q", rctx.Query)))
	}
	return out, nil
}

// FuzzySource surfaces near-miss terms by edit distance, for typo
// tolerance and spell correction.
type FuzzySource struct {
	Repo SearchTermRepository

	// MinSimilarity rejects matches below the threshold; 0 means the
	// default of 0.7.
	MinSimilarity float64
}

func (s *FuzzySource) Name() string { return StrategyFuzzy }

func (s *FuzzySource) Find(ctx context.Context, rctx domain.RankingContext) ([]domain.Candidate, error) {
	query := Normalize(rctx.Query)
	if query == "" {
		return nil, nil
	}

	threshold := s.MinSimilarity
	if threshold <= 0 {
		threshold = 0.7
	}

	terms, err := s.Repo.FindAll(ctx, scanLimit)
	if err != nil {
		return nil, fmt.Errorf("fuzzy scan: %w", err)
	}

	var out []domain.Candidate
	for _, t := range terms {
		normalized := Normalize(t.Term)
		if normalized == query {
			continue // exact matches belong to the exact strategy
		}
		sim := Similarity(query, normalized)
		if sim < threshold {
			continue
		}
		out = append(out, termCandidate(t, StrategyFuzzy, sim,
			fmt.Sprintf("similar to %q", rctx.Query)))
	}
	return out, nil
}

// SemanticSource surfaces terms sharing word tokens with the query
// (multi-word queries matching in any order). With IncludeIntent set it
// also admits category terms that overlap, widening the match to what
// the buyer is shopping for rather than the literal string.
type SemanticSource struct {
	Repo SearchTermRepository
}

func (s *SemanticSource) Name() string { return StrategySemantic }

func (s *SemanticSource) Find(ctx context.Context, rctx domain.RankingContext) ([]domain.Candidate, error) {
	queryTokens := Tokenize(rctx.Query)
	if len(queryTokens) == 0 {
		return nil, nil
	}

	terms, err := s.Repo.FindAll(ctx, scanLimit)
	if err != nil {
		return nil, fmt.Errorf("semantic scan: %w", err)
	}

	var out []domain.Candidate
	for _, t := range terms {
		if t.Kind == "category" && !rctx.IncludeIntent {
			continue
		}
		overlap := TokenOverlap(queryTokens, Tokenize(t.Term))
		if overlap <= 0 {
			continue
		}
		reason := fmt.Sprintf("shares terms with %q", rctx.Query)
		if t.Kind == "category" {
			reason = fmt.Sprintf("category related to %q", rctx.Query)
		}
		out = append(out, termCandidate(t, StrategySemantic, overlap, reason))
	}
	return out, nil
}

// static interface checks
var (
	_ ranking.CandidateSource = (*ExactMatchSource)(nil)
	_ ranking.CandidateSource = (*PrefixSource)(nil)
	_ ranking.CandidateSource = (*FuzzySource)(nil)
	_ ranking.CandidateSource = (*SemanticSource)(nil)
)
