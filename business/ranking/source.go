package ranking

import (
	"context"

	"shopsense/domain"
)

// CandidateSource is one candidate-generation strategy. Implementations
// own their data retrieval entirely; the engine only sees the interface.
// Every returned candidate must carry the source's raw score under the
// source's Name in StrategyScores.
type CandidateSource interface {
	Name() string
	Find(ctx context.Context, rctx domain.RankingContext) ([]domain.Candidate, error)
}

// SourceFunc adapts a plain function into a CandidateSource.
type SourceFunc struct {
	StrategyName string
	Fn           func(ctx context.Context, rctx domain.RankingContext) ([]domain.Candidate, error)
}

func (s SourceFunc) Name() string {
	return s.StrategyName
}

func (s SourceFunc) Find(ctx context.Context, rctx domain.RankingContext) ([]domain.Candidate, error) {
	return s.Fn(ctx, rctx)
}
