package ranking

import (
	"context"
	"sync"
	"time"

	"shopsense/domain"
	"shopsense/pkg/logger"
)

// Gather calls every source independently and returns the unordered
// union of their candidate lists plus the names of the strategies that
// actually contributed at least one candidate.
//
// Sources run concurrently, each under its own timeout. A failed or slow
// source degrades result quality (one fewer strategy contributes), never
// the request: its error is logged and counted, and the pipeline
// continues with what the other sources returned.
func Gather(
	ctx context.Context,
	rctx domain.RankingContext,
	feature string,
	sources []CandidateSource,
	timeout time.Duration,
) ([]domain.Candidate, []string) {

	if len(sources) == 0 {
		return nil, nil
	}

	// results indexed by source position so the union order is
	// deterministic regardless of goroutine completion order
	results := make([][]domain.Candidate, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src CandidateSource) {
			defer wg.Done()

			sctx := ctx
			var cancel context.CancelFunc
			if timeout > 0 {
				sctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			cands, err := src.Find(sctx, rctx)
			if err != nil {
				logger.Warn("suggest_source_failed",
					"trace_id", TraceIDFromContext(ctx),
					"feature", feature,
					"strategy", src.Name(),
					"error", err,
				)
				SuggestSourceFailuresTotal.WithLabelValues(feature, src.Name()).Inc()
				return
			}

			results[i] = cands
		}(i, src)
	}
	wg.Wait()

	var union []domain.Candidate
	var contributed []string
	for i, src := range sources {
		if len(results[i]) == 0 {
			continue
		}
		union = append(union, results[i]...)
		contributed = append(contributed, src.Name())
	}

	SuggestCandidatesGathered.WithLabelValues(feature).Observe(float64(len(union)))

	return union, contributed
}
