package ranking

import (
	"context"
	"testing"
	"time"

	"shopsense/domain"
)

func TestGather_UnionInSourceOrder(t *testing.T) {
	sources := []CandidateSource{
		staticSource("s1", cand("a", "s1", 0.5)),
		staticSource("s2", cand("b", "s2", 0.4), cand("c", "s2", 0.3)),
		staticSource("s3"), // returns nothing
	}

	union, contributed := Gather(context.Background(), domain.RankingContext{}, "test", sources, time.Second)

	if len(union) != 3 {
		t.Fatalf("union size = %d, want 3", len(union))
	}
	// deterministic order: source position, then the source's own order
	for i, want := range []string{"a", "b", "c"} {
		if union[i].Identity != want {
			t.Errorf("union[%d] = %q, want %q", i, union[i].Identity, want)
		}
	}
	if len(contributed) != 2 || contributed[0] != "s1" || contributed[1] != "s2" {
		t.Errorf("contributed = %v, want [s1 s2]", contributed)
	}
}

func TestGather_SlowSourceTimedOut(t *testing.T) {
	slow := SourceFunc{
		StrategyName: "slow",
		Fn: func(ctx context.Context, rctx domain.RankingContext) ([]domain.Candidate, error) {
			select {
			case <-time.After(2 * time.Second):
				return []domain.Candidate{cand("late", "slow", 1)}, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}
	fast := staticSource("fast", cand("a", "fast", 0.5))

	start := time.Now()
	union, contributed := Gather(context.Background(), domain.RankingContext{}, "test",
		[]CandidateSource{slow, fast}, 50*time.Millisecond)
	elapsed := time.Since(start)

	if elapsed > time.Second {
		t.Fatalf("gather did not respect the per-source timeout, took %v", elapsed)
	}
	if len(union) != 1 || union[0].Identity != "a" {
		t.Errorf("expected only the fast source's candidate, got %v", union)
	}
	if len(contributed) != 1 || contributed[0] != "fast" {
		t.Errorf("contributed = %v, want [fast]", contributed)
	}
}

func TestGather_ConcurrentExecution(t *testing.T) {
	// three sources each sleeping 50ms: serial would be 150ms+
	mk := func(name string) CandidateSource {
		return SourceFunc{
			StrategyName: name,
			Fn: func(ctx context.Context, rctx domain.RankingContext) ([]domain.Candidate, error) {
				time.Sleep(50 * time.Millisecond)
				return []domain.Candidate{cand(name, name, 0.5)}, nil
			},
		}
	}

	start := time.Now()
	union, _ := Gather(context.Background(), domain.RankingContext{}, "test",
		[]CandidateSource{mk("s1"), mk("s2"), mk("s3")}, time.Second)
	elapsed := time.Since(start)

	if len(union) != 3 {
		t.Fatalf("union size = %d, want 3", len(union))
	}
	if elapsed > 140*time.Millisecond {
		t.Errorf("sources appear to run serially: %v", elapsed)
	}
}

func TestGather_NoSources(t *testing.T) {
	union, contributed := Gather(context.Background(), domain.RankingContext{}, "test", nil, time.Second)
	if union != nil || contributed != nil {
		t.Errorf("expected nil results for no sources, got %v, %v", union, contributed)
	}
}
