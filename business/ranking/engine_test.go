package ranking

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"shopsense/domain"
)

func staticSource(name string, cands ...domain.Candidate) CandidateSource {
	return SourceFunc{
		StrategyName: name,
		Fn: func(ctx context.Context, rctx domain.RankingContext) ([]domain.Candidate, error) {
			return cands, nil
		},
	}
}

func failingSource(name string) CandidateSource {
	return SourceFunc{
		StrategyName: name,
		Fn: func(ctx context.Context, rctx domain.RankingContext) ([]domain.Candidate, error) {
			return nil, errors.New("backend unavailable")
		},
	}
}

func testEngine(cache ResultCache, sources ...CandidateSource) *Engine {
	strategies := make([]domain.StrategyConfig, 0, len(sources))
	for _, s := range sources {
		strategies = append(strategies, domain.StrategyConfig{Name: s.Name(), Weight: 1, Enabled: true})
	}
	return NewEngine(Options{
		Feature:    "test_feature",
		TTL:        5 * time.Minute,
		MaxLimit:   25,
		Strategies: strategies,
		Policy:     DefaultPolicy(),
	}, sources, cache)
}

func TestEngine_TruncationAfterRanking(t *testing.T) {
	// five candidates, limit 2: result must be exactly the global top-2
	src := staticSource("s1",
		cand("a", "s1", 0.1),
		cand("b", "s1", 0.9),
		cand("c", "s1", 0.5),
		cand("d", "s1", 0.7),
		cand("e", "s1", 0.3),
	)
	e := testEngine(nil, src)

	result, cached, err := e.Suggest(context.Background(), domain.RankingContext{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if cached {
		t.Error("cacheless engine reported a hit")
	}
	if result.TotalFound != 5 {
		t.Errorf("totalFound = %d, want 5 (full filtered set)", result.TotalFound)
	}
	if len(result.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(result.Items))
	}
	if result.Items[0].Identity != "b" || result.Items[1].Identity != "d" {
		t.Errorf("top-2 = %q, %q; want b, d", result.Items[0].Identity, result.Items[1].Identity)
	}
}

func TestEngine_SpecExampleScenario(t *testing.T) {
	// spec ordering scenario: weights s1=0.6 s2=0.4 -> B, A, C; limit 2 -> [B, A]
	e := NewEngine(Options{
		Feature: "example",
		Strategies: []domain.StrategyConfig{
			{Name: "strategy1", Weight: 0.6, Enabled: true},
			{Name: "strategy2", Weight: 0.4, Enabled: true},
		},
		Policy: DefaultPolicy(),
	}, []CandidateSource{
		staticSource("strategy1", cand("A", "strategy1", 0.9), cand("B", "strategy1", 0.5)),
		staticSource("strategy2", cand("B", "strategy2", 0.8), cand("C", "strategy2", 0.3)),
	}, nil)

	result, _, err := e.Suggest(context.Background(), domain.RankingContext{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(result.Items))
	}
	if result.Items[0].Identity != "B" || result.Items[1].Identity != "A" {
		t.Errorf("order = %q, %q; want B, A", result.Items[0].Identity, result.Items[1].Identity)
	}
	if result.TotalFound != 3 {
		t.Errorf("totalFound = %d, want 3", result.TotalFound)
	}
}

func TestEngine_CacheHitReturnsIdenticalItems(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := NewMemoryCacheWithClock(func() time.Time { return now })
	e := testEngine(cache, staticSource("s1", cand("a", "s1", 0.8), cand("b", "s1", 0.4)))
	rctx := domain.RankingContext{Limit: 10, ContextTag: "quote"}

	first, cached, err := e.Suggest(context.Background(), rctx)
	if err != nil {
		t.Fatal(err)
	}
	if cached {
		t.Error("first call must compute")
	}

	second, cached, err := e.Suggest(context.Background(), rctx)
	if err != nil {
		t.Fatal(err)
	}
	if !cached {
		t.Error("second call within TTL must hit the cache")
	}

	if !reflect.DeepEqual(first.Items, second.Items) {
		t.Errorf("cached items differ from computed items:\n%v\n%v", first.Items, second.Items)
	}
	if !reflect.DeepEqual(first.AlgorithmsUsed, second.AlgorithmsUsed) {
		t.Errorf("algorithmsUsed differ: %v vs %v", first.AlgorithmsUsed, second.AlgorithmsUsed)
	}
}

func TestEngine_CacheExpiryRecomputes(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := NewMemoryCacheWithClock(func() time.Time { return now })
	e := testEngine(cache, staticSource("s1", cand("a", "s1", 0.8)))
	rctx := domain.RankingContext{Limit: 5}

	if _, cached, _ := e.Suggest(context.Background(), rctx); cached {
		t.Fatal("cold cache must compute")
	}

	now = now.Add(6 * time.Minute) // past the 5 minute TTL

	if _, cached, _ := e.Suggest(context.Background(), rctx); cached {
		t.Error("expired entry must recompute")
	}
}

func TestEngine_SourceFailureDegradesNotFails(t *testing.T) {
	e := testEngine(nil,
		staticSource("good", cand("a", "good", 0.5)),
		failingSource("bad"),
	)

	result, _, err := e.Suggest(context.Background(), domain.RankingContext{Limit: 10})
	if err != nil {
		t.Fatalf("a failed source must not fail the request: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("items = %d, want 1 from the surviving strategy", len(result.Items))
	}
	if !reflect.DeepEqual(result.AlgorithmsUsed, []string{"good"}) {
		t.Errorf("algorithmsUsed = %v, want [good]", result.AlgorithmsUsed)
	}
}

func TestEngine_AllSourcesFailReturnsEmptySuccess(t *testing.T) {
	e := testEngine(nil, failingSource("bad1"), failingSource("bad2"))

	result, _, err := e.Suggest(context.Background(), domain.RankingContext{Limit: 10})
	if err != nil {
		t.Fatalf("total degradation is still a success response: %v", err)
	}
	if len(result.Items) != 0 || result.TotalFound != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
	if result.AlgorithmsUsed == nil {
		t.Error("algorithmsUsed must be an empty list, not nil")
	}
}

func TestEngine_LimitClamping(t *testing.T) {
	e := testEngine(nil)

	if got := e.ClampLimit(0); got != 10 {
		t.Errorf("zero limit -> default: got %d, want 10", got)
	}
	if got := e.ClampLimit(-3); got != 10 {
		t.Errorf("negative limit -> default: got %d, want 10", got)
	}
	if got := e.ClampLimit(100); got != 25 {
		t.Errorf("over max -> max: got %d, want 25", got)
	}
	if got := e.ClampLimit(7); got != 7 {
		t.Errorf("in-range limit unchanged: got %d, want 7", got)
	}
}

func TestEngine_DisabledStrategyNotInvoked(t *testing.T) {
	invoked := false
	disabled := SourceFunc{
		StrategyName: "disabled",
		Fn: func(ctx context.Context, rctx domain.RankingContext) ([]domain.Candidate, error) {
			invoked = true
			return nil, nil
		},
	}

	e := NewEngine(Options{
		Feature: "test_feature",
		Strategies: []domain.StrategyConfig{
			{Name: "disabled", Weight: 1, Enabled: false},
			{Name: "on", Weight: 1, Enabled: true},
		},
		Policy: DefaultPolicy(),
	}, []CandidateSource{disabled, staticSource("on", cand("a", "on", 0.5))}, nil)

	if _, _, err := e.Suggest(context.Background(), domain.RankingContext{Limit: 5}); err != nil {
		t.Fatal(err)
	}
	if invoked {
		t.Error("disabled strategy must not be invoked")
	}
}

func TestEngine_PanicRecoveredAsError(t *testing.T) {
	panicking := SourceFunc{
		StrategyName: "s1",
		Fn: func(ctx context.Context, rctx domain.RankingContext) ([]domain.Candidate, error) {
			return []domain.Candidate{{Identity: "a"}}, nil
		},
	}
	e := testEngine(nil, panicking)
	// force a panic downstream of gathering via a nil filter
	e.opts.Filters = []Predicate{nil}

	_, _, err := e.Suggest(context.Background(), domain.RankingContext{Limit: 5})
	if err == nil {
		t.Fatal("pipeline panic must surface as an error, not a panic")
	}
}
