package ranking

import (
	"math"
	"strings"
	"testing"

	"shopsense/domain"
)

func TestRank_FrequencyBoostCapped(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		occurrences int
		want        float64
	}{
		{0, 0},
		{1, math.Log(2) / 10},
		{10, math.Log(11) / 10},
		{1000000, 0.3}, // capped
	}

	for _, tt := range tests {
		got := frequencyBoost(tt.occurrences, p.FrequencyBoostCap)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("frequencyBoost(%d) = %v, want %v", tt.occurrences, got, tt.want)
		}
	}
}

func TestRank_MarginBoostMultiplicativeBeforeAdditive(t *testing.T) {
	// margin boost multiplies the composite score, then the additive
	// context bonus is applied on top
	c := domain.Candidate{
		Identity:       "A",
		CompositeScore: 1.0,
		Attributes: domain.CandidateAttributes{
			MarginPct:  floatPtr(30),
			ContextTag: "quote",
		},
	}
	rctx := domain.RankingContext{ContextTag: "quote"}

	ranked := Rank([]domain.Candidate{c}, rctx, DefaultPolicy())

	want := 1.0*1.1 + 0.1
	if math.Abs(ranked[0].FinalScore-want) > 1e-12 {
		t.Errorf("final score = %v, want %v", ranked[0].FinalScore, want)
	}
}

func TestRank_MarginAtThresholdNotBoosted(t *testing.T) {
	c := domain.Candidate{
		Identity:       "A",
		CompositeScore: 1.0,
		Attributes:     domain.CandidateAttributes{MarginPct: floatPtr(25)},
	}

	ranked := Rank([]domain.Candidate{c}, domain.RankingContext{}, DefaultPolicy())

	if ranked[0].FinalScore != 1.0 {
		t.Errorf("margin exactly at threshold must not boost: got %v", ranked[0].FinalScore)
	}
}

func TestRank_LengthPenalty(t *testing.T) {
	long := domain.Candidate{
		Identity:       "long",
		CompositeScore: 0.5,
		Attributes:     domain.CandidateAttributes{Text: strings.Repeat("x", 51)},
	}
	short := domain.Candidate{
		Identity:       "short",
		CompositeScore: 0.5,
		Attributes:     domain.CandidateAttributes{Text: strings.Repeat("x", 50)},
	}

	ranked := Rank([]domain.Candidate{long, short}, domain.RankingContext{}, DefaultPolicy())

	if ranked[0].Identity != "short" {
		t.Fatalf("expected short text first, got %q", ranked[0].Identity)
	}
	if math.Abs(ranked[0].FinalScore-0.5) > 1e-12 {
		t.Errorf("short text must not be penalized: got %v", ranked[0].FinalScore)
	}
	if math.Abs(ranked[1].FinalScore-0.4) > 1e-12 {
		t.Errorf("long text penalty: got %v, want 0.4", ranked[1].FinalScore)
	}
}

func TestRank_StableSortPreservesFirstSeenOrder(t *testing.T) {
	// all equal scores: output order must equal input order
	cands := []domain.Candidate{
		{Identity: "first", CompositeScore: 0.5},
		{Identity: "second", CompositeScore: 0.5},
		{Identity: "third", CompositeScore: 0.5},
	}

	ranked := Rank(cands, domain.RankingContext{}, DefaultPolicy())

	for i, want := range []string{"first", "second", "third"} {
		if ranked[i].Identity != want {
			t.Errorf("position %d: got %q, want %q", i, ranked[i].Identity, want)
		}
	}
}

func TestRank_DescendingByFinalScore(t *testing.T) {
	cands := []domain.Candidate{
		{Identity: "low", CompositeScore: 0.1},
		{Identity: "high", CompositeScore: 0.9},
		{Identity: "mid", CompositeScore: 0.5},
	}

	ranked := Rank(cands, domain.RankingContext{}, DefaultPolicy())

	for i, want := range []string{"high", "mid", "low"} {
		if ranked[i].Identity != want {
			t.Errorf("position %d: got %q, want %q", i, ranked[i].Identity, want)
		}
	}
}
