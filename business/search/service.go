package search

import (
	"context"
	"fmt"
	"time"

	"shopsense/business/ranking"
	"shopsense/domain"
	"shopsense/pkg/logger"
)

// Feature TTLs. Autocomplete churns fastest, so it expires fastest.
const (
	TTLSuggestions  = 5 * time.Minute
	TTLAutocomplete = 2 * time.Minute
	TTLSpellCheck   = 5 * time.Minute
	TTLSemantic     = 5 * time.Minute
)

const (
	FeatureSuggestions  = "search_suggestions"
	FeatureAutocomplete = "autocomplete"
	FeatureSpellCheck   = "spell_check"
	FeatureSemantic     = "semantic_search"
)

// Service serves the four text features. Each is its own engine
// instantiation: same core, different strategy sets, weights and TTLs.
type Service struct {
	suggestions  *ranking.Engine
	autocomplete *ranking.Engine
	spellCheck   *ranking.Engine
	semantic     *ranking.Engine
}

// Tuning overrides the default per-source timeout and policy knobs.
type Tuning struct {
	SourceTimeout        time.Duration
	LengthPenaltyCeiling int
}

func NewService(repo SearchTermRepository, cache ranking.ResultCache, tuning Tuning) *Service {
	policy := ranking.DefaultPolicy()
	if tuning.LengthPenaltyCeiling > 0 {
		policy.LengthPenaltyCeiling = tuning.LengthPenaltyCeiling
	}

	exact := &ExactMatchSource{Repo: repo}
	prefix := &PrefixSource{Repo: repo}
	fuzzy := &FuzzySource{Repo: repo}
	semantic := &SemanticSource{Repo: repo}

	return &Service{
		suggestions: ranking.NewEngine(ranking.Options{
			Feature:       FeatureSuggestions,
			TTL:           TTLSuggestions,
			MaxLimit:      20,
			DefaultLimit:  10,
			SourceTimeout: tuning.SourceTimeout,
			Strategies: []domain.StrategyConfig{
				{Name: StrategyExact, Weight: 1.0, Enabled: true},
				{Name: StrategyPrefix, Weight: 0.8, Enabled: true},
				{Name: StrategyFuzzy, Weight: 0.4, Enabled: true},
				{Name: StrategySemantic, Weight: 0.5, Enabled: true},
			},
			Policy: policy,
		}, []ranking.CandidateSource{exact, prefix, fuzzy, semantic}, cache),

		autocomplete: ranking.NewEngine(ranking.Options{
			Feature:       FeatureAutocomplete,
			TTL:           TTLAutocomplete,
			MaxLimit:      10,
			DefaultLimit:  8,
			SourceTimeout: tuning.SourceTimeout,
			Strategies: []domain.StrategyConfig{
				{Name: StrategyExact, Weight: 1.0, Enabled: true},
				{Name: StrategyPrefix, Weight: 1.0, Enabled: true},
			},
			Policy: policy,
		}, []ranking.CandidateSource{exact, prefix}, cache),

		spellCheck: ranking.NewEngine(ranking.Options{
			Feature:       FeatureSpellCheck,
			TTL:           TTLSpellCheck,
			MaxLimit:      10,
			DefaultLimit:  5,
			SourceTimeout: tuning.SourceTimeout,
			Strategies: []domain.StrategyConfig{
				{Name: StrategyExact, Weight: 1.0, Enabled: true},
				{Name: StrategyFuzzy, Weight: 1.0, Enabled: true},
			},
			Policy: policy,
		}, []ranking.CandidateSource{exact, fuzzy}, cache),

		semantic: ranking.NewEngine(ranking.Options{
			Feature:       FeatureSemantic,
			TTL:           TTLSemantic,
			MaxLimit:      25,
			DefaultLimit:  10,
			SourceTimeout: tuning.SourceTimeout,
			Strategies: []domain.StrategyConfig{
				{Name: StrategySemantic, Weight: 1.0, Enabled: true},
				{Name: StrategyFuzzy, Weight: 0.3, Enabled: true},
			},
			Policy: policy,
		}, []ranking.CandidateSource{semantic, fuzzy}, cache),
	}
}

// Engines exposes the feature engines for the admin config surface.
func (s *Service) Engines() []*ranking.Engine {
	return []*ranking.Engine{s.suggestions, s.autocomplete, s.spellCheck, s.semantic}
}

func (s *Service) Suggestions(ctx context.Context, query, contextTag string, limit int) (*domain.SuggestResult, bool, error) {
	return s.run(ctx, s.suggestions, query, contextTag, limit, false)
}

func (s *Service) Autocomplete(ctx context.Context, query, contextTag string, limit int) (*domain.SuggestResult, bool, error) {
	return s.run(ctx, s.autocomplete, query, contextTag, limit, false)
}

func (s *Service) SpellCheck(ctx context.Context, query string, limit int) (*domain.SuggestResult, bool, error) {
	return s.run(ctx, s.spellCheck, query, "", limit, false)
}

func (s *Service) Semantic(ctx context.Context, query, contextTag string, limit int, includeIntent bool) (*domain.SuggestResult, bool, error) {
	return s.run(ctx, s.semantic, query, contextTag, limit, includeIntent)
}

func (s *Service) run(
	ctx context.Context,
	engine *ranking.Engine,
	query, contextTag string,
	limit int,
	includeIntent bool,
) (*domain.SuggestResult, bool, error) {

	if Normalize(query) == "" {
		return nil, false, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}

	rctx := domain.RankingContext{
		Query:         query,
		Limit:         limit,
		ContextTag:    contextTag,
		IncludeIntent: includeIntent,
	}

	result, cached, err := engine.Suggest(ctx, rctx)
	if err != nil {
		logger.Error("search_suggest_failed",
			"trace_id", ranking.TraceIDFromContext(ctx),
			"feature", engine.Feature(),
			"error", err,
		)
		return nil, false, err
	}

	return result, cached, nil
}
