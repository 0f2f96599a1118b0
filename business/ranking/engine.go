package ranking

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"shopsense/domain"
	"shopsense/pkg/logger"
)

// Options configures one feature instantiation of the engine. Every
// public feature (recommendations, similar products, autocomplete, ...)
// is an Engine with its own strategy set, weights, filters and TTL; the
// fusion/ranking core is shared, not forked per feature.
type Options struct {
	Feature       string
	TTL           time.Duration
	MaxLimit      int
	DefaultLimit  int
	SourceTimeout time.Duration

	Strategies []domain.StrategyConfig
	Filters    []Predicate
	Policy     PolicyConfig
}

type Engine struct {
	opts    Options
	sources []CandidateSource
	cache   ResultCache

	// guards opts.Strategies, which the admin surface swaps at runtime
	mu sync.RWMutex
}

// NewEngine wires sources and a cache into one feature pipeline. A nil
// cache disables caching (every call computes).
func NewEngine(opts Options, sources []CandidateSource, cache ResultCache) *Engine {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 10
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 50
	}
	if opts.SourceTimeout <= 0 {
		opts.SourceTimeout = 400 * time.Millisecond
	}
	return &Engine{
		opts:    opts,
		sources: sources,
		cache:   cache,
	}
}

func (e *Engine) Feature() string {
	return e.opts.Feature
}

// Strategies returns the current strategy configuration.
func (e *Engine) Strategies() []domain.StrategyConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]domain.StrategyConfig, len(e.opts.Strategies))
	copy(out, e.opts.Strategies)
	return out
}

// SetStrategies replaces the strategy weights at runtime (admin
// endpoint). Unknown strategy names are kept; they simply never match a
// source.
func (e *Engine) SetStrategies(strategies []domain.StrategyConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.Strategies = strategies
}

// ClampLimit normalizes a requested count into the feature's range.
func (e *Engine) ClampLimit(limit int) int {
	if limit <= 0 {
		return e.opts.DefaultLimit
	}
	if limit > e.opts.MaxLimit {
		return e.opts.MaxLimit
	}
	return limit
}

// Suggest runs the full pipeline for one request:
//
//	cache → gather → fuse/dedupe → filter → rank → truncate
//
// The returned bool reports whether the result was served from cache.
// Unexpected failures inside the pipeline are caught here and surfaced
// as a generic internal error, never as a panic to the transport layer.
func (e *Engine) Suggest(ctx context.Context, rctx domain.RankingContext) (result *domain.SuggestResult, cached bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("suggest_pipeline_panic",
				"trace_id", TraceIDFromContext(ctx),
				"feature", e.opts.Feature,
				"panic", fmt.Sprint(r),
			)
			result = nil
			cached = false
			err = fmt.Errorf("suggestion pipeline failed for %s", e.opts.Feature)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, false, fmt.Errorf("context error: %w", err)
	}

	rctx.Limit = e.ClampLimit(rctx.Limit)

	key := Fingerprint(e.opts.Feature, rctx)

	if e.cache != nil {
		if payload, ok := e.cache.Get(ctx, key); ok {
			var cachedResult domain.SuggestResult
			if err := json.Unmarshal(payload, &cachedResult); err == nil {
				SuggestCacheLookupsTotal.WithLabelValues(e.opts.Feature, "hit").Inc()
				return &cachedResult, true, nil
			}
			// corrupt payload: fall through and recompute
			logger.Warn("suggest_cache_payload_corrupt", "feature", e.opts.Feature, "key", key)
		}
		SuggestCacheLookupsTotal.WithLabelValues(e.opts.Feature, "miss").Inc()
	}

	computed := e.compute(ctx, rctx)

	if e.cache != nil {
		if payload, err := json.Marshal(computed); err == nil {
			e.cache.Set(ctx, key, payload, e.opts.TTL)
		}
	}

	return computed, false, nil
}

func (e *Engine) compute(ctx context.Context, rctx domain.RankingContext) *domain.SuggestResult {
	weights := WeightsFor(e.Strategies())

	enabled := make([]CandidateSource, 0, len(e.sources))
	for _, src := range e.sources {
		if _, ok := weights[src.Name()]; ok {
			enabled = append(enabled, src)
		}
	}

	raw, contributed := Gather(ctx, rctx, e.opts.Feature, enabled, e.opts.SourceTimeout)

	fused := Fuse(raw, weights)
	filtered := ApplyFilters(fused, rctx, e.opts.Filters)
	ranked := Rank(filtered, rctx, e.opts.Policy)

	logger.Debug("suggest_computed",
		"trace_id", TraceIDFromContext(ctx),
		"feature", e.opts.Feature,
		"raw", len(raw),
		"fused", len(fused),
		"filtered", len(filtered),
		"limit", rctx.Limit,
	)

	total := len(ranked)
	if rctx.Limit < len(ranked) {
		ranked = ranked[:rctx.Limit]
	}

	items := make([]domain.RankedItem, 0, len(ranked))
	for _, c := range ranked {
		items = append(items, toRankedItem(c))
	}

	if contributed == nil {
		contributed = []string{}
	}

	return &domain.SuggestResult{
		Items:          items,
		TotalFound:     total,
		AlgorithmsUsed: contributed,
	}
}

func toRankedItem(c domain.Candidate) domain.RankedItem {
	return domain.RankedItem{
		Identity:  c.Identity,
		ProductID: c.Attributes.ProductID,
		Name:      c.Attributes.Name,
		Category:  c.Attributes.Category,
		Text:      c.Attributes.Text,
		Price:     c.Attributes.Price,
		InStock:   c.Attributes.InStock,
		Score:     c.FinalScore,
		Reasons:   c.Reasons,
	}
}
