package recommend

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"shopsense/business/ranking"
	"shopsense/domain"
	"shopsense/pkg/logger"
)

const (
	TTLRecommendations = 10 * time.Minute
	TTLSimilar         = 30 * time.Minute
	TTLCrossSell       = 15 * time.Minute
	TTLInventory       = 15 * time.Minute
)

const (
	FeatureRecommendations = "recommendations"
	FeatureSimilar         = "similar_products"
	FeatureCrossSell       = "cross_sell"
	FeatureInventory       = "inventory_suggestions"
)

// Price band derived from the customer's typical order line price when
// the request carries no explicit bounds.
const (
	typicalPriceLowerFactor = 0.2
	typicalPriceUpperFactor = 5.0
)

// Service serves the four product features. Each is its own engine
// instantiation over the shared fusion/ranking core.
type Service struct {
	products  ProductRepository
	customers CustomerRepository
	events    EventRepository

	recommendations *ranking.Engine
	similar         *ranking.Engine
	crossSell       *ranking.Engine
	inventory       *ranking.Engine
}

type Tuning struct {
	SourceTimeout           time.Duration
	MarginBoostThresholdPct float64
}

func NewService(
	products ProductRepository,
	customers CustomerRepository,
	coPurchase CoPurchaseRepository,
	preferences PreferenceRepository,
	inventory InventoryRepository,
	events EventRepository,
	cache ranking.ResultCache,
	tuning Tuning,
) *Service {

	policy := ranking.DefaultPolicy()
	if tuning.MarginBoostThresholdPct > 0 {
		policy.MarginBoostThresholdPct = tuning.MarginBoostThresholdPct
	}

	coPurchaseSrc := &CoPurchaseSource{Repo: coPurchase}
	boughtWithSrc := &BoughtTogetherSource{Repo: coPurchase}
	preferenceSrc := &PreferenceSource{Repo: preferences}
	turnoverSrc := &TurnoverSource{Repo: inventory}
	categorySrc := &CategorySource{Products: products}

	productFilters := []ranking.Predicate{
		ranking.EligibilityFilter,
		ranking.StockFilter,
		ranking.PriceRangeFilter,
		ranking.ContextFilter,
	}

	return &Service{
		products:  products,
		customers: customers,
		events:    events,

		recommendations: ranking.NewEngine(ranking.Options{
			Feature:       FeatureRecommendations,
			TTL:           TTLRecommendations,
			MaxLimit:      50,
			DefaultLimit:  10,
			SourceTimeout: tuning.SourceTimeout,
			Strategies: []domain.StrategyConfig{
				{Name: StrategyCoPurchase, Weight: 1.0, Enabled: true},
				{Name: StrategyPreference, Weight: 0.8, Enabled: true},
				{Name: StrategyTurnover, Weight: 0.3, Enabled: true},
			},
			Filters: productFilters,
			Policy:  policy,
		}, []ranking.CandidateSource{coPurchaseSrc, preferenceSrc, turnoverSrc}, cache),

		similar: ranking.NewEngine(ranking.Options{
			Feature:       FeatureSimilar,
			TTL:           TTLSimilar,
			MaxLimit:      25,
			DefaultLimit:  10,
			SourceTimeout: tuning.SourceTimeout,
			Strategies: []domain.StrategyConfig{
				{Name: StrategyCategory, Weight: 1.0, Enabled: true},
				{Name: StrategyBoughtWith, Weight: 0.6, Enabled: true},
			},
			Filters: productFilters,
			Policy:  policy,
		}, []ranking.CandidateSource{categorySrc, boughtWithSrc}, cache),

		crossSell: ranking.NewEngine(ranking.Options{
			Feature:       FeatureCrossSell,
			TTL:           TTLCrossSell,
			MaxLimit:      25,
			DefaultLimit:  8,
			SourceTimeout: tuning.SourceTimeout,
			Strategies: []domain.StrategyConfig{
				{Name: StrategyBoughtWith, Weight: 1.0, Enabled: true},
				{Name: StrategyTurnover, Weight: 0.3, Enabled: true},
			},
			Filters: productFilters,
			Policy:  policy,
		}, []ranking.CandidateSource{boughtWithSrc, turnoverSrc}, cache),

		inventory: ranking.NewEngine(ranking.Options{
			Feature:       FeatureInventory,
			TTL:           TTLInventory,
			MaxLimit:      50,
			DefaultLimit:  15,
			SourceTimeout: tuning.SourceTimeout,
			Strategies: []domain.StrategyConfig{
				{Name: StrategyTurnover, Weight: 1.0, Enabled: true},
				{Name: StrategyCoPurchase, Weight: 0.5, Enabled: true},
			},
			Filters: productFilters,
			Policy:  policy,
		}, []ranking.CandidateSource{turnoverSrc, coPurchaseSrc}, cache),
	}
}

// Engines exposes the feature engines for the admin config surface.
func (s *Service) Engines() []*ranking.Engine {
	return []*ranking.Engine{s.recommendations, s.similar, s.crossSell, s.inventory}
}

// Request carries the parsed per-call parameters from the handler.
type Request struct {
	CustomerID        uint64
	ProductID         uint64
	ContextTag        string
	Limit             int
	PriceMin          *float64
	PriceMax          *float64
	IncludeOutOfStock bool
}

// Recommendations: personalized product suggestions for a customer.
func (s *Service) Recommendations(ctx context.Context, req Request) (*domain.SuggestResult, bool, error) {
	rctx, err := s.customerContext(ctx, req)
	if err != nil {
		return nil, false, err
	}
	return s.run(ctx, s.recommendations, req, rctx)
}

// SimilarProducts: alternatives to the given product.
func (s *Service) SimilarProducts(ctx context.Context, req Request) (*domain.SuggestResult, bool, error) {
	rctx, err := s.productContext(ctx, req)
	if err != nil {
		return nil, false, err
	}
	return s.run(ctx, s.similar, req, rctx)
}

// CrossSell: complements to the given product.
func (s *Service) CrossSell(ctx context.Context, req Request) (*domain.SuggestResult, bool, error) {
	rctx, err := s.productContext(ctx, req)
	if err != nil {
		return nil, false, err
	}
	return s.run(ctx, s.crossSell, req, rctx)
}

// InventorySuggestions: stock-turnover optimized suggestions for a
// customer.
func (s *Service) InventorySuggestions(ctx context.Context, req Request) (*domain.SuggestResult, bool, error) {
	rctx, err := s.customerContext(ctx, req)
	if err != nil {
		return nil, false, err
	}
	return s.run(ctx, s.inventory, req, rctx)
}

func (s *Service) customerContext(ctx context.Context, req Request) (domain.RankingContext, error) {
	if req.CustomerID == 0 {
		return domain.RankingContext{}, fmt.Errorf("%w: customer id is required", domain.ErrInvalidInput)
	}

	customer, err := s.customers.FindByID(ctx, req.CustomerID)
	if err != nil {
		return domain.RankingContext{}, fmt.Errorf("load customer %d: %w", req.CustomerID, err)
	}

	rctx := domain.RankingContext{
		CustomerID:        req.CustomerID,
		Limit:             req.Limit,
		ContextTag:        req.ContextTag,
		Tier:              customer.Tier,
		Industry:          customer.Industry,
		PriceMin:          req.PriceMin,
		PriceMax:          req.PriceMax,
		IncludeOutOfStock: req.IncludeOutOfStock,
	}

	// no explicit bounds: derive the customer's typical price band
	if rctx.PriceMin == nil && rctx.PriceMax == nil && customer.TypicalPrice > 0 {
		lo := customer.TypicalPrice * typicalPriceLowerFactor
		hi := customer.TypicalPrice * typicalPriceUpperFactor
		rctx.PriceMin = &lo
		rctx.PriceMax = &hi
	}

	return rctx, nil
}

func (s *Service) productContext(ctx context.Context, req Request) (domain.RankingContext, error) {
	if req.ProductID == 0 {
		return domain.RankingContext{}, fmt.Errorf("%w: product id is required", domain.ErrInvalidInput)
	}

	// the seed product must exist; a missing seed is NotFound, not an
	// empty result
	if _, err := s.products.FindByID(ctx, req.ProductID); err != nil {
		return domain.RankingContext{}, fmt.Errorf("load product %d: %w", req.ProductID, err)
	}

	return domain.RankingContext{
		ProductID:         req.ProductID,
		CustomerID:        req.CustomerID,
		Limit:             req.Limit,
		ContextTag:        req.ContextTag,
		PriceMin:          req.PriceMin,
		PriceMax:          req.PriceMax,
		IncludeOutOfStock: req.IncludeOutOfStock,
	}, nil
}

func (s *Service) run(ctx context.Context, engine *ranking.Engine, req Request, rctx domain.RankingContext) (*domain.SuggestResult, bool, error) {
	result, cached, err := engine.Suggest(ctx, rctx)
	if err != nil {
		return nil, false, err
	}

	if !cached {
		s.logServed(ctx, engine.Feature(), req, rctx, result)
	}

	return result, cached, nil
}

// logServed persists the served list asynchronously. Persistence
// failures lose analytics, never requests.
func (s *Service) logServed(ctx context.Context, feature string, req Request, rctx domain.RankingContext, result *domain.SuggestResult) {
	if s.events == nil {
		return
	}

	items := make(map[string]any, len(result.Items))
	for i, item := range result.Items {
		items[fmt.Sprintf("%d", i)] = map[string]any{
			"product_id": item.ProductID,
			"score":      item.Score,
		}
	}

	event := domain.SuggestionEvent{
		Feature:     feature,
		CustomerID:  req.CustomerID,
		Fingerprint: ranking.Fingerprint(feature, rctx),
		EventType:   "served",
		Context: datatypes.JSONMap{
			"context_tag": rctx.ContextTag,
			"limit":       rctx.Limit,
			"algorithms":  result.AlgorithmsUsed,
		},
		Items: datatypes.JSONMap(items),
	}

	traceID := ranking.TraceIDFromContext(ctx)
	go func() {
		bctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.events.SaveEvent(bctx, event); err != nil {
			logger.Warn("suggestion_event_save_failed",
				"trace_id", traceID,
				"feature", feature,
				"error", err,
			)
		}
	}()
}

var feedbackEventTypes = map[string]bool{
	"impression": true,
	"click":      true,
	"conversion": true,
}

// LogFeedback records a client-reported event against a served
// suggestion.
func (s *Service) LogFeedback(ctx context.Context, event domain.SuggestionEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if !feedbackEventTypes[event.EventType] {
		return fmt.Errorf("%w: unknown event_type %q", domain.ErrInvalidInput, event.EventType)
	}
	if event.ProductID == 0 {
		return fmt.Errorf("%w: product_id is required", domain.ErrInvalidInput)
	}

	if err := s.events.SaveEvent(ctx, event); err != nil {
		return fmt.Errorf("save suggestion event: %w", err)
	}

	logger.Debug("suggestion_feedback",
		"trace_id", ranking.TraceIDFromContext(ctx),
		"feature", event.Feature,
		"customer_id", event.CustomerID,
		"product_id", event.ProductID,
		"event_type", event.EventType,
	)

	return nil
}
