package recommend

import (
	"context"
	"fmt"
	"strings"

	"shopsense/business/ranking"
	"shopsense/domain"
)

// Strategy names shared between the engines and their configs.
const (
	StrategyCoPurchase = "co_purchase"
	StrategyPreference = "preference_match"
	StrategyTurnover   = "stock_turnover"
	StrategyCategory   = "category_similarity"
	StrategyBoughtWith = "bought_together"
)

// ScoredProduct is a raw candidate row from a retrieval query: the
// product plus the strategy-local score the query computed for it.
type ScoredProduct struct {
	Product domain.Product
	Score   float64
}

// ---- Repository interfaces ----

type ProductRepository interface {
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
	FindByCategory(ctx context.Context, category string, excludeID uint64, limit int) ([]domain.Product, error)
}

type CustomerRepository interface {
	FindByID(ctx context.Context, id uint64) (domain.Customer, error)
}

// CoPurchaseRepository mines order history for purchase affinity.
type CoPurchaseRepository interface {
	// TopForCustomer returns items bought by customers with similar
	// order history, scored by affinity.
	TopForCustomer(ctx context.Context, customerID uint64, limit int) ([]ScoredProduct, error)
	// BoughtTogether returns items frequently appearing on the same
	// order as the given product.
	BoughtTogether(ctx context.Context, productID uint64, limit int) ([]ScoredProduct, error)
}

// PreferenceRepository matches products against the customer's recorded
// free-text buying preferences.
type PreferenceRepository interface {
	MatchPreferences(ctx context.Context, customerID uint64, limit int) ([]ScoredProduct, error)
}

// InventoryRepository surfaces items the business wants to move
// (overstock, slow turnover).
type InventoryRepository interface {
	TurnoverPriorities(ctx context.Context, limit int) ([]ScoredProduct, error)
}

type EventRepository interface {
	SaveEvent(ctx context.Context, event domain.SuggestionEvent) error
}

// splitList parses the comma separated tier/industry columns.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// productCandidate maps a scored retrieval row into a pipeline candidate.
func productCandidate(row ScoredProduct, strategy, reason string) domain.Candidate {
	p := row.Product

	price := p.EffectivePrice()
	margin := p.MarginPct
	inStock := p.StockQty > 0
	stockQty := p.StockQty

	c := domain.Candidate{
		Identity: fmt.Sprintf("%d", p.ID),
		Attributes: domain.CandidateAttributes{
			ProductID:   p.ID,
			Name:        p.ProductName,
			Category:    p.ProductCategory,
			Price:       &price,
			MarginPct:   &margin,
			InStock:     &inStock,
			StockQty:    &stockQty,
			Occurrences: p.OrderCount,
			ContextTag:  p.ContextTag,
			Tiers:       splitList(p.Tiers),
			Industries:  splitList(p.Industries),
		},
	}
	c.AddScore(strategy, row.Score)
	c.AddReason(reason)
	return c
}

func candidatesFrom(rows []ScoredProduct, strategy, reason string) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(rows))
	for _, row := range rows {
		out = append(out, productCandidate(row, strategy, reason))
	}
	return out
}

// retrievalLimit over-fetches so filtering still leaves enough to rank.
func retrievalLimit(limit int) int {
	l := limit * 3
	if l < limit {
		l = limit
	}
	return l
}

// CoPurchaseSource: items bought by customers with similar baskets.
type CoPurchaseSource struct {
	Repo CoPurchaseRepository
}

func (s *CoPurchaseSource) Name() string { return StrategyCoPurchase }

func (s *CoPurchaseSource) Find(ctx context.Context, rctx domain.RankingContext) ([]domain.Candidate, error) {
	if rctx.CustomerID == 0 {
		return nil, nil
	}
	rows, err := s.Repo.TopForCustomer(ctx, rctx.CustomerID, retrievalLimit(rctx.Limit))
	if err != nil {
		return nil, fmt.Errorf("co-purchase retrieval: %w", err)
	}
	return candidatesFrom(rows, StrategyCoPurchase, "bought by customers like you"), nil
}

// BoughtTogetherSource: items frequently on the same order as the seed
// product. Powers similar-products and cross-sell.
type BoughtTogetherSource struct {
	Repo CoPurchaseRepository
}

func (s *BoughtTogetherSource) Name() string { return StrategyBoughtWith }

func (s *BoughtTogetherSource) Find(ctx context.Context, rctx domain.RankingContext) ([]domain.Candidate, error) {
	if rctx.ProductID == 0 {
		return nil, nil
	}
	rows, err := s.Repo.BoughtTogether(ctx, rctx.ProductID, retrievalLimit(rctx.Limit))
	if err != nil {
		return nil, fmt.Errorf("bought-together retrieval: %w", err)
	}
	return candidatesFrom(rows, StrategyBoughtWith, "frequently bought together"), nil
}

// PreferenceSource: items matching the customer's textual preferences.
type PreferenceSource struct {
	Repo PreferenceRepository
}

func (s *PreferenceSource) Name() string { return StrategyPreference }

func (s *PreferenceSource) Find(ctx context.Context, rctx domain.RankingContext) ([]domain.Candidate, error) {
	if rctx.CustomerID == 0 {
		return nil, nil
	}
	rows, err := s.Repo.MatchPreferences(ctx, rctx.CustomerID, retrievalLimit(rctx.Limit))
	if err != nil {
		return nil, fmt.Errorf("preference retrieval: %w", err)
	}
	return candidatesFrom(rows, StrategyPreference, "matches your preferences"), nil
}

// TurnoverSource: items the warehouse wants to move.
type TurnoverSource struct {
	Repo InventoryRepository
}

func (s *TurnoverSource) Name() string { return StrategyTurnover }

func (s *TurnoverSource) Find(ctx context.Context, rctx domain.RankingContext) ([]domain.Candidate, error) {
	rows, err := s.Repo.TurnoverPriorities(ctx, retrievalLimit(rctx.Limit))
	if err != nil {
		return nil, fmt.Errorf("turnover retrieval: %w", err)
	}
	return candidatesFrom(rows, StrategyTurnover, "good availability right now"), nil
}

// CategorySource: items from the seed product's category, scored by
// price proximity to the seed.
type CategorySource struct {
	Products ProductRepository
}

func (s *CategorySource) Name() string { return StrategyCategory }

func (s *CategorySource) Find(ctx context.Context, rctx domain.RankingContext) ([]domain.Candidate, error) {
	if rctx.ProductID == 0 {
		return nil, nil
	}

	seed, err := s.Products.FindByID(ctx, rctx.ProductID)
	if err != nil {
		return nil, fmt.Errorf("load seed product: %w", err)
	}

	peers, err := s.Products.FindByCategory(ctx, seed.ProductCategory, seed.ID, retrievalLimit(rctx.Limit))
	if err != nil {
		return nil, fmt.Errorf("category retrieval: %w", err)
	}

	seedPrice := seed.EffectivePrice()
	out := make([]domain.Candidate, 0, len(peers))
	for _, p := range peers {
		score := priceProximity(seedPrice, p.EffectivePrice())
		out = append(out, productCandidate(ScoredProduct{Product: p, Score: score},
			StrategyCategory, fmt.Sprintf("same category as %s", seed.ProductName)))
	}
	return out, nil
}

// priceProximity scores 1 for identical prices, decaying toward 0 as
// the prices diverge.
func priceProximity(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 0.5
	}
	ratio := a / b
	if ratio > 1 {
		ratio = 1 / ratio
	}
	return ratio
}

var (
	_ ranking.CandidateSource = (*CoPurchaseSource)(nil)
	_ ranking.CandidateSource = (*BoughtTogetherSource)(nil)
	_ ranking.CandidateSource = (*PreferenceSource)(nil)
	_ ranking.CandidateSource = (*TurnoverSource)(nil)
	_ ranking.CandidateSource = (*CategorySource)(nil)
)
