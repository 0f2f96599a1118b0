package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"shopsense/domain"
)

func floatPtr(f float64) *float64 { return &f }

type fakeProductRepo struct {
	products map[uint64]domain.Product
}

func (r *fakeProductRepo) FindByID(ctx context.Context, id uint64) (domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

func (r *fakeProductRepo) FindByCategory(ctx context.Context, category string, excludeID uint64, limit int) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range r.products {
		if p.ProductCategory == category && p.ID != excludeID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeCustomerRepo struct {
	customers map[uint64]domain.Customer
}

func (r *fakeCustomerRepo) FindByID(ctx context.Context, id uint64) (domain.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return domain.Customer{}, fmt.Errorf("customer %d: %w", id, domain.ErrNotFound)
	}
	return c, nil
}

type fakeCoPurchaseRepo struct {
	forCustomer    map[uint64][]ScoredProduct
	boughtTogether map[uint64][]ScoredProduct
}

func (r *fakeCoPurchaseRepo) TopForCustomer(ctx context.Context, customerID uint64, limit int) ([]ScoredProduct, error) {
	return r.forCustomer[customerID], nil
}

func (r *fakeCoPurchaseRepo) BoughtTogether(ctx context.Context, productID uint64, limit int) ([]ScoredProduct, error) {
	return r.boughtTogether[productID], nil
}

type fakePreferenceRepo struct {
	matches map[uint64][]ScoredProduct
}

func (r *fakePreferenceRepo) MatchPreferences(ctx context.Context, customerID uint64, limit int) ([]ScoredProduct, error) {
	return r.matches[customerID], nil
}

type fakeInventoryRepo struct {
	priorities []ScoredProduct
}

func (r *fakeInventoryRepo) TurnoverPriorities(ctx context.Context, limit int) ([]ScoredProduct, error) {
	return r.priorities, nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events []domain.SuggestionEvent
	saved  chan struct{}
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{saved: make(chan struct{}, 16)}
}

func (r *fakeEventRepo) SaveEvent(ctx context.Context, event domain.SuggestionEvent) error {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	r.saved <- struct{}{}
	return nil
}

func (r *fakeEventRepo) all() []domain.SuggestionEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.SuggestionEvent(nil), r.events...)
}

// Small catalog shared by the feature tests.
//
//	10 copper pipe   price 100  margin 30  stock 50  orders 10  pipes
//	11 pvc pipe      price  90  margin 10  stock 20  orders  5  pipes
//	12 luxury valve  price 2000 margin 40  stock  5  orders  2  valves
//	13 steel elbow   price  80  margin 15  stock  0  orders  8  fittings
func testCatalog() map[uint64]domain.Product {
	return map[uint64]domain.Product{
		10: {ID: 10, ProductName: "copper pipe", ProductCategory: "pipes", NormalPrice: 100, MarginPct: 30, StockQty: 50, OrderCount: 10},
		11: {ID: 11, ProductName: "pvc pipe", ProductCategory: "pipes", NormalPrice: 90, MarginPct: 10, StockQty: 20, OrderCount: 5},
		12: {ID: 12, ProductName: "luxury valve", ProductCategory: "valves", NormalPrice: 2000, MarginPct: 40, StockQty: 5, OrderCount: 2},
		13: {ID: 13, ProductName: "steel elbow", ProductCategory: "fittings", NormalPrice: 80, MarginPct: 15, StockQty: 0, OrderCount: 8},
	}
}

func scored(catalog map[uint64]domain.Product, id uint64, score float64) ScoredProduct {
	return ScoredProduct{Product: catalog[id], Score: score}
}

func testService(events EventRepository) (*Service, map[uint64]domain.Product) {
	catalog := testCatalog()

	products := &fakeProductRepo{products: catalog}
	customers := &fakeCustomerRepo{customers: map[uint64]domain.Customer{
		// typical price 100 gives an implied band of [20, 500]
		1: {ID: 1, Tier: "gold", Industry: "construction", TypicalPrice: 100},
	}}
	coPurchase := &fakeCoPurchaseRepo{
		forCustomer: map[uint64][]ScoredProduct{
			1: {
				scored(catalog, 10, 0.8),
				scored(catalog, 11, 0.8),
				scored(catalog, 12, 0.9),
				scored(catalog, 13, 0.5),
			},
		},
		boughtTogether: map[uint64][]ScoredProduct{
			10: {scored(catalog, 11, 0.7), scored(catalog, 13, 0.6)},
		},
	}
	preferences := &fakePreferenceRepo{matches: map[uint64][]ScoredProduct{
		1: {scored(catalog, 11, 0.5)},
	}}
	inventory := &fakeInventoryRepo{priorities: []ScoredProduct{
		scored(catalog, 11, 0.4),
	}}

	svc := NewService(products, customers, coPurchase, preferences, inventory, events, nil, Tuning{})
	return svc, catalog
}

func TestRecommendations_ConsensusAndFiltering(t *testing.T) {
	svc, _ := testService(nil)

	result, cached, err := svc.Recommendations(context.Background(), Request{CustomerID: 1, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if cached {
		t.Error("cacheless service reported a hit")
	}

	// pvc pipe is surfaced by all three strategies; copper pipe only by
	// co-purchase. The luxury valve falls outside the implied price band
	// and the steel elbow is out of stock.
	if len(result.Items) != 2 {
		t.Fatalf("items = %d, want 2: %+v", len(result.Items), result.Items)
	}
	if result.Items[0].ProductID != 11 {
		t.Errorf("top item = %d, want 11 (consensus)", result.Items[0].ProductID)
	}
	if result.Items[1].ProductID != 10 {
		t.Errorf("second item = %d, want 10", result.Items[1].ProductID)
	}
	if len(result.AlgorithmsUsed) != 3 {
		t.Errorf("algorithms = %v, want all three strategies", result.AlgorithmsUsed)
	}
}

func TestRecommendations_IncludeOutOfStock(t *testing.T) {
	svc, _ := testService(nil)

	result, _, err := svc.Recommendations(context.Background(), Request{
		CustomerID:        1,
		Limit:             10,
		IncludeOutOfStock: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	found := false
	for _, item := range result.Items {
		if item.ProductID == 13 {
			found = true
		}
	}
	if !found {
		t.Error("include-out-of-stock should admit the zero-stock item")
	}
}

func TestRecommendations_ExplicitBoundsOverrideTypicalBand(t *testing.T) {
	svc, _ := testService(nil)

	result, _, err := svc.Recommendations(context.Background(), Request{
		CustomerID: 1,
		Limit:      10,
		PriceMin:   floatPtr(1000),
		PriceMax:   floatPtr(5000),
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Items) != 1 || result.Items[0].ProductID != 12 {
		t.Errorf("explicit bounds should keep only the luxury valve, got %+v", result.Items)
	}
}

func TestRecommendations_UnknownCustomer(t *testing.T) {
	svc, _ := testService(nil)

	_, _, err := svc.Recommendations(context.Background(), Request{CustomerID: 99, Limit: 10})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRecommendations_MissingCustomerID(t *testing.T) {
	svc, _ := testService(nil)

	_, _, err := svc.Recommendations(context.Background(), Request{Limit: 10})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSimilarProducts_SeedMustExist(t *testing.T) {
	svc, _ := testService(nil)

	_, _, err := svc.SimilarProducts(context.Background(), Request{ProductID: 404, Limit: 10})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSimilarProducts_CategoryAndBoughtTogether(t *testing.T) {
	svc, _ := testService(nil)

	result, _, err := svc.SimilarProducts(context.Background(), Request{ProductID: 10, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}

	// pvc pipe shares the category and the baskets
	if len(result.Items) == 0 {
		t.Fatal("expected similar products")
	}
	if result.Items[0].ProductID != 11 {
		t.Errorf("top similar = %d, want 11", result.Items[0].ProductID)
	}
	if len(result.AlgorithmsUsed) != 2 {
		t.Errorf("algorithms = %v, want both strategies", result.AlgorithmsUsed)
	}
}

func TestCrossSell_BasketComplements(t *testing.T) {
	svc, _ := testService(nil)

	result, _, err := svc.CrossSell(context.Background(), Request{ProductID: 10, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Items) == 0 {
		t.Fatal("expected cross-sell items")
	}
	if result.Items[0].ProductID != 11 {
		t.Errorf("top cross-sell = %d, want 11", result.Items[0].ProductID)
	}
	// the out-of-stock elbow is in the basket data but filtered out
	for _, item := range result.Items {
		if item.ProductID == 13 {
			t.Error("out-of-stock item surfaced in cross-sell")
		}
	}
}

func TestInventorySuggestions_TurnoverFirst(t *testing.T) {
	svc, _ := testService(nil)

	result, _, err := svc.InventorySuggestions(context.Background(), Request{CustomerID: 1, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Items) == 0 {
		t.Fatal("expected inventory suggestions")
	}
	if result.Items[0].ProductID != 11 {
		t.Errorf("top item = %d, want the turnover priority", result.Items[0].ProductID)
	}
}

func TestRecommendations_ServedEventLogged(t *testing.T) {
	events := newFakeEventRepo()
	svc, _ := testService(events)

	_, _, err := svc.Recommendations(context.Background(), Request{CustomerID: 1, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}

	select {
	case <-events.saved:
	case <-time.After(2 * time.Second):
		t.Fatal("served event was not persisted")
	}

	got := events.all()
	if len(got) != 1 {
		t.Fatalf("events = %d, want 1", len(got))
	}
	if got[0].EventType != "served" || got[0].Feature != FeatureRecommendations {
		t.Errorf("event = %+v, want served/%s", got[0], FeatureRecommendations)
	}
	if got[0].Fingerprint == "" {
		t.Error("served event should carry the cache fingerprint")
	}
}

func TestLogFeedback(t *testing.T) {
	events := newFakeEventRepo()
	svc, _ := testService(events)

	err := svc.LogFeedback(context.Background(), domain.SuggestionEvent{
		Feature:    FeatureRecommendations,
		CustomerID: 1,
		ProductID:  10,
		EventType:  "click",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(events.all()) != 1 {
		t.Fatal("feedback event not saved")
	}

	err = svc.LogFeedback(context.Background(), domain.SuggestionEvent{
		ProductID: 10,
		EventType: "served",
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("server-only event type should be rejected, got %v", err)
	}

	err = svc.LogFeedback(context.Background(), domain.SuggestionEvent{EventType: "click"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("missing product id should be rejected, got %v", err)
	}
}
