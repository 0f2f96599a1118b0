package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"shopsense/business/recommend"
	"shopsense/domain"
)

type InventoryRepository struct {
	DB *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{
		DB: db,
	}
}

// TurnoverPriorities surfaces in-stock products the warehouse most
// wants to move: deep stock that is not already selling well. Scores
// are relative to the deepest stock in the result.
func (r *InventoryRepository) TurnoverPriorities(ctx context.Context, limit int) ([]recommend.ScoredProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var products []domain.Product
	err := r.DB.WithContext(ctx).
		Where("stock_qty > 0").
		Order("stock_qty DESC, order_count ASC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query turnover priorities: %w", err)
	}

	if len(products) == 0 {
		return nil, nil
	}

	maxQty := products[0].StockQty
	out := make([]recommend.ScoredProduct, 0, len(products))
	for _, p := range products {
		out = append(out, recommend.ScoredProduct{
			Product: p,
			Score:   p.StockQty / maxQty,
		})
	}

	return out, nil
}
