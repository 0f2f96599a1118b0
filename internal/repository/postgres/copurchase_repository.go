package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"shopsense/business/recommend"
	"shopsense/domain"
)

// The affinity queries read the order history tables directly:
//
// CREATE TABLE public.orders (
//     id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     customer_id BIGINT,
//     created_at  TIMESTAMPTZ DEFAULT NOW()
// );
//
// CREATE TABLE public.order_lines (
//     id         BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     order_id   BIGINT,
//     product_id BIGINT,
//     quantity   NUMERIC,
//     unit_price NUMERIC
// );

type CoPurchaseRepository struct {
	DB *gorm.DB
}

func NewCoPurchaseRepository(db *gorm.DB) *CoPurchaseRepository {
	return &CoPurchaseRepository{
		DB: db,
	}
}

type affinityRow struct {
	ProductID uint64
	Freq      int64
}

// TopForCustomer mines the order history of customers whose baskets
// overlap with the given customer, excluding what they already buy.
func (r *CoPurchaseRepository) TopForCustomer(ctx context.Context, customerID uint64, limit int) ([]recommend.ScoredProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []affinityRow
	err := r.DB.WithContext(ctx).Raw(`
		WITH own AS (
			SELECT DISTINCT ol.product_id
			FROM order_lines ol
			JOIN orders o ON o.id = ol.order_id
			WHERE o.customer_id = @customer
		),
		peers AS (
			SELECT DISTINCT o.customer_id
			FROM orders o
			JOIN order_lines ol ON ol.order_id = o.id
			WHERE ol.product_id IN (SELECT product_id FROM own)
			  AND o.customer_id <> @customer
		)
		SELECT ol.product_id AS product_id, COUNT(*) AS freq
		FROM order_lines ol
		JOIN orders o ON o.id = ol.order_id
		WHERE o.customer_id IN (SELECT customer_id FROM peers)
		  AND ol.product_id NOT IN (SELECT product_id FROM own)
		GROUP BY ol.product_id
		ORDER BY freq DESC
		LIMIT @limit`,
		map[string]any{"customer": customerID, "limit": limit},
	).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query co-purchase affinity: %w", err)
	}

	return r.resolve(ctx, rows)
}

// BoughtTogether counts how often other products appear on the same
// order as the given one.
func (r *CoPurchaseRepository) BoughtTogether(ctx context.Context, productID uint64, limit int) ([]recommend.ScoredProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []affinityRow
	err := r.DB.WithContext(ctx).Raw(`
		SELECT other.product_id AS product_id, COUNT(*) AS freq
		FROM order_lines seed
		JOIN order_lines other
		  ON other.order_id = seed.order_id
		 AND other.product_id <> seed.product_id
		WHERE seed.product_id = @product
		GROUP BY other.product_id
		ORDER BY freq DESC
		LIMIT @limit`,
		map[string]any{"product": productID, "limit": limit},
	).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query bought-together: %w", err)
	}

	return r.resolve(ctx, rows)
}

// resolve loads the product rows and converts raw frequencies into
// scores relative to the strongest match.
func (r *CoPurchaseRepository) resolve(ctx context.Context, rows []affinityRow) ([]recommend.ScoredProduct, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]uint64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ProductID)
	}

	var products []domain.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load affinity products: %w", err)
	}

	byID := make(map[uint64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	maxFreq := rows[0].Freq
	out := make([]recommend.ScoredProduct, 0, len(rows))
	for _, row := range rows {
		p, ok := byID[row.ProductID]
		if !ok {
			continue
		}
		out = append(out, recommend.ScoredProduct{
			Product: p,
			Score:   float64(row.Freq) / float64(maxFreq),
		})
	}

	return out, nil
}
