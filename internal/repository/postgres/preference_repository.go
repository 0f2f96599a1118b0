package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"shopsense/business/recommend"
	"shopsense/domain"
)

// maxPreferenceTokens bounds the per-request query fan-out.
const maxPreferenceTokens = 8

type PreferenceRepository struct {
	DB *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{
		DB: db,
	}
}

// MatchPreferences matches the customer's free-text preference list
// against product names and categories. The score is the share of
// preference tokens a product matches.
func (r *PreferenceRepository) MatchPreferences(ctx context.Context, customerID uint64, limit int) ([]recommend.ScoredProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var customer domain.Customer
	err := r.DB.WithContext(ctx).First(&customer, customerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("customer %d: %w", customerID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}

	tokens := preferenceTokens(customer.Preferences)
	if len(tokens) == 0 {
		return nil, nil
	}

	matched := make(map[uint64]int)
	byID := make(map[uint64]domain.Product)

	for _, token := range tokens {
		var products []domain.Product
		pattern := "%" + token + "%"
		err := r.DB.WithContext(ctx).
			Where("product_name ILIKE ? OR product_category ILIKE ?", pattern, pattern).
			Order("order_count DESC").
			Limit(limit).
			Find(&products).Error
		if err != nil {
			return nil, fmt.Errorf("failed to match preference %q: %w", token, err)
		}
		for _, p := range products {
			matched[p.ID]++
			byID[p.ID] = p
		}
	}

	out := make([]recommend.ScoredProduct, 0, len(matched))
	for id, hits := range matched {
		out = append(out, recommend.ScoredProduct{
			Product: byID[id],
			Score:   float64(hits) / float64(len(tokens)),
		})
	}

	return out, nil
}

func preferenceTokens(preferences string) []string {
	parts := strings.Split(preferences, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
		if len(out) == maxPreferenceTokens {
			break
		}
	}
	return out
}
