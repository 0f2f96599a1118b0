package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"shopsense/domain"
)

type SearchTermRepository struct {
	DB *gorm.DB
}

func NewSearchTermRepository(db *gorm.DB) *SearchTermRepository {
	return &SearchTermRepository{
		DB: db,
	}
}

func (r *SearchTermRepository) FindByPrefix(ctx context.Context, prefix string, limit int) ([]domain.SearchTerm, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var terms []domain.SearchTerm
	err := r.DB.WithContext(ctx).
		Where("term ILIKE ?", prefix+"%").
		Order("use_count DESC").
		Limit(limit).
		Find(&terms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find terms by prefix: %w", err)
	}

	return terms, nil
}

func (r *SearchTermRepository) FindAll(ctx context.Context, limit int) ([]domain.SearchTerm, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var terms []domain.SearchTerm
	err := r.DB.WithContext(ctx).
		Order("use_count DESC").
		Limit(limit).
		Find(&terms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find search terms: %w", err)
	}

	return terms, nil
}
