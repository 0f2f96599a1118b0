package rest

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"shopsense/business/search"
	"shopsense/domain"
)

type (
	SearchHandler struct {
		validate *validator.Validate
		service  SearchService
	}

	SearchService interface {
		Suggestions(ctx context.Context, query, contextTag string, limit int) (*domain.SuggestResult, bool, error)
		Autocomplete(ctx context.Context, query, contextTag string, limit int) (*domain.SuggestResult, bool, error)
		SpellCheck(ctx context.Context, query string, limit int) (*domain.SuggestResult, bool, error)
		Semantic(ctx context.Context, query, contextTag string, limit int, includeIntent bool) (*domain.SuggestResult, bool, error)
	}

	SearchQuery struct {
		Q             string `query:"q" validate:"required"`
		Context       string `query:"context"`
		Limit         int    `query:"limit"`
		IncludeIntent bool   `query:"include_intent"`
	}
)

func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{
		validate: validator.New(),
		service:  svc,
	}
}

// query binds and validates the shared query parameters. Failures are
// input errors: the suggestion endpoints answer them with the same
// envelope and stable code as every other failure path.
func (h *SearchHandler) query(c echo.Context) (SearchQuery, error) {
	var q SearchQuery
	if err := c.Bind(&q); err != nil {
		return SearchQuery{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if err := h.validate.Struct(&q); err != nil {
		return SearchQuery{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return q, nil
}

// GET /api/v1/search/suggestions?q=copper&limit=10
func (h *SearchHandler) Suggestions(c echo.Context) error {
	start := time.Now()

	q, err := h.query(c)
	if err != nil {
		return suggestFail(c, search.FeatureSuggestions, start, err)
	}

	result, cached, err := h.service.Suggestions(c.Request().Context(), q.Q, q.Context, q.Limit)
	if err != nil {
		return suggestFail(c, search.FeatureSuggestions, start, err)
	}

	return suggestOK(c, search.FeatureSuggestions, start, result, cached)
}

// GET /api/v1/search/autocomplete?q=cop&limit=8
func (h *SearchHandler) Autocomplete(c echo.Context) error {
	start := time.Now()

	q, err := h.query(c)
	if err != nil {
		return suggestFail(c, search.FeatureAutocomplete, start, err)
	}

	result, cached, err := h.service.Autocomplete(c.Request().Context(), q.Q, q.Context, q.Limit)
	if err != nil {
		return suggestFail(c, search.FeatureAutocomplete, start, err)
	}

	return suggestOK(c, search.FeatureAutocomplete, start, result, cached)
}

// GET /api/v1/search/spellcheck?q=coper%20pipe
func (h *SearchHandler) SpellCheck(c echo.Context) error {
	start := time.Now()

	q, err := h.query(c)
	if err != nil {
		return suggestFail(c, search.FeatureSpellCheck, start, err)
	}

	result, cached, err := h.service.SpellCheck(c.Request().Context(), q.Q, q.Limit)
	if err != nil {
		return suggestFail(c, search.FeatureSpellCheck, start, err)
	}

	return suggestOK(c, search.FeatureSpellCheck, start, result, cached)
}

// GET /api/v1/search/semantic?q=pipe%20copper&include_intent=true
func (h *SearchHandler) Semantic(c echo.Context) error {
	start := time.Now()

	q, err := h.query(c)
	if err != nil {
		return suggestFail(c, search.FeatureSemantic, start, err)
	}

	result, cached, err := h.service.Semantic(c.Request().Context(), q.Q, q.Context, q.Limit, q.IncludeIntent)
	if err != nil {
		return suggestFail(c, search.FeatureSemantic, start, err)
	}

	return suggestOK(c, search.FeatureSemantic, start, result, cached)
}
