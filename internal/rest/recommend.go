package rest

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"shopsense/business/recommend"
	"shopsense/domain"
)

type (
	RecommendHandler struct {
		validate *validator.Validate
		service  RecommendService
	}

	RecommendService interface {
		Recommendations(ctx context.Context, req recommend.Request) (*domain.SuggestResult, bool, error)
		SimilarProducts(ctx context.Context, req recommend.Request) (*domain.SuggestResult, bool, error)
		CrossSell(ctx context.Context, req recommend.Request) (*domain.SuggestResult, bool, error)
		InventorySuggestions(ctx context.Context, req recommend.Request) (*domain.SuggestResult, bool, error)
		LogFeedback(ctx context.Context, event domain.SuggestionEvent) error
	}

	ProductSuggestQuery struct {
		CustomerID        uint64   `query:"customer_id"`
		Context           string   `query:"context"`
		Limit             int      `query:"limit"`
		PriceMin          *float64 `query:"price_min"`
		PriceMax          *float64 `query:"price_max"`
		IncludeOutOfStock bool     `query:"include_out_of_stock"`
	}

	SuggestFeedbackRequest struct {
		Feature     string `json:"feature" validate:"required"`
		CustomerID  uint64 `json:"customer_id"`
		ProductID   uint64 `json:"product_id" validate:"required"`
		Fingerprint string `json:"fingerprint"`
		EventType   string `json:"event_type" validate:"required,oneof=impression click conversion"`
	}
)

func NewRecommendHandler(svc RecommendService) *RecommendHandler {
	return &RecommendHandler{
		validate: validator.New(),
		service:  svc,
	}
}

func (h *RecommendHandler) request(c echo.Context) (recommend.Request, error) {
	var q ProductSuggestQuery
	if err := c.Bind(&q); err != nil {
		return recommend.Request{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	return recommend.Request{
		CustomerID:        q.CustomerID,
		ContextTag:        q.Context,
		Limit:             q.Limit,
		PriceMin:          q.PriceMin,
		PriceMax:          q.PriceMax,
		IncludeOutOfStock: q.IncludeOutOfStock,
	}, nil
}

func seedProductID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid product id", domain.ErrInvalidInput)
	}
	return id, nil
}

// resolveCustomer pins the customer-keyed features to the caller's own
// identity from the auth claims. Admins may target another customer via
// the customer_id query param; anyone else is always themselves.
func resolveCustomer(c echo.Context, req *recommend.Request) {
	claim, ok := c.Get("user_id").(string)
	if !ok {
		return
	}
	callerID, err := strconv.ParseUint(claim, 10, 64)
	if err != nil || callerID == 0 {
		return
	}

	role, _ := c.Get("role").(string)
	if req.CustomerID == 0 || !strings.EqualFold(role, "ADMIN") {
		req.CustomerID = callerID
	}
}

// GET /api/v1/recommendations?customer_id=42&context=checkout&limit=10
func (h *RecommendHandler) Recommendations(c echo.Context) error {
	start := time.Now()

	req, err := h.request(c)
	if err != nil {
		return suggestFail(c, recommend.FeatureRecommendations, start, err)
	}
	resolveCustomer(c, &req)

	result, cached, err := h.service.Recommendations(c.Request().Context(), req)
	if err != nil {
		return suggestFail(c, recommend.FeatureRecommendations, start, err)
	}

	return suggestOK(c, recommend.FeatureRecommendations, start, result, cached)
}

// GET /api/v1/products/:id/similar?limit=10
func (h *RecommendHandler) SimilarProducts(c echo.Context) error {
	start := time.Now()

	id, err := seedProductID(c)
	if err != nil {
		return suggestFail(c, recommend.FeatureSimilar, start, err)
	}
	req, err := h.request(c)
	if err != nil {
		return suggestFail(c, recommend.FeatureSimilar, start, err)
	}
	req.ProductID = id

	result, cached, err := h.service.SimilarProducts(c.Request().Context(), req)
	if err != nil {
		return suggestFail(c, recommend.FeatureSimilar, start, err)
	}

	return suggestOK(c, recommend.FeatureSimilar, start, result, cached)
}

// GET /api/v1/products/:id/cross-sell?limit=8
func (h *RecommendHandler) CrossSell(c echo.Context) error {
	start := time.Now()

	id, err := seedProductID(c)
	if err != nil {
		return suggestFail(c, recommend.FeatureCrossSell, start, err)
	}
	req, err := h.request(c)
	if err != nil {
		return suggestFail(c, recommend.FeatureCrossSell, start, err)
	}
	req.ProductID = id

	result, cached, err := h.service.CrossSell(c.Request().Context(), req)
	if err != nil {
		return suggestFail(c, recommend.FeatureCrossSell, start, err)
	}

	return suggestOK(c, recommend.FeatureCrossSell, start, result, cached)
}

// GET /api/v1/inventory/suggestions?customer_id=42&limit=15
func (h *RecommendHandler) InventorySuggestions(c echo.Context) error {
	start := time.Now()

	req, err := h.request(c)
	if err != nil {
		return suggestFail(c, recommend.FeatureInventory, start, err)
	}
	resolveCustomer(c, &req)

	result, cached, err := h.service.InventorySuggestions(c.Request().Context(), req)
	if err != nil {
		return suggestFail(c, recommend.FeatureInventory, start, err)
	}

	return suggestOK(c, recommend.FeatureInventory, start, result, cached)
}

// POST /api/v1/suggestions/feedback
func (h *RecommendHandler) Feedback(c echo.Context) error {
	var req SuggestFeedbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	event := domain.SuggestionEvent{
		Feature:     req.Feature,
		CustomerID:  req.CustomerID,
		ProductID:   req.ProductID,
		Fingerprint: req.Fingerprint,
		EventType:   req.EventType,
		CreatedAt:   time.Now(),
	}

	if err := h.service.LogFeedback(c.Request().Context(), event); err != nil {
		code := domain.ErrorCodeFor(err)
		if code == domain.CodeInvalidInput {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated("feedback recorded"))
}
