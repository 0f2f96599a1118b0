package rest

import (
	"net/http"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"

	"shopsense/business/ranking"
	"shopsense/domain"
)

// AdminHandler exposes the per-feature strategy weights for runtime
// tuning. Changes apply to new computations; cached results serve out
// their TTL unchanged.
type AdminHandler struct {
	engines map[string]*ranking.Engine
}

func NewAdminHandler(engines ...[]*ranking.Engine) *AdminHandler {
	byFeature := make(map[string]*ranking.Engine)
	for _, group := range engines {
		for _, e := range group {
			byFeature[e.Feature()] = e
		}
	}
	return &AdminHandler{engines: byFeature}
}

type featureStrategies struct {
	Feature    string                  `json:"feature"`
	Strategies []domain.StrategyConfig `json:"strategies"`
}

// GET /api/v1/admin/strategies
func (h *AdminHandler) ListStrategies(c echo.Context) error {
	out := make([]featureStrategies, 0, len(h.engines))
	for feature, engine := range h.engines {
		out = append(out, featureStrategies{
			Feature:    feature,
			Strategies: engine.Strategies(),
		})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(out))
}

// GET /api/v1/admin/strategies/:feature
func (h *AdminHandler) GetStrategies(c echo.Context) error {
	engine, ok := h.engines[c.Param("feature")]
	if !ok {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "unknown feature"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(featureStrategies{
		Feature:    engine.Feature(),
		Strategies: engine.Strategies(),
	}))
}

// PUT /api/v1/admin/strategies/:feature
// body: [{"name":"co_purchase","weight":1.0,"enabled":true}, ...]
func (h *AdminHandler) UpdateStrategies(c echo.Context) error {
	engine, ok := h.engines[c.Param("feature")]
	if !ok {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "unknown feature"})
	}

	var body []domain.StrategyConfig
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid body: " + err.Error()})
	}
	if len(body) == 0 {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "at least one strategy is required"})
	}
	for _, s := range body {
		if s.Name == "" {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: "strategy name is required"})
		}
		if s.Weight < 0 {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: "weights must be non-negative"})
		}
	}

	engine.SetStrategies(body)

	return c.JSON(http.StatusOK, fres.Response.StatusOK(featureStrategies{
		Feature:    engine.Feature(),
		Strategies: engine.Strategies(),
	}))
}
