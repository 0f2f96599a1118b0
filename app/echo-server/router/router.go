package router

import (
	"github.com/labstack/echo/v4"

	"shopsense/internal/middleware"
	"shopsense/internal/rest"
)

func SetRecommendRoutes(api *echo.Group, handler *rest.RecommendHandler) {
	authRequired := middleware.AuthMiddleware()

	api.GET("/recommendations", handler.Recommendations, authRequired)
	api.GET("/inventory/suggestions", handler.InventorySuggestions, authRequired)

	products := api.Group("/products")
	products.GET("/:id/similar", handler.SimilarProducts)
	products.GET("/:id/cross-sell", handler.CrossSell)

	api.POST("/suggestions/feedback", handler.Feedback)
}

func SetSearchRoutes(api *echo.Group, handler *rest.SearchHandler) {
	search := api.Group("/search")

	search.GET("/suggestions", handler.Suggestions)
	search.GET("/autocomplete", handler.Autocomplete)
	search.GET("/spellcheck", handler.SpellCheck)
	search.GET("/semantic", handler.Semantic)
}

func SetAdminRoutes(api *echo.Group, handler *rest.AdminHandler) {
	admin := api.Group("/admin", middleware.AuthMiddleware(), middleware.AdminOnly())

	admin.GET("/strategies", handler.ListStrategies)
	admin.GET("/strategies/:feature", handler.GetStrategies)
	admin.PUT("/strategies/:feature", handler.UpdateStrategies)
}
