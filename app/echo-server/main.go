package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shopsense/app/echo-server/router"
	"shopsense/business/ranking"
	"shopsense/business/recommend"
	"shopsense/business/search"
	"shopsense/internal/middleware"
	psqlRepo "shopsense/internal/repository/postgres"
	"shopsense/internal/repository/rediscache"
	"shopsense/internal/rest"
	"shopsense/pkg/config"
	"shopsense/pkg/database"
	redisdb "shopsense/pkg/database/redis"
	"shopsense/pkg/logger"
	"shopsense/pkg/metrics"
	jsonres "shopsense/pkg/response"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting ShopSense", "version", cfg.App.Version)

	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	// Result cache: Redis when enabled, in-process otherwise
	var cache ranking.ResultCache
	if cfg.Redis.Enabled {
		redisClient, err := redisdb.NewRedisClient(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", "error", err)
		}
		defer func() {
			if err := redisdb.CloseRedisClient(redisClient); err != nil {
				logger.Error("Failed to close Redis client", "error", err)
			}
		}()
		cache = rediscache.NewResultCache(redisClient)
		logger.Info("Redis result cache enabled")
	} else {
		cache = ranking.NewMemoryCache()
		logger.Info("In-memory result cache enabled")
	}

	// Init repo
	productRepo := psqlRepo.NewProductRepository(db)
	customerRepo := psqlRepo.NewCustomerRepository(db)
	coPurchaseRepo := psqlRepo.NewCoPurchaseRepository(db)
	preferenceRepo := psqlRepo.NewPreferenceRepository(db)
	inventoryRepo := psqlRepo.NewInventoryRepository(db)
	searchTermRepo := psqlRepo.NewSearchTermRepository(db)
	eventRepo := psqlRepo.NewSuggestionEventRepository(db)

	// Init service
	recommendService := recommend.NewService(
		productRepo,
		customerRepo,
		coPurchaseRepo,
		preferenceRepo,
		inventoryRepo,
		eventRepo,
		cache,
		recommend.Tuning{
			SourceTimeout:           cfg.Suggest.SourceTimeout,
			MarginBoostThresholdPct: cfg.Suggest.MarginBoostThresholdPct,
		},
	)
	searchService := search.NewService(
		searchTermRepo,
		cache,
		search.Tuning{
			SourceTimeout:        cfg.Suggest.SourceTimeout,
			LengthPenaltyCeiling: cfg.Suggest.LengthPenaltyCeiling,
		},
	)

	// Init handler
	recommendHandler := rest.NewRecommendHandler(recommendService)
	searchHandler := rest.NewSearchHandler(searchService)
	adminHandler := rest.NewAdminHandler(recommendService.Engines(), searchService.Engines())

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(echomiddleware.ContextTimeout(cfg.Suggest.RequestDeadline))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, jsonres.Success("ok", nil))
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Setup routes
	api := e.Group("/api/v1")
	router.SetRecommendRoutes(api, recommendHandler)
	router.SetSearchRoutes(api, searchHandler)
	router.SetAdminRoutes(api, adminHandler)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
