package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"expense-match/internal/cache"
	"expense-match/internal/config"
	"expense-match/internal/database"
	"expense-match/internal/handlers"
	"expense-match/internal/middleware"
	"expense-match/internal/repositories"
	"expense-match/internal/services"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, relying on environment variables")
	}

	cfg := config.Load()
	setupLogger(cfg)

	db, err := database.Initialize(cfg)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	patternRepo := repositories.NewPatternRepository(db.DB)
	merchantRepo := repositories.NewMerchantRepository(db.DB)
	categoryRepo := repositories.NewCategoryRepository(db.DB)
	expenseRepo := repositories.NewExpenseRepository(db.DB)

	if err := categoryRepo.EnsureDefaults(); err != nil {
		slog.Error("Failed to ensure default categories", "error", err)
		os.Exit(1)
	}

	store := newCacheStore(cfg, db)

	normalizerOptions := services.DefaultNormalizerOptions()
	normalizerOptions.FoldDiacritics = cfg.Matcher.HandleSpanish
	normalizer := services.NewTextNormalizer(normalizerOptions)

	matcher := services.NewFuzzyMatcher(
		matcherOptions(cfg),
		normalizer,
		store,
		services.NewPrometheusMetrics(),
		services.NewMatchLogger(slog.Default()),
	)

	tokenService := services.NewTokenService(&cfg.JWT)
	generator := services.NewCandidateGenerator()

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = middleware.CustomHTTPErrorHandler

	e.Use(middleware.RequestID())
	e.Use(middleware.PanicRecovery())
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RateLimiterWithConfig(cfg.Security.RateLimitPerSecond, cfg.Security.RateLimitPerSecond*2))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.Server.CORSAllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, middleware.TraceIDHeader},
	}))

	healthHandler := handlers.NewHealthCheckHandler(db.DB, matcher)
	matchHandler := handlers.NewMatchHandler(matcher, patternRepo, merchantRepo, normalizer, cfg.Matcher.MaxBatchSize)
	patternHandler := handlers.NewPatternHandler(patternRepo, categoryRepo)
	merchantHandler := handlers.NewMerchantHandler(merchantRepo, normalizer)
	expenseHandler := handlers.NewExpenseHandler(expenseRepo, categoryRepo, patternRepo, matcher, normalizer)
	adminHandler := handlers.NewAdminHandler(matcher, generator, merchantRepo, patternRepo, categoryRepo, expenseRepo)

	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")

	api.POST("/match", matchHandler.Match)
	api.POST("/match/patterns", matchHandler.MatchPatterns)
	api.POST("/match/merchants", matchHandler.MatchMerchants)
	api.POST("/match/batch", matchHandler.BatchMatch)
	api.POST("/similarity", matchHandler.Similarity)

	api.POST("/expenses/import", expenseHandler.ImportExpenses)
	api.GET("/expenses/uncategorized", expenseHandler.ListUncategorized)
	api.POST("/expenses/:expenseId/categorize", expenseHandler.Categorize)
	api.POST("/expenses/:expenseId/auto-categorize", expenseHandler.AutoCategorize)

	admin := api.Group("/admin", middleware.RequireAuth(tokenService), middleware.RequireAdmin())

	admin.POST("/patterns", patternHandler.CreatePattern)
	admin.GET("/patterns", patternHandler.ListPatterns)
	admin.GET("/patterns/:patternId", patternHandler.GetPattern)
	admin.PUT("/patterns/:patternId", patternHandler.UpdatePattern)
	admin.POST("/patterns/:patternId/usage", patternHandler.RecordUsage)
	admin.DELETE("/patterns/:patternId", patternHandler.DeletePattern)

	admin.POST("/merchants", merchantHandler.CreateMerchant)
	admin.GET("/merchants", merchantHandler.ListMerchants)
	admin.GET("/merchants/:merchantId", merchantHandler.GetMerchant)
	admin.DELETE("/merchants/:merchantId", merchantHandler.DeleteMerchant)
	admin.POST("/merchants/:merchantId/aliases", merchantHandler.CreateAlias)
	admin.GET("/merchants/:merchantId/aliases", merchantHandler.ListAliases)

	admin.GET("/matcher/metrics", adminHandler.GetMatcherMetrics)
	admin.POST("/matcher/reset", adminHandler.ResetMatcher)
	admin.POST("/matcher/cache/clear", adminHandler.ClearCache)
	admin.POST("/dev/seed", adminHandler.Seed)

	if cfg.Matcher.CacheBackend == config.CacheBackendDatabase {
		go cleanupCacheEntries(db)
	}

	go func() {
		address := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		server := &http.Server{
			Addr:         address,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}
		slog.Info("Starting server", "address", address, "environment", cfg.Server.Environment)
		if err := e.StartServer(server); err != nil && err != http.ErrServerClosed {
			slog.Error("Server stopped unexpectedly", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		slog.Error("Failed to shut down gracefully", "error", err)
	}
}

func setupLogger(cfg *config.Config) {
	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(handler))
}

func matcherOptions(cfg *config.Config) services.MatcherOptions {
	return services.MatcherOptions{
		Algorithms:         cfg.Matcher.Algorithms,
		MinConfidence:      cfg.Matcher.MinConfidence,
		MaxResults:         cfg.Matcher.MaxResults,
		Timeout:            cfg.Matcher.Timeout,
		EnableCaching:      cfg.Matcher.EnableCaching,
		NormalizeText:      cfg.Matcher.NormalizeText,
		HandleSpanish:      cfg.Matcher.HandleSpanish,
		MaxCandidates:      cfg.Matcher.MaxCandidates,
		CacheTTL:           cfg.Matcher.CacheTTL,
		SlowMatchThreshold: cfg.Matcher.SlowMatchThreshold,
	}
}

func newCacheStore(cfg *config.Config, db *database.DB) cache.Store {
	if cfg.Matcher.CacheBackend == config.CacheBackendDatabase {
		slog.Info("Using database-backed match cache")
		return cache.NewBreakerStore(cache.NewDatabaseStore(db.DB), cache.DefaultCircuitBreakerConfig())
	}
	return cache.NewMemoryStore(cfg.Matcher.CacheTTL, 10*time.Minute)
}

// cleanupCacheEntries periodically purges expired rows from the
// database-backed match cache
func cleanupCacheEntries(db *database.DB) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := db.CleanupExpiredCacheEntries(); err != nil {
			slog.Warn("Cache cleanup failed", "error", err)
		}
	}
}
