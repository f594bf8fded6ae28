package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fantasy-helper/guidance-service/internal/api/handlers"
	"github.com/fantasy-helper/guidance-service/internal/config"
	"github.com/fantasy-helper/guidance-service/internal/guidance"
	"github.com/fantasy-helper/guidance-service/internal/providers"
	"github.com/fantasy-helper/guidance-service/internal/schedule"
	"github.com/fantasy-helper/guidance-service/internal/services"
	"github.com/fantasy-helper/guidance-service/internal/storage"
	"github.com/fantasy-helper/guidance-service/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Initialize structured logger with service context
	structuredLogger := logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	logger.WithService("guidance-service").WithFields(logrus.Fields{
		"version":     "1.0.0",
		"environment": cfg.Env,
		"port":        cfg.Port,
	}).Info("Starting Guidance Service")

	// Setup Gin mode
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := storage.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logger.WithService("guidance-service").Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	store, err := storage.NewStore(db, structuredLogger)
	if err != nil {
		logger.WithService("guidance-service").Fatalf("Failed to initialize store: %v", err)
	}

	// Connect to Redis
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.WithService("guidance-service").Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opt)
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.WithService("guidance-service").Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize core services
	cacheService := services.NewCacheService(redisClient, structuredLogger)
	nhlClient := providers.NewNHLClient(cfg.NHLAPIBaseURL, cfg.ExternalAPITimeout, cfg.CircuitBreakerThreshold, structuredLogger)
	resolver := schedule.NewResolver(cacheService, nhlClient, structuredLogger)
	aggregator := schedule.NewAggregator(resolver, structuredLogger)

	engineConfig := guidance.DefaultConfig()
	engineConfig.UnknownPolicy = guidance.ParseUnknownPolicy(cfg.UnknownPolicy)
	engine := guidance.NewEngine(engineConfig, structuredLogger)

	// The rewrite step is optional; without a credential it is a pass-through.
	var rewriter services.Rewriter = services.NoopRewriter{}
	if cfg.OpenAIAPIKey != "" {
		rewriter = services.NewRewriteClient(cfg, structuredLogger)
		logger.WithService("guidance-service").Info("Rewrite step enabled")
	}

	guidanceService := services.NewGuidanceService(store, aggregator, engine, rewriter, structuredLogger)

	// Schedule the nightly batch run
	batchRunner := services.NewBatchRunner(store, guidanceService, cfg.NightlyCron, structuredLogger)
	if err := batchRunner.Start(); err != nil {
		logger.WithService("guidance-service").Fatalf("Failed to start batch runner: %v", err)
	}
	defer batchRunner.Stop()

	// Initialize router
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	// Initialize handlers
	guidanceHandler := handlers.NewGuidanceHandler(guidanceService, store, structuredLogger)
	leagueHandler := handlers.NewLeagueHandler(store, structuredLogger)
	healthHandler := handlers.NewHealthHandler(db.DB, redisClient, structuredLogger)

	// Setup API routes
	apiV1 := router.Group("/api/v1")
	{
		apiV1.PUT("/leagues/:leagueId", leagueHandler.UpsertLeague)
		apiV1.GET("/leagues/:leagueId", leagueHandler.GetLeague)
		apiV1.PUT("/leagues/:leagueId/teams/:teamId/roster", leagueHandler.UpsertRoster)

		apiV1.POST("/leagues/:leagueId/teams/:teamId/guidance", guidanceHandler.RunNow)
		apiV1.GET("/leagues/:leagueId/teams/:teamId/guidance/latest", guidanceHandler.GetLatest)
	}

	// Health and metrics endpoints
	router.GET("/health", healthHandler.GetHealth)
	router.HEAD("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)
	router.HEAD("/ready", healthHandler.GetReady)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		logger.WithService("guidance-service").WithField("port", cfg.Port).Info("Guidance service started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithService("guidance-service").Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.WithService("guidance-service").Info("Shutting down guidance service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithService("guidance-service").Fatalf("Guidance service forced to shutdown: %v", err)
	}

	logger.WithService("guidance-service").Info("Guidance service exited")
}
