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

	"github.com/stitts-dev/nba-props/internal/api"
	"github.com/stitts-dev/nba-props/internal/api/handlers"
	"github.com/stitts-dev/nba-props/internal/api/middleware"
	"github.com/stitts-dev/nba-props/internal/providers"
	"github.com/stitts-dev/nba-props/internal/repository"
	"github.com/stitts-dev/nba-props/internal/resilience"
	"github.com/stitts-dev/nba-props/internal/services"
	"github.com/stitts-dev/nba-props/pkg/config"
	"github.com/stitts-dev/nba-props/pkg/database"
	"github.com/stitts-dev/nba-props/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repo := repository.NewProjectionRepository(db.DB)
	if err := repo.Migrate(); err != nil {
		log.Fatalf("Failed to migrate projection tables: %v", err)
	}

	redisClient, err := services.NewRedisClient(context.Background(), cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	cache := services.NewCacheService(redisClient)

	metrics := services.NewMetrics()
	breakers := resilience.NewCircuitBreakerService(cfg.CircuitBreakerThreshold, time.Minute, log)
	teams := providers.NewTeamDirectory()

	stats := providers.NewNBAStatsClient(providers.NBAStatsConfig{
		BaseURL:     cfg.NBAStatsBaseURL,
		Timeout:     cfg.ExternalAPITimeout,
		MinInterval: cfg.NBAStatsRateLimit,
		CacheTTL:    cfg.CacheTTL,
	}, teams, cache, breakers, log)
	dvp := providers.NewDVPScraper(cfg.DVPURL, cfg.ExternalAPITimeout, teams, breakers, log)
	odds := providers.NewOddsClient(cfg.OddsAPIBaseURL, cfg.OddsAPIKey, cfg.ExternalAPITimeout, breakers, log)
	if !odds.Enabled() {
		log.Warn("ODDS_API_KEY not set, results will carry no reference lines")
	}

	policy := cfg.RetryPolicy()
	policy.Logger = log
	policy.Observer = metrics
	acquisition := services.NewAcquisition(stats, dvp, odds, policy, log)

	hub := services.NewWebSocketHub(log)
	go hub.Run()
	defer hub.Stop()

	store := services.NewInvalidatingStore(repo, cache, log)
	pipeline := services.NewProjectionPipeline(acquisition, store, hub, metrics, services.PipelineConfig{
		WindowDays:      cfg.ScheduleWindowDays,
		EventCooldown:   cfg.EventCooldown,
		SingleEventMode: cfg.SingleEventMode,
	}, log)

	passCtx, cancelPasses := context.WithCancel(context.Background())
	defer cancelPasses()

	var scheduler *services.PassScheduler
	var jobs handlers.JobReporter
	if cfg.EnableScheduler {
		scheduler = services.NewPassScheduler(pipeline, cfg.PassSchedule, log)
		if err := scheduler.Start(); err != nil {
			log.Fatalf("Failed to start pass scheduler: %v", err)
		}
		jobs = scheduler
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.CORS(cfg.CorsOrigins))
	router.Use(middleware.Metrics(metrics))

	api.SetupRoutes(router, api.Dependencies{
		Projections: handlers.NewProjectionHandler(passCtx, repo, cache, pipeline, cfg.CacheTTL, log),
		Health:      handlers.NewHealthHandler(repo, cache, breakers, jobs),
		WebSocket:   handlers.NewWebSocketHandler(hub, cfg.CorsOrigins, log),
		Metrics:     metrics,
		JWTSecret:   cfg.JWTSecret,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	if scheduler != nil {
		if err := scheduler.Stop(); err != nil {
			log.WithError(err).Warn("Failed to stop pass scheduler")
		}
	}
	cancelPasses()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
