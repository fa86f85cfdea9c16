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
	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/codeladder/dashboard/internal/data"
	"github.com/codeladder/dashboard/internal/feed"
	"github.com/codeladder/dashboard/internal/handler"
	"github.com/codeladder/dashboard/internal/infrastructure"
	"github.com/codeladder/dashboard/internal/ledger"
	"github.com/codeladder/dashboard/internal/middleware"
	"github.com/codeladder/dashboard/internal/repository"
	"github.com/codeladder/dashboard/internal/service"
)

func main() {
	// Load .env if present; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment")
	}

	// Load configuration
	config := infrastructure.LoadConfig()

	// Initialize logger
	logger, err := infrastructure.NewLogger(config.Server.Environment)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer infrastructure.SyncLogger(logger)

	logger.Info("Starting CodeLadder Dashboard API",
		zap.String("environment", config.Server.Environment),
		zap.Int("port", config.Server.Port),
	)

	// Initialize context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize telemetry
	telemetry, err := infrastructure.NewTelemetry(ctx, &config.Telemetry, logger)
	if err != nil {
		logger.Error("Failed to initialize telemetry", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		telemetry.Shutdown(shutdownCtx)
	}()

	// Create metrics
	metrics, err := telemetry.CreateMetrics()
	if err != nil {
		logger.Error("Failed to create metrics", zap.Error(err))
		os.Exit(1)
	}

	// Initialize database
	database, err := infrastructure.NewDatabase(&config.Database, logger)
	if err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		os.Exit(1)
	}
	defer database.Close()

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		os.Exit(1)
	}

	// Seed default feed files on first run
	seeder := data.NewSeeder(config.Feeds.Dir, logger)
	if err := seeder.SeedFeeds(); err != nil {
		logger.Error("Failed to seed feed files", zap.Error(err))
		os.Exit(1)
	}

	// Load the initial feed snapshot
	feedStore := feed.NewStore()
	feedLoader := feed.NewLoader(config.Feeds.Dir, logger)
	snapshot, err := feedLoader.Load()
	if err != nil {
		logger.Error("Failed to load feed snapshot", zap.Error(err))
		os.Exit(1)
	}
	feedStore.Swap(snapshot)

	// Export snapshot age so a stalled refresh loop is visible on /metrics
	if err := telemetry.RegisterFeedAge(feedStore.Age); err != nil {
		logger.Warn("Failed to register feed age gauge", zap.Error(err))
	}

	// Refresh the snapshot periodically so a synced feed directory is
	// picked up without a restart
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		logger.Error("Failed to create scheduler", zap.Error(err))
		os.Exit(1)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(config.Feeds.RefreshInterval),
		gocron.NewTask(func() {
			start := time.Now()
			snap, err := feedLoader.Load()
			metrics.FeedRefreshDuration.Record(ctx, time.Since(start).Seconds(),
				metric.WithAttributes(attribute.Bool("feed.error", err != nil)),
			)
			if err != nil {
				logger.Warn("Feed refresh failed, keeping current snapshot", zap.Error(err))
				return
			}
			feedStore.Swap(snap)
		}),
	)
	if err != nil {
		logger.Error("Failed to schedule feed refresh", zap.Error(err))
		os.Exit(1)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			logger.Warn("Scheduler shutdown failed", zap.Error(err))
		}
	}()

	// Initialize upstream clients
	ledgerClient := ledger.New(config.Ledger.BaseURL, config.Ledger.Timeout)
	codeforcesClient := feed.NewCodeforcesClient(config.Codeforces.BaseURL, config.Codeforces.Timeout)

	// Initialize repositories
	sessionRepo := repository.NewSessionRepository(database.DB)
	solvedCache := repository.NewSolvedCacheRepository(database.DB)
	ledgerMirror := repository.NewLedgerMirrorRepository(database.DB)

	// Initialize services
	ledgerSource := service.NewLedgerSource(ledgerClient, ledgerMirror, metrics, logger)
	sessionService := service.NewSessionService(sessionRepo, ledgerClient, &config.JWT, telemetry.Tracer, logger)
	codechefService := service.NewCodeChefService(feedStore, solvedCache, telemetry.Tracer, logger)
	leetcodeService := service.NewLeetCodeService(feedStore, ledgerSource, telemetry.Tracer, logger)
	problemsetService := service.NewProblemsetService(ledgerSource, metrics, telemetry.Tracer, logger)
	codeforcesService := service.NewCodeforcesService(feedStore, codeforcesClient, telemetry.Tracer, logger)
	calendarService := service.NewCalendarService(ledgerSource, telemetry.Tracer, logger)

	// Initialize handlers
	sessionHandler := handler.NewSessionHandler(sessionService)
	codechefHandler := handler.NewCodeChefHandler(codechefService)
	leetcodeHandler := handler.NewLeetCodeHandler(leetcodeService)
	problemsetHandler := handler.NewProblemsetHandler(problemsetService)
	codeforcesHandler := handler.NewCodeforcesHandler(codeforcesService)
	calendarHandler := handler.NewCalendarHandler(calendarService)

	// Setup Gin router
	if config.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add global middleware
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.CORSMiddleware(middleware.DefaultCORSConfig()))
	router.Use(middleware.TracingMiddleware(telemetry.Tracer))
	router.Use(middleware.MetricsMiddleware(metrics))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}
		if _, err := feedStore.Current(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "feed snapshot not loaded",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": config.Telemetry.ServiceVersion,
		})
	})

	// Metrics endpoint for Prometheus
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", sessionHandler.Login)
			auth.POST("/refresh", sessionHandler.Refresh)
			auth.POST("/logout", sessionHandler.Logout)
		}

		// Codeforces archive is public, it never touches the ledger
		api.GET("/codeforces/table", codeforcesHandler.GetTable)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(sessionService))
		{
			codechef := protected.Group("/codechef")
			{
				codechef.GET("/contests", codechefHandler.GetContests)
				codechef.POST("/contests/:contest/problems/:code/toggle", codechefHandler.ToggleSolved)
				codechef.DELETE("/progress", codechefHandler.ResetProgress)
			}

			leetcode := protected.Group("/leetcode")
			{
				leetcode.GET("/contests", leetcodeHandler.GetContests)
				leetcode.GET("/skills", leetcodeHandler.GetSkills)
			}

			problemset := protected.Group("/problemset")
			{
				problemset.GET("", problemsetHandler.GetProblemset)
				problemset.GET("/tags", problemsetHandler.GetTags)
				problemset.GET("/analytics", problemsetHandler.GetAnalytics)
			}

			problems := protected.Group("/problems")
			{
				problems.PATCH("/mark", problemsetHandler.MarkSolved)
				problems.PATCH("/unmark", problemsetHandler.UnmarkSolved)
			}

			protected.GET("/calendar", calendarHandler.GetCalendar)
		}
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
		Handler:      router,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("HTTP server starting",
			zap.String("address", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
