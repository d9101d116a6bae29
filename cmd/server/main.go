package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/quicktify/quicktify-api/internal/clients"
	"github.com/quicktify/quicktify-api/internal/config"
	"github.com/quicktify/quicktify-api/internal/database"
	"github.com/quicktify/quicktify-api/internal/handlers"
	"github.com/quicktify/quicktify-api/internal/middleware"
	"github.com/quicktify/quicktify-api/internal/services"
	"github.com/quicktify/quicktify-api/internal/utils"

	_ "github.com/quicktify/quicktify-api/docs/api" // Swagger docs
)

// @title Quicktify API
// @version 1.0.0
// @description Review analysis, spam detection and app-rating estimation API for the Quicktify dashboard
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/quicktify/quicktify-api

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Collaborator clients
	scraperClient := clients.NewScraperClient(cfg.ScraperAPIURL)
	modelClient := clients.NewModelClient(cfg.ModelAPIURL)
	detailClient := clients.NewDetailClient()

	// Services
	summarizer := services.NewSummarizer(db, scraperClient, detailClient)
	analysisService := &services.AnalysisService{
		DB:         db,
		Scraper:    scraperClient,
		Model:      modelClient,
		Summarizer: summarizer,
	}
	estimationService := &services.EstimationService{
		DB:         db,
		Model:      modelClient,
		Summarizer: summarizer,
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: utils.ErrorHandler,
		BodyLimit:    33 * 1024 * 1024, // CSV ceiling plus multipart overhead
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("quicktify")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API routes under /api
	api := app.Group("/api")

	// Version middleware
	api.Use(middleware.VersionMiddleware())

	// Create handlers
	analysisHandler := &handlers.AnalysisHandler{
		Cfg:        cfg,
		Service:    analysisService,
		Summarizer: summarizer,
		Details:    detailClient,
	}
	estimationHandler := &handlers.EstimationHandler{
		Cfg:        cfg,
		Service:    estimationService,
		Summarizer: summarizer,
	}
	limitsHandler := &handlers.LimitsHandler{Cfg: cfg, DB: db}
	usersHandler := &handlers.UsersHandler{DB: db}
	healthHandler := &handlers.HealthHandler{Cfg: cfg, DB: db}

	// Health
	api.Get("/health", healthHandler.GetHealth)

	// Identity-provider events (shared-secret guarded, no session)
	api.Post("/webhooks/identity", middleware.WebhookSecret(cfg), usersHandler.IdentityWebhook)

	// Authenticated routes
	auth := middleware.AuthUser(cfg)

	api.Post("/analyses", auth, analysisHandler.SubmitAnalysis)
	api.Get("/analyses", auth, analysisHandler.GetAnalyses)
	api.Get("/analyses/:id", auth, analysisHandler.GetAnalysis)
	api.Get("/analyses/:id/summary", auth, analysisHandler.GetAnalysisSummary)
	api.Get("/analyses/:id/details", auth, analysisHandler.GetAnalysisDetails)

	api.Post("/estimations", auth, estimationHandler.SubmitEstimation)
	api.Get("/estimations", auth, estimationHandler.GetEstimations)
	api.Get("/estimations/last", auth, estimationHandler.GetLastEstimation)
	api.Get("/estimations/:id", auth, estimationHandler.GetEstimation)
	api.Get("/estimations/:id/summary", auth, estimationHandler.GetEstimationSummary)

	api.Get("/limits/analysis", auth, limitsHandler.CheckAnalysisLimit)
	api.Get("/limits/estimation", auth, limitsHandler.CheckEstimationLimit)
	api.Get("/usage", auth, limitsHandler.GetUsage)

	api.Get("/users/me", auth, usersHandler.GetMe)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Authorizer client is initialized lazily on the first authenticated request
	log.Printf("Authorizer will be initialized on first authenticated request")
	log.Printf("Limit policy: %s (analysis=%d, estimation=%d)",
		cfg.Limits.DisplayMode, cfg.Limits.AnalysisLimit, cfg.Limits.EstimationLimit)

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}
