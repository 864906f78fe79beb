package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/carddeck/internal/backend"
	"github.com/localnerve/carddeck/internal/cards"
	"github.com/localnerve/carddeck/internal/config"
	"github.com/localnerve/carddeck/internal/database"
	"github.com/localnerve/carddeck/internal/handlers"
	applogger "github.com/localnerve/carddeck/internal/logger"
	"github.com/localnerve/carddeck/internal/middleware"
	"github.com/localnerve/carddeck/internal/personalization"
	"github.com/localnerve/carddeck/internal/registry"
	"github.com/localnerve/carddeck/internal/resolver"
	"github.com/localnerve/carddeck/internal/statics"
	"github.com/localnerve/carddeck/internal/templates"
	"github.com/localnerve/carddeck/internal/types"

	_ "github.com/localnerve/carddeck/docs/api" // Swagger docs
)

// @title Carddeck API
// @version 1.0.0
// @description AI report card-deck resolution service
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/carddeck
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

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

	// Structured logging
	zlog, err := applogger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync()

	// Connect to the local cache database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Content backend client
	client := backend.New(cfg.BackendURL, cfg.BackendToken, cfg.BackendTimeout, zlog)

	// Static fallback catalog and builtin templates
	catalog, err := statics.Load()
	if err != nil {
		log.Fatalf("Failed to load static card catalog: %v", err)
	}
	defaults, err := templates.LoadDefaults()
	if err != nil {
		log.Fatalf("Failed to load builtin templates: %v", err)
	}

	// Migration registry. Templates named in CARD_MIGRATED start on
	// backend-driven data; everything else serves static fallbacks.
	reg := registry.New(seedMigrations()...)

	loader := templates.NewLoader(client, defaults, zlog)
	store := personalization.NewStore(client, db, zlog)
	res := resolver.New(client, reg, loader, store, catalog, db, zlog, resolver.Options{
		CacheTTL:  cfg.CacheTTL,
		PageLimit: cfg.RecordPageSize,
	})

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: false,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("carddeck")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API routes under /api
	api := app.Group("/api")

	// Version middleware
	api.Use(middleware.VersionMiddleware())

	// Create handlers
	reportHandler := &handlers.ReportHandler{Resolver: res}
	persHandler := &handlers.PersonalizationHandler{Store: store}
	migrationHandler := &handlers.MigrationHandler{Registry: reg}
	healthHandler := &handlers.HealthHandler{Config: cfg, DB: db}

	// Report routes (public GET, admin refresh)
	api.Get("/reports/:applicationId/:reportType/refresh", middleware.AuthAdmin(), reportHandler.RefreshReport)
	api.Get("/reports/:applicationId/:reportType", reportHandler.GetReport)

	// Personalization routes (require user authentication)
	api.Get("/personalization/:userId", middleware.AuthUser(), persHandler.GetPersonalization)
	api.Put("/personalization/:userId", middleware.AuthUser(), persHandler.SavePersonalization)

	// Migration registry routes (public list, admin mutation)
	api.Get("/migration", migrationHandler.ListMigrations)
	api.Post("/migration/:templateId", middleware.AuthAdmin(), migrationHandler.MarkMigrated)
	api.Delete("/migration/:templateId", middleware.AuthAdmin(), migrationHandler.MarkNotMigrated)

	// Health
	api.Get("/health", healthHandler.GetHealth)

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

	// Authorizer initializes lazily on the first authenticated request
	log.Printf("Authorizer will be initialized on first authenticated request")

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

// seedMigrations reads CARD_MIGRATED, a comma-separated list of card
// template ids to treat as migrated at startup. Unknown ids are ignored.
func seedMigrations() []cards.TemplateID {
	raw := os.Getenv("CARD_MIGRATED")
	if raw == "" {
		return nil
	}
	var seed []cards.TemplateID
	for _, part := range strings.Split(raw, ",") {
		id := cards.TemplateID(strings.TrimSpace(part))
		if cards.IsKnownTemplate(id) {
			seed = append(seed, id)
		}
	}
	return seed
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Check if it's an authorization error
	var custom *types.CustomError
	if errors.As(err, &custom) {
		code = custom.Code
		message = custom.Message
		errorType = custom.Type
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
