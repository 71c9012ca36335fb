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
	"github.com/kaziflow/kazi-sync/internal/auth"
	"github.com/kaziflow/kazi-sync/internal/config"
	"github.com/kaziflow/kazi-sync/internal/database"
	"github.com/kaziflow/kazi-sync/internal/handlers"
	"github.com/kaziflow/kazi-sync/internal/middleware"
	"github.com/kaziflow/kazi-sync/internal/prefs"
	"github.com/kaziflow/kazi-sync/internal/session"
	"github.com/kaziflow/kazi-sync/internal/store"
	"github.com/kaziflow/kazi-sync/internal/store/memstore"
	"github.com/kaziflow/kazi-sync/internal/store/redisstore"
	"github.com/kaziflow/kazi-sync/internal/textgen"
	"github.com/kaziflow/kazi-sync/internal/types"
)

// @title Kazi Sync API
// @version 1.0.0
// @description Client-side state synchronization service for Kazi Flow
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

	// Connect to the preference database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to preference database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Select the document-store backend
	var docStore store.Store
	switch cfg.StoreBackend {
	case config.StoreBackendRedis:
		opts := redisstore.DefaultOptions()
		opts.URL = cfg.RedisURL
		opts.Prefix = cfg.RedisPrefix
		rs, err := redisstore.New(opts)
		if err != nil {
			log.Fatalf("Failed to connect to document store: %v", err)
		}
		defer rs.Close()
		docStore = rs
	default:
		docStore = memstore.New()
	}

	// Select the auth backend
	var authSvc auth.Service
	switch cfg.AuthBackend {
	case config.AuthBackendAuthorizer:
		svc, err := auth.NewAuthorizerService(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize authorizer: %v", err)
		}
		authSvc = svc
	default:
		authSvc = auth.NewFakeService()
	}

	// Select the alert text generator
	var gen textgen.Generator
	if cfg.OpenAIAPIKey != "" {
		gen = textgen.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	} else {
		gen = textgen.StaticGenerator{}
	}

	// Wire the session layer
	sess := session.NewSession()
	controller := session.NewController(docStore, authSvc, sess, cfg.AuthTimeout)
	gateway := session.NewGateway(authSvc, sess, cfg.AuthTimeout)
	notifier := session.NewNotifier(docStore, gen, cfg.AuthTimeout)
	gateway.OnLogin(notifier.HandleLogin)

	controller.Start()
	defer controller.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("kazi_sync")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Route protection requires a backend that can validate session
	// cookies; the fake backend runs unprotected for local development.
	requireUser := passthrough()
	requireAdmin := passthrough()
	if v, ok := authSvc.(middleware.SessionValidator); ok {
		requireUser = middleware.AuthUser(v)
		requireAdmin = middleware.AuthAdmin(v)
	}

	// API routes under /api
	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())

	// Create handlers
	prefsStore := prefs.NewStore(db)
	authHandler := &handlers.AuthHandler{Gateway: gateway, Auth: authSvc}
	sessionHandler := &handlers.SessionHandler{Session: sess}
	prefsHandler := &handlers.PrefsHandler{Prefs: prefsStore}
	healthHandler := &handlers.HealthHandler{Config: cfg, DB: db}

	// Auth routes
	api.Post("/auth/login", authHandler.Login)
	api.Post("/auth/logout", authHandler.Logout)

	// Session state routes
	api.Get("/session", requireUser, sessionHandler.GetState)
	api.Get("/session/collections", requireUser, sessionHandler.GetCollections)
	api.Get("/session/collections/sentEmails", requireAdmin, sessionHandler.GetSentEmails)
	api.Get("/session/collections/:name", requireUser, sessionHandler.GetCollection)

	// Preference routes
	api.Get("/preferences", prefsHandler.GetPreferences)
	api.Put("/preferences/theme", prefsHandler.SetTheme)
	api.Put("/preferences/primary-color", prefsHandler.SetPrimaryColor)

	// Health route
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

	// Let in-flight login alerts land before exit
	notifier.Wait()

	log.Println("Server stopped")
}

func passthrough() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Next()
	}
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}
	if e, ok := err.(*types.CustomError); ok {
		code = e.Code
		message = e.Message
		errorType = e.Type
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
