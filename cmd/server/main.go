package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/ohisee/backend/internal/config"
	"github.com/ohisee/backend/internal/database"
	"github.com/ohisee/backend/internal/handlers"
	"github.com/ohisee/backend/internal/logging"
	"github.com/ohisee/backend/internal/middleware"
	"github.com/ohisee/backend/internal/routes"
	"github.com/ohisee/backend/internal/services"
	"github.com/ohisee/backend/internal/storage"
	"github.com/ohisee/backend/internal/store"
	"github.com/ohisee/backend/internal/store/gormstore"
	"github.com/ohisee/backend/internal/store/memory"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}

	// Store selection happens exactly once: relational when a database is
	// configured, in-memory otherwise.
	var st store.Store
	var pgLogHandler *logging.PGHandler
	cleanupDone := make(chan struct{})

	if cfg.HasDatabase() {
		db, err := database.Connect(cfg)
		if err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		if err := database.Migrate(db); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
		st = gormstore.New(db)

		// PostgreSQL log handler (ERROR+ async batch)
		pgLogHandler = logging.NewPGHandler(db)
		slog.SetDefault(slog.New(logging.NewMultiHandler(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
			pgLogHandler,
		)))

		// Log cleanup (30-day retention)
		logging.StartCleanup(db, cleanupDone)
	} else {
		slog.Warn("no database configured, using in-memory store")
		st = memory.New()
	}

	if !cfg.HasSMTP() {
		slog.Warn("no SMTP host configured, notifications disabled")
	}
	if !cfg.HasAI() {
		slog.Warn("no AI provider configured, scorer runs in stub mode")
	}

	// Services
	notifier := services.NewEmailService(cfg)
	scorer := services.NewBadFaithService(cfg)
	files := storage.NewLocal(cfg.UploadDir)
	authService := services.NewAuthService(st, cfg, notifier)
	reportService := services.NewReportService(st, scorer, notifier, files)

	// Handlers
	reportHandler := handlers.NewReportHandler(reportService)
	authHandler := handlers.NewAuthHandler(authService)
	adminHandler := handlers.NewAdminHandler(reportService)
	aiHandler := handlers.NewAIHandler(scorer)
	healthHandler := handlers.NewHealthHandler(st.Kind())

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app; body limit covers 5 attachments of 10MB plus form overhead
	app := fiber.New(fiber.Config{
		BodyLimit:    52 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})
	app.Use(middleware.TenantMiddleware(cfg))

	// Routes
	routes.Setup(app, cfg, reportHandler, authHandler, adminHandler, aiHandler, healthHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "store", st.Kind().String())
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	if pgLogHandler != nil {
		pgLogHandler.Stop()
	}
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if gs, ok := st.(*gormstore.Store); ok {
		if sqlDB, err := gs.DB().DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				slog.Error("database close error", "error", err)
			}
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
