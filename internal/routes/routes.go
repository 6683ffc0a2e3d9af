package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/ohisee/backend/internal/config"
	"github.com/ohisee/backend/internal/handlers"
	"github.com/ohisee/backend/internal/middleware"
	"github.com/ohisee/backend/internal/models"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	reportHandler *handlers.ReportHandler,
	authHandler *handlers.AuthHandler,
	adminHandler *handlers.AdminHandler,
	aiHandler *handlers.AIHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health (no tenant required)
	api.Get("/health", healthHandler.Check)

	// Anonymous report intake and tracking
	api.Post("/reports", reportHandler.Submit)
	api.Get("/reports/track/:referenceNumber", reportHandler.Track)
	api.Get("/reports/categories/stats", reportHandler.CategoryStats)
	api.Get("/reports", reportHandler.List)

	// AI assist (mock fallback when unconfigured)
	api.Post("/ai/improve-text", aiHandler.ImproveText)
	api.Post("/ai/assist", aiHandler.Assist)

	// Auth — stricter limit: 5 req / 15 min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               5,
		Expiration:        15 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/forgot-password", authHandler.ForgotPassword)

	// Admin review surface (JWT + staff role, tenant pinned from token)
	admin := api.Group("/admin",
		middleware.JWTProtected(cfg),
		middleware.RoleRequired(models.RoleAdmin, models.RoleManager, models.RoleCompliance),
	)
	admin.Get("/dashboard/stats", adminHandler.DashboardStats)
	admin.Get("/reports", adminHandler.ListReports)
	admin.Get("/reports/:id", adminHandler.GetReport)
	admin.Patch("/reports/:id", adminHandler.PatchReport)
	admin.Post("/reports/:id/updates", adminHandler.AddUpdate)
}
