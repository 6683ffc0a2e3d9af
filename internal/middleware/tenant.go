package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/ohisee/backend/internal/config"
	"github.com/ohisee/backend/internal/dto"
)

// Paths that don't require tenant identification.
var tenantSkipPaths = []string{
	"/api/health",
}

// TenantMiddleware resolves the tenant id from the X-Tenant-ID header, falling
// back to the configured default. The normalized value is written back onto
// the request context so every downstream component observes one value. For
// authenticated requests the JWT success handler later overrides this with the
// token's tenant claim.
func TenantMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		for _, skip := range tenantSkipPaths {
			if strings.HasPrefix(path, skip) {
				return c.Next()
			}
		}

		tenantID := strings.TrimSpace(c.Get("X-Tenant-ID"))
		if tenantID == "" {
			tenantID = cfg.DefaultTenant
		}
		if tenantID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Missing tenant identifier",
			})
		}

		c.Locals("tenant_id", tenantID)
		c.Set("X-Tenant-ID", tenantID)
		return c.Next()
	}
}
