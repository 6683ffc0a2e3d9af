package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ohisee/backend/internal/dto"
	"github.com/ohisee/backend/internal/tenant"
)

// RoleRequired gates a route to the given roles. It composes after
// JWTProtected and rejects before any store access happens.
func RoleRequired(roles ...string) fiber.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *fiber.Ctx) error {
		claims, err := tenant.GetClaims(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Authentication required",
			})
		}

		role, _ := claims["role"].(string)
		if !allowed[role] {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Insufficient permissions",
			})
		}
		return c.Next()
	}
}
