package middleware

import (
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/ohisee/backend/internal/config"
	"github.com/ohisee/backend/internal/dto"
)

// JWTProtected verifies the bearer token. On success the token's tenant claim
// overrides any client-supplied tenant header: authenticated requests are
// tenant-scoped by token, not by header.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		SuccessHandler: func(c *fiber.Ctx) error {
			if token, ok := c.Locals("user").(*jwt.Token); ok {
				if claims, ok := token.Claims.(jwt.MapClaims); ok {
					if tenantID, ok := claims["tenant_id"].(string); ok && tenantID != "" {
						c.Locals("tenant_id", tenantID)
					}
				}
			}
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			message := "Invalid token"
			if err != nil && err.Error() == "missing or malformed JWT" {
				message = "Authentication required"
			}
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: message,
			})
		},
	})
}
