package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ohisee/backend/internal/store"
)

type HealthHandler struct {
	storeKind store.Kind
}

func NewHealthHandler(storeKind store.Kind) *HealthHandler {
	return &HealthHandler{storeKind: storeKind}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"store":  h.storeKind.String(),
	})
}
