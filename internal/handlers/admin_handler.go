package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/ohisee/backend/internal/dto"
	"github.com/ohisee/backend/internal/services"
	"github.com/ohisee/backend/internal/store"
	"github.com/ohisee/backend/internal/tenant"
)

// AdminHandler serves the role-gated review surface. The tenant id here always
// comes from the verified token, pinned by the JWT middleware.
type AdminHandler struct {
	reportService *services.ReportService
}

func NewAdminHandler(reportService *services.ReportService) *AdminHandler {
	return &AdminHandler{reportService: reportService}
}

func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	tenantID := tenant.GetTenantID(c)

	stats, err := h.reportService.DashboardStats(tenantID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch dashboard stats",
		})
	}
	return c.JSON(stats)
}

func (h *AdminHandler) ListReports(c *fiber.Ctx) error {
	tenantID := tenant.GetTenantID(c)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	filter := store.ReportFilter{
		Status:   c.Query("status", ""),
		Category: c.Query("category", ""),
		Page:     page,
		Limit:    limit,
	}

	reports, total, err := h.reportService.AdminList(tenantID, filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch reports",
		})
	}

	pages := (total + int64(limit) - 1) / int64(limit)
	return c.JSON(fiber.Map{
		"reports": reports,
		"total":   total,
		"page":    page,
		"pages":   pages,
	})
}

func (h *AdminHandler) GetReport(c *fiber.Ctx) error {
	tenantID := tenant.GetTenantID(c)
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	detail, err := h.reportService.AdminGet(tenantID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Report not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch report",
		})
	}
	return c.JSON(detail)
}

func (h *AdminHandler) PatchReport(c *fiber.Ctx) error {
	tenantID := tenant.GetTenantID(c)
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	var req dto.PatchReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	report, err := h.reportService.AdminPatch(tenantID, id, &req)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: verr.Errors[0],
			})
		}
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Report not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update report",
		})
	}
	return c.JSON(report)
}

func (h *AdminHandler) AddUpdate(c *fiber.Ctx) error {
	tenantID := tenant.GetTenantID(c)
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	userID, err := tenant.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Authentication required",
		})
	}

	var req dto.CreateUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	update, err := h.reportService.AddUpdate(tenantID, reportID, userID, &req)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: verr.Errors[0],
			})
		}
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Report not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create update",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(update)
}
