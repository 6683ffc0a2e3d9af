package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/ohisee/backend/internal/services"
	"github.com/ohisee/backend/internal/store"
	"github.com/ohisee/backend/internal/tenant"
)

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Submit handles anonymous report intake from a multipart form with up to
// five attachment files.
func (h *ReportHandler) Submit(c *fiber.Ctx) error {
	tenantID := tenant.GetTenantID(c)

	in := services.SubmitInput{
		Category:       c.FormValue("category"),
		Title:          c.FormValue("title"),
		Description:    c.FormValue("description"),
		Location:       c.FormValue("location"),
		DateOccurred:   c.FormValue("date_occurred"),
		Witnesses:      c.FormValue("witnesses"),
		PreviousReport: c.FormValue("previous_report") == "true",
		Email:          c.FormValue("email"),
	}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, fh := range form.File["attachments"] {
			f, err := fh.Open()
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"errors": []string{"could not read attachment " + fh.Filename},
				})
			}
			defer f.Close()
			in.Attachments = append(in.Attachments, services.AttachmentInput{
				Filename: fh.Filename,
				MimeType: fh.Header.Get("Content-Type"),
				Size:     fh.Size,
				Content:  f,
			})
		}
	}

	resp, err := h.reportService.Submit(c.Context(), tenantID, &in)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": verr.Errors})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to submit report",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Track returns the anonymous tracking view for a reference number.
func (h *ReportHandler) Track(c *fiber.Ctx) error {
	tenantID := tenant.GetTenantID(c)
	reference := c.Params("referenceNumber")

	resp, err := h.reportService.Track(tenantID, reference)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Report not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to track report",
		})
	}
	return c.JSON(resp)
}

// List returns the tenant's reports.
func (h *ReportHandler) List(c *fiber.Ctx) error {
	tenantID := tenant.GetTenantID(c)

	reports, err := h.reportService.List(tenantID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch reports",
		})
	}
	return c.JSON(fiber.Map{"reports": reports})
}

// CategoryStats returns the public category breakdown and monthly trend.
func (h *ReportHandler) CategoryStats(c *fiber.Ctx) error {
	tenantID := tenant.GetTenantID(c)

	stats, err := h.reportService.CategoryStats(tenantID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch stats",
		})
	}
	return c.JSON(stats)
}
