package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/ohisee/backend/internal/config"
	"github.com/ohisee/backend/internal/handlers"
	"github.com/ohisee/backend/internal/middleware"
	"github.com/ohisee/backend/internal/models"
	"github.com/ohisee/backend/internal/services"
	"github.com/ohisee/backend/internal/storage"
	"github.com/ohisee/backend/internal/store"
	"github.com/ohisee/backend/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestApp(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()

	cfg := &config.Config{
		JWTSecret: testSecret,
		JWTExpiry: time.Hour,
		AITimeout: time.Second,
	}

	st := memory.New()
	notifier := services.NewEmailService(cfg)
	scorer := services.NewBadFaithService(cfg)
	authService := services.NewAuthService(st, cfg, notifier)
	reportService := services.NewReportService(st, scorer, notifier, storage.NewLocal(t.TempDir()))

	app := fiber.New()
	app.Use(middleware.TenantMiddleware(cfg))
	Setup(app, cfg,
		handlers.NewReportHandler(reportService),
		handlers.NewAuthHandler(authService),
		handlers.NewAdminHandler(reportService),
		handlers.NewAIHandler(scorer),
		handlers.NewHealthHandler(st.Kind()),
	)
	return app, st
}

func signToken(t *testing.T, role, tenantID string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":       uuid.NewString(),
		"email":     "staff@acme.test",
		"role":      role,
		"tenant_id": tenantID,
		"iat":       time.Now().Unix(),
		"exp":       time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func submitForm(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("category", models.CategoryHealthSafety))
	require.NoError(t, w.WriteField("title", "Missing safety guard on press 3"))
	require.NoError(t, w.WriteField("description", "The safety guard was removed during maintenance and not reinstalled before the line restarted this morning."))
	require.NoError(t, w.WriteField("previous_report", "false"))
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestSubmitAndTrack(t *testing.T) {
	app, _ := newTestApp(t)

	body, contentType := submitForm(t)
	req := httptest.NewRequest(http.MethodPost, "/api/reports", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Tenant-ID", "acme")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var submitted struct {
		Success         bool   `json:"success"`
		ReferenceNumber string `json:"reference_number"`
	}
	decodeBody(t, resp, &submitted)
	assert.True(t, submitted.Success)
	assert.Regexp(t, `^REF-\d{4}-\d{5}$`, submitted.ReferenceNumber)

	trackReq := httptest.NewRequest(http.MethodGet, "/api/reports/track/"+submitted.ReferenceNumber, nil)
	trackReq.Header.Set("X-Tenant-ID", "acme")
	trackResp, err := app.Test(trackReq, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, trackResp.StatusCode)

	var tracked struct {
		ReferenceNumber string `json:"reference_number"`
		Status          string `json:"status"`
	}
	decodeBody(t, trackResp, &tracked)
	assert.Equal(t, submitted.ReferenceNumber, tracked.ReferenceNumber)
	assert.Equal(t, models.StatusSubmitted, tracked.Status)
}

func TestSubmitValidationErrors(t *testing.T) {
	app, st := newTestApp(t)

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("category", models.CategoryMisconduct))
	require.NoError(t, w.WriteField("title", "Hey"))
	require.NoError(t, w.WriteField("description", "too short"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/reports", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("X-Tenant-ID", "acme")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var payload struct {
		Errors []string `json:"errors"`
	}
	decodeBody(t, resp, &payload)
	assert.Len(t, payload.Errors, 2)

	reports, total, err := st.ListReports("acme", store.ReportFilter{})
	require.NoError(t, err)
	assert.Empty(t, reports)
	assert.Zero(t, total)
}

func TestTrackUnknownReference(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/track/REF-2026-99999", nil)
	req.Header.Set("X-Tenant-ID", "acme")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var payload struct {
		Error string `json:"error"`
	}
	decodeBody(t, resp, &payload)
	assert.Equal(t, "Report not found", payload.Error)
}

func TestMissingTenant(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/reports", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminRequiresToken(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/reports", nil)
	req.Header.Set("X-Tenant-ID", "acme")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminRejectsNonStaffRole(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/reports", nil)
	req.Header.Set("X-Tenant-ID", "acme")
	req.Header.Set("Authorization", "Bearer "+signToken(t, models.RoleUser, "acme"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var payload struct {
		Message string `json:"message"`
	}
	decodeBody(t, resp, &payload)
	assert.Equal(t, "Insufficient permissions", payload.Message)
}

func TestAdminTenantPinnedFromToken(t *testing.T) {
	app, _ := newTestApp(t)

	// Seed a report under acme.
	body, contentType := submitForm(t)
	req := httptest.NewRequest(http.MethodPost, "/api/reports", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Tenant-ID", "acme")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Token scoped to acme; the header claims globex but must not win.
	listReq := httptest.NewRequest(http.MethodGet, "/api/admin/reports", nil)
	listReq.Header.Set("X-Tenant-ID", "globex")
	listReq.Header.Set("Authorization", "Bearer "+signToken(t, models.RoleManager, "acme"))
	listResp, err := app.Test(listReq, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, listResp.StatusCode)

	var payload struct {
		Reports []models.Report `json:"reports"`
		Total   int64           `json:"total"`
	}
	decodeBody(t, listResp, &payload)
	assert.EqualValues(t, 1, payload.Total)
}

func TestImproveTextMockRoute(t *testing.T) {
	app, _ := newTestApp(t)

	body, err := json.Marshal(map[string]string{"text": "the machine was broken"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/ai/improve-text", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", "acme")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		ImprovedText string `json:"improved_text"`
	}
	decodeBody(t, resp, &payload)
	assert.Equal(t, "The machine was broken.", payload.ImprovedText)
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
