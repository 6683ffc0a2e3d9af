package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ohisee/backend/internal/dto"
	"github.com/ohisee/backend/internal/models"
	"github.com/ohisee/backend/internal/storage"
	"github.com/ohisee/backend/internal/store"
	"gorm.io/datatypes"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// ValidationError carries every field violation found during intake; intake
// never short-circuits on the first problem.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// AttachmentInput is one uploaded file at intake.
type AttachmentInput struct {
	Filename string
	MimeType string
	Size     int64
	Content  io.Reader
}

// SubmitInput is the intake payload after multipart decoding.
type SubmitInput struct {
	Category       string
	Title          string
	Description    string
	Location       string
	DateOccurred   string
	Witnesses      string
	PreviousReport bool
	Email          string
	Attachments    []AttachmentInput
}

// ReportService orchestrates intake, tracking and admin review over the store,
// scorer and notifier. The attachment-persistence branch is decided once at
// construction from the store kind, never probed per call.
type ReportService struct {
	store              store.Store
	scorer             Scorer
	notifier           Notifier
	files              *storage.Local
	persistAttachments bool
}

func NewReportService(st store.Store, scorer Scorer, notifier Notifier, files *storage.Local) *ReportService {
	return &ReportService{
		store:              st,
		scorer:             scorer,
		notifier:           notifier,
		files:              files,
		persistAttachments: st.Kind() == store.KindRelational,
	}
}

func validateSubmit(in *SubmitInput) []string {
	var errs []string
	if !models.ValidCategory(in.Category) {
		errs = append(errs, "category must be one of product_safety, misconduct, health_safety, harassment")
	}
	if len(strings.TrimSpace(in.Title)) < 5 {
		errs = append(errs, "title must be at least 5 characters")
	}
	if len(strings.TrimSpace(in.Description)) < 20 {
		errs = append(errs, "description must be at least 20 characters")
	}
	if in.Email != "" && !emailPattern.MatchString(in.Email) {
		errs = append(errs, "email is not a valid address")
	}
	if len(in.Attachments) > models.MaxAttachments {
		errs = append(errs, fmt.Sprintf("at most %d attachments are allowed", models.MaxAttachments))
	}
	for _, a := range in.Attachments {
		if a.Size > models.MaxAttachmentSize {
			errs = append(errs, fmt.Sprintf("attachment %s exceeds the 10MB limit", a.Filename))
		}
	}
	return errs
}

// Submit runs the intake workflow: validate, score, persist, attach, notify.
// Scoring always runs and never blocks submission; notification is
// best-effort. On validation failure nothing is persisted.
func (s *ReportService) Submit(ctx context.Context, tenantID string, in *SubmitInput) (*dto.SubmitReportResponse, error) {
	if errs := validateSubmit(in); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	result := s.scorer.Score(ctx, ScoreInput{
		Title:          in.Title,
		Description:    in.Description,
		Category:       in.Category,
		PreviousReport: in.PreviousReport,
	})

	flags, err := json.Marshal(result.Flags)
	if err != nil {
		flags = []byte("[]")
	}

	report := models.Report{
		Category:       in.Category,
		Title:          in.Title,
		Description:    in.Description,
		Location:       in.Location,
		DateOccurred:   in.DateOccurred,
		Witnesses:      in.Witnesses,
		PreviousReport: in.PreviousReport,
		ReporterEmail:  in.Email,
		BadFaithScore:  result.Score,
		BadFaithFlags:  datatypes.JSON(flags),
		Status:         models.StatusSubmitted,
		Priority:       "medium",
	}

	if err := s.store.CreateReport(tenantID, &report); err != nil {
		slog.Error("report creation failed", "error", err, "tenant_id", tenantID)
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	for _, a := range in.Attachments {
		path, size, err := s.files.Save(tenantID, report.ID.String(), a.Filename, a.Content)
		if err != nil {
			slog.Error("attachment write failed", "error", err, "tenant_id", tenantID, "reference", report.ReferenceNumber)
			continue
		}
		if !s.persistAttachments {
			continue
		}
		attachment := models.ReportAttachment{
			ReportID:    report.ID,
			Filename:    a.Filename,
			MimeType:    a.MimeType,
			Size:        size,
			StoragePath: path,
		}
		if err := s.store.CreateAttachment(tenantID, &attachment); err != nil {
			slog.Error("attachment record failed", "error", err, "tenant_id", tenantID, "reference", report.ReferenceNumber)
		}
	}

	go s.notifier.NotifyNewReport(tenantID, report.ReferenceNumber, report.Category, report.Title)

	return &dto.SubmitReportResponse{
		Success:         true,
		ReferenceNumber: report.ReferenceNumber,
		Message:         "Report submitted successfully. Keep your reference number to track progress.",
	}, nil
}

// Track assembles the anonymous tracking view for a reference number. Only
// reporter-visible updates are included.
func (s *ReportService) Track(tenantID, reference string) (*dto.TrackResponse, error) {
	report, err := s.store.GetReportByReference(tenantID, reference)
	if err != nil {
		return nil, err
	}

	updates, err := s.store.ListUpdates(tenantID, report.ID)
	if err != nil {
		return nil, err
	}

	visible := make([]dto.TrackUpdate, 0, len(updates))
	for _, u := range updates {
		if u.Visibility != models.VisibilityReporter {
			continue
		}
		visible = append(visible, dto.TrackUpdate{Message: u.Message, Date: u.CreatedAt})
	}

	return &dto.TrackResponse{
		ReferenceNumber: report.ReferenceNumber,
		Status:          report.Status,
		SubmittedAt:     report.CreatedAt,
		LastUpdated:     report.UpdatedAt,
		Updates:         visible,
	}, nil
}

// List returns the tenant's reports, newest-first.
func (s *ReportService) List(tenantID string) ([]models.Report, error) {
	reports, _, err := s.store.ListReports(tenantID, store.ReportFilter{})
	return reports, err
}

func (s *ReportService) CategoryStats(tenantID string) (*store.CategoryStats, error) {
	return s.store.CategoryStats(tenantID)
}

// --- admin review surface ---

func (s *ReportService) DashboardStats(tenantID string) (*store.DashboardStats, error) {
	return s.store.DashboardStats(tenantID)
}

func (s *ReportService) AdminList(tenantID string, f store.ReportFilter) ([]models.Report, int64, error) {
	return s.store.ListReports(tenantID, f)
}

// ReportDetail is a report with its attachments and updates for admin review.
type ReportDetail struct {
	Report      models.Report             `json:"report"`
	Attachments []models.ReportAttachment `json:"attachments"`
	Updates     []models.ReportUpdate     `json:"updates"`
}

func (s *ReportService) AdminGet(tenantID string, id uuid.UUID) (*ReportDetail, error) {
	report, err := s.store.GetReportByID(tenantID, id)
	if err != nil {
		return nil, err
	}
	attachments, err := s.store.ListAttachments(tenantID, id)
	if err != nil {
		return nil, err
	}
	updates, err := s.store.ListUpdates(tenantID, id)
	if err != nil {
		return nil, err
	}
	return &ReportDetail{Report: *report, Attachments: attachments, Updates: updates}, nil
}

// AdminPatch applies only the provided fields. Setting status to resolved or
// closed also stamps resolved_at.
func (s *ReportService) AdminPatch(tenantID string, id uuid.UUID, req *dto.PatchReportRequest) (*models.Report, error) {
	fields := make(map[string]interface{})

	if req.Status != nil {
		if !models.ValidStatus(*req.Status) {
			return nil, &ValidationError{Errors: []string{"invalid status: " + *req.Status}}
		}
		fields["status"] = *req.Status
		if *req.Status == models.StatusResolved || *req.Status == models.StatusClosed {
			fields["resolved_at"] = time.Now()
		}
	}
	if req.Priority != nil {
		if !models.ValidPriority(*req.Priority) {
			return nil, &ValidationError{Errors: []string{"invalid priority: " + *req.Priority}}
		}
		fields["priority"] = *req.Priority
	}
	if req.AssignedTo != nil {
		fields["assigned_to"] = *req.AssignedTo
	}
	if req.ResolutionNotes != nil {
		fields["resolution_notes"] = *req.ResolutionNotes
	}

	if len(fields) == 0 {
		return s.store.GetReportByID(tenantID, id)
	}
	return s.store.UpdateReport(tenantID, id, fields)
}

// AddUpdate appends a staff update. Reporter-visible updates trigger a
// best-effort notification when the report carries a reporter email; the
// notification never blocks the response.
func (s *ReportService) AddUpdate(tenantID string, reportID, userID uuid.UUID, req *dto.CreateUpdateRequest) (*models.ReportUpdate, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, &ValidationError{Errors: []string{"message is required"}}
	}
	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityInternal
	}
	if visibility != models.VisibilityInternal && visibility != models.VisibilityReporter {
		return nil, &ValidationError{Errors: []string{"visibility must be internal or reporter"}}
	}

	report, err := s.store.GetReportByID(tenantID, reportID)
	if err != nil {
		return nil, err
	}

	update := models.ReportUpdate{
		ReportID:   reportID,
		UserID:     userID,
		Message:    req.Message,
		Visibility: visibility,
	}
	if err := s.store.CreateUpdate(tenantID, &update); err != nil {
		return nil, err
	}

	if visibility == models.VisibilityReporter && report.ReporterEmail != "" {
		go s.notifier.NotifyUpdate(report.ReporterEmail, report.ReferenceNumber, report.Status, req.Message)
	}

	return &update, nil
}
