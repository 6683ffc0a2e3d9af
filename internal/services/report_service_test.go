package services

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ohisee/backend/internal/config"
	"github.com/ohisee/backend/internal/dto"
	"github.com/ohisee/backend/internal/models"
	"github.com/ohisee/backend/internal/storage"
	"github.com/ohisee/backend/internal/store"
	"github.com/ohisee/backend/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var referencePattern = regexp.MustCompile(`^REF-\d{4}-\d{5}$`)

type fakeNotifier struct {
	mu         sync.Mutex
	newReports []string
	updates    []string
	resets     []string
}

func (f *fakeNotifier) NotifyNewReport(tenantID, reference, category, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.newReports = append(f.newReports, reference)
}

func (f *fakeNotifier) NotifyUpdate(email, reference, status, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, email+":"+message)
}

func (f *fakeNotifier) SendPasswordReset(email, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, email)
}

func (f *fakeNotifier) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func newTestReportService(t *testing.T) (*ReportService, *memory.Store, *fakeNotifier) {
	t.Helper()
	st := memory.New()
	notifier := &fakeNotifier{}
	scorer := NewBadFaithService(&config.Config{AITimeout: time.Second})
	svc := NewReportService(st, scorer, notifier, storage.NewLocal(t.TempDir()))
	return svc, st, notifier
}

func validSubmit() *SubmitInput {
	return &SubmitInput{
		Category:    models.CategoryHealthSafety,
		Title:       "Missing safety guard on press 3",
		Description: "The safety guard was removed during maintenance and not reinstalled before the line restarted this morning.",
	}
}

func TestSubmitReturnsReference(t *testing.T) {
	svc, st, _ := newTestReportService(t)

	resp, err := svc.Submit(context.Background(), "acme", validSubmit())
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Regexp(t, referencePattern, resp.ReferenceNumber)

	report, err := st.GetReportByReference("acme", resp.ReferenceNumber)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, report.Status)
	assert.GreaterOrEqual(t, report.BadFaithScore, 0)
	assert.Less(t, report.BadFaithScore, 30)
	assert.JSONEq(t, "[]", string(report.BadFaithFlags))
}

func TestSubmitCollectsAllViolations(t *testing.T) {
	svc, st, _ := newTestReportService(t)

	in := &SubmitInput{
		Category:    "gossip",
		Title:       "Hey",
		Description: "too short",
		Email:       "not-an-email",
	}
	_, err := svc.Submit(context.Background(), "acme", in)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Errors, 4)

	reports, total, err := st.ListReports("acme", store.ReportFilter{})
	require.NoError(t, err)
	assert.Empty(t, reports)
	assert.Zero(t, total)
}

func TestSubmitRejectsTooManyAttachments(t *testing.T) {
	svc, _, _ := newTestReportService(t)

	in := validSubmit()
	for i := 0; i < 6; i++ {
		in.Attachments = append(in.Attachments, AttachmentInput{
			Filename: "photo.jpg",
			Size:     100,
			Content:  strings.NewReader("data"),
		})
	}
	_, err := svc.Submit(context.Background(), "acme", in)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Errors[0], "at most 5 attachments")
}

func TestSubmitRejectsOversizedAttachment(t *testing.T) {
	svc, _, _ := newTestReportService(t)

	in := validSubmit()
	in.Attachments = append(in.Attachments, AttachmentInput{
		Filename: "dump.bin",
		Size:     models.MaxAttachmentSize + 1,
		Content:  strings.NewReader("data"),
	})
	_, err := svc.Submit(context.Background(), "acme", in)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Errors[0], "10MB")
}

func TestTrackRoundTrip(t *testing.T) {
	svc, _, _ := newTestReportService(t)

	resp, err := svc.Submit(context.Background(), "acme", validSubmit())
	require.NoError(t, err)

	tracked, err := svc.Track("acme", resp.ReferenceNumber)
	require.NoError(t, err)
	assert.Equal(t, resp.ReferenceNumber, tracked.ReferenceNumber)
	assert.Equal(t, models.StatusSubmitted, tracked.Status)
	assert.Empty(t, tracked.Updates)

	// Tracking is idempotent until something mutates the report.
	again, err := svc.Track("acme", resp.ReferenceNumber)
	require.NoError(t, err)
	assert.Equal(t, tracked.Status, again.Status)
	assert.Equal(t, tracked.SubmittedAt, again.SubmittedAt)
}

func TestTrackUnknownReference(t *testing.T) {
	svc, _, _ := newTestReportService(t)
	_, err := svc.Track("acme", "REF-2026-99999")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTrackHidesInternalUpdates(t *testing.T) {
	svc, st, _ := newTestReportService(t)

	in := validSubmit()
	in.Email = "reporter@example.com"
	resp, err := svc.Submit(context.Background(), "acme", in)
	require.NoError(t, err)

	report, err := st.GetReportByReference("acme", resp.ReferenceNumber)
	require.NoError(t, err)

	staffID := uuid.New()
	_, err = svc.AddUpdate("acme", report.ID, staffID, &dto.CreateUpdateRequest{
		Message: "internal investigation note", Visibility: models.VisibilityInternal,
	})
	require.NoError(t, err)
	_, err = svc.AddUpdate("acme", report.ID, staffID, &dto.CreateUpdateRequest{
		Message: "we are looking into it", Visibility: models.VisibilityReporter,
	})
	require.NoError(t, err)

	tracked, err := svc.Track("acme", resp.ReferenceNumber)
	require.NoError(t, err)
	require.Len(t, tracked.Updates, 1)
	assert.Equal(t, "we are looking into it", tracked.Updates[0].Message)
}

func TestAddUpdateNotifiesReporter(t *testing.T) {
	svc, st, notifier := newTestReportService(t)

	in := validSubmit()
	in.Email = "reporter@example.com"
	resp, err := svc.Submit(context.Background(), "acme", in)
	require.NoError(t, err)

	report, err := st.GetReportByReference("acme", resp.ReferenceNumber)
	require.NoError(t, err)

	_, err = svc.AddUpdate("acme", report.ID, uuid.New(), &dto.CreateUpdateRequest{
		Message: "status changed", Visibility: models.VisibilityReporter,
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return notifier.updateCount() == 1
	}, time.Second, 10*time.Millisecond)

	// Internal updates never notify.
	_, err = svc.AddUpdate("acme", report.ID, uuid.New(), &dto.CreateUpdateRequest{
		Message: "internal only", Visibility: models.VisibilityInternal,
	})
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, notifier.updateCount())
}

func TestAdminPatchResolvedStampsResolvedAt(t *testing.T) {
	svc, st, _ := newTestReportService(t)

	resp, err := svc.Submit(context.Background(), "acme", validSubmit())
	require.NoError(t, err)
	report, err := st.GetReportByReference("acme", resp.ReferenceNumber)
	require.NoError(t, err)

	status := models.StatusResolved
	patched, err := svc.AdminPatch("acme", report.ID, &dto.PatchReportRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, patched.Status)
	require.NotNil(t, patched.ResolvedAt)
	assert.Equal(t, "medium", patched.Priority)
	assert.Empty(t, patched.AssignedTo)
}

func TestAdminPatchRejectsUnknownStatus(t *testing.T) {
	svc, st, _ := newTestReportService(t)

	resp, err := svc.Submit(context.Background(), "acme", validSubmit())
	require.NoError(t, err)
	report, err := st.GetReportByReference("acme", resp.ReferenceNumber)
	require.NoError(t, err)

	status := "vanished"
	_, err = svc.AdminPatch("acme", report.ID, &dto.PatchReportRequest{Status: &status})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestAdminPatchUnknownReport(t *testing.T) {
	svc, _, _ := newTestReportService(t)
	status := models.StatusClosed
	_, err := svc.AdminPatch("acme", uuid.New(), &dto.PatchReportRequest{Status: &status})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAdminGetIncludesHistory(t *testing.T) {
	svc, st, _ := newTestReportService(t)

	resp, err := svc.Submit(context.Background(), "acme", validSubmit())
	require.NoError(t, err)
	report, err := st.GetReportByReference("acme", resp.ReferenceNumber)
	require.NoError(t, err)

	_, err = svc.AddUpdate("acme", report.ID, uuid.New(), &dto.CreateUpdateRequest{Message: "triaged"})
	require.NoError(t, err)

	detail, err := svc.AdminGet("acme", report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.ReferenceNumber, detail.Report.ReferenceNumber)
	assert.Len(t, detail.Updates, 1)
	assert.NotNil(t, detail.Attachments)
}
