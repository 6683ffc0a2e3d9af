// Package gormstore is the relational store backend. Every query is scoped by
// tenant.ForTenant; tenant isolation depends on that scope being applied
// without exception.
package gormstore

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ohisee/backend/internal/models"
	"github.com/ohisee/backend/internal/store"
	"github.com/ohisee/backend/internal/tenant"
	"gorm.io/gorm"
)

// referenceAttempts bounds the retry loop on reference-number conflicts.
const referenceAttempts = 5

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Kind() store.Kind {
	return store.KindRelational
}

// DB exposes the underlying handle for the slog Postgres handler and cleanup.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// CreateReport inserts r with a generated reference number. Uniqueness is
// enforced by the database index; on conflict the sequence is advanced and the
// insert retried instead of read-then-compute.
func (s *Store) CreateReport(tenantID string, r *models.Report) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	r.TenantID = tenantID
	if r.Status == "" {
		r.Status = models.StatusSubmitted
	}
	if r.Priority == "" {
		r.Priority = "medium"
	}

	year := time.Now().Year()
	prefix := fmt.Sprintf("REF-%d-", year)

	var seq int64
	if err := s.db.Model(&models.Report{}).
		Where("reference_number LIKE ?", prefix+"%").
		Count(&seq).Error; err != nil {
		return fmt.Errorf("failed to count references: %w", err)
	}

	for attempt := 0; attempt < referenceAttempts; attempt++ {
		seq++
		r.ReferenceNumber = fmt.Sprintf("%s%05d", prefix, seq)
		err := s.db.Create(r).Error
		if err == nil {
			return nil
		}
		if !isDuplicate(err) {
			return fmt.Errorf("failed to create report: %w", err)
		}
	}
	return fmt.Errorf("failed to allocate reference number after %d attempts", referenceAttempts)
}

func (s *Store) GetReportByID(tenantID string, id uuid.UUID) (*models.Report, error) {
	var report models.Report
	err := s.db.Scopes(tenant.ForTenant(tenantID)).First(&report, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *Store) GetReportByReference(tenantID, reference string) (*models.Report, error) {
	var report models.Report
	err := s.db.Scopes(tenant.ForTenant(tenantID)).
		Where("reference_number = ?", reference).First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *Store) ListReports(tenantID string, f store.ReportFilter) ([]models.Report, int64, error) {
	var reports []models.Report
	var total int64

	query := s.db.Model(&models.Report{}).Scopes(tenant.ForTenant(tenantID))
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit > 0 {
		offset := 0
		if f.Page > 1 {
			offset = (f.Page - 1) * f.Limit
		}
		query = query.Limit(f.Limit).Offset(offset)
	}
	if err := query.Order("created_at DESC").Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (s *Store) UpdateReport(tenantID string, id uuid.UUID, fields map[string]interface{}) (*models.Report, error) {
	result := s.db.Model(&models.Report{}).
		Scopes(tenant.ForTenant(tenantID)).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetReportByID(tenantID, id)
}

func (s *Store) CreateUpdate(tenantID string, u *models.ReportUpdate) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.TenantID = tenantID
	if u.Visibility == "" {
		u.Visibility = models.VisibilityInternal
	}
	if err := s.db.Create(u).Error; err != nil {
		return fmt.Errorf("failed to create report update: %w", err)
	}
	return nil
}

func (s *Store) ListUpdates(tenantID string, reportID uuid.UUID) ([]models.ReportUpdate, error) {
	var updates []models.ReportUpdate
	err := s.db.Scopes(tenant.ForTenant(tenantID)).
		Where("report_id = ?", reportID).
		Order("created_at DESC").
		Find(&updates).Error
	if err != nil {
		return nil, err
	}
	return updates, nil
}

func (s *Store) CreateAttachment(tenantID string, a *models.ReportAttachment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.TenantID = tenantID
	if err := s.db.Create(a).Error; err != nil {
		return fmt.Errorf("failed to create attachment: %w", err)
	}
	return nil
}

func (s *Store) ListAttachments(tenantID string, reportID uuid.UUID) ([]models.ReportAttachment, error) {
	var attachments []models.ReportAttachment
	err := s.db.Scopes(tenant.ForTenant(tenantID)).
		Where("report_id = ?", reportID).
		Order("created_at ASC").
		Find(&attachments).Error
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

func (s *Store) CreateUser(u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	var existing models.User
	if err := s.db.Scopes(tenant.ForTenant(u.TenantID)).
		Where("email = ?", u.Email).First(&existing).Error; err == nil {
		return store.ErrDuplicate
	}
	if err := s.db.Create(u).Error; err != nil {
		if isDuplicate(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByEmail(tenantID, email string) (*models.User, error) {
	var user models.User
	err := s.db.Scopes(tenant.ForTenant(tenantID)).
		Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) UpdateUser(tenantID string, id uuid.UUID, fields map[string]interface{}) error {
	result := s.db.Model(&models.User{}).
		Scopes(tenant.ForTenant(tenantID)).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DashboardStats(tenantID string) (*store.DashboardStats, error) {
	stats := &store.DashboardStats{
		ByCategory: make(map[string]int64),
		ByStatus:   make(map[string]int64),
	}

	type bucket struct {
		Key   string
		Count int64
	}

	var byCategory []bucket
	if err := s.db.Model(&models.Report{}).
		Scopes(tenant.ForTenant(tenantID)).
		Select("category AS key, COUNT(*) AS count").
		Group("category").
		Scan(&byCategory).Error; err != nil {
		return nil, err
	}
	for _, b := range byCategory {
		stats.ByCategory[b.Key] = b.Count
	}

	var byStatus []bucket
	if err := s.db.Model(&models.Report{}).
		Scopes(tenant.ForTenant(tenantID)).
		Select("status AS key, COUNT(*) AS count").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, b := range byStatus {
		stats.ByStatus[b.Key] = b.Count
	}

	if err := s.db.Scopes(tenant.ForTenant(tenantID)).
		Order("created_at DESC").Limit(10).
		Find(&stats.Recent).Error; err != nil {
		return nil, err
	}

	if err := s.db.Scopes(tenant.ForTenant(tenantID)).
		Where("bad_faith_score > ? OR priority = ?", 60, "critical").
		Order("bad_faith_score DESC").Limit(5).
		Find(&stats.HighRisk).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *Store) CategoryStats(tenantID string) (*store.CategoryStats, error) {
	stats := &store.CategoryStats{
		CategoryBreakdown: make(map[string]int64),
	}

	type bucket struct {
		Key   string
		Count int64
	}

	var byCategory []bucket
	if err := s.db.Model(&models.Report{}).
		Scopes(tenant.ForTenant(tenantID)).
		Select("category AS key, COUNT(*) AS count").
		Group("category").
		Scan(&byCategory).Error; err != nil {
		return nil, err
	}
	for _, b := range byCategory {
		stats.CategoryBreakdown[b.Key] = b.Count
	}

	since := time.Now().AddDate(0, -5, 0)
	since = time.Date(since.Year(), since.Month(), 1, 0, 0, 0, 0, time.UTC)

	var trend []store.MonthCount
	if err := s.db.Model(&models.Report{}).
		Scopes(tenant.ForTenant(tenantID)).
		Where("created_at >= ?", since).
		Select("to_char(created_at, 'YYYY-MM') AS month, COUNT(*) AS count").
		Group("month").
		Order("month ASC").
		Scan(&trend).Error; err != nil {
		return nil, err
	}
	stats.MonthlyTrend = trend
	if stats.MonthlyTrend == nil {
		stats.MonthlyTrend = []store.MonthCount{}
	}

	return stats, nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "duplicate key")
}
