// Package store defines the persistence capability set shared by the
// relational and in-memory backends. The backend is selected once at startup
// and exposed via Kind; callers never probe per call.
package store

import (
	"errors"

	"github.com/google/uuid"
	"github.com/ohisee/backend/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Kind identifies the backend implementation.
type Kind int

const (
	KindRelational Kind = iota
	KindMemory
)

func (k Kind) String() string {
	if k == KindMemory {
		return "memory"
	}
	return "relational"
}

// ReportFilter narrows admin report listings. Zero values mean "no filter";
// Page is 1-based.
type ReportFilter struct {
	Status   string
	Category string
	Page     int
	Limit    int
}

// MonthCount is one month of the category-stats trend, Month as "YYYY-MM".
type MonthCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

// DashboardStats aggregates the admin dashboard view.
type DashboardStats struct {
	ByCategory map[string]int64 `json:"byCategory"`
	ByStatus   map[string]int64 `json:"byStatus"`
	Recent     []models.Report  `json:"recentReports"`
	HighRisk   []models.Report  `json:"highRiskReports"`
}

// CategoryStats backs the public category-stats endpoint.
type CategoryStats struct {
	CategoryBreakdown map[string]int64 `json:"categoryBreakdown"`
	MonthlyTrend      []MonthCount     `json:"monthlyTrend"`
}

// Store is the persistence capability set. All report-scoped operations take
// the resolved tenant id; implementations must never return rows from another
// tenant. Updates to missing ids return ErrNotFound; listings return empty
// slices, never errors, when nothing matches.
type Store interface {
	Kind() Kind

	// CreateReport persists r, assigning ReferenceNumber and ID.
	CreateReport(tenantID string, r *models.Report) error
	GetReportByID(tenantID string, id uuid.UUID) (*models.Report, error)
	GetReportByReference(tenantID, reference string) (*models.Report, error)
	ListReports(tenantID string, f ReportFilter) ([]models.Report, int64, error)
	// UpdateReport applies only the given fields and returns the fresh row.
	UpdateReport(tenantID string, id uuid.UUID, fields map[string]interface{}) (*models.Report, error)

	CreateUpdate(tenantID string, u *models.ReportUpdate) error
	// ListUpdates returns a report's updates newest-first.
	ListUpdates(tenantID string, reportID uuid.UUID) ([]models.ReportUpdate, error)

	CreateAttachment(tenantID string, a *models.ReportAttachment) error
	ListAttachments(tenantID string, reportID uuid.UUID) ([]models.ReportAttachment, error)

	CreateUser(u *models.User) error
	GetUserByEmail(tenantID, email string) (*models.User, error)
	UpdateUser(tenantID string, id uuid.UUID, fields map[string]interface{}) error

	DashboardStats(tenantID string) (*DashboardStats, error)
	CategoryStats(tenantID string) (*CategoryStats, error)
}
