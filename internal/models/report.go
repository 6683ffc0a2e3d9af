package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Report categories accepted at intake.
const (
	CategoryProductSafety = "product_safety"
	CategoryMisconduct    = "misconduct"
	CategoryHealthSafety  = "health_safety"
	CategoryHarassment    = "harassment"
)

// Report statuses. A report starts as submitted; resolved and closed
// additionally stamp ResolvedAt.
const (
	StatusSubmitted        = "submitted"
	StatusUnderReview      = "under_review"
	StatusInvestigating    = "investigating"
	StatusCorrectiveAction = "corrective_action"
	StatusPendingReview    = "pending_review"
	StatusResolved         = "resolved"
	StatusClosed           = "closed"
)

// Report is a confidential report. ReferenceNumber is assigned exactly once at
// creation and is the only identifier ever exposed to the reporter.
type Report struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID        string         `gorm:"size:50;not null;index" json:"-"`
	ReferenceNumber string         `gorm:"size:20;not null;uniqueIndex" json:"reference_number"`
	Category        string         `gorm:"size:50;not null;index" json:"category"`
	Title           string         `gorm:"size:255;not null" json:"title"`
	Description     string         `gorm:"type:text;not null" json:"description"`
	Location        string         `gorm:"size:255" json:"location,omitempty"`
	DateOccurred    string         `gorm:"size:50" json:"date_occurred,omitempty"`
	Witnesses       string         `gorm:"size:500" json:"witnesses,omitempty"`
	PreviousReport  bool           `gorm:"default:false" json:"previous_report"`
	ReporterEmail   string         `gorm:"size:255" json:"reporter_email,omitempty"`
	BadFaithScore   int            `gorm:"default:0" json:"bad_faith_score"`
	BadFaithFlags   datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"bad_faith_flags"`
	Status          string         `gorm:"size:50;not null;default:'submitted';index" json:"status"`
	Priority        string         `gorm:"size:20;not null;default:'medium'" json:"priority"`
	AssignedTo      string         `gorm:"size:255" json:"assigned_to,omitempty"`
	ResolutionNotes string         `gorm:"type:text" json:"resolution_notes,omitempty"`
	ResolvedAt      *time.Time     `json:"resolved_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (Report) TableName() string {
	return "reports"
}

// ValidCategory reports whether c is one of the four intake categories.
func ValidCategory(c string) bool {
	switch c {
	case CategoryProductSafety, CategoryMisconduct, CategoryHealthSafety, CategoryHarassment:
		return true
	}
	return false
}

// ValidStatus reports whether s is an accepted lifecycle status.
func ValidStatus(s string) bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusInvestigating,
		StatusCorrectiveAction, StatusPendingReview, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// ValidPriority reports whether p is an accepted priority.
func ValidPriority(p string) bool {
	switch p {
	case "low", "medium", "high", "critical":
		return true
	}
	return false
}
