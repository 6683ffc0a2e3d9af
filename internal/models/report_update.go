package models

import (
	"time"

	"github.com/google/uuid"
)

// Update visibility. Reporter-visible updates are exposed through tracking and
// trigger a notification when the report carries a reporter email.
const (
	VisibilityInternal = "internal"
	VisibilityReporter = "reporter"
)

// ReportUpdate is an append-only staff note on a report. Updates are never
// edited or deleted.
type ReportUpdate struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID   string    `gorm:"size:50;not null;index" json:"-"`
	ReportID   uuid.UUID `gorm:"type:uuid;not null;index" json:"report_id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	Visibility string    `gorm:"size:20;not null;default:'internal'" json:"visibility"`
	CreatedAt  time.Time `json:"created_at"`
	Report     Report    `gorm:"foreignKey:ReportID" json:"-"`
}

func (ReportUpdate) TableName() string {
	return "report_updates"
}
