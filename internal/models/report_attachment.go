package models

import (
	"time"

	"github.com/google/uuid"
)

// Attachment limits enforced at intake.
const (
	MaxAttachments    = 5
	MaxAttachmentSize = 10 * 1024 * 1024
)

// ReportAttachment records a file submitted with a report. StoragePath follows
// the {tenant}/{reportID}/{filename} convention.
type ReportAttachment struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID    string    `gorm:"size:50;not null;index" json:"-"`
	ReportID    uuid.UUID `gorm:"type:uuid;not null;index" json:"report_id"`
	Filename    string    `gorm:"size:255;not null" json:"filename"`
	MimeType    string    `gorm:"size:100" json:"mime_type"`
	Size        int64     `gorm:"not null" json:"size"`
	StoragePath string    `gorm:"size:500;not null" json:"storage_path"`
	CreatedAt   time.Time `json:"created_at"`
	Report      Report    `gorm:"foreignKey:ReportID" json:"-"`
}

func (ReportAttachment) TableName() string {
	return "report_attachments"
}
