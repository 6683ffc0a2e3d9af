package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Staff roles. Admin routes require one of admin, manager or compliance.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleCompliance = "compliance"
)

// User is a staff or reporter account. Email is unique per tenant.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID     string         `gorm:"size:50;not null;uniqueIndex:idx_users_tenant_email" json:"-"`
	Email        string         `gorm:"not null;size:255;uniqueIndex:idx_users_tenant_email" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	FirstName    string         `gorm:"size:100" json:"first_name"`
	LastName     string         `gorm:"size:100" json:"last_name"`
	Role         string         `gorm:"size:20;default:'user'" json:"role"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	LastLogin    *time.Time     `json:"last_login,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// IsStaffRole reports whether r grants access to the admin review surface.
func IsStaffRole(r string) bool {
	return r == RoleAdmin || r == RoleManager || r == RoleCompliance
}
