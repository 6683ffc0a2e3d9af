package tenant

import "gorm.io/gorm"

// ForTenant returns a GORM scope that filters by tenant_id. Every store query
// goes through this scope; tenant isolation depends on it.
func ForTenant(tenantID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}
