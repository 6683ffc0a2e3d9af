// Package memory is the in-process store backend used when no database is
// configured. Unlike the relational backend it holds everything in maps, but
// it enforces the same tenant partitioning and allocates reference numbers
// from an atomic counter so concurrent intakes never collide.
package memory

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/ohisee/backend/internal/models"
	"github.com/ohisee/backend/internal/store"
)

type Store struct {
	mu          sync.RWMutex
	reports     map[uuid.UUID]*models.Report
	updates     map[uuid.UUID]*models.ReportUpdate
	attachments map[uuid.UUID]*models.ReportAttachment
	users       map[uuid.UUID]*models.User
	refCounter  atomic.Int64
}

func New() *Store {
	return &Store{
		reports:     make(map[uuid.UUID]*models.Report),
		updates:     make(map[uuid.UUID]*models.ReportUpdate),
		attachments: make(map[uuid.UUID]*models.ReportAttachment),
		users:       make(map[uuid.UUID]*models.User),
	}
}

func (s *Store) Kind() store.Kind {
	return store.KindMemory
}

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
	r.ReferenceNumber = fmt.Sprintf("REF-%d-%05d", time.Now().Year(), s.refCounter.Add(1))
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *r
	s.reports[r.ID] = &clone
	return nil
}

func (s *Store) GetReportByID(tenantID string, id uuid.UUID) (*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	if !ok || r.TenantID != tenantID {
		return nil, store.ErrNotFound
	}
	clone := *r
	return &clone, nil
}

func (s *Store) GetReportByReference(tenantID, reference string) (*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.reports {
		if r.TenantID == tenantID && r.ReferenceNumber == reference {
			clone := *r
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListReports(tenantID string, f store.ReportFilter) ([]models.Report, int64, error) {
	s.mu.RLock()
	matched := make([]models.Report, 0)
	for _, r := range s.reports {
		if r.TenantID != tenantID {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.Category != "" && r.Category != f.Category {
			continue
		}
		matched = append(matched, *r)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if f.Limit > 0 {
		offset := 0
		if f.Page > 1 {
			offset = (f.Page - 1) * f.Limit
		}
		if offset >= len(matched) {
			return []models.Report{}, total, nil
		}
		end := offset + f.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[offset:end]
	}
	return matched, total, nil
}

func (s *Store) UpdateReport(tenantID string, id uuid.UUID, fields map[string]interface{}) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok || r.TenantID != tenantID {
		return nil, store.ErrNotFound
	}

	for key, val := range fields {
		switch key {
		case "status":
			if v, ok := val.(string); ok {
				r.Status = v
			}
		case "priority":
			if v, ok := val.(string); ok {
				r.Priority = v
			}
		case "assigned_to":
			if v, ok := val.(string); ok {
				r.AssignedTo = v
			}
		case "resolution_notes":
			if v, ok := val.(string); ok {
				r.ResolutionNotes = v
			}
		case "resolved_at":
			switch v := val.(type) {
			case time.Time:
				r.ResolvedAt = &v
			case *time.Time:
				r.ResolvedAt = v
			}
		}
	}
	r.UpdatedAt = time.Now()
	clone := *r
	return &clone, nil
}

func (s *Store) CreateUpdate(tenantID string, u *models.ReportUpdate) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.TenantID = tenantID
	if u.Visibility == "" {
		u.Visibility = models.VisibilityInternal
	}
	u.CreatedAt = time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[u.ReportID]
	if !ok || r.TenantID != tenantID {
		return store.ErrNotFound
	}
	r.UpdatedAt = time.Now()
	clone := *u
	s.updates[u.ID] = &clone
	return nil
}

func (s *Store) ListUpdates(tenantID string, reportID uuid.UUID) ([]models.ReportUpdate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]models.ReportUpdate, 0)
	for _, u := range s.updates {
		if u.TenantID == tenantID && u.ReportID == reportID {
			matched = append(matched, *u)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}

func (s *Store) CreateAttachment(tenantID string, a *models.ReportAttachment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.TenantID = tenantID
	a.CreatedAt = time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *a
	s.attachments[a.ID] = &clone
	return nil
}

func (s *Store) ListAttachments(tenantID string, reportID uuid.UUID) ([]models.ReportAttachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]models.ReportAttachment, 0)
	for _, a := range s.attachments {
		if a.TenantID == tenantID && a.ReportID == reportID {
			matched = append(matched, *a)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	return matched, nil
}

func (s *Store) CreateUser(u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.TenantID == u.TenantID && strings.EqualFold(existing.Email, u.Email) {
			return store.ErrDuplicate
		}
	}
	clone := *u
	s.users[u.ID] = &clone
	return nil
}

func (s *Store) GetUserByEmail(tenantID, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.TenantID == tenantID && strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UpdateUser(tenantID string, id uuid.UUID, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.TenantID != tenantID {
		return store.ErrNotFound
	}

	for key, val := range fields {
		switch key {
		case "last_login":
			switch v := val.(type) {
			case time.Time:
				u.LastLogin = &v
			case *time.Time:
				u.LastLogin = v
			}
		case "is_active":
			if v, ok := val.(bool); ok {
				u.IsActive = v
			}
		case "password_hash":
			if v, ok := val.(string); ok {
				u.PasswordHash = v
			}
		case "role":
			if v, ok := val.(string); ok {
				u.Role = v
			}
		}
	}
	u.UpdatedAt = time.Now()
	return nil
}

func (s *Store) DashboardStats(tenantID string) (*store.DashboardStats, error) {
	reports, _, err := s.ListReports(tenantID, store.ReportFilter{})
	if err != nil {
		return nil, err
	}

	stats := &store.DashboardStats{
		ByCategory: make(map[string]int64),
		ByStatus:   make(map[string]int64),
		Recent:     []models.Report{},
		HighRisk:   []models.Report{},
	}
	for _, r := range reports {
		stats.ByCategory[r.Category]++
		stats.ByStatus[r.Status]++
	}

	// ListReports already sorts newest-first.
	if len(reports) > 10 {
		stats.Recent = reports[:10]
	} else {
		stats.Recent = reports
	}

	for _, r := range reports {
		if r.BadFaithScore > 60 || r.Priority == "critical" {
			stats.HighRisk = append(stats.HighRisk, r)
			if len(stats.HighRisk) == 5 {
				break
			}
		}
	}
	return stats, nil
}

func (s *Store) CategoryStats(tenantID string) (*store.CategoryStats, error) {
	reports, _, err := s.ListReports(tenantID, store.ReportFilter{})
	if err != nil {
		return nil, err
	}

	stats := &store.CategoryStats{
		CategoryBreakdown: make(map[string]int64),
		MonthlyTrend:      []store.MonthCount{},
	}

	since := time.Now().AddDate(0, -5, 0)
	since = time.Date(since.Year(), since.Month(), 1, 0, 0, 0, 0, time.UTC)

	byMonth := make(map[string]int64)
	for _, r := range reports {
		stats.CategoryBreakdown[r.Category]++
		if !r.CreatedAt.Before(since) {
			byMonth[r.CreatedAt.Format("2006-01")]++
		}
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)
	for _, m := range months {
		stats.MonthlyTrend = append(stats.MonthlyTrend, store.MonthCount{Month: m, Count: byMonth[m]})
	}
	return stats, nil
}
