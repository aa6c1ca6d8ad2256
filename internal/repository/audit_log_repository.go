package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/backoffice-api/internal/domain"
	"gorm.io/gorm"
)

// AuditLogRepository handles audit log data access
type AuditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Create inserts a new audit log entry (append-only - no updates allowed)
func (r *AuditLogRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// List retrieves the organization's audit logs, newest first
func (r *AuditLogRepository) List(ctx context.Context, orgID uuid.UUID, filter *domain.AuditLogFilters) ([]domain.AuditLog, int64, error) {
	var logs []domain.AuditLog
	var total int64

	if filter == nil {
		filter = &domain.AuditLogFilters{}
	}

	query := r.db.WithContext(ctx).Model(&domain.AuditLog{}).Scopes(OrganizationScope(orgID))
	query = r.applyFilters(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > MaxPageSize {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	err := query.
		Order("performed_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&logs).Error

	return logs, total, err
}

// applyFilters applies filter conditions to the query
func (r *AuditLogRepository) applyFilters(query *gorm.DB, filter *domain.AuditLogFilters) *gorm.DB {
	if filter == nil {
		return query
	}

	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}

	if filter.EntityID != nil {
		query = query.Where("entity_id = ?", *filter.EntityID)
	}

	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}

	if filter.Action != nil {
		query = query.Where("action = ?", *filter.Action)
	}

	return query
}
