package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/backoffice-api/internal/auth"
	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/mapper"
	"github.com/straye-as/backoffice-api/internal/repository"
	"go.uber.org/zap"
)

// AuditLogService handles audit logging operations
type AuditLogService struct {
	auditRepo *repository.AuditLogRepository
	logger    *zap.Logger
}

// NewAuditLogService creates a new audit log service
func NewAuditLogService(auditRepo *repository.AuditLogRepository, logger *zap.Logger) *AuditLogService {
	return &AuditLogService{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// LogEntry represents the input for creating an audit log entry
type LogEntry struct {
	Action     domain.AuditAction
	EntityType string
	EntityID   *uuid.UUID
	Changes    interface{}
}

// Log records an entry for the organization of the authenticated caller.
// Requests without a tenant are not logged.
func (s *AuditLogService) Log(ctx context.Context, r *http.Request, entry LogEntry) error {
	user, ok := auth.FromContext(ctx)
	if !ok || user.OrganizationID == uuid.Nil {
		return nil
	}

	auditLog := &domain.AuditLog{
		OrganizationID: user.OrganizationID,
		UserID:         user.UserID.String(),
		UserEmail:      user.Email,
		Action:         entry.Action,
		EntityType:     entry.EntityType,
		EntityID:       entry.EntityID,
		PerformedAt:    time.Now().UTC(),
	}

	if r != nil {
		auditLog.IPAddress = ClientIP(r)
		auditLog.UserAgent = r.UserAgent()
		auditLog.RequestID = r.Header.Get("X-Request-ID")
	}

	auditLog.Changes = "null"
	if entry.Changes != nil {
		if changesJSON, err := json.Marshal(entry.Changes); err == nil {
			auditLog.Changes = string(changesJSON)
		}
	}

	if err := s.auditRepo.Create(ctx, auditLog); err != nil {
		s.logger.Error("failed to create audit log",
			zap.String("action", string(entry.Action)),
			zap.String("entity_type", entry.EntityType),
			zap.Error(err))
		return err
	}

	return nil
}

// List returns the organization's audit trail, newest first
func (s *AuditLogService) List(ctx context.Context, orgID uuid.UUID, filters *domain.AuditLogFilters) ([]domain.AuditLogDTO, int64, error) {
	logs, total, err := s.auditRepo.List(ctx, orgID, filters)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]domain.AuditLogDTO, len(logs))
	for i := range logs {
		dtos[i] = mapper.ToAuditLogDTO(&logs[i])
	}
	return dtos, total, nil
}

// ClientIP extracts the client IP from the request
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
