package handler

import (
	"net/http"

	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/service"
	"go.uber.org/zap"
)

const maxAuditPageSize = 100

// AuditHandler handles audit log related HTTP requests
type AuditHandler struct {
	auditService *service.AuditLogService
	logger       *zap.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *service.AuditLogService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		logger:       logger,
	}
}

// List godoc
// @Summary List audit logs
// @Description Returns a paginated list of audit log entries with optional filters, newest first
// @Tags Audit
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Page size (default: 20, max: 100)"
// @Param userId query string false "Filter by user ID"
// @Param action query string false "Filter by action type" Enums(create, update, delete)
// @Param entityType query string false "Filter by entity type"
// @Param entityId query string false "Filter by entity ID" format(uuid)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.AuditLogDTO}
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /audit [get]
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}

	page, pageSize := pageParams(r)
	if pageSize > maxAuditPageSize {
		pageSize = maxAuditPageSize
	}

	q := r.URL.Query()
	filters := &domain.AuditLogFilters{
		EntityType: q.Get("entityType"),
		UserID:     q.Get("userId"),
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
	}
	if raw := q.Get("action"); raw != "" {
		action := domain.AuditAction(raw)
		switch action {
		case domain.AuditActionCreate, domain.AuditActionUpdate, domain.AuditActionDelete:
			filters.Action = &action
		default:
			respondWithError(w, http.StatusBadRequest, "Invalid action")
			return
		}
	}
	entityID, err := uuidQuery(r, "entityId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	filters.EntityID = entityID

	logs, total, err := h.auditService.List(r.Context(), orgID, filters)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "list audit logs")
		return
	}

	respondJSON(w, http.StatusOK, domain.NewPaginatedResponse(logs, total, page, pageSize))
}
