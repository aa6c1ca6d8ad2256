package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/straye-as/backoffice-api/internal/auth"
	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/service"
	"go.uber.org/zap"
)

// OrganizationGetter loads the organization a request is scoped to
type OrganizationGetter interface {
	Get(ctx context.Context, orgID uuid.UUID) (*domain.OrganizationDTO, error)
}

// TenantMiddleware rejects authenticated requests whose organization is
// missing or unknown. Handlers behind it can rely on auth.OrganizationID.
type TenantMiddleware struct {
	organizations OrganizationGetter
	logger        *zap.Logger
}

func NewTenantMiddleware(organizations OrganizationGetter, logger *zap.Logger) *TenantMiddleware {
	return &TenantMiddleware{
		organizations: organizations,
		logger:        logger,
	}
}

// Require must run after authentication
func (m *TenantMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		orgID, ok := auth.OrganizationID(r.Context())
		if !ok {
			http.Error(w, "Forbidden: no organization in credentials", http.StatusForbidden)
			return
		}

		if _, err := m.organizations.Get(r.Context(), orgID); err != nil {
			if errors.Is(err, service.ErrOrganizationNotFound) {
				m.logger.Warn("request for unknown organization",
					zap.String("organization_id", orgID.String()),
					zap.String("path", r.URL.Path))
				http.Error(w, "Forbidden: unknown organization", http.StatusForbidden)
				return
			}
			m.logger.Error("failed to resolve organization",
				zap.String("organization_id", orgID.String()),
				zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		next.ServeHTTP(w, r)
	})
}
