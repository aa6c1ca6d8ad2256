package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/straye-as/backoffice-api/internal/auth"
	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/http/middleware"
	"github.com/straye-as/backoffice-api/internal/repository"
	"github.com/straye-as/backoffice-api/internal/service"
	"github.com/straye-as/backoffice-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type auditFixture struct {
	service *service.AuditLogService
	audit   *middleware.AuditMiddleware
	router  chi.Router
	user    *auth.UserContext
}

func newAuditFixture(t *testing.T, status int) *auditFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	org := testutil.CreateOrganization(t, db, "Transports Dupont")
	auditService := service.NewAuditLogService(repository.NewAuditLogRepository(db), zap.NewNop())
	audit := middleware.NewAuditMiddleware(auditService, nil, zap.NewNop())

	reply := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(status) }
	r := chi.NewRouter()
	r.Use(audit.Audit)
	r.Get("/api/v1/quotes", reply)
	r.Post("/api/v1/quotes", reply)
	r.Put("/api/v1/quotes/{id}", reply)
	r.Delete("/api/v1/invoices/{id}/payments/{paymentId}", reply)
	r.Get("/health", reply)

	return &auditFixture{
		service: auditService,
		audit:   audit,
		router:  r,
		user: &auth.UserContext{
			UserID:         uuid.New(),
			OrganizationID: org.ID,
			Role:           domain.RoleAdmin,
			Email:          "admin@dupont.be",
		},
	}
}

func (f *auditFixture) do(method, target, body string) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(auth.WithUserContext(req.Context(), f.user))
	f.router.ServeHTTP(httptest.NewRecorder(), req)
	f.audit.Wait()
}

func (f *auditFixture) entries(t *testing.T) []domain.AuditLogDTO {
	t.Helper()
	logs, _, err := f.service.List(context.Background(), f.user.OrganizationID, &domain.AuditLogFilters{Limit: 50})
	require.NoError(t, err)
	return logs
}

func TestAuditMiddleware_RecordsWrites(t *testing.T) {
	f := newAuditFixture(t, http.StatusOK)
	quoteID := uuid.New()

	f.do(http.MethodPut, "/api/v1/quotes/"+quoteID.String(), `{"notes":"urgent","token":"s3cr3t"}`)

	logs := f.entries(t)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.AuditActionUpdate, logs[0].Action)
	assert.Equal(t, "quote", logs[0].EntityType)
	require.NotNil(t, logs[0].EntityID)
	assert.Equal(t, quoteID, *logs[0].EntityID)
	assert.Equal(t, "admin@dupont.be", logs[0].UserEmail)
	assert.Contains(t, logs[0].Changes, "urgent")
	assert.NotContains(t, logs[0].Changes, "s3cr3t")
}

func TestAuditMiddleware_InnermostEntity(t *testing.T) {
	f := newAuditFixture(t, http.StatusNoContent)
	paymentID := uuid.New()

	f.do(http.MethodDelete, "/api/v1/invoices/"+uuid.NewString()+"/payments/"+paymentID.String(), "")

	logs := f.entries(t)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.AuditActionDelete, logs[0].Action)
	assert.Equal(t, "payment", logs[0].EntityType)
	require.NotNil(t, logs[0].EntityID)
	assert.Equal(t, paymentID, *logs[0].EntityID)
}

func TestAuditMiddleware_Skips(t *testing.T) {
	tests := []struct {
		name   string
		status int
		method string
		target string
	}{
		{"reads", http.StatusOK, http.MethodGet, "/api/v1/quotes"},
		{"skipped paths", http.StatusOK, http.MethodGet, "/health"},
		{"failed writes", http.StatusBadRequest, http.MethodPost, "/api/v1/quotes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuditFixture(t, tt.status)

			f.do(tt.method, tt.target, `{}`)

			assert.Empty(t, f.entries(t))
		})
	}
}
