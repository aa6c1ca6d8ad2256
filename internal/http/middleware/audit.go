package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/service"
	"go.uber.org/zap"
)

// AuditConfig holds configuration for audit middleware
type AuditConfig struct {
	// SkipPaths contains paths that should not be audited
	SkipPaths []string
	// SkipMethods contains HTTP methods that should not be audited (e.g., GET, OPTIONS)
	SkipMethods []string
	// AuditReads enables auditing of GET requests (defaults to false)
	AuditReads bool
	// MaxBodyBytes caps the request body recorded as changes
	MaxBodyBytes int64
}

// DefaultAuditConfig returns default audit configuration
func DefaultAuditConfig() *AuditConfig {
	return &AuditConfig{
		SkipPaths: []string{
			"/health",
			"/swagger",
		},
		SkipMethods: []string{
			http.MethodOptions,
			http.MethodHead,
		},
		AuditReads:   false,
		MaxBodyBytes: 64 << 10,
	}
}

// entityTypes maps a path segment to the audited entity type
var entityTypes = map[string]string{
	"taxes":        "tax",
	"products":     "product",
	"customers":    "customer",
	"addresses":    "customer_address",
	"contacts":     "customer_contact",
	"users":        "user",
	"vehicles":     "vehicle",
	"documents":    "vehicle_document",
	"quotes":       "quote",
	"lines":        "quote_line",
	"delivery":     "delivery",
	"invoices":     "invoice",
	"payments":     "payment",
	"expenses":     "expense",
	"categories":   "expense_category",
	"numbering":    "document_numbering",
	"organization": "organization",
}

// sensitiveFields are dropped from recorded request bodies
var sensitiveFields = []string{"password", "secret", "token", "apiKey", "iban"}

// AuditMiddleware provides audit logging for HTTP requests
type AuditMiddleware struct {
	auditService *service.AuditLogService
	config       *AuditConfig
	logger       *zap.Logger
	pending      sync.WaitGroup
}

// NewAuditMiddleware creates a new audit middleware
func NewAuditMiddleware(auditService *service.AuditLogService, config *AuditConfig, logger *zap.Logger) *AuditMiddleware {
	if config == nil {
		config = DefaultAuditConfig()
	}
	return &AuditMiddleware{
		auditService: auditService,
		config:       config,
		logger:       logger,
	}
}

// Audit returns middleware that records successful writes in the audit log.
// Entries are written in the background; Wait blocks until they are stored.
func (m *AuditMiddleware) Audit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.shouldAudit(r) {
			next.ServeHTTP(w, r)
			return
		}

		var requestBody []byte
		if r.Body != nil && isJSONWrite(r) {
			requestBody, _ = io.ReadAll(io.LimitReader(r.Body, m.config.MaxBodyBytes+1))
			r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(requestBody), r.Body))
			if int64(len(requestBody)) > m.config.MaxBodyBytes {
				requestBody = nil
			}
		}

		rw := &responseCapture{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		if rw.statusCode < 200 || rw.statusCode >= 300 {
			return
		}

		entityType, entityID := m.extractEntityInfo(r)
		entry := service.LogEntry{
			Action:     m.methodToAction(r.Method),
			EntityType: entityType,
			EntityID:   entityID,
			Changes:    redactBody(requestBody),
		}
		if entry.Action == "" {
			return
		}

		ctx := context.WithoutCancel(r.Context())
		m.pending.Add(1)
		go func() {
			defer m.pending.Done()
			m.logAudit(ctx, r, entry)
		}()
	})
}

// Wait blocks until every queued audit entry has been written
func (m *AuditMiddleware) Wait() {
	m.pending.Wait()
}

func isJSONWrite(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
	}
	return false
}

// shouldAudit determines if a request should be audited
func (m *AuditMiddleware) shouldAudit(r *http.Request) bool {
	for _, method := range m.config.SkipMethods {
		if r.Method == method {
			return false
		}
	}

	if r.Method == http.MethodGet && !m.config.AuditReads {
		return false
	}

	path := r.URL.Path
	for _, skipPath := range m.config.SkipPaths {
		if strings.HasPrefix(path, skipPath) {
			return false
		}
	}

	return true
}

func (m *AuditMiddleware) logAudit(ctx context.Context, r *http.Request, entry service.LogEntry) {
	if m.auditService == nil {
		return
	}

	if err := m.auditService.Log(ctx, r, entry); err != nil {
		m.logger.Warn("failed to create audit log entry",
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method),
			zap.Error(err))
	}
}

func redactBody(body []byte) interface{} {
	if len(body) == 0 {
		return nil
	}
	var parsed map[string]interface{}
	if json.Unmarshal(body, &parsed) != nil {
		return nil
	}
	for _, field := range sensitiveFields {
		delete(parsed, field)
	}
	return parsed
}

// methodToAction converts HTTP method to audit action
func (m *AuditMiddleware) methodToAction(method string) domain.AuditAction {
	switch method {
	case http.MethodPost:
		return domain.AuditActionCreate
	case http.MethodPut, http.MethodPatch:
		return domain.AuditActionUpdate
	case http.MethodDelete:
		return domain.AuditActionDelete
	default:
		return ""
	}
}

// extractEntityInfo picks the innermost known resource of the route
// pattern, e.g. "payment" for /invoices/{id}/payments/{paymentId}, and the
// URL parameter that follows it.
func (m *AuditMiddleware) extractEntityInfo(r *http.Request) (string, *uuid.UUID) {
	routeCtx := chi.RouteContext(r.Context())
	if routeCtx == nil {
		return parseEntityFromPath(r.URL.Path), nil
	}

	parts := strings.Split(strings.Trim(routeCtx.RoutePattern(), "/"), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		entityType, ok := entityTypes[parts[i]]
		if !ok {
			continue
		}
		if i+1 < len(parts) && strings.HasPrefix(parts[i+1], "{") {
			name := strings.Trim(parts[i+1], "{}")
			if id, err := uuid.Parse(routeCtx.URLParam(name)); err == nil {
				return entityType, &id
			}
		}
		return entityType, nil
	}

	return "unknown", nil
}

func parseEntityFromPath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if entityType, ok := entityTypes[parts[i]]; ok {
			return entityType
		}
	}
	return "unknown"
}

// responseCapture wraps ResponseWriter to capture the status code
type responseCapture struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseCapture) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
