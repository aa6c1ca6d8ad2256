package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/straye-as/backoffice-api/internal/config"
	"github.com/straye-as/backoffice-api/internal/http/middleware"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func corsConfig(origins ...string) *config.CORSConfig {
	return &config.CORSConfig{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type", "x-api-key"},
		MaxAge:         300,
	}
}

func corsRequest(h http.Handler, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil)
	req.Header.Set("Origin", origin)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		origins     []string
		environment string
		origin      string
		allowed     bool
	}{
		{"development allows any origin", nil, "development", "http://localhost:5173", true},
		{"wildcard allows any origin", []string{"*"}, "production", "https://evil.example", true},
		{"explicit origin allowed", []string{"https://app.straye.be"}, "production", "https://app.straye.be", true},
		{"explicit origin rejects others", []string{"https://app.straye.be"}, "production", "https://evil.example", false},
		{"production without origins denies", nil, "production", "https://app.straye.be", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := middleware.CORS(corsConfig(tt.origins...), tt.environment, zap.NewNop())(okHandler())

			rr := corsRequest(h, tt.origin)

			if tt.allowed {
				assert.Equal(t, tt.origin, rr.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	h := middleware.CORS(corsConfig("https://app.straye.be"), "production", zap.NewNop())(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/quotes", nil)
	req.Header.Set("Origin", "https://app.straye.be")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "https://app.straye.be", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	assert.Equal(t, "300", rr.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_ExposesRequestID(t *testing.T) {
	h := middleware.CORS(corsConfig(), "development", zap.NewNop())(okHandler())

	rr := corsRequest(h, "http://localhost:5173")

	assert.Contains(t, rr.Header().Get("Access-Control-Expose-Headers"), http.CanonicalHeaderKey(middleware.RequestIDHeader))
}
