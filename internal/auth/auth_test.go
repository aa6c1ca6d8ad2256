package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/straye-as/backoffice-api/internal/auth"
	"github.com/straye-as/backoffice-api/internal/config"
	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-signing-secret"

func testAuthConfig(apiKey string) *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret: testSecret,
		Issuer:    "straye-identity",
		APIKey:    apiKey,
	}
}

func signToken(t *testing.T, secret string, claims auth.Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims(userID, orgID uuid.UUID, role string) auth.Claims {
	return auth.Claims{
		Organization: orgID.String(),
		Role:         role,
		Email:        "marie@example.com",
		Name:         "Marie Dubois",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    "straye-identity",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestJWTValidator_ValidateToken(t *testing.T) {
	validator := auth.NewJWTValidator(testAuthConfig(""))
	userID := uuid.New()
	orgID := uuid.New()

	t.Run("valid token", func(t *testing.T) {
		token := signToken(t, testSecret, validClaims(userID, orgID, "COMMERCIAL"))

		user, err := validator.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, userID, user.UserID)
		assert.Equal(t, orgID, user.OrganizationID)
		assert.Equal(t, domain.RoleCommercial, user.Role)
		assert.Equal(t, "marie@example.com", user.Email)
		assert.Equal(t, "Marie Dubois", user.DisplayName)
		assert.False(t, user.IsSystem)
	})

	t.Run("role is case insensitive", func(t *testing.T) {
		token := signToken(t, testSecret, validClaims(userID, orgID, "accounting"))

		user, err := validator.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAccounting, user.Role)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := signToken(t, "another-secret", validClaims(userID, orgID, "ADMIN"))

		_, err := validator.ValidateToken(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		claims := validClaims(userID, orgID, "ADMIN")
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

		_, err := validator.ValidateToken(signToken(t, testSecret, claims))
		assert.ErrorIs(t, err, auth.ErrExpiredToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		claims := validClaims(userID, orgID, "ADMIN")
		claims.Issuer = "someone-else"

		_, err := validator.ValidateToken(signToken(t, testSecret, claims))
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("missing organization", func(t *testing.T) {
		claims := validClaims(userID, orgID, "ADMIN")
		claims.Organization = ""

		_, err := validator.ValidateToken(signToken(t, testSecret, claims))
		assert.ErrorIs(t, err, auth.ErrMissingTenant)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := validator.ValidateToken(signToken(t, testSecret, validClaims(userID, orgID, "SUPERUSER")))
		assert.ErrorIs(t, err, auth.ErrUnknownRole)
	})

	t.Run("other signing method", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS512, validClaims(userID, orgID, "ADMIN"))
		signed, err := token.SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = validator.ValidateToken(signed)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}

func captureUser(called *bool, user **auth.UserContext) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		*user, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_Authenticate(t *testing.T) {
	apiKey := "test-api-key-12345"
	m := auth.NewMiddleware(testAuthConfig(apiKey), zap.NewNop())
	orgID := uuid.New()

	t.Run("api key with organization", func(t *testing.T) {
		var called bool
		var user *auth.UserContext

		req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil)
		req.Header.Set("x-api-key", apiKey)
		req.Header.Set(auth.OrganizationHeader, orgID.String())
		w := httptest.NewRecorder()

		m.Authenticate(captureUser(&called, &user)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.True(t, called)
		require.NotNil(t, user)
		assert.True(t, user.IsSystem)
		assert.Equal(t, orgID, user.OrganizationID)
		assert.Equal(t, domain.RoleAdmin, user.Role)
	})

	t.Run("api key without organization", func(t *testing.T) {
		var called bool
		var user *auth.UserContext

		req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil)
		req.Header.Set("x-api-key", apiKey)
		w := httptest.NewRecorder()

		m.Authenticate(captureUser(&called, &user)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, called)
	})

	t.Run("invalid api key", func(t *testing.T) {
		var called bool
		var user *auth.UserContext

		req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil)
		req.Header.Set("x-api-key", "wrong")
		req.Header.Set(auth.OrganizationHeader, orgID.String())
		w := httptest.NewRecorder()

		m.Authenticate(captureUser(&called, &user)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, called)
	})

	t.Run("bearer token", func(t *testing.T) {
		var called bool
		var user *auth.UserContext
		userID := uuid.New()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims(userID, orgID, "READ_ONLY")))
		w := httptest.NewRecorder()

		m.Authenticate(captureUser(&called, &user)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, user)
		assert.Equal(t, userID, user.UserID)
		assert.Equal(t, domain.RoleReadOnly, user.Role)
		assert.False(t, user.CanWrite())
	})

	t.Run("missing header", func(t *testing.T) {
		var called bool
		var user *auth.UserContext

		req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil)
		w := httptest.NewRecorder()

		m.Authenticate(captureUser(&called, &user)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, called)
	})

	t.Run("malformed header", func(t *testing.T) {
		var called bool
		var user *auth.UserContext

		req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil)
		req.Header.Set("Authorization", "Basic abc")
		w := httptest.NewRecorder()

		m.Authenticate(captureUser(&called, &user)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestMiddleware_RequireRole(t *testing.T) {
	m := auth.NewMiddleware(testAuthConfig(""), zap.NewNop())
	guarded := m.RequireRole(domain.RoleAdmin, domain.RoleAccounting)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name     string
		user     *auth.UserContext
		expected int
	}{
		{"admin", &auth.UserContext{Role: domain.RoleAdmin}, http.StatusNoContent},
		{"accounting", &auth.UserContext{Role: domain.RoleAccounting}, http.StatusNoContent},
		{"commercial", &auth.UserContext{Role: domain.RoleCommercial}, http.StatusForbidden},
		{"read only", &auth.UserContext{Role: domain.RoleReadOnly}, http.StatusForbidden},
		{"anonymous", nil, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", nil)
			if tt.user != nil {
				req = req.WithContext(auth.WithUserContext(req.Context(), tt.user))
			}
			w := httptest.NewRecorder()

			guarded.ServeHTTP(w, req)

			assert.Equal(t, tt.expected, w.Code)
		})
	}
}

func TestOrganizationID(t *testing.T) {
	orgID := uuid.New()
	ctx := auth.WithUserContext(httptest.NewRequest(http.MethodGet, "/", nil).Context(), &auth.UserContext{OrganizationID: orgID})

	got, ok := auth.OrganizationID(ctx)
	assert.True(t, ok)
	assert.Equal(t, orgID, got)

	_, ok = auth.OrganizationID(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
