package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/straye-as/backoffice-api/internal/config"
	"github.com/straye-as/backoffice-api/internal/domain"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrMissingTenant = errors.New("token missing organization")
	ErrUnknownRole   = errors.New("token carries an unknown role")
)

// Claims is the token payload issued by the identity service
type Claims struct {
	Organization string `json:"org"`
	Role         string `json:"role"`
	Email        string `json:"email,omitempty"`
	Name         string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTValidator validates HS256 tokens signed with the shared secret
type JWTValidator struct {
	secret []byte
	issuer string
}

// NewJWTValidator creates a new JWT validator
func NewJWTValidator(cfg *config.AuthConfig) *JWTValidator {
	return &JWTValidator{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
	}
}

// ValidateToken validates a JWT token and returns user context
func (v *JWTValidator) ValidateToken(tokenString string) (*UserContext, error) {
	if len(v.secret) == 0 {
		return nil, fmt.Errorf("%w: no signing secret configured", ErrInvalidToken)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not a uuid", ErrInvalidToken)
	}

	orgID, err := uuid.Parse(claims.Organization)
	if err != nil || orgID == uuid.Nil {
		return nil, ErrMissingTenant
	}

	role := domain.UserRoleType(strings.ToUpper(claims.Role))
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, claims.Role)
	}

	return &UserContext{
		UserID:         userID,
		OrganizationID: orgID,
		Role:           role,
		Email:          claims.Email,
		DisplayName:    claims.Name,
	}, nil
}
