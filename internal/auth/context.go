package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/backoffice-api/internal/domain"
)

// SystemUserID identifies requests authenticated with the API key
var SystemUserID = uuid.Nil

// UserContext holds authenticated user information
type UserContext struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	Role           domain.UserRoleType
	Email          string
	DisplayName    string
	// IsSystem marks service-to-service calls made with the API key
	IsSystem bool
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok && user != nil
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

// OrganizationID returns the tenant of the authenticated caller
func OrganizationID(ctx context.Context) (uuid.UUID, bool) {
	user, ok := FromContext(ctx)
	if !ok || user.OrganizationID == uuid.Nil {
		return uuid.Nil, false
	}
	return user.OrganizationID, true
}

// HasRole checks if user has a specific role
func (u *UserContext) HasRole(role domain.UserRoleType) bool {
	return u.Role == role
}

// HasAnyRole checks if user has any of the specified roles
func (u *UserContext) HasAnyRole(roles ...domain.UserRoleType) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user administers the organization
func (u *UserContext) IsAdmin() bool {
	return u.Role == domain.RoleAdmin
}

// CanWrite reports whether the role may modify anything at all
func (u *UserContext) CanWrite() bool {
	return u.Role.IsValid() && u.Role != domain.RoleReadOnly
}
