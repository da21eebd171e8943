// internal/common/utils/context.go
// Request-context helpers for the identity tag set by the auth middleware

package utils

import (
	"context"

	"github.com/google/uuid"

	"github.com/solacelink/solace-backend/internal/users"
)

type contextKey string

const (
	// ContextKeyUserID carries the authenticated user's identity.
	ContextKeyUserID contextKey = "userID"
	// ContextKeyRole carries the authenticated user's role.
	ContextKeyRole contextKey = "role"
	// ContextKeyUsername carries the authenticated user's display name.
	ContextKeyUsername contextKey = "username"
)

// WithIdentity tags a context with a verified identity and role.
func WithIdentity(ctx context.Context, userID uuid.UUID, role users.Role, username string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyUserID, userID)
	ctx = context.WithValue(ctx, ContextKeyRole, role)
	return context.WithValue(ctx, ContextKeyUsername, username)
}

// UserIDFromContext extracts the authenticated user ID.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ContextKeyUserID).(uuid.UUID)
	return id, ok
}

// RoleFromContext extracts the authenticated user's role.
func RoleFromContext(ctx context.Context) (users.Role, bool) {
	role, ok := ctx.Value(ContextKeyRole).(users.Role)
	return role, ok
}

// UsernameFromContext extracts the authenticated user's display name.
func UsernameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(ContextKeyUsername).(string)
	return name
}
