package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/binarymart/storefront-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "role"
)

// UserID returns the authenticated user id seeded by the auth middleware.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	raw, ok := ctx.Value(ctxUserID).(string)
	if !ok || raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// Role returns the authenticated role, defaulting to customer.
func Role(ctx context.Context) enums.UserRole {
	raw, ok := ctx.Value(ctxRole).(string)
	if !ok {
		return enums.UserRoleCustomer
	}
	role := enums.UserRole(raw)
	if !role.IsValid() {
		return enums.UserRoleCustomer
	}
	return role
}
