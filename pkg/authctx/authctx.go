// Package authctx carries the authenticated user through request contexts so
// services can attribute their audit entries without threading user IDs
// through every signature.
package authctx

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const userIDKey contextKey = "auth_user_id"

// WithUserID returns a context carrying the authenticated user's ID.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID returns the authenticated user's ID, or nil for unauthenticated or
// system-initiated work.
func UserID(ctx context.Context) *uuid.UUID {
	if id, ok := ctx.Value(userIDKey).(uuid.UUID); ok {
		return &id
	}
	return nil
}
