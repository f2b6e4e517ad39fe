package auth

import "context"

type contextKey string

const userIDContextKey contextKey = "userID"

// WithUserID attaches the authenticated user to the context.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFrom retrieves the authenticated user from context if present.
func UserIDFrom(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDContextKey).(int64)
	return userID, ok && userID > 0
}
