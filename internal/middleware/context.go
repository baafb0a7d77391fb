package middleware

import "context"

type userIDContextKey struct{}

// WithUserID binds the authenticated user id to the request context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey{}, userID)
}

// UserIDFromContext returns the user id bound by the authenticate
// middleware. The second return is false when authentication never ran.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey{}).(string)
	return userID, ok
}
