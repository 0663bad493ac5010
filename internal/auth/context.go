package auth

import "context"

type userIDKey struct{}

// WithUserID returns a copy of ctx carrying the authenticated caller id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFrom returns the caller id stored by WithUserID.
func UserIDFrom(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey{}).(string)
	return userID, ok && userID != ""
}
