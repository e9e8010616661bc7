package auth

import "context"

type contextKey string

const UserKey contextKey = "user"

// GetUserFromContext returns the dashboard user name set by BasicAuth.
func GetUserFromContext(ctx context.Context) (string, bool) {
	user, ok := ctx.Value(UserKey).(string)
	return user, ok && user != ""
}
