package middleware

import (
	"context"
	"net/http"
)

const anonymousUser = "anonymous"

// Identity resolves the caller from the X-User-ID header. There is no
// authentication layer; the header scopes jobs and templates per caller and
// absent callers share the anonymous bucket.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := r.Header.Get("X-User-ID")
		if uid == "" {
			uid = anonymousUser
		}
		ctx := context.WithValue(r.Context(), userIDKey, uid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok && v != "" {
		return v
	}
	return anonymousUser
}
