package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey struct{}

var userIDKey contextKey

// UserID returns the verified user id for a request, or "" for anonymous.
func UserID(ctx context.Context) string {
	if uid, ok := ctx.Value(userIDKey).(string); ok {
		return uid
	}
	return ""
}

// WithUserID returns a context carrying the given user id. Exposed for tests.
func WithUserID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, userIDKey, uid)
}

// Require rejects requests without a valid bearer token.
func Require(v Verifier, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := verifyRequest(v, r)
		if !ok {
			http.Error(w, "invalid or missing bearer token", http.StatusForbidden)
			return
		}
		next(w, r.WithContext(WithUserID(r.Context(), uid)))
	}
}

// Maybe attaches the user id when a valid token is present and passes the
// request through anonymously otherwise. Visibility-scoped queries treat the
// absent id as anonymous.
func Maybe(v Verifier, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if uid, ok := verifyRequest(v, r); ok {
			r = r.WithContext(WithUserID(r.Context(), uid))
		}
		next(w, r)
	}
}

func verifyRequest(v Verifier, r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	uid, err := v.Verify(token)
	if err != nil {
		return "", false
	}
	return uid, true
}
