package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the subject value.
type contextKey string

const subjectKey contextKey = "subject"

var errNoToken = errors.New("auth: no bearer token")

// WithSubject returns a context carrying the caller's subject, as the
// middleware attaches it after verification.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey, subject)
}

// RequireAuth enforces authentication on protected routes.
//
// It reads the provider-issued JWT from the Authorization header
// ("Bearer <token>"), verifies it, and stores the subject in the request
// context. Missing or invalid tokens end the chain with 401.
func RequireAuth(verifier *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, err := extractSubject(r, verifier)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				http.Error(w, `{"error":"unauthenticated","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), subject)))
		})
	}
}

// OptionalAuth extracts the caller identity when a valid token is present
// but never blocks the request. Handlers see an anonymous caller via
// SubjectFromContext returning ("", false).
func OptionalAuth(verifier *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if subject, err := extractSubject(r, verifier); err == nil && subject != "" {
				r = r.WithContext(WithSubject(r.Context(), subject))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SubjectFromContext retrieves the authenticated caller's subject.
// Returns ("", false) for anonymous requests.
func SubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(subjectKey).(string)
	return subject, ok && subject != ""
}

func extractSubject(r *http.Request, verifier *Verifier) (string, error) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", errNoToken
	}

	return verifier.Verify(token)
}
