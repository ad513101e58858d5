package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/vasapolrittideah/budget-tracker-api/shared/auth"
)

type contextKey struct{}

// principalKey stores the authenticated email in the request context. The
// principal is always passed explicitly into usecases from here; no ambient
// security-context lookups anywhere else.
var principalKey = contextKey{}

// PrincipalFromContext returns the authenticated email set by RequireAuth.
func PrincipalFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(principalKey).(string)
	return email, ok
}

// RequireAuth validates the bearer session token and stores the principal in
// the request context.
func RequireAuth(jwtAuth auth.JWTAuthenticator, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeText(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeText(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			email, err := jwtAuth.ValidateSessionToken(parts[1], secret)
			if err != nil {
				writeText(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
