package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/fjod/go_storefront/internal/domain"
)

type contextKey int

const (
	userIDKey contextKey = iota
	roleKey
)

// AuthMiddleware verifies the bearer token and stashes the subject and
// role in the request context. Missing, malformed and expired tokens
// all answer 401 with the auth_required code, which clients map to the
// redirect-to-login branch rather than a generic failure.
func AuthMiddleware(issuer *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				respondError(w, http.StatusUnauthorized, domain.CodeAuthRequired, "missing bearer token")
				return
			}
			token := strings.TrimPrefix(header, "Bearer ")

			claims, err := issuer.Verify(token)
			if err != nil {
				respondError(w, http.StatusUnauthorized, domain.CodeAuthRequired, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.Subject)
			ctx = context.WithValue(ctx, roleKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RejectAdmin guards the cart routes: admin accounts have no cart.
func RejectAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if roleFromContext(r.Context()) == domain.RoleAdmin {
			respondError(w, http.StatusForbidden, domain.CodeAdminNoCart, "admin accounts have no cart")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func userIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

func roleFromContext(ctx context.Context) string {
	if role, ok := ctx.Value(roleKey).(string); ok {
		return role
	}
	return ""
}
