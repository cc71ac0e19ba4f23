package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

type identityKey struct{}

// Identity is the authenticated caller, taken from verified token claims.
type Identity struct {
	UserID uint
	Email  string
	Role   string
}

// Auth rejects requests without a valid bearer token and stores the
// caller's Identity in the request context. Browsers cannot set headers on
// a websocket handshake, so a ?token= query parameter is accepted too.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			response.Unauthorized(w)
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			response.Error(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		id := Identity{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return r.URL.Query().Get("token")
}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromCtx returns the caller set by Auth.
func IdentityFromCtx(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

func UserIDFromCtx(r *http.Request) (uint, bool) {
	id, ok := IdentityFromCtx(r.Context())
	return id.UserID, ok
}

func RoleFromCtx(r *http.Request) (string, bool) {
	id, ok := IdentityFromCtx(r.Context())
	return id.Role, ok
}
