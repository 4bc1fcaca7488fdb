// internal/server/middleware/auth.go

package middleware

import (
	"errors"
	"net/http"
	"strings"

	"neighborly/internal/apperror"
	"neighborly/internal/auth"
	"neighborly/internal/domain/identity"
	"neighborly/internal/server/respond"
)

// TokenVerifier turns a bearer token into a user
type TokenVerifier interface {
	Verify(token string) (identity.User, error)
}

// Auth holds the token verifier used by the auth middlewares
type Auth struct {
	verifier TokenVerifier
}

// NewAuth creates the auth middlewares
func NewAuth(verifier TokenVerifier) *Auth {
	return &Auth{verifier: verifier}
}

// Optional attaches the user when a valid token is present and otherwise
// lets the request through anonymously
func (a *Auth) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := bearerToken(r); ok {
			if u, err := a.verifier.Verify(token); err == nil {
				r = r.WithContext(identity.WithUser(r.Context(), u))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Required rejects requests without a valid token
func (a *Auth) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			respond.Unauthorized(w, "Authorization token required")
			return
		}

		u, err := a.verifier.Verify(token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				respond.Unauthorized(w, "Token expired")
				return
			}
			respond.Unauthorized(w, "Invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(identity.WithUser(r.Context(), u)))
	})
}

// Admin requires a valid token with the admin role
func (a *Auth) Admin(next http.Handler) http.Handler {
	return a.Required(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, _ := identity.FromContext(r.Context())
		if !u.IsAdmin() {
			forbidden := apperror.Forbidden("Admin access required")
			respond.Fail(w, http.StatusForbidden, forbidden.Code, forbidden.Message)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
