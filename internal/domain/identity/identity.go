// internal/domain/identity/identity.go

package identity

import "context"

// Role is the authorization level carried in a token
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the authenticated caller. Accounts live in an external service;
// only the verified claims reach this process.
type User struct {
	ID   string
	Role Role
}

// IsAdmin reports whether the user may call admin routes
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type contextKey struct{}

// WithUser returns a context carrying u
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// FromContext returns the user stored by WithUser
func FromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(contextKey{}).(User)
	return u, ok
}
