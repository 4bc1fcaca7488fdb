// internal/auth/jwt.go

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"neighborly/internal/domain/identity"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims are the custom claims issued by the account service
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier checks HMAC-signed bearer tokens
type Verifier struct {
	secret []byte
}

// NewVerifier creates a new token verifier
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses tokenString and returns the user it identifies
func (v *Verifier) Verify(tokenString string) (identity.User, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return identity.User{}, ErrTokenExpired
		}
		return identity.User{}, ErrInvalidToken
	}
	if !token.Valid || claims.UserID == "" {
		return identity.User{}, ErrInvalidToken
	}

	role := identity.Role(claims.Role)
	if role == "" {
		role = identity.RoleUser
	}

	return identity.User{ID: claims.UserID, Role: role}, nil
}

// Sign issues a token for u. Production tokens come from the account
// service; this exists for local tooling and tests.
func (v *Verifier) Sign(u identity.User, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: u.ID,
		Role:   string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
