package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrSigningKeyTooShort is returned when the HS512 signing key is less than 64 bytes.
	ErrSigningKeyTooShort = errors.New("HS512 signing key must be at least 64 bytes (512 bits)")

	// ErrTokenExpired is returned when the token has expired.
	ErrTokenExpired = errors.New("JWT token has expired")

	// ErrInvalidToken is returned when the token is malformed or fails validation.
	ErrInvalidToken = errors.New("invalid token")
)

// JWT generates and verifies tokens.
type JWT interface {
	Generate(subject, role string) (string, error)
	Verify(token string) (Claims, error)
}

type clocker interface {
	Now() time.Time
}

type generator interface {
	Generate() string
}

// Config defines the inputs for building a JWT implementation.
type Config struct {
	Secret    []byte
	Issuer    string
	Audiences []string
	TTL       time.Duration
	Clock     clocker
	UUID      generator
}

// Claims is the authenticated principal.
type Claims struct {
	jwt.RegisteredClaims
	// UserID is set for end users; service tokens leave it empty.
	UserID string `json:"user_id,omitempty"`
	Role   string `json:"role"`
}

type authKey struct{}

// GetAuth returns the claims stored in ctx, or nil when unauthenticated.
func GetAuth(ctx context.Context) *Claims {
	clm, ok := ctx.Value(authKey{}).(Claims)
	if !ok {
		return nil
	}
	return &clm
}

// SetAuth stores claims in ctx.
func SetAuth(ctx context.Context, clm Claims) context.Context {
	return context.WithValue(ctx, authKey{}, clm)
}
