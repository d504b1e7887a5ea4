package jwt

import (
	"errors"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
)

// Symmetric implements JWT using an HMAC-SHA512 secret.
type Symmetric struct {
	secret    []byte
	issuer    string
	audiences []string
	ttl       time.Duration
	clock     clocker
	uuid      generator
}

// NewHS512 constructs a Symmetric JWT implementation.
func NewHS512(cfg Config) (*Symmetric, error) {
	if len(cfg.Secret) < 64 {
		return nil, ErrSigningKeyTooShort
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &Symmetric{
		secret:    cfg.Secret,
		issuer:    cfg.Issuer,
		audiences: cfg.Audiences,
		ttl:       ttl,
		clock:     cfg.Clock,
		uuid:      cfg.UUID,
	}, nil
}

// Generate signs a token for subject acting with role.
func (s *Symmetric) Generate(subject, role string) (string, error) {
	now := s.clock.Now()

	claims := Claims{
		RegisteredClaims: libJWT.RegisteredClaims{
			ID:        s.uuid.Generate(),
			Subject:   subject,
			Issuer:    s.issuer,
			Audience:  s.audiences,
			IssuedAt:  libJWT.NewNumericDate(now),
			NotBefore: libJWT.NewNumericDate(now),
			ExpiresAt: libJWT.NewNumericDate(now.Add(s.ttl)),
		},
		Role: role,
	}

	return libJWT.NewWithClaims(libJWT.SigningMethodHS512, claims).SignedString(s.secret)
}

// Verify parses and validates a token string.
func (s *Symmetric) Verify(token string) (Claims, error) {
	var claims Claims

	opts := []libJWT.ParserOption{
		libJWT.WithIssuer(s.issuer),
		libJWT.WithValidMethods([]string{libJWT.SigningMethodHS512.Alg()}),
		libJWT.WithIssuedAt(),
		libJWT.WithExpirationRequired(),
		libJWT.WithTimeFunc(s.clock.Now),
	}
	if len(s.audiences) > 0 {
		opts = append(opts, libJWT.WithAudience(s.audiences...))
	}

	parsed, err := libJWT.ParseWithClaims(token, &claims, func(*libJWT.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, libJWT.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, errors.Join(ErrInvalidToken, err)
	}

	if !parsed.Valid || claims.Role == "" {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}
