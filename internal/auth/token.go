package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultAccessTTL = 30 * time.Minute
	MinSecretBytes   = 32

	accessTokenType = "access"
)

// Claims is the signed payload of an access token.
type Claims struct {
	jwt.RegisteredClaims
	Type string `json:"typ"`
}

type IssuedToken struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and validates HS256 access tokens. It holds no
// per-token state; validation needs only the secret and the clock.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

type TokenOption func(*TokenService)

func WithTTL(ttl time.Duration) TokenOption {
	return func(s *TokenService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewTokenService(secret []byte, opts ...TokenOption) (*TokenService, error) {
	if len(secret) < MinSecretBytes {
		return nil, ErrWeakSecret
	}

	s := &TokenService{
		secret: append([]byte(nil), secret...),
		ttl:    DefaultAccessTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	// The accepted algorithm is pinned here and never read from the token.
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	)

	return s, nil
}

func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for subject valid over [now, now+ttl). Times are
// truncated to whole seconds, the precision of the exp claim.
func (s *TokenService) Issue(subject string) (IssuedToken, error) {
	if subject == "" {
		return IssuedToken{}, errors.New("token subject is required")
	}

	issuedAt := s.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(s.ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
		Type: accessTokenType,
	}

	encoded, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("sign jwt: %w", err)
	}

	return IssuedToken{Value: encoded, IssuedAt: issuedAt, ExpiresAt: expiresAt}, nil
}

// Validate returns the token subject. Every defect (signature, encoding,
// algorithm, expiry, missing subject, wrong type) yields ErrInvalidToken.
func (s *TokenService) Validate(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	claims := &Claims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if claims.Type != accessTokenType {
		return Identity{}, fmt.Errorf("%w: unexpected token type", ErrInvalidToken)
	}

	return Identity{Subject: claims.Subject}, nil
}

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWeakSecret   = fmt.Errorf("jwt secret must be at least %d bytes", MinSecretBytes)
)
