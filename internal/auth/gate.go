package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// TokenQueryParam carries the access token on protected endpoints.
const TokenQueryParam = "token"

type TokenValidator interface {
	Validate(token string) (Identity, error)
}

// ProtectedHandlerFunc is a handler that can only be mounted behind a Gate.
// It receives the identity the gate authenticated.
type ProtectedHandlerFunc func(w http.ResponseWriter, r *http.Request, id Identity)

// Gate is the single entry point for every protected operation.
type Gate struct {
	tokens   TokenValidator
	onReject func(r *http.Request, err error)
}

func NewGate(tokens TokenValidator) *Gate {
	return &Gate{tokens: tokens}
}

// OnReject registers a hook called for every rejected request, before the
// 401 response is written.
func (g *Gate) OnReject(fn func(r *http.Request, err error)) {
	g.onReject = fn
}

// Authenticate maps any token defect to ErrUnauthorized.
func (g *Gate) Authenticate(presented string) (Identity, error) {
	if presented == "" {
		return Identity{}, ErrMissingToken
	}

	id, err := g.tokens.Validate(presented)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	return id, nil
}

// Require runs next only after Authenticate succeeds.
func (g *Gate) Require(next ProtectedHandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := g.Authenticate(presentedToken(r))
		if err != nil {
			if g.onReject != nil {
				g.onReject(r, err)
			}
			if errors.Is(err, ErrMissingToken) {
				writeError(w, http.StatusUnauthorized, "missing token")
				return
			}
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		next(w, r.WithContext(WithIdentity(r.Context(), id)), id)
	})
}

// presentedToken prefers the query parameter and falls back to an
// "Authorization: Bearer" header.
func presentedToken(r *http.Request) string {
	if token := strings.TrimSpace(r.URL.Query().Get(TokenQueryParam)); token != "" {
		return token
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

type contextKey string

const identityContextKey contextKey = "identity"

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext returns the identity stored by Require, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(Identity)
	return id, ok
}

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrMissingToken = fmt.Errorf("%w: missing token", ErrUnauthorized)
)
