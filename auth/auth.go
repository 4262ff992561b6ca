package auth

import (
	"context"

	"github.com/skillsenselab/authkit/oidc"
)

// TokenValidator validates a raw token and returns the decoded payload.
// Middleware depends on this interface rather than the concrete facade, so
// tests and custom schemes can substitute their own validation.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*oidc.TokenPayload, error)
}

// TokenValidatorFunc adapts an ordinary function to TokenValidator.
type TokenValidatorFunc func(ctx context.Context, token string) (*oidc.TokenPayload, error)

// ValidateToken implements TokenValidator.
func (f TokenValidatorFunc) ValidateToken(ctx context.Context, token string) (*oidc.TokenPayload, error) {
	return f(ctx, token)
}

// Guard authenticates a raw token and enforces any attached authorization
// requirements. On success it returns the caller's claims; on failure a
// typed error the transport maps to 401 (authentication), 403
// (authorization), or 503 (transient key-fetch failure).
type Guard func(ctx context.Context, token string) (*oidc.TokenPayload, error)

// ValidateToken implements TokenValidator, so a Guard can be mounted
// anywhere a plain validator is expected.
func (g Guard) ValidateToken(ctx context.Context, token string) (*oidc.TokenPayload, error) {
	return g(ctx, token)
}
