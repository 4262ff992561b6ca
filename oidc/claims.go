package oidc

import (
	"time"
)

// Claim names the validator consumes directly. Everything else lands in the
// payload's Extra mapping.
var knownClaims = map[string]bool{
	"iss": true, "sub": true, "aud": true, "exp": true, "iat": true,
	"email": true, "preferred_username": true, "nickname": true,
	"roles": true, "groups": true, "realm_access": true,
}

// TokenPayload is the decoded, validated content of a token. It is built once
// per validated request and never mutated afterwards; accessors return copies
// of slices and maps so callers cannot alter shared state.
type TokenPayload struct {
	subject   string
	email     string
	username  string
	issuer    string
	audience  []string
	roles     []string
	groups    []string
	expiresAt time.Time
	issuedAt  time.Time
	extra     map[string]any
}

// NewTokenPayload builds a TokenPayload from raw JWT claims without any
// verification. It exists for fakes standing in for a TokenValidator;
// production payloads come out of Validator.Validate.
func NewTokenPayload(claims map[string]any) *TokenPayload {
	return newTokenPayload(claims)
}

// newTokenPayload builds a TokenPayload from raw JWT claims. Missing optional
// claims default to zero values and empty sets. The username is read from
// preferred_username, falling back to nickname, then email.
func newTokenPayload(claims map[string]any) *TokenPayload {
	p := &TokenPayload{
		subject:  getString(claims, "sub"),
		email:    getString(claims, "email"),
		issuer:   getString(claims, "iss"),
		audience: getAudience(claims),
		roles:    getStringSlice(claims, "roles"),
		groups:   getStringSlice(claims, "groups"),
		extra:    make(map[string]any),
	}

	p.username = getString(claims, "preferred_username")
	if p.username == "" {
		p.username = getString(claims, "nickname")
	}
	if p.username == "" {
		p.username = p.email
	}

	// Keycloak publishes realm roles under realm_access.roles. Only consulted
	// when no top-level roles claim is present.
	if len(p.roles) == 0 {
		if ra, ok := claims["realm_access"].(map[string]any); ok {
			p.roles = getStringSlice(ra, "roles")
		}
	}

	if exp, ok := getFloat64(claims, "exp"); ok {
		p.expiresAt = time.Unix(int64(exp), 0)
	}
	if iat, ok := getFloat64(claims, "iat"); ok {
		p.issuedAt = time.Unix(int64(iat), 0)
	}

	for k, v := range claims {
		if !knownClaims[k] {
			p.extra[k] = v
		}
	}

	return p
}

// Subject returns the "sub" claim, the provider's unique user ID.
func (p *TokenPayload) Subject() string { return p.subject }

// Email returns the "email" claim, or "" when absent.
func (p *TokenPayload) Email() string { return p.email }

// Username returns the preferred display name (preferred_username, falling
// back to nickname, then email).
func (p *TokenPayload) Username() string { return p.username }

// Issuer returns the "iss" claim.
func (p *TokenPayload) Issuer() string { return p.issuer }

// Audience returns a copy of the "aud" claim values.
func (p *TokenPayload) Audience() []string { return copySlice(p.audience) }

// Roles returns a copy of the token's role set.
func (p *TokenPayload) Roles() []string { return copySlice(p.roles) }

// Groups returns a copy of the token's group set.
func (p *TokenPayload) Groups() []string { return copySlice(p.groups) }

// ExpiresAt returns the "exp" claim, or the zero time when absent.
func (p *TokenPayload) ExpiresAt() time.Time { return p.expiresAt }

// IssuedAt returns the "iat" claim, or the zero time when absent.
func (p *TokenPayload) IssuedAt() time.Time { return p.issuedAt }

// Extra returns a copy of the claims the typed fields do not cover.
func (p *TokenPayload) Extra() map[string]any {
	out := make(map[string]any, len(p.extra))
	for k, v := range p.extra {
		out[k] = v
	}
	return out
}

// Claim looks up a single unrecognized claim by name.
func (p *TokenPayload) Claim(name string) (any, bool) {
	v, ok := p.extra[name]
	return v, ok
}

// --- claim extraction helpers ---

func getString(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func getFloat64(m map[string]any, key string) (float64, bool) {
	v, ok := m[key].(float64)
	return v, ok
}

// getStringSlice reads a claim that providers emit as either a JSON array of
// strings or a single bare string.
func getStringSlice(m map[string]any, key string) []string {
	switch v := m[key].(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func getAudience(m map[string]any) []string {
	return getStringSlice(m, "aud")
}

func copySlice(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
