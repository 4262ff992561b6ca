package oidc

import (
	"context"
	"time"

	"github.com/skillsenselab/authkit/errors"
	"github.com/skillsenselab/authkit/httpclient"
	"github.com/skillsenselab/authkit/observability"
	"github.com/skillsenselab/authkit/resilience"
)

// wellKnownPath is the OIDC discovery document location relative to the issuer.
const wellKnownPath = "/.well-known/openid-configuration"

// ProviderMetadata is the subset of the OpenID Provider Metadata document
// the kit consumes. JWKSURI feeds the key cache; the endpoint fields feed
// OpenAPI security metadata.
type ProviderMetadata struct {
	Issuer                string   `json:"issuer"`
	AuthorizationEndpoint string   `json:"authorization_endpoint"`
	TokenEndpoint         string   `json:"token_endpoint"`
	UserInfoEndpoint      string   `json:"userinfo_endpoint"`
	JWKSURI               string   `json:"jwks_uri"`
	ScopesSupported       []string `json:"scopes_supported"`
	SigningAlgsSupported  []string `json:"id_token_signing_alg_values_supported"`
	CodeChallengeMethods  []string `json:"code_challenge_methods_supported"`
}

// SupportsPKCE reports whether the provider advertises the S256 code
// challenge method.
func (m *ProviderMetadata) SupportsPKCE() bool {
	for _, method := range m.CodeChallengeMethods {
		if method == "S256" {
			return true
		}
	}
	return false
}

// Discover fetches the provider metadata from
// {issuer}/.well-known/openid-configuration. Transient failures are retried
// with exponential backoff up to cfg.DiscoveryRetries attempts; terminal
// rejections (4xx) stop immediately. Runs once per validator construction,
// never per request.
func Discover(ctx context.Context, cfg Config, client *httpclient.Client) (*ProviderMetadata, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanDiscover)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrIssuer, cfg.Issuer())

	wellKnown := cfg.Issuer() + wellKnownPath
	retryCfg := resilience.RetryConfig{
		MaxAttempts:    cfg.DiscoveryRetries,
		InitialBackoff: 250 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         0.2,
		RetryIf:        resilience.RetryIfRetryable,
	}

	meta, err := resilience.Retry(ctx, retryCfg, func() (*ProviderMetadata, error) {
		var doc ProviderMetadata
		if err := client.GetJSON(ctx, wellKnown, &doc); err != nil {
			return nil, httpclient.ToAppError(err, "identity provider")
		}
		return &doc, nil
	})
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, err
	}

	if meta.JWKSURI == "" {
		err := errors.Configuration("discovery document has no jwks_uri").
			WithDetail("issuer", cfg.Issuer())
		observability.SetSpanError(ctx, err)
		return nil, err
	}

	return meta, nil
}
