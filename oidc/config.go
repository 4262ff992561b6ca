package oidc

import (
	"fmt"
	"strings"
	"time"

	"github.com/skillsenselab/authkit/util"
	"github.com/skillsenselab/authkit/validation"
)

// SupportedAlgorithms lists the signing algorithms the validator can verify.
var SupportedAlgorithms = []string{"RS256", "RS384", "RS512", "ES256", "ES384", "ES512"}

// Config configures token validation against a single OIDC issuer.
// Loadable from YAML/env via mapstructure tags. Immutable once a validator
// is constructed from it; pointing at a different issuer requires a new
// validator.
type Config struct {
	// IssuerURL is the OIDC provider's issuer URL
	// (e.g., "https://idp.example.com/realms/main").
	IssuerURL string `yaml:"issuer_url" mapstructure:"issuer_url" validate:"required,url"`

	// ClientID is the OAuth2 client ID. Also the default expected "aud"
	// claim when Audience is not set.
	ClientID string `yaml:"client_id" mapstructure:"client_id" validate:"required"`

	// ClientSecret is the OAuth2 client secret (confidential clients only).
	// Never logged; String() masks it.
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret"`

	// Audience overrides the expected "aud" claim. Useful when access
	// tokens carry an API identifier rather than the client ID.
	Audience string `yaml:"audience" mapstructure:"audience"`

	// JWKSURI bypasses discovery and fetches keys from this URL directly.
	JWKSURI string `yaml:"jwks_uri" mapstructure:"jwks_uri" validate:"omitempty,url"`

	// Scopes are advertised in OpenAPI security metadata
	// (default: ["openid", "email", "profile"]).
	Scopes []string `yaml:"scopes" mapstructure:"scopes"`

	// AllowedAlgs restricts accepted token signing algorithms
	// (default: ["RS256"]).
	AllowedAlgs []string `yaml:"allowed_algs" mapstructure:"allowed_algs"`

	// SkipExpiryCheck disables the exp claim check (for testing only).
	SkipExpiryCheck bool `yaml:"skip_expiry_check" mapstructure:"skip_expiry_check"`

	// SkipAudienceCheck disables the aud claim check.
	SkipAudienceCheck bool `yaml:"skip_audience_check" mapstructure:"skip_audience_check"`

	// Leeway is the clock-skew tolerance applied to time-based claim
	// checks (default: "60s").
	Leeway time.Duration `yaml:"leeway" mapstructure:"leeway"`

	// CacheTTL controls how long fetched signing keys stay fresh
	// (default: "1h").
	CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`

	// HTTPTimeout bounds discovery and JWKS HTTP requests (default: "10s").
	HTTPTimeout time.Duration `yaml:"http_timeout" mapstructure:"http_timeout"`

	// DiscoveryRetries is the attempt budget for the startup discovery
	// fetch, including the first attempt (default: 3).
	DiscoveryRetries int `yaml:"discovery_retries" mapstructure:"discovery_retries"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if len(c.Scopes) == 0 {
		c.Scopes = []string{"openid", "email", "profile"}
	}
	if len(c.AllowedAlgs) == 0 {
		c.AllowedAlgs = []string{"RS256"}
	}
	if c.Leeway == 0 {
		c.Leeway = 60 * time.Second
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = time.Hour
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = 10 * time.Second
	}
	if c.DiscoveryRetries == 0 {
		c.DiscoveryRetries = 3
	}
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}

	v := validation.New()
	for _, alg := range c.AllowedAlgs {
		v.OneOf("allowed_algs", alg, SupportedAlgorithms)
	}
	v.Custom(c.Leeway >= 0, "leeway", "must not be negative")
	v.Custom(c.CacheTTL > 0, "cache_ttl", "must be positive")
	v.Custom(c.HTTPTimeout > 0, "http_timeout", "must be positive")
	v.Min("discovery_retries", c.DiscoveryRetries, 1)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// ExpectedAudience returns the audience the validator requires in tokens:
// the explicit Audience when set, otherwise the client ID.
func (c *Config) ExpectedAudience() string {
	if c.Audience != "" {
		return c.Audience
	}
	return c.ClientID
}

// Issuer returns the issuer URL with any trailing slash removed. Token
// "iss" claims are compared against this canonical form.
func (c *Config) Issuer() string {
	return strings.TrimRight(c.IssuerURL, "/")
}

// String renders the config for logs with the client secret masked.
func (c Config) String() string {
	return fmt.Sprintf("oidc.Config{issuer=%s client_id=%s client_secret=%s audience=%s algs=%v leeway=%s cache_ttl=%s}",
		c.IssuerURL, c.ClientID, util.MaskSecret(c.ClientSecret, 0), c.Audience, c.AllowedAlgs, c.Leeway, c.CacheTTL)
}
