package auth

import (
	"context"
	"time"

	"github.com/skillsenselab/authkit/authz"
	"github.com/skillsenselab/authkit/errors"
	"github.com/skillsenselab/authkit/httpclient"
	"github.com/skillsenselab/authkit/logger"
	"github.com/skillsenselab/authkit/observability"
	"github.com/skillsenselab/authkit/oidc"
	"github.com/skillsenselab/authkit/version"
)

// OIDCAuth is the authentication facade for one issuer. It owns a discovery
// result, a JWKS cache, and a validator; guards built from it share that
// state. Multiple facades (multiple issuers) coexist in one process, each
// with an independent cache and TTL clock.
type OIDCAuth struct {
	cfg       oidc.Config
	meta      *oidc.ProviderMetadata
	cache     *oidc.JWKSCache
	validator *oidc.Validator
	log       *logger.Logger
	metrics   *observability.Metrics
}

// Option customizes facade construction.
type Option func(*buildOptions)

type buildOptions struct {
	log     *logger.Logger
	client  *httpclient.Client
	metrics *observability.Metrics
	now     func() time.Time
}

// WithLogger sets the facade logger. Defaults to the global logger tagged
// with component "auth".
func WithLogger(log *logger.Logger) Option {
	return func(o *buildOptions) { o.log = log }
}

// WithHTTPClient overrides the HTTP client used for discovery and key
// fetches, e.g. to install a private CA bundle.
func WithHTTPClient(client *httpclient.Client) Option {
	return func(o *buildOptions) { o.client = client }
}

// WithMetrics enables metric recording on the validator and key cache.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *buildOptions) { o.metrics = m }
}

// WithClock overrides the clock used for expiry and TTL checks. For tests.
func WithClock(now func() time.Time) Option {
	return func(o *buildOptions) { o.now = now }
}

// New constructs a facade for the configured issuer. Discovery runs here,
// once, synchronously; a provider that stays unreachable past the retry
// budget fails construction with a CONFIGURATION error. Nothing in the
// returned facade performs discovery per request.
func New(ctx context.Context, cfg oidc.Config, opts ...Option) (*OIDCAuth, error) {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.GetGlobalLogger().WithComponent("auth")
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Configuration("invalid OIDC settings").WithCause(err)
	}

	client := o.client
	if client == nil {
		var err error
		client, err = httpclient.New(httpclient.Config{
			Timeout:   cfg.HTTPTimeout,
			UserAgent: version.UserAgent(),
		})
		if err != nil {
			return nil, errors.Configuration("building identity provider HTTP client").WithCause(err)
		}
	}

	meta, err := resolveMetadata(ctx, cfg, client)
	if err != nil {
		return nil, err
	}

	cacheOpts := []oidc.JWKSOption{oidc.WithJWKSLogger(o.log.WithComponent("jwks"))}
	validatorOpts := []oidc.ValidatorOption{oidc.WithValidatorLogger(o.log.WithComponent("oidc"))}
	if o.metrics != nil {
		cacheOpts = append(cacheOpts, oidc.WithJWKSMetrics(o.metrics))
		validatorOpts = append(validatorOpts, oidc.WithValidatorMetrics(o.metrics))
	}
	if o.now != nil {
		cacheOpts = append(cacheOpts, oidc.WithJWKSClock(o.now))
		validatorOpts = append(validatorOpts, oidc.WithValidatorClock(o.now))
	}

	cache := oidc.NewJWKSCache(meta.JWKSURI, cfg, client, cacheOpts...)

	a := &OIDCAuth{
		cfg:       cfg,
		meta:      meta,
		cache:     cache,
		validator: oidc.NewValidator(cfg, cache, validatorOpts...),
		log:       o.log,
		metrics:   o.metrics,
	}

	a.log.Info("auth facade ready", logger.Fields(
		logger.FieldIssuer, cfg.Issuer(),
		"jwks_uri", meta.JWKSURI,
		"pkce", meta.SupportsPKCE(),
	))
	return a, nil
}

// resolveMetadata runs discovery, or synthesizes metadata when the config
// pins an explicit JWKS URI.
func resolveMetadata(ctx context.Context, cfg oidc.Config, client *httpclient.Client) (*oidc.ProviderMetadata, error) {
	if cfg.JWKSURI != "" {
		return &oidc.ProviderMetadata{Issuer: cfg.Issuer(), JWKSURI: cfg.JWKSURI}, nil
	}

	meta, err := oidc.Discover(ctx, cfg, client)
	if err != nil {
		appErr, _ := errors.AsAppError(err)
		if appErr != nil && appErr.Code == errors.ErrCodeConfiguration {
			return nil, appErr
		}
		return nil, errors.Configuration("OIDC discovery failed").WithCause(err).
			WithDetail(logger.FieldIssuer, cfg.Issuer())
	}
	return meta, nil
}

// CurrentUser authenticates a raw bearer token. Every rejection surfaces as
// a generic UNAUTHORIZED error; which check failed is recorded in internal
// logs only, so the error is useless as a forging oracle. Transient
// key-fetch failures pass through as retryable errors so transports can
// answer 503 instead of 401.
func (a *OIDCAuth) CurrentUser(ctx context.Context, token string) (*oidc.TokenPayload, error) {
	payload, err := a.validator.Validate(ctx, token)
	if err != nil {
		if errors.IsRetryable(err) {
			return nil, err
		}
		// Detail was already logged by the validator.
		return nil, errors.Unauthorized("Invalid or expired credentials.").WithCause(err)
	}
	return payload, nil
}

// ValidateToken implements TokenValidator.
func (a *OIDCAuth) ValidateToken(ctx context.Context, token string) (*oidc.TokenPayload, error) {
	return a.CurrentUser(ctx, token)
}

// Authorize checks already-authenticated claims against the requirements.
// All requirements must pass; a failed one yields a FORBIDDEN error with a
// generic message, keeping the required values out of responses.
func (a *OIDCAuth) Authorize(ctx context.Context, payload *oidc.TokenPayload, reqs ...authz.Requirement) error {
	ctx, span := observability.StartSpan(ctx, observability.SpanAuthorize)
	defer span.End()

	for _, req := range reqs {
		var have []string
		switch req.Dimension {
		case authz.DimensionGroups:
			have = payload.Groups()
		default:
			have = payload.Roles()
		}

		if !req.Satisfied(have) {
			if a.metrics != nil {
				a.metrics.RecordDenied(ctx, string(req.Dimension))
			}
			a.log.Warn("authorization denied", logger.Fields(
				logger.FieldSubject, payload.Subject(),
				"requirement", req.String(),
			))
			err := errors.Forbidden("").WithDetail("requirement", req.String())
			observability.SetSpanError(ctx, err)
			return err
		}
	}
	return nil
}

// Require builds a guard enforcing all given requirements on top of
// authentication. Requirements combine with AND: a guard carrying both a
// role and a group requirement passes only when both dimensions pass.
func (a *OIDCAuth) Require(reqs ...authz.Requirement) Guard {
	return func(ctx context.Context, token string) (*oidc.TokenPayload, error) {
		payload, err := a.CurrentUser(ctx, token)
		if err != nil {
			return nil, err
		}
		if err := a.Authorize(ctx, payload, reqs...); err != nil {
			return nil, err
		}
		return payload, nil
	}
}

// RequireRoles builds a guard requiring the given roles under mode.
func (a *OIDCAuth) RequireRoles(mode authz.Mode, roles ...string) Guard {
	return a.Require(authz.Roles(mode, roles...))
}

// RequireGroups builds a guard requiring the given groups under mode.
func (a *OIDCAuth) RequireGroups(mode authz.Mode, groups ...string) Guard {
	return a.Require(authz.Groups(mode, groups...))
}

// Metadata returns a copy of the provider metadata resolved at construction.
func (a *OIDCAuth) Metadata() oidc.ProviderMetadata {
	return *a.meta
}

// KeyStats exposes the key cache state for diagnostics.
func (a *OIDCAuth) KeyStats() oidc.Stats {
	return a.cache.Stats()
}

// CheckHealth implements observability.HealthChecker by reporting the key
// cache state.
func (a *OIDCAuth) CheckHealth(ctx context.Context) observability.Health {
	return a.cache.CheckHealth(ctx)
}
