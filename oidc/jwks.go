package oidc

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"math/big"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/skillsenselab/authkit/errors"
	"github.com/skillsenselab/authkit/httpclient"
	"github.com/skillsenselab/authkit/logger"
	"github.com/skillsenselab/authkit/observability"
	"github.com/skillsenselab/authkit/resilience"
)

// Attempt budget for a single key set refresh. Transient upstream failures
// are retried inside the cache; token validation itself never retries.
const (
	refreshAttempts = 3
	refreshBackoff  = 200 * time.Millisecond
)

// signingKey is a parsed verification key. Owned exclusively by the cache;
// handed out by value.
type signingKey struct {
	kid       string
	alg       string
	key       crypto.PublicKey
	fetchedAt time.Time
}

// keySnapshot is one immutable fetch result. A refresh builds a new snapshot
// and swaps the pointer, so readers never observe a partially-updated set.
type keySnapshot struct {
	keys      map[string]signingKey
	fetchedAt time.Time
}

func (s *keySnapshot) stale(ttl time.Duration, now time.Time) bool {
	return s == nil || now.Sub(s.fetchedAt) > ttl
}

// JWKSCache fetches and caches an issuer's signing keys by key id.
//
// Lookups are lock-free beyond an RLock on the current snapshot and never
// block on network I/O when the snapshot is fresh. A stale or missing key
// triggers at most one refresh; concurrent triggers share a single in-flight
// fetch and observe the same outcome. When a refresh fails the previous
// snapshot stays visible, so health checks and later lookups still see the
// last known key set.
type JWKSCache struct {
	jwksURI      string
	ttl          time.Duration
	fetchTimeout time.Duration
	client       *httpclient.Client
	log          *logger.Logger
	metrics      *observability.Metrics
	now          func() time.Time

	mu   sync.RWMutex
	snap *keySnapshot

	group singleflight.Group
}

// JWKSOption customizes a JWKSCache.
type JWKSOption func(*JWKSCache)

// WithJWKSLogger sets the cache logger.
func WithJWKSLogger(log *logger.Logger) JWKSOption {
	return func(c *JWKSCache) { c.log = log }
}

// WithJWKSMetrics enables refresh metric recording.
func WithJWKSMetrics(m *observability.Metrics) JWKSOption {
	return func(c *JWKSCache) { c.metrics = m }
}

// WithJWKSClock overrides the cache clock. For tests.
func WithJWKSClock(now func() time.Time) JWKSOption {
	return func(c *JWKSCache) { c.now = now }
}

// NewJWKSCache creates a cache for the given JWKS endpoint. Keys are fetched
// lazily on first lookup.
func NewJWKSCache(jwksURI string, cfg Config, client *httpclient.Client, opts ...JWKSOption) *JWKSCache {
	c := &JWKSCache{
		jwksURI:      jwksURI,
		ttl:          cfg.CacheTTL,
		fetchTimeout: cfg.HTTPTimeout,
		client:       client,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.GetGlobalLogger().WithComponent("jwks")
	}
	return c
}

// Key returns the signing key for kid. A fresh cached key is returned
// directly; otherwise the cache refreshes once and retries the lookup. A kid
// still absent after a successful refresh fails with an UNKNOWN_KEY error;
// a failed refresh surfaces the transient fetch error instead.
func (c *JWKSCache) Key(ctx context.Context, kid string) (signingKey, error) {
	c.mu.RLock()
	snap := c.snap
	c.mu.RUnlock()

	if !snap.stale(c.ttl, c.now()) {
		if k, ok := snap.keys[kid]; ok {
			return k, nil
		}
	}

	// Stale snapshot, or a fresh one without this kid (the provider may have
	// just rotated keys). Either way: exactly one refresh, then one retry.
	if err := c.Refresh(ctx); err != nil {
		return signingKey{}, err
	}

	c.mu.RLock()
	snap = c.snap
	c.mu.RUnlock()

	if k, ok := snap.keys[kid]; ok {
		return k, nil
	}

	c.log.Warn("key id not present after refresh", logger.Fields(
		logger.FieldKeyID, kid,
		"key_count", len(snap.keys),
	))
	return signingKey{}, errors.UnknownKey(kid)
}

// Refresh fetches the JWKS document and atomically replaces the cached key
// set. Overlapping callers share one in-flight fetch and its outcome. On
// failure the previous snapshot is retained and a retryable error is
// returned.
func (c *JWKSCache) Refresh(ctx context.Context) error {
	_, err, shared := c.group.Do("refresh", func() (any, error) {
		return nil, c.refresh(ctx)
	})
	if shared {
		c.log.Debug("joined in-flight key set refresh")
	}
	return err
}

func (c *JWKSCache) refresh(ctx context.Context) error {
	ctx, span := observability.StartSpan(ctx, observability.SpanJWKSRefresh)
	defer span.End()

	start := c.now()
	snap, err := c.fetch(ctx)
	if err != nil {
		observability.SetSpanError(ctx, err)
		if c.metrics != nil {
			c.metrics.RecordJWKSRefresh(ctx, "stale", c.now().Sub(start))
		}
		c.log.WithError(err).Warn("key set refresh failed, previous keys retained")
		return err
	}

	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()

	observability.SetSpanAttribute(ctx, observability.AttrKeyCount, len(snap.keys))
	if c.metrics != nil {
		c.metrics.RecordJWKSRefresh(ctx, "ok", c.now().Sub(start))
	}
	c.log.Debug("key set refreshed", logger.Fields("key_count", len(snap.keys)))
	return nil
}

// fetch retrieves and parses the JWKS document, retrying transient upstream
// failures with a bounded per-attempt timeout.
func (c *JWKSCache) fetch(ctx context.Context) (*keySnapshot, error) {
	retryCfg := resilience.RetryConfig{
		MaxAttempts:    refreshAttempts,
		InitialBackoff: refreshBackoff,
		MaxBackoff:     2 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         0.2,
		RetryIf:        resilience.RetryIfRetryable,
	}

	doc, err := resilience.Retry(ctx, retryCfg, func() (*jwksDoc, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
		defer cancel()

		var doc jwksDoc
		if err := c.client.GetJSON(attemptCtx, c.jwksURI, &doc); err != nil {
			return nil, httpclient.ToAppError(err, "identity provider key endpoint")
		}
		return &doc, nil
	})
	if err != nil {
		return nil, err
	}

	now := c.now()
	keys := make(map[string]signingKey, len(doc.Keys))
	for i := range doc.Keys {
		k := &doc.Keys[i]
		if k.Use != "" && k.Use != "sig" {
			continue
		}
		pub, perr := k.publicKey()
		if perr != nil {
			c.log.WithError(perr).Warn("skipping unparseable key", logger.Fields(
				logger.FieldKeyID, k.Kid,
				"kty", k.Kty,
			))
			continue
		}
		keys[k.Kid] = signingKey{kid: k.Kid, alg: k.Alg, key: pub, fetchedAt: now}
	}

	if len(keys) == 0 {
		return nil, errors.ServiceUnavailable("identity provider key endpoint").
			WithDetail("reason", "JWKS document contains no usable signing keys")
	}

	return &keySnapshot{keys: keys, fetchedAt: now}, nil
}

// Stats describes the cache's current snapshot.
type Stats struct {
	KeyCount  int
	FetchedAt time.Time
	Stale     bool
}

// Stats returns a point-in-time view of the cached key set.
func (c *JWKSCache) Stats() Stats {
	c.mu.RLock()
	snap := c.snap
	c.mu.RUnlock()

	if snap == nil {
		return Stats{Stale: true}
	}
	return Stats{
		KeyCount:  len(snap.keys),
		FetchedAt: snap.fetchedAt,
		Stale:     snap.stale(c.ttl, c.now()),
	}
}

// CheckHealth implements observability.HealthChecker. An empty cache is
// degraded rather than down: keys are fetched lazily and a stale snapshot is
// still servable.
func (c *JWKSCache) CheckHealth(ctx context.Context) observability.Health {
	stats := c.Stats()

	h := observability.Health{
		Name:   "jwks_cache",
		Status: observability.HealthStatusUp,
		Details: map[string]string{
			"key_count": fmt.Sprintf("%d", stats.KeyCount),
		},
	}
	if !stats.FetchedAt.IsZero() {
		h.Details["fetched_at"] = stats.FetchedAt.UTC().Format(time.RFC3339)
	}

	switch {
	case stats.KeyCount == 0:
		h.Status = observability.HealthStatusDegraded
		h.Message = "no signing keys cached yet"
	case stats.Stale:
		h.Status = observability.HealthStatusDegraded
		h.Message = "cached signing keys are past their TTL"
	}
	return h
}

// --- JWK parsing ---

// jwk is one entry of a JWKS document.
type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	Use string `json:"use"`

	// RSA fields
	N string `json:"n"`
	E string `json:"e"`

	// EC fields
	Crv string `json:"crv"`
	X   string `json:"x"`
	Y   string `json:"y"`
}

type jwksDoc struct {
	Keys []jwk `json:"keys"`
}

// publicKey converts the JWK material to a Go crypto.PublicKey.
func (k *jwk) publicKey() (crypto.PublicKey, error) {
	switch k.Kty {
	case "RSA":
		return k.rsaPublicKey()
	case "EC":
		return k.ecPublicKey()
	default:
		return nil, fmt.Errorf("unsupported key type: %s", k.Kty)
	}
}

func (k *jwk) rsaPublicKey() (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("decode RSA N: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("decode RSA E: %w", err)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(new(big.Int).SetBytes(eBytes).Int64()),
	}, nil
}

func (k *jwk) ecPublicKey() (*ecdsa.PublicKey, error) {
	xBytes, err := base64.RawURLEncoding.DecodeString(k.X)
	if err != nil {
		return nil, fmt.Errorf("decode EC X: %w", err)
	}
	yBytes, err := base64.RawURLEncoding.DecodeString(k.Y)
	if err != nil {
		return nil, fmt.Errorf("decode EC Y: %w", err)
	}

	var curve elliptic.Curve
	switch k.Crv {
	case "P-256":
		curve = elliptic.P256()
	case "P-384":
		curve = elliptic.P384()
	case "P-521":
		curve = elliptic.P521()
	default:
		return nil, fmt.Errorf("unsupported curve: %s", k.Crv)
	}

	return &ecdsa.PublicKey{
		Curve: curve,
		X:     new(big.Int).SetBytes(xBytes),
		Y:     new(big.Int).SetBytes(yBytes),
	}, nil
}
