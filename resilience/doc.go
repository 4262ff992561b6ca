// Package resilience provides fault-tolerance primitives for calls to
// identity providers.
//
// This package includes:
//   - Retry: retries failed operations with exponential backoff and jitter
//   - CircuitBreaker: fails fast when a provider is persistently unhealthy
//   - RateLimiter: token-bucket control of outbound request rate
//
// Discovery and JWKS refresh use Retry with RetryIfRetryable so terminal
// rejections (bad configuration, invalid tokens) never burn attempts; the
// HTTP client composes the breaker and limiter around provider fetches:
//
//	out, err := resilience.Retry(ctx, resilience.RetryConfig{
//	    MaxAttempts:    3,
//	    InitialBackoff: 200 * time.Millisecond,
//	    RetryIf:        resilience.RetryIfRetryable,
//	}, func() (*Document, error) {
//	    return fetchJWKS(ctx)
//	})
package resilience
