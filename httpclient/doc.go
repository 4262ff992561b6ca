// Package httpclient provides the HTTP client used to talk to identity
// providers, with built-in TLS, timeouts, and resilience (retry, circuit
// breaker, rate limiting).
//
// The oidc package uses it for discovery document and JWKS fetches. It
// identifies itself with a "authkit/<version>" User-Agent by default.
//
// # Basic Usage
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "https://idp.example.com",
//	    Timeout: 10 * time.Second,
//	})
//
//	var doc map[string]any
//	err = client.GetJSON(ctx, "/.well-known/openid-configuration", &doc)
//
// # With Resilience
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "https://idp.example.com",
//	    Retry:   httpclient.DefaultRetryConfig(),
//	    CircuitBreaker: httpclient.DefaultCircuitBreakerConfig("idp"),
//	})
//
// Errors carry a classification (timeout, connection, server, ...) and
// convert into the application taxonomy via ToAppError.
package httpclient
