// Package oidc validates OpenID Connect tokens against a single issuer.
//
// The pieces compose bottom-up: Discover fetches the provider metadata once,
// JWKSCache caches the issuer's signing keys with TTL-based single-flight
// refresh, and Validator verifies compact JWTs (signature, exp with leeway,
// aud, iss) into an immutable TokenPayload. The auth package wires these into
// guard functions; most applications use that facade rather than this
// package directly.
//
// Every rejection is an errors.AppError with a distinct code so transports
// can map authentication failures to 401 and transient key-fetch failures to
// 503 mechanically. External messages stay generic; which specific check
// failed is visible only in internal logs.
package oidc
