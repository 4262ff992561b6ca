// Package middleware bridges the auth facade to gin.
//
// Auth extracts and validates the bearer token, storing claims in the
// request context via authctx; Require/RequireRoles/RequireGroups enforce
// authorization on top. Errors map mechanically: 401 for authentication
// failures (with a WWW-Authenticate challenge), 403 for authorization, 503
// when the key cache cannot reach the identity provider. RequestID, Logging,
// and Recovery cover the request plumbing around them.
package middleware
