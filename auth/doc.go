// Package auth composes token validation and authorization into guards.
//
// OIDCAuth is the facade for one issuer: New runs discovery once, builds the
// key cache and validator, and hands out guard functions. CurrentUser
// authenticates; Require, RequireRoles, and RequireGroups layer role/group
// checks on top. Requirements on one guard combine with AND: a guard
// requiring both roles and groups passes only when both dimensions pass,
// each under its own ANY/ALL mode. Failing authentication and failing
// authorization stay distinct (401-class vs FORBIDDEN), so callers can tell
// "not authenticated" from "authenticated, insufficient permission".
//
// SecuritySchemes publishes the dual-scheme OpenAPI metadata (authorization
// code with PKCE, and plain bearer); both schemes feed the same validator.
// Registry holds named facades for multi-issuer deployments.
package auth
