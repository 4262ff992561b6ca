package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/authkit/auth"
	"github.com/skillsenselab/authkit/authctx"
	"github.com/skillsenselab/authkit/errors"
	"github.com/skillsenselab/authkit/logger"
)

// AuthOption customizes the Auth middleware.
type AuthOption func(*authOptions)

type authOptions struct {
	skipPaths  []string
	realm      string
	queryParam string
	log        *logger.Logger
}

// WithSkipPaths lists URL path prefixes that bypass authentication
// (health checks, docs).
func WithSkipPaths(paths ...string) AuthOption {
	return func(o *authOptions) { o.skipPaths = paths }
}

// WithRealm sets the realm sent in WWW-Authenticate on 401 responses.
func WithRealm(realm string) AuthOption {
	return func(o *authOptions) { o.realm = realm }
}

// WithQueryToken additionally accepts the token from the named query
// parameter. For clients that cannot set headers (EventSource, WebSocket
// handshakes); the Authorization header always wins.
func WithQueryToken(param string) AuthOption {
	return func(o *authOptions) { o.queryParam = param }
}

// WithAuthLogger sets the middleware logger.
func WithAuthLogger(log *logger.Logger) AuthOption {
	return func(o *authOptions) { o.log = log }
}

// Auth returns middleware that extracts the bearer token, validates it, and
// stores the resulting claims in the request context for handlers and
// downstream middleware. Authentication failures answer 401 with the generic
// error JSON; transient key-fetch failures answer 503 so clients retry
// instead of re-authenticating.
func Auth(v auth.TokenValidator, opts ...AuthOption) gin.HandlerFunc {
	o := authOptions{realm: "api"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.GetGlobalLogger().WithComponent("middleware")
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range o.skipPaths {
			if strings.HasPrefix(path, skip) {
				c.Next()
				return
			}
		}

		token := extractToken(c, o.queryParam)
		if token == "" {
			abortError(c, errors.Unauthorized(""), o.realm)
			return
		}

		payload, err := v.ValidateToken(c.Request.Context(), token)
		if err != nil {
			abortError(c, errors.Wrap(err), o.realm)
			return
		}

		c.Request = c.Request.WithContext(authctx.Set(c.Request.Context(), payload))
		c.Next()
	}
}

// extractToken pulls the credential from "Authorization: Bearer <token>",
// falling back to the configured query parameter.
func extractToken(c *gin.Context, queryParam string) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if queryParam != "" {
		return c.Query(queryParam)
	}
	return ""
}

// abortError writes the error JSON and stops the chain. 401 responses carry
// a WWW-Authenticate challenge per RFC 6750.
func abortError(c *gin.Context, appErr *errors.AppError, realm string) {
	status := appErr.HTTPStatus
	if status == 401 && realm != "" {
		c.Header("WWW-Authenticate", `Bearer realm="`+realm+`"`)
	}
	c.AbortWithStatusJSON(status, appErr.ToResponse())
}
