package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/authkit/authctx"
	"github.com/skillsenselab/authkit/authz"
	"github.com/skillsenselab/authkit/errors"
	"github.com/skillsenselab/authkit/oidc"
)

// Require returns middleware enforcing the given requirements against the
// claims the Auth middleware stored. Requirements combine with AND. Mount it
// after Auth; a request reaching it without claims answers 401.
func Require(reqs ...authz.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, ok := authctx.Get[*oidc.TokenPayload](c.Request.Context())
		if !ok {
			abortError(c, errors.Unauthorized(""), "")
			return
		}

		for _, req := range reqs {
			var have []string
			switch req.Dimension {
			case authz.DimensionGroups:
				have = payload.Groups()
			default:
				have = payload.Roles()
			}
			if !req.Satisfied(have) {
				abortError(c, errors.Forbidden(""), "")
				return
			}
		}
		c.Next()
	}
}

// RequireRoles returns middleware requiring the given roles under mode.
func RequireRoles(mode authz.Mode, roles ...string) gin.HandlerFunc {
	return Require(authz.Roles(mode, roles...))
}

// RequireGroups returns middleware requiring the given groups under mode.
func RequireGroups(mode authz.Mode, groups ...string) gin.HandlerFunc {
	return Require(authz.Groups(mode, groups...))
}
