package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/authkit/errors"
	"github.com/skillsenselab/authkit/logger"
)

// Recovery returns middleware that recovers from handler panics, logs the
// stack, and answers 500 with the standard error JSON. Pass nil to use the
// global logger.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered", map[string]interface{}{
					logger.FieldError: fmt.Sprintf("%v", r),
					"stack":           string(debug.Stack()),
					"path":            c.Request.URL.Path,
					"method":          c.Request.Method,
					"client_ip":       c.ClientIP(),
				})
				appErr := errors.Internal(fmt.Errorf("panic: %v", r))
				c.AbortWithStatusJSON(http.StatusInternalServerError, appErr.ToResponse())
			}
		}()
		c.Next()
	}
}
