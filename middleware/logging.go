package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/authkit/authctx"
	"github.com/skillsenselab/authkit/logger"
)

// Logging returns middleware that logs every request with method, path,
// status, and latency. The authenticated subject is included when the Auth
// middleware ran earlier in the chain. Pass nil to use the global logger.
func Logging(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		path := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			path = path + "?" + q
		}

		fields := map[string]interface{}{
			"method":             c.Request.Method,
			"path":               path,
			logger.FieldStatus:   status,
			logger.FieldDuration: latency.Milliseconds(),
			"client":             c.ClientIP(),
		}
		if id := GetRequestID(c); id != "" {
			fields[logger.FieldRequestID] = id
		}
		if sub := authctx.Subject(c.Request.Context()); sub != "" {
			fields[logger.FieldSubject] = sub
		}
		if latency > 500*time.Millisecond {
			fields["slow"] = true
		}

		switch {
		case status >= 500:
			log.Error("request completed", fields)
		case status >= 400:
			log.Warn("request completed", fields)
		default:
			log.Debug("request completed", fields)
		}
	}
}
