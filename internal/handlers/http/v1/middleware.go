package v1

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Demonism0/blog-api/internal/auth"
)

// authenticate verifies the bearer credential once per request and stores the
// result in the request context. It never rejects; handlers decide.
func authenticate(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := verifier.FromRequest(c.Request)
		c.Request = c.Request.WithContext(auth.NewContext(c.Request.Context(), res))
		c.Next()
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"auth", auth.FromContext(c.Request.Context()).Status.String(),
		)
	}
}

func caller(c *gin.Context) auth.Result {
	return auth.FromContext(c.Request.Context())
}
