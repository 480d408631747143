package httpapi

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skillsenselab/offerhub/internal/apperrors"
	"github.com/skillsenselab/offerhub/internal/auth"
	"github.com/skillsenselab/offerhub/internal/logging"
	"github.com/skillsenselab/offerhub/internal/metrics"
	"github.com/skillsenselab/offerhub/internal/resilience"
)

const (
	headerRequestID = "X-Request-Id"
	headerAPIKey    = "X-API-Key"
	headerCache     = "X-Cache"

	ctxKeyAPIKey = "api_key"
)

// RequestID ensures every request carries a request ID, generating one when
// the client did not send it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.New().String()
		}
		c.Header(headerRequestID, id)
		c.Set("request_id", id)
		c.Next()
	}
}

// RequestLogger logs every request with method, path, status and latency.
// Health probes are skipped.
func RequestLogger(log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/health" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		fields := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        path,
			"status":      status,
			"duration_ms": latency.Milliseconds(),
			"client":      c.ClientIP(),
		}
		if id := c.GetString("request_id"); id != "" {
			fields["request_id"] = id
		}

		switch {
		case status >= 500:
			log.Error("request completed", fields)
		case status >= 400:
			log.Warn("request completed", fields)
		default:
			log.Info("request completed", fields)
		}
	}
}

// RequestMetrics counts served requests by route template and status.
func RequestMetrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordRequest(c.Request.Context(), route, c.Writer.Status())
	}
}

// Recovery converts panics into an INTERNAL_ERROR response instead of
// tearing down the connection.
func Recovery(log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered", map[string]interface{}{
					"path":  c.Request.URL.Path,
					"panic": r,
				})
				appErr := apperrors.Internal(nil)
				c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
			}
		}()
		c.Next()
	}
}

// APIKeyAuth rejects requests without a key (401) or with an unknown key
// (403). The verified key is stored on the context for rate limiting.
func APIKeyAuth(verifier *auth.KeyVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(headerAPIKey)
		if key == "" {
			abortWith(c, apperrors.Unauthorized("API key required"))
			return
		}
		if err := verifier.Verify(key); err != nil {
			abortWith(c, apperrors.Forbidden("invalid API key"))
			return
		}
		c.Set(ctxKeyAPIKey, key)
		c.Next()
	}
}

// RateLimit enforces the per-key fixed window. Runs after APIKeyAuth so
// unauthenticated requests never consume window budget.
func RateLimit(limiter *resilience.WindowLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(ctxKeyAPIKey)
		if key == "" {
			// Auth middleware did not run; nothing to meter against.
			c.Next()
			return
		}
		if !limiter.Allow(key) {
			abortWith(c, apperrors.RateLimited(limiter.Limit(), int(limiter.Window().Seconds())))
			return
		}
		c.Next()
	}
}

// AdminAuth validates the admin bearer token on management endpoints.
func AdminAuth(verifier *auth.AdminVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWith(c, apperrors.Unauthorized("bearer token required"))
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			abortWith(c, apperrors.Unauthorized("malformed authorization header"))
			return
		}
		if _, err := verifier.Verify(token); err != nil {
			abortWith(c, apperrors.Forbidden("admin access denied"))
			return
		}
		c.Next()
	}
}

func abortWith(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.HTTPStatus, err.ToResponse())
}
