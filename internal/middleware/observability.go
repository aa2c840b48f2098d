package middleware

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dentclinicai/dentclinicai-api/internal/audit"
	"github.com/dentclinicai/dentclinicai-api/pkg/logger"
	"github.com/dentclinicai/dentclinicai-api/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// sensitiveQueryParams are redacted from logs to avoid leaking secrets.
var sensitiveQueryParams = map[string]bool{
	"token": true, "password": true, "secret": true, "key": true,
	"auth": true, "api_key": true, "apikey": true, "email": true, "phone": true,
}

// ObservabilityMiddleware instruments HTTP requests with metrics, the zap
// request log and one access.log line per response
func ObservabilityMiddleware(sink audit.Sink) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		// Track active requests (method only - route not known until after routing)
		metrics.ActiveRequests.WithLabelValues(method).Inc()
		defer metrics.ActiveRequests.WithLabelValues(method).Dec()

		c.Next()

		// Route template keeps label cardinality bounded
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		elapsed := time.Since(start)
		duration := elapsed.Seconds()
		status := c.Writer.Status()
		statusStr := strconv.Itoa(status)

		metrics.HTTPRequestDuration.WithLabelValues(method, path, statusStr).Observe(duration)
		metrics.HTTPRequestTotal.WithLabelValues(method, path, statusStr).Inc()

		requestURL := RedactedURL(c.Request.URL)
		clientIP := c.ClientIP()

		fields := []zap.Field{
			zap.String("client_ip", clientIP),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.Int("response_size", c.Writer.Size()),
		}
		if status >= 400 && len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.String()))
		}
		logger.LogHTTPRequest(method, requestURL, status, duration, fields...)

		// Write failures are counted and logged by the sink
		_ = sink.LogAccess(method, requestURL, status, elapsed, clientIP) //nolint:errcheck
	}
}

// RedactedURL returns the path and query of u with sensitive query values
// replaced
func RedactedURL(u *url.URL) string {
	if u.RawQuery == "" {
		return u.Path
	}

	query := u.Query()
	for k := range query {
		if sensitiveQueryParams[strings.ToLower(k)] {
			query[k] = []string{audit.Redacted}
		}
	}
	return u.Path + "?" + query.Encode()
}
