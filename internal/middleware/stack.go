package middleware

import (
	"github.com/dentclinicai/dentclinicai-api/internal/audit"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// StackConfig holds the settings of the global middleware chain
type StackConfig struct {
	ServiceName       string
	SiteOrigin        string
	AllowLocalhost    bool
	HSTS              bool
	RequestsPerMinute int
	RateLimitAllow    []string
}

// Stack returns the global middleware in registration order. Observability
// wraps recovery so a panicking request still gets its access.log line.
func Stack(cfg StackConfig, sink audit.Sink) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		ObservabilityMiddleware(sink),
		RecoveryMiddleware(sink),
		otelgin.Middleware(cfg.ServiceName), // OpenTelemetry tracing
		SecurityHeadersMiddleware(cfg.HSTS),
		CORSMiddleware(cfg.SiteOrigin, cfg.AllowLocalhost),
		NewRateLimiter(cfg.RequestsPerMinute, cfg.RateLimitAllow).Middleware(),
		ErrorHandlerMiddleware(sink),
	}
}
