package middleware

import (
	"fmt"

	"github.com/dentclinicai/dentclinicai-api/internal/audit"
	"github.com/dentclinicai/dentclinicai-api/internal/models"
	apperrors "github.com/dentclinicai/dentclinicai-api/pkg/errors"
	"github.com/dentclinicai/dentclinicai-api/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandlerMiddleware answers errors that a handler attached to the
// context without writing a response. The error goes to error.log with the
// request method, URL and IP.
func ErrorHandlerMiddleware(sink audit.Sink) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		logger.LogError(err, "Unhandled request error", zap.String("path", c.Request.URL.Path))
		_ = sink.LogError(err, requestContext(c)) //nolint:errcheck

		status, env := models.FromError(err)
		c.JSON(status, env)
	}
}

// RecoveryMiddleware turns a panic into 500 INTERNAL_ERROR and records it to
// error.log
func RecoveryMiddleware(sink audit.Sink) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		err := apperrors.InternalError("panic recovered", fmt.Errorf("%v", recovered))
		logger.LogError(err, "Recovered from panic",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path))
		_ = sink.LogError(err, requestContext(c)) //nolint:errcheck

		status, env := models.FromError(err)
		c.AbortWithStatusJSON(status, env)
	})
}

func requestContext(c *gin.Context) map[string]any {
	return map[string]any{
		"method": c.Request.Method,
		"url":    RedactedURL(c.Request.URL),
		"ip":     c.ClientIP(),
	}
}
