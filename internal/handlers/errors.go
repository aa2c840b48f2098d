package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/dentclinicai/dentclinicai-api/internal/models"
	apperrors "github.com/dentclinicai/dentclinicai-api/pkg/errors"
	"github.com/gin-gonic/gin"
)

// attachError attaches err to the gin context so the observability middleware
// can include the reason in the request log. c.Error() returns *gin.Error (not
// the error interface), so we suppress errcheck here intentionally.
func attachError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
}

// respondError maps err to its status and envelope and attaches it to the
// gin context for the request log
func respondError(c *gin.Context, err error) {
	attachError(c, err)
	status, env := models.FromError(err)
	c.JSON(status, env)
}

// respondOK sends a success envelope. A nil data is omitted.
func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, models.Success(data))
}

// readBody returns the raw request body. Bodies over the configured limit
// yield ErrPayloadTooLarge.
func readBody(c *gin.Context) ([]byte, error) {
	if c.Request.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.ErrPayloadTooLarge
		}
		return nil, apperrors.InternalError("failed to read request body", err)
	}
	return body, nil
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
}

// NotFound answers unmatched routes with the error envelope
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, models.Failure(models.CodeNotFound, models.MessageNotFound))
}
