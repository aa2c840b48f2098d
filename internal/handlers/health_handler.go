package handlers

import (
	"net/http"
	"time"

	"github.com/dentclinicai/dentclinicai-api/internal/models"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	started time.Time
	now     func() time.Time
}

func NewHealthHandler(started time.Time) *HealthHandler {
	return &HealthHandler{started: started, now: time.Now}
}

// Healthcheck handles GET /healthz
func (h *HealthHandler) Healthcheck(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")

	now := h.now().UTC()
	c.JSON(http.StatusOK, models.Health{
		OK:     true,
		Uptime: now.Sub(h.started).Seconds(),
		Now:    now.Format(models.TimestampLayout),
	})
}
