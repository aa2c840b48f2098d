package handlers

import (
	"time"

	"github.com/dentclinicai/dentclinicai-api/internal/models"
	"github.com/dentclinicai/dentclinicai-api/internal/services"
	"github.com/gin-gonic/gin"
)

// unknownUserAgent is recorded when the client sends no User-Agent
const unknownUserAgent = "Unknown"

type ContactHandler struct {
	service services.ContactServiceInterface
	now     func() time.Time
}

func NewContactHandler(service services.ContactServiceInterface) *ContactHandler {
	return &ContactHandler{service: service, now: time.Now}
}

// Submit handles POST /api/contact
func (h *ContactHandler) Submit(c *gin.Context) {
	noStore(c)

	body, err := readBody(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.service.Submit(c.Request.Context(), body, h.requestMeta(c)); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, nil)
}

func (h *ContactHandler) requestMeta(c *gin.Context) models.RequestMeta {
	ua := c.Request.UserAgent()
	if ua == "" {
		ua = unknownUserAgent
	}
	return models.RequestMeta{
		SourceIP:   c.ClientIP(),
		UserAgent:  ua,
		ReceivedAt: h.now().UTC(),
	}
}
