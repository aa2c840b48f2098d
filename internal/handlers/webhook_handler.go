package handlers

import (
	"time"

	"github.com/dentclinicai/dentclinicai-api/internal/models"
	"github.com/dentclinicai/dentclinicai-api/internal/services"
	"github.com/gin-gonic/gin"
)

type WebhookHandler struct {
	service services.WebhookServiceInterface
	now     func() time.Time
}

func NewWebhookHandler(service services.WebhookServiceInterface) *WebhookHandler {
	return &WebhookHandler{service: service, now: time.Now}
}

// N8N handles POST /api/webhooks/n8n
func (h *WebhookHandler) N8N(c *gin.Context) {
	event, err := h.event(c, services.SourceN8N)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.service.HandleN8N(c.Request.Context(), event); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, nil)
}

// Calendly handles POST /api/webhooks/calendly
func (h *WebhookHandler) Calendly(c *gin.Context) {
	event, err := h.event(c, services.SourceCalendly)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.service.HandleCalendly(c.Request.Context(), event); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, nil)
}

// event captures the body exactly as received; signatures are computed
// over these bytes
func (h *WebhookHandler) event(c *gin.Context, source string) (*models.WebhookEvent, error) {
	body, err := readBody(c)
	if err != nil {
		return nil, err
	}
	return &models.WebhookEvent{
		Source:     source,
		Headers:    c.Request.Header,
		Body:       body,
		ReceivedAt: h.now().UTC(),
	}, nil
}
