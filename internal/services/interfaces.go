package services

import (
	"context"

	"github.com/dentclinicai/dentclinicai-api/internal/models"
	"github.com/dentclinicai/dentclinicai-api/internal/notify"
)

// ContactServiceInterface defines the interface for contact form submissions
type ContactServiceInterface interface {
	Submit(ctx context.Context, body []byte, meta models.RequestMeta) error
}

// RoiServiceInterface defines the interface for the ROI calculator
type RoiServiceInterface interface {
	Calculate(ctx context.Context, body []byte) (*models.RoiResult, error)
}

// WebhookServiceInterface defines the interface for inbound webhook deliveries
type WebhookServiceInterface interface {
	HandleN8N(ctx context.Context, event *models.WebhookEvent) error
	HandleCalendly(ctx context.Context, event *models.WebhookEvent) error
	N8NEnabled() bool
	CalendlyEnabled() bool
}

// ContactNotifier delivers contact notifications
type ContactNotifier interface {
	NotifyContact(ctx context.Context, sub models.ContactSubmission, meta models.RequestMeta) (*notify.Delivery, error)
}

// Ensure services implement their interfaces
var _ ContactServiceInterface = (*ContactService)(nil)
var _ RoiServiceInterface = (*RoiService)(nil)
var _ WebhookServiceInterface = (*WebhookService)(nil)
var _ ContactNotifier = (*notify.Notifier)(nil)
