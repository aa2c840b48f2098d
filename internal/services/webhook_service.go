package services

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/dentclinicai/dentclinicai-api/config"
	"github.com/dentclinicai/dentclinicai-api/internal/audit"
	"github.com/dentclinicai/dentclinicai-api/internal/models"
	"github.com/dentclinicai/dentclinicai-api/internal/signature"
	apperrors "github.com/dentclinicai/dentclinicai-api/pkg/errors"
	"github.com/dentclinicai/dentclinicai-api/pkg/logger"
	"github.com/dentclinicai/dentclinicai-api/pkg/metrics"
	"github.com/dentclinicai/dentclinicai-api/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Webhook sources
const (
	SourceN8N      = "n8n"
	SourceCalendly = "calendly"
)

// WebhookService authenticates webhook deliveries. Deliveries are not
// deduplicated: a replayed payload with a valid signature is accepted again.
type WebhookService struct {
	n8n      signature.Verifier
	calendly signature.Verifier
	sink     audit.Sink
}

// NewWebhookService creates a webhook service. A source without a
// configured secret is disabled.
func NewWebhookService(cfg config.WebhooksConfig, sink audit.Sink) *WebhookService {
	s := &WebhookService{sink: sink}
	if cfg.N8NToken != "" {
		s.n8n = signature.NewBearerVerifier(cfg.N8NToken)
	}
	if cfg.CalendlySigningSecret != "" {
		s.calendly = signature.NewCalendlyVerifier(cfg.CalendlySigningSecret)
	}
	return s
}

// N8NEnabled reports whether the n8n route should be registered
func (s *WebhookService) N8NEnabled() bool {
	return s.n8n != nil
}

// CalendlyEnabled reports whether the Calendly route should be registered
func (s *WebhookService) CalendlyEnabled() bool {
	return s.calendly != nil
}

// HandleN8N checks the bearer token. The payload itself is acknowledged
// without processing.
func (s *WebhookService) HandleN8N(ctx context.Context, event *models.WebhookEvent) error {
	_, span := tracing.StartSpan(ctx, "WebhookService.HandleN8N",
		attribute.Int("webhook.body_size", len(event.Body)))
	defer span.End()

	if s.n8n == nil {
		metrics.WebhookDeliveries.WithLabelValues(SourceN8N, "disabled").Inc()
		return apperrors.UnauthorizedError("n8n webhook is not configured")
	}

	if err := s.n8n.Verify(event.Headers, event.Body); err != nil {
		metrics.WebhookDeliveries.WithLabelValues(SourceN8N, "unauthorized").Inc()
		logger.Warn("Rejected n8n webhook", zap.Error(err))
		return err
	}

	metrics.WebhookDeliveries.WithLabelValues(SourceN8N, "accepted").Inc()
	logger.Info("Accepted n8n webhook", zap.Int("body_size", len(event.Body)))
	return nil
}

// HandleCalendly verifies the signature over the raw body and appends the
// event to calendly.log
func (s *WebhookService) HandleCalendly(ctx context.Context, event *models.WebhookEvent) error {
	_, span := tracing.StartSpan(ctx, "WebhookService.HandleCalendly",
		attribute.Int("webhook.body_size", len(event.Body)))
	defer span.End()

	if s.calendly == nil {
		metrics.WebhookDeliveries.WithLabelValues(SourceCalendly, "disabled").Inc()
		return apperrors.ErrInvalidSignature
	}

	if err := s.calendly.Verify(event.Headers, event.Body); err != nil {
		status := "invalid_signature"
		if apperrors.Is(err, apperrors.ErrMissingHeaders) {
			status = "missing_headers"
		}
		metrics.WebhookDeliveries.WithLabelValues(SourceCalendly, status).Inc()
		logger.Warn("Rejected Calendly webhook", zap.Error(err))
		return err
	}

	// Signed but not JSON: keep it out of the log
	var compact bytes.Buffer
	if err := json.Compact(&compact, event.Body); err != nil {
		metrics.WebhookDeliveries.WithLabelValues(SourceCalendly, "invalid_payload").Inc()
		return apperrors.InvalidInputError("body", "Malformed JSON")
	}

	eventType := calendlyEventType(event.Body)
	span.SetAttributes(attribute.String("calendly.event", eventType))

	record := models.CalendlyRecord{Timestamp: event.ReceivedAt, Event: compact.String()}
	if err := s.sink.AppendRecord(audit.CalendlyFile, record); err != nil {
		metrics.WebhookDeliveries.WithLabelValues(SourceCalendly, "error").Inc()
		span.RecordError(err)
		recordError(s.sink, err, map[string]any{"route": "/api/webhooks/calendly", "event": eventType})
		return apperrors.InternalError("failed to record calendly event", err)
	}

	metrics.WebhookDeliveries.WithLabelValues(SourceCalendly, "accepted").Inc()
	logger.Info("Accepted Calendly webhook", zap.String("event", eventType))
	return nil
}

func calendlyEventType(body []byte) string {
	var envelope struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Event == "" {
		return "unknown"
	}
	return envelope.Event
}
