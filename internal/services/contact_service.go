package services

import (
	"context"

	"github.com/dentclinicai/dentclinicai-api/internal/audit"
	"github.com/dentclinicai/dentclinicai-api/internal/models"
	"github.com/dentclinicai/dentclinicai-api/internal/validation"
	apperrors "github.com/dentclinicai/dentclinicai-api/pkg/errors"
	"github.com/dentclinicai/dentclinicai-api/pkg/logger"
	"github.com/dentclinicai/dentclinicai-api/pkg/metrics"
	"github.com/dentclinicai/dentclinicai-api/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// RouteContact is the route recorded in contact error context
const RouteContact = "/api/contact"

// ContactService validates contact submissions, notifies the clinic team and
// records every accepted submission in leads.csv
type ContactService struct {
	validator *validation.Validator
	notifier  ContactNotifier
	sink      audit.Sink
}

// NewContactService creates a new contact service instance
func NewContactService(validator *validation.Validator, notifier ContactNotifier, sink audit.Sink) *ContactService {
	return &ContactService{
		validator: validator,
		notifier:  notifier,
		sink:      sink,
	}
}

// Submit runs validate, notify, record. A failed notification is written
// to the error sink and the lead is still recorded; only a failed lead
// append fails the request.
func (s *ContactService) Submit(ctx context.Context, body []byte, meta models.RequestMeta) error {
	ctx, span := tracing.StartSpan(ctx, "ContactService.Submit")
	defer span.End()

	sub, err := s.validator.ContactSubmission(body)
	if err != nil {
		metrics.ContactFormSubmissions.WithLabelValues("invalid").Inc()
		recordError(s.sink, err, map[string]any{"route": RouteContact})
		return err
	}
	span.SetAttributes(attribute.String("contact.method", sub.ContactMethod))

	// The notification is sent even if the client goes away
	delivery, notifyErr := s.notifier.NotifyContact(context.WithoutCancel(ctx), *sub, meta)
	if notifyErr != nil {
		span.RecordError(notifyErr)
		recordError(s.sink, apperrors.InternalError("contact notification failed", notifyErr), map[string]any{
			"route":  RouteContact,
			"clinic": sub.Clinic,
			"email":  sub.Email,
		})
	}

	lead := models.LeadRecord{Timestamp: meta.ReceivedAt, Contact: *sub, Meta: meta}
	if err := s.sink.AppendRecord(audit.LeadsFile, lead); err != nil {
		metrics.ContactFormSubmissions.WithLabelValues("error").Inc()
		span.RecordError(err)
		recordError(s.sink, err, map[string]any{"route": RouteContact, "clinic": sub.Clinic})
		return apperrors.InternalError("failed to record lead", err)
	}

	if notifyErr != nil {
		metrics.ContactFormSubmissions.WithLabelValues("notify_failed").Inc()
		logger.Warn("Contact recorded without notification", zap.String("clinic", sub.Clinic))
		return nil
	}

	metrics.ContactFormSubmissions.WithLabelValues("success").Inc()
	logger.Info("Contact form submitted",
		zap.String("clinic", sub.Clinic),
		zap.String("channel", delivery.Channel))
	return nil
}

// recordError writes err to the error sink. A failing sink is already
// reported to the application log, so the write error is dropped here.
func recordError(sink audit.Sink, err error, ctx map[string]any) {
	_ = sink.LogError(err, ctx)
}
