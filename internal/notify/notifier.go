// Package notify turns contact submissions into emails, or outbox files
// when no mail transport is configured.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/dentclinicai/dentclinicai-api/internal/models"
	"github.com/dentclinicai/dentclinicai-api/pkg/logger"
	"github.com/dentclinicai/dentclinicai-api/pkg/metrics"
	"go.uber.org/zap"
)

// Config holds the envelope addresses of contact notifications
type Config struct {
	From     string
	FromName string
	To       string
}

// Delivery reports how a notification was handled. Location is the outbox
// path for outbox deliveries and empty otherwise.
type Delivery struct {
	Channel  string
	Location string
}

// Notifier sends contact notifications through a transport, or writes them
// to the outbox when sender is nil
type Notifier struct {
	cfg    Config
	sender EmailSender
	outbox Outbox
	now    func() time.Time
}

// NewNotifier creates a notifier. Pass a nil sender to use the outbox.
func NewNotifier(cfg Config, sender EmailSender, outbox Outbox) *Notifier {
	return &Notifier{
		cfg:    cfg,
		sender: sender,
		outbox: outbox,
		now:    time.Now,
	}
}

// Channel returns the delivery channel in use
func (n *Notifier) Channel() string {
	if n.sender != nil {
		return n.sender.Channel()
	}
	return ChannelOutbox
}

// NotifyContact delivers the notification for one contact submission
func (n *Notifier) NotifyContact(ctx context.Context, sub models.ContactSubmission, meta models.RequestMeta) (*Delivery, error) {
	msg := EmailMessage{
		From:     n.cfg.From,
		FromName: n.cfg.FromName,
		To:       n.cfg.To,
		Subject:  ContactSubject(sub.Clinic),
		Body:     ContactBody(sub, meta),
		Date:     n.now(),
	}

	start := time.Now()
	delivery, err := n.deliver(ctx, msg)
	duration := metrics.MeasureDuration(start)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.NotificationDuration.WithLabelValues(delivery.Channel, status).Observe(duration)
	metrics.NotificationTotal.WithLabelValues(delivery.Channel, status).Inc()
	logger.LogAPICall(delivery.Channel, "notifyContact", status, duration,
		zap.String("location", delivery.Location),
		zap.Error(err))

	return delivery, err
}

func (n *Notifier) deliver(ctx context.Context, msg EmailMessage) (*Delivery, error) {
	if n.sender != nil {
		return &Delivery{Channel: n.sender.Channel()}, n.sender.Send(ctx, msg)
	}

	if n.outbox == nil {
		return &Delivery{Channel: ChannelOutbox}, errors.New("notify: no transport and no outbox configured")
	}
	path, err := n.outbox.Write(ctx, msg)
	return &Delivery{Channel: ChannelOutbox, Location: path}, err
}
