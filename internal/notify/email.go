package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/dentclinicai/dentclinicai-api/pkg/logger"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Delivery channels reported in metrics and logs
const (
	ChannelSMTP     = "smtp"
	ChannelSendGrid = "sendgrid"
	ChannelSES      = "ses"
	ChannelOutbox   = "outbox"
)

const (
	smtpImplicitTLSPort = 465
	smtpDialTimeout     = 30 * time.Second
)

// EmailSender delivers a message through a mail transport
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
	Channel() string
}

var (
	_ EmailSender = (*SMTPSender)(nil)
	_ EmailSender = (*SendGridSender)(nil)
	_ EmailSender = (*SESSender)(nil)
)

// SMTPConfig holds SMTP relay settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// SMTPSender submits mail to an SMTP relay. Port 465 uses implicit TLS;
// other ports upgrade with STARTTLS when the server offers it.
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTPSender creates an SMTP sender, or nil when cfg is incomplete
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.Host == "" || cfg.Port == 0 || cfg.Username == "" || cfg.Password == "" {
		return nil
	}
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Channel() string { return ChannelSMTP }

// Send delivers msg in a single SMTP session
func (s *SMTPSender) Send(ctx context.Context, msg EmailMessage) error {
	conn, err := s.dial(ctx)
	if err != nil {
		return fmt.Errorf("notify: smtp dial failed: %w", err)
	}

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("notify: smtp handshake failed: %w", err)
	}
	defer c.Close()

	if s.cfg.Port != smtpImplicitTLSPort {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
				return fmt.Errorf("notify: smtp starttls failed: %w", err)
			}
		}
	}

	if ok, _ := c.Extension("AUTH"); ok {
		if err := c.Auth(smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)); err != nil {
			return fmt.Errorf("notify: smtp auth failed: %w", err)
		}
	}

	if err := c.Mail(cleanHeader(msg.From)); err != nil {
		return fmt.Errorf("notify: smtp MAIL FROM rejected: %w", err)
	}
	if err := c.Rcpt(cleanHeader(msg.To)); err != nil {
		return fmt.Errorf("notify: smtp RCPT TO rejected: %w", err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("notify: smtp DATA rejected: %w", err)
	}
	if _, err := w.Write(msg.MIME()); err != nil {
		w.Close()
		return fmt.Errorf("notify: smtp write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("notify: smtp message rejected: %w", err)
	}

	if err := c.Quit(); err != nil {
		logger.Warn("SMTP quit failed after delivery", zap.Error(err))
	}
	return nil
}

func (s *SMTPSender) dial(ctx context.Context) (net.Conn, error) {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	dialer := &net.Dialer{Timeout: smtpDialTimeout}

	if s.cfg.Port == smtpImplicitTLSPort {
		tlsDialer := &tls.Dialer{
			NetDialer: dialer,
			Config:    &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12},
		}
		return tlsDialer.DialContext(ctx, "tcp", addr)
	}
	return dialer.DialContext(ctx, "tcp", addr)
}

// SendGridConfig holds configuration for SendGrid
type SendGridConfig struct {
	APIKey string
}

// SendGridSender sends emails via the SendGrid API
type SendGridSender struct {
	client *sendgrid.Client
}

// NewSendGridSender creates a SendGrid sender, or nil without an API key
func NewSendGridSender(cfg SendGridConfig) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	return &SendGridSender{client: sendgrid.NewSendClient(cfg.APIKey)}
}

func (s *SendGridSender) Channel() string { return ChannelSendGrid }

// Send sends an email via SendGrid
func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if s.client == nil {
		return fmt.Errorf("notify: sendgrid client not configured")
	}

	from := mail.NewEmail(cleanHeader(msg.FromName), cleanHeader(msg.From))
	to := mail.NewEmail(cleanHeader(msg.ToName), cleanHeader(msg.To))
	message := mail.NewSingleEmail(from, cleanHeader(msg.Subject), to, msg.Body, "")

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("notify: sendgrid send failed: %w", err)
	}
	if response.StatusCode >= 400 {
		logger.Error("SendGrid returned error status",
			zap.Int("status", response.StatusCode),
			zap.String("body", response.Body))
		return fmt.Errorf("notify: sendgrid returned status %d", response.StatusCode)
	}
	return nil
}

// SESAPI is the part of the SES v2 client used by SESSender
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender sends emails via AWS SES
type SESSender struct {
	client SESAPI
}

// NewSESSender creates an SES sender, or nil without a client
func NewSESSender(client SESAPI) *SESSender {
	if client == nil {
		return nil
	}
	return &SESSender{client: client}
}

func (s *SESSender) Channel() string { return ChannelSES }

// Send sends an email via AWS SES
func (s *SESSender) Send(ctx context.Context, msg EmailMessage) error {
	if s.client == nil {
		return fmt.Errorf("notify: SES client not configured")
	}

	from := cleanHeader(msg.From)
	if msg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cleanHeader(msg.FromName), from)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{cleanHeader(msg.To)},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(cleanHeader(msg.Subject)),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data:    aws.String(msg.Body),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	output, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("notify: SES send failed: %w", err)
	}

	logger.Debug("Email accepted by SES", zap.String("message_id", aws.ToString(output.MessageId)))
	return nil
}
