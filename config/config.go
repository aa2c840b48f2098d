package config

import (
	"fmt"
	"net/mail"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Mail providers accepted in MAIL_PROVIDER
const (
	MailProviderAuto     = "auto"
	MailProviderSMTP     = "smtp"
	MailProviderSendGrid = "sendgrid"
	MailProviderSES      = "ses"
	MailProviderOutbox   = "outbox"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	Site          SiteConfig
	Mail          MailConfig
	Outbox        OutboxConfig
	Webhooks      WebhooksConfig
	Audit         AuditConfig
	Logging       LoggingConfig
	RateLimit     RateLimitConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	GinMode      string
	AppEnv       string
	PublicDir    string
	MaxBodyBytes int64
}

// SiteConfig holds the public facts the content endpoints fall back to
type SiteConfig struct {
	Origin       string
	BookingLink  string
	IntakeLink   string
	ContactEmail string
	ContactPhone string
	InstagramURL string
	CitiesUK     []string
	CitiesUS     []string
	CitiesUAE    []string
}

type MailConfig struct {
	Provider       string
	From           string
	FromName       string
	SMTPHost       string
	SMTPPort       int
	SMTPUser       string
	SMTPPass       string
	SendGridAPIKey string
	SESRegion      string
}

// OutboxConfig controls where emails go when no transport is configured.
// When S3Bucket is set, files are mirrored to object storage as well.
type OutboxConfig struct {
	Dir               string
	S3Bucket          string
	S3Prefix          string
	S3Endpoint        string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

type WebhooksConfig struct {
	N8NToken              string
	CalendlySigningSecret string
}

type AuditConfig struct {
	Dir string
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type RateLimitConfig struct {
	RequestsPerMinute int
	Allowlist         []string
}

type ObservabilityConfig struct {
	ExporterEndpoint string
	ServiceName      string
	ServiceVersion   string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "3000")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("PUBLIC_DIR", "./public")
	v.SetDefault("MAX_BODY_BYTES", 100*1024)

	v.SetDefault("SITE_ORIGIN", "https://yourdomain.tld")
	v.SetDefault("BOOKING_LINK", "https://calendly.com/omraanalshibany/new-meeting-1")
	v.SetDefault("INTAKE_LINK", "https://forms.fillout.com/t/wNTePVM9DPus")
	v.SetDefault("CONTACT_EMAIL", "omraanalshibany@gmail.com")
	v.SetDefault("CONTACT_PHONE", "+963996905457")
	v.SetDefault("INSTAGRAM_URL", "https://www.instagram.com/dentclinicai?igsh=MXNsNnVrZmpsbXll")
	v.SetDefault("CITIES_UK", "London,Manchester,Birmingham")
	v.SetDefault("CITIES_US", "New York,Los Angeles,Chicago")
	v.SetDefault("CITIES_UAE", "Dubai,Abu Dhabi,Sharjah")

	v.SetDefault("MAIL_PROVIDER", MailProviderAuto)
	v.SetDefault("MAIL_FROM_NAME", "DentClinicAI")
	v.SetDefault("SES_REGION", "us-east-1")

	v.SetDefault("OUTBOX_DIR", "./var/maildev.outbox")
	v.SetDefault("OUTBOX_S3_PREFIX", "outbox/")

	v.SetDefault("AUDIT_DIR", "./var")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("RATE_LIMIT_PER_MINUTE", 60)
	v.SetDefault("RATE_LIMIT_ALLOWLIST", "127.0.0.1")

	v.SetDefault("O11Y_BE_SERVICE_NAME", "dentclinicai-api")
	v.SetDefault("O11Y_BE_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "dentclinicai-api")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,goroutines")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("PORT"),
			Host:         v.GetString("HOST"),
			GinMode:      v.GetString("GIN_MODE"),
			AppEnv:       v.GetString("APP_ENV"),
			PublicDir:    v.GetString("PUBLIC_DIR"),
			MaxBodyBytes: v.GetInt64("MAX_BODY_BYTES"),
		},
		Site: SiteConfig{
			Origin:       strings.TrimRight(v.GetString("SITE_ORIGIN"), "/"),
			BookingLink:  v.GetString("BOOKING_LINK"),
			IntakeLink:   v.GetString("INTAKE_LINK"),
			ContactEmail: v.GetString("CONTACT_EMAIL"),
			ContactPhone: v.GetString("CONTACT_PHONE"),
			InstagramURL: v.GetString("INSTAGRAM_URL"),
			CitiesUK:     splitList(v.GetString("CITIES_UK")),
			CitiesUS:     splitList(v.GetString("CITIES_US")),
			CitiesUAE:    splitList(v.GetString("CITIES_UAE")),
		},
		Mail: MailConfig{
			Provider:       strings.ToLower(strings.TrimSpace(v.GetString("MAIL_PROVIDER"))),
			From:           v.GetString("MAIL_FROM"),
			FromName:       v.GetString("MAIL_FROM_NAME"),
			SMTPHost:       v.GetString("SMTP_HOST"),
			SMTPUser:       v.GetString("SMTP_USER"),
			SMTPPass:       v.GetString("SMTP_PASS"),
			SendGridAPIKey: v.GetString("SENDGRID_API_KEY"),
			SESRegion:      v.GetString("SES_REGION"),
		},
		Outbox: OutboxConfig{
			Dir:               v.GetString("OUTBOX_DIR"),
			S3Bucket:          v.GetString("OUTBOX_S3_BUCKET"),
			S3Prefix:          v.GetString("OUTBOX_S3_PREFIX"),
			S3Endpoint:        v.GetString("OUTBOX_S3_ENDPOINT"),
			S3Region:          v.GetString("OUTBOX_S3_REGION"),
			S3AccessKeyID:     v.GetString("OUTBOX_S3_ACCESS_KEY_ID"),
			S3SecretAccessKey: v.GetString("OUTBOX_S3_SECRET_ACCESS_KEY"),
		},
		Webhooks: WebhooksConfig{
			N8NToken:              v.GetString("N8N_TOKEN"),
			CalendlySigningSecret: v.GetString("CALENDLY_SIGNING_SECRET"),
		},
		Audit: AuditConfig{
			Dir: v.GetString("AUDIT_DIR"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
			Allowlist:         splitList(v.GetString("RATE_LIMIT_ALLOWLIST")),
		},
		Observability: ObservabilityConfig{
			ExporterEndpoint: v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:      v.GetString("O11Y_BE_SERVICE_NAME"),
			ServiceVersion:   v.GetString("O11Y_BE_SERVICE_VERSION"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	// SMTP_PORT is optional, so an unset value must stay zero rather than
	// fail parsing
	if raw := strings.TrimSpace(v.GetString("SMTP_PORT")); raw != "" {
		port, err := parsePort(raw)
		if err != nil {
			return nil, err
		}
		cfg.Mail.SMTPPort = port
	}

	if cfg.Mail.From == "" {
		cfg.Mail.From = cfg.Mail.SMTPUser
	}
	if cfg.Mail.From == "" {
		cfg.Mail.From = "noreply@dentclinicai.com"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if configuration values are consistent
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive")
	}

	if u, err := url.Parse(c.Site.Origin); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("SITE_ORIGIN must be an absolute URL")
	}
	if _, err := mail.ParseAddress(c.Site.ContactEmail); err != nil {
		return fmt.Errorf("CONTACT_EMAIL is not a valid email address")
	}

	switch c.Mail.Provider {
	case MailProviderAuto, MailProviderOutbox:
	case MailProviderSMTP:
		if !c.Mail.SMTPConfigured() {
			return fmt.Errorf("SMTP_HOST, SMTP_PORT, SMTP_USER and SMTP_PASS are required when MAIL_PROVIDER=smtp")
		}
	case MailProviderSendGrid:
		if c.Mail.SendGridAPIKey == "" {
			return fmt.Errorf("SENDGRID_API_KEY is required when MAIL_PROVIDER=sendgrid")
		}
	case MailProviderSES:
		if c.Mail.SESRegion == "" {
			return fmt.Errorf("SES_REGION is required when MAIL_PROVIDER=ses")
		}
	default:
		return fmt.Errorf("unsupported MAIL_PROVIDER %q", c.Mail.Provider)
	}

	if c.Outbox.Dir == "" {
		return fmt.Errorf("OUTBOX_DIR is required")
	}
	if c.Audit.Dir == "" {
		return fmt.Errorf("AUDIT_DIR is required")
	}

	if c.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// SMTPConfigured reports whether every SMTP setting is present
func (m MailConfig) SMTPConfigured() bool {
	return m.SMTPHost != "" && m.SMTPPort > 0 && m.SMTPUser != "" && m.SMTPPass != ""
}

// ResolvedProvider returns the transport to use. "auto" picks SMTP when
// fully configured, then SendGrid, and otherwise the outbox.
func (m MailConfig) ResolvedProvider() string {
	if m.Provider != MailProviderAuto && m.Provider != "" {
		return m.Provider
	}
	switch {
	case m.SMTPConfigured():
		return MailProviderSMTP
	case m.SendGridAPIKey != "":
		return MailProviderSendGrid
	default:
		return MailProviderOutbox
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}

func splitList(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

func parsePort(raw string) (int, error) {
	port, err := strconv.Atoi(raw)
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("SMTP_PORT must be a port number, got %q", raw)
	}
	return port, nil
}
