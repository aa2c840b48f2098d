package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected bool
	}{
		{
			name:     "development environment",
			config:   &Config{Server: ServerConfig{AppEnv: "development"}},
			expected: true,
		},
		{
			name:     "debug gin mode",
			config:   &Config{Server: ServerConfig{GinMode: "debug"}},
			expected: true,
		},
		{
			name:     "production environment",
			config:   &Config{Server: ServerConfig{AppEnv: "production"}},
			expected: false,
		},
		{
			name:     "release mode",
			config:   &Config{Server: ServerConfig{GinMode: "release", AppEnv: "production"}},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.IsDevelopment())
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "https://yourdomain.tld", cfg.Site.Origin)
	assert.Equal(t, []string{"London", "Manchester", "Birmingham"}, cfg.Site.CitiesUK)
	assert.Equal(t, []string{"Dubai", "Abu Dhabi", "Sharjah"}, cfg.Site.CitiesUAE)
	assert.Equal(t, "./var", cfg.Audit.Dir)
	assert.Equal(t, "./var/maildev.outbox", cfg.Outbox.Dir)
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, []string{"127.0.0.1"}, cfg.RateLimit.Allowlist)
	assert.Equal(t, "noreply@dentclinicai.com", cfg.Mail.From)
	assert.Equal(t, MailProviderOutbox, cfg.Mail.ResolvedProvider())
	assert.Empty(t, cfg.Webhooks.N8NToken)
	assert.Empty(t, cfg.Webhooks.CalendlySigningSecret)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SITE_ORIGIN", "https://dentclinicai.com/")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "465")
	t.Setenv("SMTP_USER", "mailer@dentclinicai.com")
	t.Setenv("SMTP_PASS", "hunter2")
	t.Setenv("N8N_TOKEN", "n8n-token")
	t.Setenv("CALENDLY_SIGNING_SECRET", "calendly-secret")
	t.Setenv("CITIES_US", " Boston , ,Austin ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://dentclinicai.com", cfg.Site.Origin)
	assert.Equal(t, 465, cfg.Mail.SMTPPort)
	assert.Equal(t, "mailer@dentclinicai.com", cfg.Mail.From)
	assert.Equal(t, MailProviderSMTP, cfg.Mail.ResolvedProvider())
	assert.Equal(t, "n8n-token", cfg.Webhooks.N8NToken)
	assert.Equal(t, "calendly-secret", cfg.Webhooks.CalendlySigningSecret)
	assert.Equal(t, []string{"Boston", "Austin"}, cfg.Site.CitiesUS)
}

func TestLoad_InvalidSMTPPort(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SMTP_PORT", "smtp")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP_PORT")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:    ServerConfig{Port: "3000", MaxBodyBytes: 1024},
			Site:      SiteConfig{Origin: "https://dentclinicai.com", ContactEmail: "team@dentclinicai.com"},
			Mail:      MailConfig{Provider: MailProviderAuto},
			Outbox:    OutboxConfig{Dir: "var/outbox"},
			Audit:     AuditConfig{Dir: "var"},
			RateLimit: RateLimitConfig{RequestsPerMinute: 60},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "relative origin", mutate: func(c *Config) { c.Site.Origin = "dentclinicai.com" }, wantErr: "SITE_ORIGIN"},
		{name: "bad contact email", mutate: func(c *Config) { c.Site.ContactEmail = "nobody" }, wantErr: "CONTACT_EMAIL"},
		{name: "smtp without credentials", mutate: func(c *Config) { c.Mail.Provider = MailProviderSMTP }, wantErr: "MAIL_PROVIDER=smtp"},
		{name: "sendgrid without key", mutate: func(c *Config) { c.Mail.Provider = MailProviderSendGrid }, wantErr: "SENDGRID_API_KEY"},
		{name: "unknown provider", mutate: func(c *Config) { c.Mail.Provider = "pigeon" }, wantErr: "unsupported MAIL_PROVIDER"},
		{name: "no outbox", mutate: func(c *Config) { c.Outbox.Dir = "" }, wantErr: "OUTBOX_DIR"},
		{name: "zero rate limit", mutate: func(c *Config) { c.RateLimit.RequestsPerMinute = 0 }, wantErr: "RATE_LIMIT_PER_MINUTE"},
		{name: "profiling without endpoint", mutate: func(c *Config) { c.Profiling.Enabled = true }, wantErr: "O11Y_PROFILING_ENDPOINT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMailConfig_ResolvedProvider(t *testing.T) {
	smtp := MailConfig{Provider: MailProviderAuto, SMTPHost: "h", SMTPPort: 587, SMTPUser: "u", SMTPPass: "p"}
	assert.Equal(t, MailProviderSMTP, smtp.ResolvedProvider())

	partial := MailConfig{Provider: MailProviderAuto, SMTPHost: "h", SendGridAPIKey: "key"}
	assert.Equal(t, MailProviderSendGrid, partial.ResolvedProvider())

	explicit := MailConfig{Provider: MailProviderSES, SendGridAPIKey: "key"}
	assert.Equal(t, MailProviderSES, explicit.ResolvedProvider())
}
