package main

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dentclinicai/dentclinicai-api/config"
	"github.com/dentclinicai/dentclinicai-api/internal/audit"
	"github.com/dentclinicai/dentclinicai-api/internal/content"
	"github.com/dentclinicai/dentclinicai-api/internal/handlers"
	"github.com/dentclinicai/dentclinicai-api/internal/notify"
	"github.com/dentclinicai/dentclinicai-api/internal/services"
	"github.com/dentclinicai/dentclinicai-api/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, webhooks config.WebhooksConfig) *gin.Engine {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		Server:   config.ServerConfig{PublicDir: dir, MaxBodyBytes: 1024},
		Site:     config.SiteConfig{ContactEmail: "hello@dentclinicai.com"},
		Webhooks: webhooks,
	}

	sink := audit.New(dir)
	notifier := notify.NewNotifier(notify.Config{From: "noreply@dentclinicai.com", To: cfg.Site.ContactEmail},
		nil, notify.NewFileOutbox(dir))
	set, err := content.NewSet(cfg.Server.PublicDir, cfg.Site)
	require.NoError(t, err)

	validator := validation.New()
	webhookService := services.NewWebhookService(cfg.Webhooks, sink)

	router := gin.New()
	registerRoutes(router, cfg, routeHandlers{
		health:  handlers.NewHealthHandler(time.Now()),
		content: handlers.NewContentHandler(set),
		contact: handlers.NewContactHandler(services.NewContactService(validator, notifier, sink)),
		roi:     handlers.NewRoiHandler(services.NewRoiService(validator)),
		webhook: handlers.NewWebhookHandler(webhookService),
	}, webhookService)
	return router
}

func post(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	return w
}

func TestRegisterRoutes_WebhooksDisabledWithoutSecrets(t *testing.T) {
	router := newTestRouter(t, config.WebhooksConfig{})

	assert.Equal(t, http.StatusNotFound, post(router, "/api/webhooks/n8n", `{}`).Code)
	assert.Equal(t, http.StatusNotFound, post(router, "/api/webhooks/calendly", `{}`).Code)
}

func TestRegisterRoutes_WebhooksEnabledWithSecrets(t *testing.T) {
	router := newTestRouter(t, config.WebhooksConfig{N8NToken: "t", CalendlySigningSecret: "s"})

	assert.Equal(t, http.StatusUnauthorized, post(router, "/api/webhooks/n8n", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(router, "/api/webhooks/calendly", `{}`).Code)
}

func TestRegisterRoutes_BodyLimitOnWriteRoutes(t *testing.T) {
	router := newTestRouter(t, config.WebhooksConfig{})

	w := post(router, "/api/roi", `{"revenuePerPatient":`+strings.Repeat("1", 2048)+`}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRegisterRoutes_PublicRoutes(t *testing.T) {
	router := newTestRouter(t, config.WebhooksConfig{})

	for _, path := range []string{"/healthz", "/api/answer", "/api/facts", "/api/qa", "/api/dataset", "/api/metrics"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRegisterRoutes_ContentIsCompressed(t *testing.T) {
	router := newTestRouter(t, config.WebhooksConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/dataset", http.NoBody)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, content.DefaultDataset, string(body))
}

func TestNewEmailSender(t *testing.T) {
	sender, err := newEmailSender(context.Background(), config.MailConfig{Provider: config.MailProviderAuto})
	require.NoError(t, err)
	assert.Nil(t, sender)

	sender, err = newEmailSender(context.Background(), config.MailConfig{
		Provider: config.MailProviderAuto, SMTPHost: "smtp.example.com", SMTPPort: 587, SMTPUser: "u", SMTPPass: "p",
	})
	require.NoError(t, err)
	assert.Equal(t, notify.ChannelSMTP, sender.Channel())

	sender, err = newEmailSender(context.Background(), config.MailConfig{Provider: config.MailProviderSendGrid, SendGridAPIKey: "SG.x"})
	require.NoError(t, err)
	assert.Equal(t, notify.ChannelSendGrid, sender.Channel())

	_, err = newEmailSender(context.Background(), config.MailConfig{Provider: config.MailProviderSMTP})
	assert.Error(t, err)
}

func TestNewOutbox_LocalOnly(t *testing.T) {
	outbox, err := newOutbox(context.Background(), config.OutboxConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &notify.FileOutbox{}, outbox)
}
