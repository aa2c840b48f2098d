package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dentclinicai/dentclinicai-api/config"
	"github.com/dentclinicai/dentclinicai-api/internal/audit"
	"github.com/dentclinicai/dentclinicai-api/internal/content"
	"github.com/dentclinicai/dentclinicai-api/internal/handlers"
	"github.com/dentclinicai/dentclinicai-api/internal/middleware"
	"github.com/dentclinicai/dentclinicai-api/internal/notify"
	"github.com/dentclinicai/dentclinicai-api/internal/services"
	"github.com/dentclinicai/dentclinicai-api/internal/validation"
	"github.com/dentclinicai/dentclinicai-api/pkg/logger"
	"github.com/dentclinicai/dentclinicai-api/pkg/metrics"
	"github.com/dentclinicai/dentclinicai-api/pkg/objectstore"
	"github.com/dentclinicai/dentclinicai-api/pkg/profiling"
	"github.com/dentclinicai/dentclinicai-api/pkg/tracing"
	"go.uber.org/zap"
)

// routeHandlers groups the handlers mounted by registerRoutes
type routeHandlers struct {
	health  *handlers.HealthHandler
	content *handlers.ContentHandler
	contact *handlers.ContactHandler
	roi     *handlers.RoiHandler
	webhook *handlers.WebhookHandler
}

// registerRoutes mounts the gzip-compressed public content routes and the
// body-limited write routes. Webhook routes exist only when their secret is configured.
func registerRoutes(router *gin.Engine, cfg *config.Config, h routeHandlers, webhooks services.WebhookServiceInterface) {
	router.GET("/healthz", h.health.Healthcheck)
	router.Static("/public", cfg.Server.PublicDir)

	api := router.Group("/api")
	api.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	public := api.Group("", gzip.Gzip(gzip.DefaultCompression))
	public.GET("/answer", h.content.Answer)
	public.GET("/facts", h.content.Facts)
	public.GET("/qa", h.content.QA)
	public.GET("/dataset", h.content.Dataset)

	write := api.Group("")
	write.Use(middleware.BodySizeLimitMiddleware(cfg.Server.MaxBodyBytes))
	write.POST("/contact", h.contact.Submit)
	write.POST("/roi", h.roi.Calculate)

	if webhooks.N8NEnabled() {
		write.POST("/webhooks/n8n", h.webhook.N8N)
	} else {
		logger.Warn("n8n webhook disabled: N8N_TOKEN not configured")
	}
	if webhooks.CalendlyEnabled() {
		write.POST("/webhooks/calendly", h.webhook.Calendly)
	} else {
		logger.Warn("Calendly webhook disabled: CALENDLY_SIGNING_SECRET not configured")
	}

	router.NoRoute(handlers.NotFound)
}

// newEmailSender returns the configured mail transport, or nil when
// notifications go to the outbox
func newEmailSender(ctx context.Context, cfg config.MailConfig) (notify.EmailSender, error) {
	switch cfg.ResolvedProvider() {
	case config.MailProviderSMTP:
		// Constructors return nil pointers for incomplete settings; keep
		// them out of the interface
		if sender := notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
		}); sender != nil {
			return sender, nil
		}
		return nil, errors.New("incomplete SMTP settings")
	case config.MailProviderSendGrid:
		if sender := notify.NewSendGridSender(notify.SendGridConfig{APIKey: cfg.SendGridAPIKey}); sender != nil {
			return sender, nil
		}
		return nil, errors.New("SENDGRID_API_KEY is not set")
	case config.MailProviderSES:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.SESRegion))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config for SES: %w", err)
		}
		return notify.NewSESSender(sesv2.NewFromConfig(awsCfg)), nil
	default:
		return nil, nil
	}
}

// newOutbox writes .eml files locally and mirrors them to object storage
// when a bucket is configured
func newOutbox(ctx context.Context, cfg config.OutboxConfig) (notify.Outbox, error) {
	local := notify.NewFileOutbox(cfg.Dir)
	if cfg.S3Bucket == "" {
		return local, nil
	}

	store, err := objectstore.NewStorageClient(ctx, objectstore.Config{
		Bucket:          cfg.S3Bucket,
		Prefix:          cfg.S3Prefix,
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
	})
	if err != nil {
		return nil, err
	}
	return notify.NewMirroredOutbox(local, store), nil
}

func main() {
	started := time.Now()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting DentClinicAI API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceVersion,
		cfg.Server.AppEnv,
		cfg.Observability.ExporterEndpoint,
	)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	stopProfiler, err := profiling.InitProfiler(cfg.Profiling,
		cfg.Observability.ServiceName, cfg.Observability.ServiceVersion, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer stopProfiler()

	// Start infrastructure metrics collection
	metrics.RecordInfrastructureMetrics()

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelInit()

	sender, err := newEmailSender(initCtx, cfg.Mail)
	if err != nil {
		logger.Fatal("Failed to initialize mail transport", zap.Error(err))
	}
	outbox, err := newOutbox(initCtx, cfg.Outbox)
	if err != nil {
		logger.Fatal("Failed to initialize outbox", zap.Error(err))
	}

	sink := audit.New(cfg.Audit.Dir)
	notifier := notify.NewNotifier(notify.Config{
		From:     cfg.Mail.From,
		FromName: cfg.Mail.FromName,
		To:       cfg.Site.ContactEmail,
	}, sender, outbox)
	logger.Info("Contact notifications configured", zap.String("channel", notifier.Channel()))

	contentSet, err := content.NewSet(cfg.Server.PublicDir, cfg.Site)
	if err != nil {
		logger.Fatal("Failed to initialize content", zap.Error(err))
	}

	// Initialize services
	validator := validation.New()
	contactService := services.NewContactService(validator, notifier, sink)
	roiService := services.NewRoiService(validator)
	webhookService := services.NewWebhookService(cfg.Webhooks, sink)

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(middleware.Stack(middleware.StackConfig{
		ServiceName:       cfg.Observability.ServiceName,
		SiteOrigin:        cfg.Site.Origin,
		AllowLocalhost:    cfg.IsDevelopment(),
		HSTS:              cfg.IsProduction(),
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		RateLimitAllow:    cfg.RateLimit.Allowlist,
	}, sink)...)

	registerRoutes(router, cfg, routeHandlers{
		health:  handlers.NewHealthHandler(started),
		content: handlers.NewContentHandler(contentSet),
		contact: handlers.NewContactHandler(contactService),
		roi:     handlers.NewRoiHandler(roiService),
		webhook: handlers.NewWebhookHandler(webhookService),
	}, webhookService)

	srv := &http.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
