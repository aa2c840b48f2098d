package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Registry holds every application collector and backs /api/metrics
	Registry = prometheus.NewRegistry()

	factory = promauto.With(Registry)

	// Custom histogram buckets for API response times. The slow end covers
	// SMTP and SES round trips.
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13}

	// HTTP Metrics
	HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	RateLimited = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "http_server_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	// Notification Metrics
	NotificationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notification_send_duration_seconds",
			Help:    "Contact notification delivery duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"channel", "status"},
	)

	NotificationTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_send_total",
			Help: "Total number of contact notifications by channel",
		},
		[]string{"channel", "status"},
	)

	// Audit sink Metrics
	AuditWrites = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_sink_writes_total",
			Help: "Total number of audit sink appends",
		},
		[]string{"sink", "status"},
	)

	// Storage Client Metrics (outbox mirror)
	ObjectStoreRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_client_operation_duration_seconds",
			Help:    "Storage client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	ObjectStoreRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_client_operation_total",
			Help: "Total number of storage client operations",
		},
		[]string{"operation", "status"},
	)

	// Business Metrics
	ContactFormSubmissions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dentclinicai_contact_form_submissions_total",
			Help: "Total number of contact form submissions",
		},
		[]string{"status"},
	)

	WebhookDeliveries = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dentclinicai_webhook_deliveries_total",
			Help: "Total number of inbound webhook deliveries",
		},
		[]string{"source", "status"},
	)

	ROICalculations = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dentclinicai_roi_calculations_total",
			Help: "Total number of ROI calculator requests",
		},
		[]string{"status"},
	)

	ContentServed = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dentclinicai_content_served_total",
			Help: "Total number of content responses by source",
		},
		[]string{"content", "source"},
	)

	// Infrastructure Metrics
	GoRoutines = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

// RecordInfrastructureMetrics collects infrastructure metrics periodically
func RecordInfrastructureMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		for range ticker.C {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			GoRoutines.Set(float64(runtime.NumGoroutine()))
			HeapAlloc.Set(float64(m.HeapAlloc))
		}
	}()
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
