package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hamiot_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hamiot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Transfer metrics
	TransfersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hamiot_transfers_total",
			Help: "Transfer requests by terminal state",
		},
		[]string{"state"}, // Completed, RejectedValidation, RejectedSubmission
	)

	ValidationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hamiot_transfer_validation_failures_total",
			Help: "Rejected transfer transactions by reason",
		},
		[]string{"reason"},
	)

	TransferProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hamiot_transfer_processing_duration_seconds",
			Help:    "Time from request to caller-facing result",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	// Ledger metrics
	LedgerCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hamiot_ledger_calls_total",
			Help: "Calls to the ledger gateway by method and gRPC code",
		},
		[]string{"method", "code"},
	)

	LedgerCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hamiot_ledger_call_duration_seconds",
			Help:    "Ledger gateway call latency",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
		[]string{"method"},
	)

	// Attribute lookups
	AttributeLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hamiot_attribute_lookups_total",
			Help: "Account attribute lookups by key and result",
		},
		[]string{"key", "result"}, // hit, absent
	)

	// Notification metrics
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hamiot_notifications_total",
			Help: "Push notifications by type and outcome",
		},
		[]string{"type", "status"}, // sent, failed, skipped
	)

	BackgroundTasksInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hamiot_background_tasks_in_flight",
			Help: "Post-submission tasks still running",
		},
	)

	// Account metrics
	AccountsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hamiot_accounts_created_total",
			Help: "Account creation attempts by outcome",
		},
		[]string{"status"},
	)
)
