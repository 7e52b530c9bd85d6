// Package metrics defines Prometheus metrics for the back-office.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backoffice_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_errors_total",
			Help: "Total error responses by code",
		},
		[]string{"type"},
	)

	// TransitionsTotal counts lifecycle actions by outcome
	// (applied, denied, conflict, error).
	TransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_transitions_total",
			Help: "Property lifecycle transitions by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	PolicyDenials = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_policy_denials_total",
			Help: "Approval policy denials by code",
		},
		[]string{"code"},
	)

	BookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "backoffice_booking_conflicts_total",
			Help: "Booking attempts rejected because an active booking exists",
		},
	)

	BookingsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "backoffice_bookings_expired_total",
			Help: "Bookings moved to EXPIRED by the sweeper",
		},
	)

	NotifyQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "backoffice_notify_queue_depth",
			Help: "Current notification queue depth",
		},
	)

	NotificationsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "backoffice_notifications_dropped_total",
			Help: "Notifications dropped because the queue was full",
		},
	)

	NotificationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_notification_failures_total",
			Help: "Notification dispatch failures by sink",
		},
		[]string{"sink"},
	)

	BridgeReconnects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "backoffice_notify_bridge_reconnects_total",
			Help: "LISTEN bridge reconnect attempts",
		},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "backoffice_websocket_connections",
			Help: "Active WebSocket connections",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		TransitionsTotal, PolicyDenials,
		BookingConflicts, BookingsExpired,
		NotifyQueueDepth, NotificationsDropped, NotificationFailures,
		BridgeReconnects, WSConnections,
	)
}
