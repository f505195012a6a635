package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymhub_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gymhub_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymhub_bookings_total",
			Help: "Total number of bookings by resulting status and payment path",
		},
		[]string{"status", "path"},
	)

	BookingCancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymhub_booking_cancellations_total",
			Help: "Total number of booking cancellations",
		},
	)

	SlotFullRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymhub_slot_full_rejections_total",
			Help: "Reservations rejected because the slot had no spot left",
		},
	)

	PaymentCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymhub_payment_calls_total",
			Help: "Payment gateway calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	RefundsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymhub_refunds_total",
			Help: "Refunds issued by reason",
		},
		[]string{"reason"},
	)

	ClassEnrollmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymhub_class_enrollments_total",
			Help: "Class enroll/unenroll attempts by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymhub_notifications_total",
			Help: "Notification jobs processed by kind and status",
		},
		[]string{"kind", "status"},
	)

	NotificationQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gymhub_notification_queue_length",
			Help: "Current length of the notification queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBooking(status, path string) {
	BookingsTotal.WithLabelValues(status, path).Inc()
}

func RecordBookingCancellation() {
	BookingCancellationsTotal.Inc()
}

func RecordSlotFull() {
	SlotFullRejectionsTotal.Inc()
}

func RecordPaymentCall(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	PaymentCallsTotal.WithLabelValues(operation, outcome).Inc()
}

func RecordRefund(reason string) {
	RefundsTotal.WithLabelValues(reason).Inc()
}

func RecordEnrollment(action, outcome string) {
	ClassEnrollmentsTotal.WithLabelValues(action, outcome).Inc()
}

func RecordNotification(kind, status string) {
	NotificationsTotal.WithLabelValues(kind, status).Inc()
}
