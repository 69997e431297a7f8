package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	reportWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "surveillance",
		Subsystem: "reports",
		Name:      "writes_total",
		Help:      "Successful report writes by record kind and operation.",
	}, []string{"kind", "op"})
	reportRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "surveillance",
		Subsystem: "reports",
		Name:      "validation_rejections_total",
		Help:      "Report writes rejected by validation, by record kind.",
	}, []string{"kind"})
	loginAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "surveillance",
		Subsystem: "auth",
		Name:      "login_attempts_total",
		Help:      "Login attempts by result (success, invalid, error).",
	}, []string{"result"})
	eventSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "surveillance",
		Subsystem: "events",
		Name:      "subscribers",
		Help:      "Websocket clients currently subscribed to report events.",
	})
)

func init() {
	prometheus.MustRegister(reportWrites, reportRejections, loginAttempts, eventSubscribers)
}

// RecordReportWrite counts a successful create, update or delete.
func RecordReportWrite(kind, op string) {
	reportWrites.WithLabelValues(kind, op).Inc()
}

// RecordValidationRejection counts a write refused with a validation error.
func RecordValidationRejection(kind string) {
	reportRejections.WithLabelValues(kind).Inc()
}

// RecordLogin counts a login attempt outcome.
func RecordLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

// SetEventSubscribers reports the number of connected event clients.
func SetEventSubscribers(n int) {
	eventSubscribers.Set(float64(n))
}
