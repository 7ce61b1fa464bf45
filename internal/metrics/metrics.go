package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roomdesk",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	cartSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roomdesk",
			Name:      "cart_submissions_total",
			Help:      "Submit-all attempts by outcome.",
		},
		[]string{"outcome"},
	)

	precheckRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roomdesk",
			Name:      "precheck_requests_total",
			Help:      "Advisory conflict checks by result.",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, cartSubmissions, precheckRequests)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncSubmission records a submit-all outcome (accepted, partial,
// transport_error, rejected_empty).
func IncSubmission(outcome string) {
	cartSubmissions.WithLabelValues(outcome).Inc()
}

// IncPrecheck records a pre-check result (issued, superseded, failed,
// cleared).
func IncPrecheck(result string) {
	precheckRequests.WithLabelValues(result).Inc()
}
