package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestCounter counts HTTP requests by status code, method, and route
	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventvote_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"status", "method", "path"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventvote_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status", "method", "path"},
	)

	// RequestInProgress counts HTTP requests currently being processed
	RequestInProgress = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "eventvote_http_requests_in_progress",
			Help: "Number of HTTP requests currently being processed",
		},
		[]string{"method"},
	)

	// VotesSubmitted counts accepted votes
	VotesSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventvote_votes_submitted_total",
			Help: "Total number of accepted votes",
		},
	)

	// VoteRejections counts refused submissions by reason
	VoteRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventvote_vote_rejections_total",
			Help: "Total number of rejected vote submissions",
		},
		[]string{"reason"},
	)

	// LiveClients tracks connected WebSocket subscribers
	LiveClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventvote_live_clients",
			Help: "Number of connected live update clients",
		},
	)

	// ChangeEvents counts published store change events by collection
	ChangeEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventvote_change_events_total",
			Help: "Total number of store change events published",
		},
		[]string{"collection"},
	)
)

// RecordRejection increments the rejection counter for reason
func RecordRejection(reason string) {
	if reason == "" {
		reason = "other"
	}
	VoteRejections.WithLabelValues(reason).Inc()
}
