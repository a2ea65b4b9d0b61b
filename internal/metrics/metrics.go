package metrics

import (
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claims_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "claims_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	claimsSubmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claims_submitted_total",
			Help: "Claims accepted at submission, by initial status",
		},
		[]string{"status"},
	)

	claimTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claim_transitions_total",
			Help: "Review transitions applied to claims",
		},
		[]string{"action"},
	)

	claimsRejectedAtSubmissionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claims_submission_failures_total",
			Help: "Submissions refused, by reason",
		},
		[]string{"reason"},
	)

	documentCleanupFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "document_cleanup_failures_total",
			Help: "Stored documents that could not be deleted",
		},
	)

	dbConnectionsAcquired = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "database_connections_acquired",
		Help: "Connections currently in use",
	})
	dbConnectionsIdle = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "database_connections_idle",
		Help: "Idle connections in the pool",
	})
	dbConnectionsMax = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "database_connections_max",
		Help: "Maximum size of the pool",
	})
)

func init() {
	prometheus.MustRegister(
		apiRequestsTotal,
		apiRequestDuration,
		claimsSubmittedTotal,
		claimTransitionsTotal,
		claimsRejectedAtSubmissionTotal,
		documentCleanupFailuresTotal,
		dbConnectionsAcquired,
		dbConnectionsIdle,
		dbConnectionsMax,
	)
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAPIRequest records one served request.
func RecordAPIRequest(method, path string, status int, seconds float64) {
	apiRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	apiRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

// RecordClaimSubmitted counts an accepted submission.
func RecordClaimSubmitted(status string) {
	claimsSubmittedTotal.WithLabelValues(status).Inc()
}

// RecordSubmissionFailure counts a refused submission.
func RecordSubmissionFailure(reason string) {
	claimsRejectedAtSubmissionTotal.WithLabelValues(reason).Inc()
}

// RecordTransition counts an approve or reject.
func RecordTransition(action string) {
	claimTransitionsTotal.WithLabelValues(action).Inc()
}

// RecordDocumentCleanupFailure counts an orphaned stored object.
func RecordDocumentCleanupFailure() {
	documentCleanupFailuresTotal.Inc()
}

// UpdatePoolStats copies pgxpool statistics into gauges.
func UpdatePoolStats(pool *pgxpool.Pool) {
	if pool == nil {
		return
	}
	stat := pool.Stat()
	dbConnectionsAcquired.Set(float64(stat.AcquiredConns()))
	dbConnectionsIdle.Set(float64(stat.IdleConns()))
	dbConnectionsMax.Set(float64(stat.MaxConns()))
}
