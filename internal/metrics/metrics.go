// Package metrics defines and registers all custom Prometheus metrics for the
// recognition API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default registry on package init through
// promauto; HTTP request metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "partlens"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "invalid"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Feedback metrics ──────────────────────────────────────────────────────────

// FeedbackSubmittedTotal counts feedback records accepted for review.
var FeedbackSubmittedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feedback_submitted_total",
		Help:      "Total number of feedback records submitted.",
	},
)

// FeedbackReviewsTotal counts review decisions.
// Label:
//   - outcome: "approved", "rejected" or "invalid_transition"
var FeedbackReviewsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feedback_reviews_total",
		Help:      "Total number of feedback review attempts, by outcome.",
	},
	[]string{"outcome"},
)

// ── Upstream metrics ──────────────────────────────────────────────────────────

// UpstreamRequestsTotal counts calls to the classification service.
// Labels:
//   - endpoint: upstream path (e.g. "/search-similar")
//   - outcome: "ok", "rejected", "http_error", "transport_error" or "malformed"
var UpstreamRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Total number of requests sent to the classification service.",
	},
	[]string{"endpoint", "outcome"},
)

// UpstreamRequestDuration measures classification service round trips.
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of requests to the classification service.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20, 30},
	},
	[]string{"endpoint"},
)

// ── Catalog metrics ───────────────────────────────────────────────────────────

// CodesCacheTotal counts codes cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var CodesCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "codes_cache_total",
		Help:      "Total number of SKU codes cache lookups, by result.",
	},
	[]string{"result"},
)

// SearchResultsCount observes how many matches a search returned.
var SearchResultsCount = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_results",
		Help:      "Number of matches returned per similarity search.",
		Buckets:   []float64{0, 1, 2, 3, 5, 10},
	},
)
