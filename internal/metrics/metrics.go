package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service-level Prometheus metrics.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lodestone",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"provider", "model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lodestone",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	ExtractionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lodestone",
			Name:      "extraction_requests_total",
			Help:      "Total number of media-to-text extraction requests",
		},
		[]string{"kind", "status"},
	)

	ImageFitAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lodestone",
			Name:      "image_fit_results_total",
			Help:      "Image fitting outcomes (passthrough, transcoded, too_large)",
		},
		[]string{"result"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lodestone",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	AuditEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lodestone",
			Name:      "audit_events_total",
			Help:      "Audit events dispatched to the sink",
		},
		[]string{"kind", "delivery"}, // delivery: "ok" / "dropped"
	)
)

var serviceMetricsRegistered bool

// RegisterServiceMetrics registers service metrics. Must be called once from main.
func RegisterServiceMetrics() {
	if serviceMetricsRegistered {
		return
	}
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(ExtractionRequestsTotal)
	prometheus.MustRegister(ImageFitAttempts)
	prometheus.MustRegister(EmbeddingCacheTotal)
	prometheus.MustRegister(AuditEventsTotal)
	serviceMetricsRegistered = true
}
