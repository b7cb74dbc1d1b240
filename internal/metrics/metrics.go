package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline Prometheus metrics.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "origen",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"provider", "model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "origen",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "origen",
			Name:      "embedding_tokens_total",
			Help:      "Total embedding tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	EmbeddingErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "origen",
			Name:      "embedding_errors_total",
			Help:      "Total embedding errors",
		},
		[]string{"provider", "model", "error_type"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "origen",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	MemoryCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "origen",
			Name:      "memory_cache_total",
			Help:      "Semantic answer cache hits, misses, and negative-answer discards",
		},
		[]string{"result"}, // "hit" / "miss" / "negative"
	)

	SafetyTriggersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "origen",
			Name:      "safety_triggers_total",
			Help:      "Safety protocol activations by severity",
		},
		[]string{"severity"},
	)

	AnswerSourceTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "origen",
			Name:      "answer_source_total",
			Help:      "Answers by knowledge source decision",
		},
		[]string{"source"}, // "safety" / "memory" / "context" / "general" / "fallback"
	)

	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "origen",
			Name:      "generation_requests_total",
			Help:      "Total text generation requests",
		},
		[]string{"provider", "model", "status"},
	)
)

var registered bool

// Register registers all pipeline metrics. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(EmbeddingTokensTotal)
	prometheus.MustRegister(EmbeddingErrorsTotal)
	prometheus.MustRegister(EmbeddingCacheTotal)
	prometheus.MustRegister(MemoryCacheTotal)
	prometheus.MustRegister(SafetyTriggersTotal)
	prometheus.MustRegister(AnswerSourceTotal)
	prometheus.MustRegister(GenerationRequestsTotal)
	registered = true
}
