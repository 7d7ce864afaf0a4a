package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "prodassist"

// Retrieval and LLM Prometheus metrics.
var (
	RetrievalRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_requests_total",
			Help:      "Total number of retrieval requests",
		},
		[]string{"strategy", "status"}, // status: success, empty, invalid, upstream_error, failed
	)

	RetrievalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_duration_seconds",
			Help:      "Retrieval duration in seconds, embedding and post-processing included",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"strategy"},
	)

	RetrievalDocuments = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_documents",
			Help:      "Number of documents returned per retrieval",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20, 50},
		},
		[]string{"strategy"},
	)

	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of chat completion requests",
		},
		[]string{"model", "status"},
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Chat completion duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"model"},
	)
)

var registerRetrieval sync.Once

// RegisterRetrievalMetrics registers retrieval and LLM metrics. Safe to call more than once.
func RegisterRetrievalMetrics() {
	registerRetrieval.Do(func() {
		prometheus.MustRegister(
			RetrievalRequestsTotal,
			RetrievalDuration,
			RetrievalDocuments,
			LLMRequestsTotal,
			LLMRequestDuration,
		)
	})
}
