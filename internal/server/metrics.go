package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "triage",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests by route and status code",
	}, []string{"route", "code"})

	inferenceLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "triage",
		Subsystem: "engine",
		Name:      "inference_latency_seconds",
		Help:      "Inference latency by operation",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"operation"})

	lowConfidenceTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "triage",
		Subsystem: "engine",
		Name:      "low_confidence_total",
		Help:      "Requests answered with retrieval similarity 0 (fallback answer)",
	})
)
