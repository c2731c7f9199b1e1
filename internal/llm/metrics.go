package llm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptsmith_provider_requests_total",
			Help: "Total number of completion requests sent to providers.",
		},
		[]string{"provider", "status"},
	)
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "promptsmith_provider_request_duration_seconds",
			Help:    "Histogram of provider completion request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)
)
