package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const metricsNamespace = "nutriportions"

// Registry holds every collector the service exposes on /metrics.
var Registry = prometheus.NewRegistry()

var (
	ItemsLogged = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "daily_items_logged_total",
		Help:      "Daily items written, by source.",
	}, []string{"source"})

	PhotoAnalyses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "photo_analyses_total",
		Help:      "Meal photo analyses, by analyzer and outcome.",
	}, []string{"analyzer", "outcome"})

	PushesSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "pushes_sent_total",
		Help:      "Push notifications published, by outcome.",
	}, []string{"outcome"})

	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		ItemsLogged,
		PhotoAnalyses,
		PushesSent,
		RequestDuration,
	)
}
