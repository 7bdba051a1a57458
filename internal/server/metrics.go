package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// requestsTotal counts HTTP requests by route and status code
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "arrestflow",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests by route and status",
	}, []string{"route", "status"})

	// renderDuration measures graph rendering time by output format
	renderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "arrestflow",
		Subsystem: "render",
		Name:      "duration_seconds",
		Help:      "Graph render latency in seconds, cache hits included",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"format"})

	// interactionsTotal counts form and node clicks by fact field
	interactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "arrestflow",
		Subsystem: "facts",
		Name:      "interactions_total",
		Help:      "Total fact interactions by field",
	}, []string{"field"})

	rateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "arrestflow",
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the per-client rate limit",
	})

	// ruleReloads counts rules file reloads. Labels: result (ok, error)
	ruleReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "arrestflow",
		Subsystem: "rules",
		Name:      "reloads_total",
		Help:      "Rules file reloads by result",
	}, []string{"result"})
)
