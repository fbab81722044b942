package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doodle_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "doodle_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	messagesPosted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "doodle_messages_posted_total",
			Help: "Total messages posted",
		},
	)

	pagesServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doodle_pages_served_total",
			Help: "Message pages served, by cursor kind",
		},
		[]string{"cursor"}, // "none", "before" or "after"
	)
)
