package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claira",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "claira",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "route"},
	)

	// ChatStreamsTotal counts chat replies by outcome: completed, upstream_error, persist_error.
	ChatStreamsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claira",
			Subsystem: "chat",
			Name:      "streams_total",
			Help:      "Chat reply streams by outcome",
		},
		[]string{"outcome"},
	)

	ChatFragmentsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "claira",
			Subsystem: "chat",
			Name:      "fragments_total",
			Help:      "Text fragments forwarded to chat clients",
		},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claira",
			Subsystem: "upload",
			Name:      "files_total",
			Help:      "Uploaded files by detected content type and status",
		},
		[]string{"content_type", "status"},
	)

	UploadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "claira",
			Subsystem: "upload",
			Name:      "stored_bytes_total",
			Help:      "Bytes written to upload storage after optimization",
		},
	)

	PostJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claira",
			Subsystem: "scheduler",
			Name:      "post_jobs_total",
			Help:      "Post publish jobs by stage and outcome",
		},
		[]string{"stage", "outcome"},
	)
)
