package imagegen

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	webhookRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixelpress_webhook_requests_total",
			Help: "Image webhook calls by template and outcome.",
		},
		[]string{"template", "outcome"},
	)

	webhookDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pixelpress_webhook_duration_seconds",
			Help:    "Latency of image webhook calls.",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 45, 60, 90},
		},
		[]string{"template"},
	)
)
