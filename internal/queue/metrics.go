package queue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixelpress_queue_runs_total",
			Help: "Bulk runs by template and how they ended.",
		},
		[]string{"template", "outcome"},
	)

	itemsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixelpress_queue_items_processed_total",
			Help: "Bulk items processed by template and terminal status.",
		},
		[]string{"template", "status"},
	)

	activeRuns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pixelpress_queue_active_runs",
		Help: "Bulk runs currently processing.",
	})
)
