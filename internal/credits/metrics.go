package credits

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var debitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pixelpress_credits_debited_total",
		Help: "Credits debited by category.",
	},
	[]string{"category"},
)
