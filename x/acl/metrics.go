package acl

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	decisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchgate",
			Name:      "decisions_total",
			Help:      "Access control decisions by outcome and matched block.",
		},
		[]string{"outcome", "block"},
	)

	blocksLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "searchgate",
			Name:      "blocks_loaded",
			Help:      "Number of access control blocks currently loaded.",
		},
	)
)
