package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "torrenter",
		Name:      "commands_total",
		Help:      "Total commands processed by the coordinator, by command.",
	}, []string{"command"})

	RefreshesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "torrenter",
		Name:      "refreshes_total",
		Help:      "Total refresh requests, by whether they were executed or throttled.",
	}, []string{"kind"})

	RefreshDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "torrenter",
		Name:      "refresh_duration_seconds",
		Help:      "Duration of a full engine refresh cycle in seconds.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})

	FailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "torrenter",
		Name:      "failures_total",
		Help:      "Total failed commands, by operation.",
	}, []string{"op"})

	Torrents = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "torrenter",
		Name:      "torrents",
		Help:      "Number of torrents tracked by the engine at the last refresh.",
	})

	QueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "torrenter",
		Name:      "queue_depth",
		Help:      "Number of commands waiting in the command bus.",
	})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		CommandsTotal,
		RefreshesTotal,
		RefreshDuration,
		FailuresTotal,
		Torrents,
		QueueDepth,
	)
}
