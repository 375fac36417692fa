package core

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	callCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chainsim",
			Name:      "calls_total",
			Help:      "Synthesized calls and simulator events by name.",
		},
		[]string{"name"},
	)

	handleDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chainsim",
			Name:      "handle_duration_ms",
			Help:      "Time spent producing a reply, in milliseconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 50},
		},
		[]string{"variant"},
	)
)

func init() {
	prometheus.MustRegister(callCounter, handleDuration)
}

// Count increments the counter for a method name or an event such as
// "passthrough", "preflight" or "malformed".
func Count(name string) {
	callCounter.WithLabelValues(name).Inc()
}

func Time(variant string, ms float64) {
	handleDuration.WithLabelValues(variant).Observe(ms)
}
