// Package telemetry exposes peertrack's Prometheus metrics.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Registry = prometheus.NewRegistry()

	TrackedEndpoints = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "peertrack",
			Name:      "tracked_endpoints",
			Help:      "Current number of tracked peer endpoints.",
		},
	)

	EndpointsAdded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "peertrack",
			Name:      "endpoints_added_total",
			Help:      "Total number of endpoint addition notifications.",
		},
	)

	EndpointsRemoved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "peertrack",
			Name:      "endpoints_removed_total",
			Help:      "Total number of endpoint removal notifications.",
		},
	)

	ConnectFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "peertrack",
			Name:      "connect_failures_total",
			Help:      "Total number of reported endpoint connection failures.",
		},
	)

	ReconnectsScheduled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "peertrack",
			Name:      "reconnects_scheduled_total",
			Help:      "Total number of reconnect attempts scheduled after a failure.",
		},
	)

	EndpointsExcluded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "peertrack",
			Name:      "endpoints_excluded_total",
			Help:      "Total number of endpoints permanently excluded after exhausting reconnect attempts.",
		},
	)

	PollCycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "peertrack",
			Name:      "poll_cycles_total",
			Help:      "Total number of reconciliation cycles by outcome.",
		},
		[]string{"status"},
	)

	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "peertrack",
			Name:      "build_info",
			Help:      "Build info (constant 1, labeled by version and git_commit).",
		},
		[]string{"version", "git_commit"},
	)
)

func init() {
	Registry.MustRegister(
		TrackedEndpoints,
		EndpointsAdded,
		EndpointsRemoved,
		ConnectFailures,
		ReconnectsScheduled,
		EndpointsExcluded,
		PollCycles,
		buildInfo,
	)
}

// SetBuildInfo should be called once at startup, e.g. with ldflags-provided
// values.
func SetBuildInfo(version, gitCommit string) {
	buildInfo.WithLabelValues(version, gitCommit).Set(1)
}

// MetricsHandler exposes /metrics. Mount it with
// mux.Handle("/metrics", telemetry.MetricsHandler()).
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
