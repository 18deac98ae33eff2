package observ

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts requests by method, route template and status.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maintcal_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "maintcal_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	HTTPInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "maintcal_http_inflight_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// ScheduleInstalls counts snapshot replacements by source (synth, optimizer, api).
	ScheduleInstalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maintcal_schedule_installs_total",
			Help: "Schedule snapshots installed, by source",
		},
		[]string{"source"},
	)

	// WindowEdits counts edit attempts by outcome.
	WindowEdits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maintcal_window_edits_total",
			Help: "Maintenance window edits, by outcome",
		},
		[]string{"outcome"},
	)

	// BootstrapClones counts records created by tenant bootstrap, by resource.
	BootstrapClones = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maintcal_bootstrap_created_total",
			Help: "Records created by tenant bootstrap, by resource",
		},
		[]string{"resource"},
	)

	// CacheLookups counts window cache lookups by result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maintcal_window_cache_lookups_total",
			Help: "Window cache lookups, by result",
		},
		[]string{"result"},
	)

	// OptimizerRuns counts optimizer runs by outcome.
	OptimizerRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maintcal_optimizer_runs_total",
			Help: "Optimizer runs, by outcome",
		},
		[]string{"outcome"},
	)
)
