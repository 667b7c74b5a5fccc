package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "path"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests in flight",
		},
	)

	// Bot metrics
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_signals_total",
			Help: "Total number of processed trading signals",
		},
		[]string{"action", "result"},
	)
	OpenPositions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_open_positions",
			Help: "Number of bots with an open position",
		},
	)
	BotsConfigured = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bots_configured",
			Help: "Number of configured bots",
		},
	)
	DriftTicksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "price_drift_ticks_total",
			Help: "Total number of price drift ticks applied",
		},
	)
)

func InitMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestsInFlight)

	prometheus.MustRegister(SignalsTotal)
	prometheus.MustRegister(OpenPositions)
	prometheus.MustRegister(BotsConfigured)
	prometheus.MustRegister(DriftTicksTotal)

	// Standard Go runtime metrics
	prometheus.MustRegister(prometheus.NewGoCollector())
	prometheus.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
}
