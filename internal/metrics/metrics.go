// ABOUTME: Prometheus collectors for the MySQL MCP server.
// ABOUTME: Tracks build info, per-handler request outcomes, and connection failures.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

var (
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mysql_mcp_build_info",
			Help: "Build information of the MySQL MCP server",
		},
		[]string{"version", "commit", "date"},
	)

	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mysql_mcp_requests_total",
			Help: "MCP tool and resource requests by handler and outcome",
		},
		[]string{"handler", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mysql_mcp_request_duration_seconds",
			Help:    "Time spent serving MCP tool and resource requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler"},
	)

	ConnectionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mysql_mcp_connection_errors_total",
			Help: "Failures to obtain a database connection",
		},
	)
)

// ObserveRequest records one handled request.
func ObserveRequest(handler string, took time.Duration, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	RequestsTotal.WithLabelValues(handler, status).Inc()
	RequestDuration.WithLabelValues(handler).Observe(took.Seconds())
}
