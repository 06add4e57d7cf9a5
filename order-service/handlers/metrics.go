package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewMetricsHandler exposes the Prometheus registry, including the metrics
// bridged from OpenTelemetry.
func NewMetricsHandler() http.Handler {
	return promhttp.Handler()
}
