package promexporter

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/pior/asinfo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter manages Prometheus metrics export
type Exporter struct {
	registry *prometheus.Registry
}

// NewExporter creates an exporter for client. Each scrape requests names
// from every node.
func NewExporter(client *asinfo.Client, names []string, timeout time.Duration, logger *slog.Logger) *Exporter {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		NewClientMetrics(client),
		NewNodeMetrics(client, names, timeout, logger),
	)
	return &Exporter{registry: registry}
}

// Handler returns an HTTP handler for the /metrics endpoint
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
