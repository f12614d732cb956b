package promexporter

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/pior/asinfo"
	"github.com/pior/asinfo/info"
	"github.com/prometheus/client_golang/prometheus"
)

// NodeMetrics queries every node on scrape and exports the numeric values.
//
// Plain values become asinfo_node_info{server,name}. Values holding
// name=value pairs, like "statistics", become one asinfo_node_stat sample
// per numeric pair. Anything that does not parse as a number is skipped.
type NodeMetrics struct {
	client  *asinfo.Client
	names   []string
	timeout time.Duration
	logger  *slog.Logger

	up   *prometheus.Desc
	info *prometheus.Desc
	stat *prometheus.Desc
}

// NewNodeMetrics creates the node metrics collector for names.
func NewNodeMetrics(client *asinfo.Client, names []string, timeout time.Duration, logger *slog.Logger) *NodeMetrics {
	return &NodeMetrics{
		client:  client,
		names:   names,
		timeout: timeout,
		logger:  logger,

		up:   prometheus.NewDesc("asinfo_node_up", "Whether the last info request to the node succeeded", []string{"server"}, nil),
		info: prometheus.NewDesc("asinfo_node_info", "Numeric info value", []string{"server", "name"}, nil),
		stat: prometheus.NewDesc("asinfo_node_stat", "Numeric pair of a nested info value", []string{"server", "name", "stat"}, nil),
	}
}

// Describe implements prometheus.Collector.
func (m *NodeMetrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- m.up
	ch <- m.info
	ch <- m.stat
}

// Collect implements prometheus.Collector.
func (m *NodeMetrics) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	for _, r := range m.client.Broadcast(ctx, m.names...) {
		if r.Err != nil {
			m.logger.Warn("node scrape failed", "server", r.Addr, "error", r.Err)
			gauge(ch, m.up, 0, r.Addr)
			continue
		}
		gauge(ch, m.up, 1, r.Addr)

		for name, value := range r.Values {
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				gauge(ch, m.info, v, r.Addr, name)
				continue
			}
			seen := make(map[string]bool)
			for stat, pair := range info.Pairs(value) {
				// A repeated label set would fail the whole gather
				if seen[stat] {
					continue
				}
				if v, ok := parseNumber(pair); ok {
					seen[stat] = true
					gauge(ch, m.stat, v, r.Addr, name, stat)
				}
			}
		}
	}
}

// parseNumber accepts floats and the true/false flags nodes report.
func parseNumber(s string) (float64, bool) {
	switch s {
	case "true":
		return 1, true
	case "false":
		return 0, true
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}
