package promexporter

import (
	"github.com/pior/asinfo"
	"github.com/prometheus/client_golang/prometheus"
)

// ClientMetrics exposes the client, buffer pool and circuit breaker stats.
// Values are read from the client on every scrape.
type ClientMetrics struct {
	client *asinfo.Client

	requests          *prometheus.Desc
	errors            *prometheus.Desc
	parseErrors       *prometheus.Desc
	breakerRejections *prometheus.Desc
	bytes             *prometheus.Desc
	bufferGrowths     *prometheus.Desc

	buffers          *prometheus.Desc
	buffersCreated   *prometheus.Desc
	buffersDestroyed *prometheus.Desc
	acquireWaits     *prometheus.Desc
	acquireWaitTime  *prometheus.Desc

	circuitState    *prometheus.Desc
	circuitRequests *prometheus.Desc
	circuitFailures *prometheus.Desc
}

// NewClientMetrics creates the client metrics collector.
func NewClientMetrics(client *asinfo.Client) *ClientMetrics {
	return &ClientMetrics{
		client: client,

		requests:          prometheus.NewDesc("asinfo_requests_total", "Total number of info round-trips", nil, nil),
		errors:            prometheus.NewDesc("asinfo_errors_total", "Total number of failed info requests", nil, nil),
		parseErrors:       prometheus.NewDesc("asinfo_parse_errors_total", "Responses that did not echo the requested name", nil, nil),
		breakerRejections: prometheus.NewDesc("asinfo_circuit_breaker_rejections_total", "Requests refused by an open circuit breaker", nil, nil),
		bytes:             prometheus.NewDesc("asinfo_bytes_total", "Bytes transferred", []string{"direction"}, nil), // sent, received
		bufferGrowths:     prometheus.NewDesc("asinfo_buffer_growths_total", "Buffer reallocations", nil, nil),

		buffers:          prometheus.NewDesc("asinfo_pool_buffers", "Buffer pool statistics", []string{"state"}, nil), // total, active, idle
		buffersCreated:   prometheus.NewDesc("asinfo_pool_buffers_created_total", "Total buffers created", nil, nil),
		buffersDestroyed: prometheus.NewDesc("asinfo_pool_buffers_destroyed_total", "Total buffers destroyed", nil, nil),
		acquireWaits:     prometheus.NewDesc("asinfo_pool_acquire_waits_total", "Acquires that waited for a free buffer", nil, nil),
		acquireWaitTime:  prometheus.NewDesc("asinfo_pool_acquire_wait_seconds_total", "Time spent waiting for a free buffer", nil, nil),

		circuitState:    prometheus.NewDesc("asinfo_circuit_breaker_state", "Circuit breaker state (0=closed, 1=half-open, 2=open)", []string{"server"}, nil),
		circuitRequests: prometheus.NewDesc("asinfo_circuit_breaker_requests", "Number of requests tracked by circuit breaker", []string{"server"}, nil),
		circuitFailures: prometheus.NewDesc("asinfo_circuit_breaker_failures", "Circuit breaker failure counts", []string{"server", "type"}, nil), // total, consecutive
	}
}

// Describe implements prometheus.Collector.
func (m *ClientMetrics) Describe(ch chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(m, ch)
}

// Collect implements prometheus.Collector.
func (m *ClientMetrics) Collect(ch chan<- prometheus.Metric) {
	stats := m.client.Stats()
	counter(ch, m.requests, stats.Requests)
	counter(ch, m.errors, stats.Errors)
	counter(ch, m.parseErrors, stats.ParseErrors)
	counter(ch, m.breakerRejections, stats.BreakerRejections)
	counter(ch, m.bytes, stats.BytesSent, "sent")
	counter(ch, m.bytes, stats.BytesReceived, "received")
	counter(ch, m.bufferGrowths, stats.BufferGrowths)

	pool := m.client.PoolStats()
	gauge(ch, m.buffers, float64(pool.TotalBuffers), "total")
	gauge(ch, m.buffers, float64(pool.ActiveBuffers), "active")
	gauge(ch, m.buffers, float64(pool.IdleBuffers), "idle")
	counter(ch, m.buffersCreated, pool.CreatedBuffers)
	counter(ch, m.buffersDestroyed, pool.DestroyedBuffers)
	counter(ch, m.acquireWaits, pool.AcquireWaitCount)
	ch <- prometheus.MustNewConstMetric(m.acquireWaitTime, prometheus.CounterValue, float64(pool.AcquireWaitTimeNs)/1e9)

	for _, node := range m.client.NodeStats() {
		counts := node.CircuitBreakerCounts
		gauge(ch, m.circuitState, float64(node.CircuitBreakerState), node.Addr)
		gauge(ch, m.circuitRequests, float64(counts.Requests), node.Addr)
		gauge(ch, m.circuitFailures, float64(counts.TotalFailures), node.Addr, "total")
		gauge(ch, m.circuitFailures, float64(counts.ConsecutiveFailures), node.Addr, "consecutive")
	}
}

func counter(ch chan<- prometheus.Metric, desc *prometheus.Desc, value uint64, labels ...string) {
	ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(value), labels...)
}

func gauge(ch chan<- prometheus.Metric, desc *prometheus.Desc, value float64, labels ...string) {
	ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, value, labels...)
}
