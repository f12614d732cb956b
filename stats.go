package asinfo

import (
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker/v2"
)

// PoolStats contains statistics about a buffer pool.
//
// For Prometheus integration, expose these as:
//   - Gauges: TotalBuffers, IdleBuffers, ActiveBuffers
//   - Counters: AcquireCount, AcquireWaitCount, CreatedBuffers, DestroyedBuffers, AcquireErrors
//   - Histogram: AcquireWaitDuration (use AcquireWaitCount and AcquireWaitTimeNs to calculate)
type PoolStats struct {
	AcquireCount      uint64 // Total acquire attempts
	AcquireWaitCount  uint64 // Acquires that had to wait
	CreatedBuffers    uint64 // Total buffers created
	DestroyedBuffers  uint64 // Total buffers destroyed
	AcquireErrors     uint64 // Failed acquire attempts
	AcquireWaitTimeNs uint64 // Total nanoseconds spent waiting

	TotalBuffers  int32 // Buffers owned by the pool (active + idle)
	IdleBuffers   int32 // Buffers available for reuse
	ActiveBuffers int32 // Buffers currently in use
}

// ClientStats contains statistics about client operations.
//
// For Prometheus integration, expose these as:
//   - Counters: Requests, Errors, ParseErrors, BreakerRejections
//   - Counters: BytesSent, BytesReceived (derive throughput)
//   - Counter: BufferGrowths (a steady increase means InitialBufferSize is too small)
type ClientStats struct {
	Requests          uint64 // Total round-trips attempted
	Errors            uint64 // Round-trips that failed for any reason
	ParseErrors       uint64 // Responses that did not echo the requested name
	BreakerRejections uint64 // Requests refused by an open circuit breaker
	BytesSent         uint64 // Request frame bytes written
	BytesReceived     uint64 // Response payload bytes read
	BufferGrowths     uint64 // Buffer reallocations
}

// NodeStats contains the state of a single node.
type NodeStats struct {
	Addr                 string
	CircuitBreakerState  gobreaker.State
	CircuitBreakerCounts gobreaker.Counts
}

// poolStatsCollector provides internal methods for updating pool stats.
// Not exported - pools update their own stats.
type poolStatsCollector struct {
	acquireCount      atomic.Uint64
	acquireWaitCount  atomic.Uint64
	createdBuffers    atomic.Uint64
	destroyedBuffers  atomic.Uint64
	acquireErrors     atomic.Uint64
	acquireWaitTimeNs atomic.Uint64

	totalBuffers  atomic.Int32
	idleBuffers   atomic.Int32
	activeBuffers atomic.Int32
}

func (c *poolStatsCollector) recordAcquire() {
	c.acquireCount.Add(1)
}

func (c *poolStatsCollector) recordAcquireWait(duration time.Duration) {
	c.acquireWaitCount.Add(1)
	c.acquireWaitTimeNs.Add(uint64(duration.Nanoseconds()))
}

// recordCreate counts a new buffer, handed out straight away.
func (c *poolStatsCollector) recordCreate() {
	c.createdBuffers.Add(1)
	c.totalBuffers.Add(1)
	c.activeBuffers.Add(1)
}

// recordDestroy counts an active buffer that is discarded.
func (c *poolStatsCollector) recordDestroy() {
	c.destroyedBuffers.Add(1)
	c.totalBuffers.Add(-1)
	c.activeBuffers.Add(-1)
}

func (c *poolStatsCollector) recordAcquireError() {
	c.acquireErrors.Add(1)
}

func (c *poolStatsCollector) recordAcquireFromIdle() {
	c.idleBuffers.Add(-1)
	c.activeBuffers.Add(1)
}

func (c *poolStatsCollector) recordRelease() {
	c.idleBuffers.Add(1)
	c.activeBuffers.Add(-1)
}

// recordDropIdle counts an idle buffer dropped when the pool closes.
func (c *poolStatsCollector) recordDropIdle() {
	c.destroyedBuffers.Add(1)
	c.totalBuffers.Add(-1)
	c.idleBuffers.Add(-1)
}

func (c *poolStatsCollector) snapshot() PoolStats {
	return PoolStats{
		AcquireCount:      c.acquireCount.Load(),
		AcquireWaitCount:  c.acquireWaitCount.Load(),
		CreatedBuffers:    c.createdBuffers.Load(),
		DestroyedBuffers:  c.destroyedBuffers.Load(),
		AcquireErrors:     c.acquireErrors.Load(),
		AcquireWaitTimeNs: c.acquireWaitTimeNs.Load(),
		TotalBuffers:      c.totalBuffers.Load(),
		IdleBuffers:       c.idleBuffers.Load(),
		ActiveBuffers:     c.activeBuffers.Load(),
	}
}

// clientStatsCollector provides internal methods for updating client stats.
// Not exported - client updates its own stats.
type clientStatsCollector struct {
	requests          atomic.Uint64
	errors            atomic.Uint64
	parseErrors       atomic.Uint64
	breakerRejections atomic.Uint64
	bytesSent         atomic.Uint64
	bytesReceived     atomic.Uint64
	bufferGrowths     atomic.Uint64
}

func newClientStatsCollector() *clientStatsCollector {
	return &clientStatsCollector{}
}

func (c *clientStatsCollector) recordRequest() {
	c.requests.Add(1)
}

func (c *clientStatsCollector) recordError() {
	c.errors.Add(1)
}

func (c *clientStatsCollector) recordParseError() {
	c.errors.Add(1)
	c.parseErrors.Add(1)
}

func (c *clientStatsCollector) recordBreakerRejection() {
	c.errors.Add(1)
	c.breakerRejections.Add(1)
}

func (c *clientStatsCollector) recordTransfer(sent, received int) {
	c.bytesSent.Add(uint64(sent))
	c.bytesReceived.Add(uint64(received))
}

func (c *clientStatsCollector) recordGrowths(n uint64) {
	if n > 0 {
		c.bufferGrowths.Add(n)
	}
}

func (c *clientStatsCollector) snapshot() ClientStats {
	return ClientStats{
		Requests:          c.requests.Load(),
		Errors:            c.errors.Load(),
		ParseErrors:       c.parseErrors.Load(),
		BreakerRejections: c.breakerRejections.Load(),
		BytesSent:         c.bytesSent.Load(),
		BytesReceived:     c.bytesReceived.Load(),
		BufferGrowths:     c.bufferGrowths.Load(),
	}
}
