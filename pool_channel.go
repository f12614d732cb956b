package asinfo

import (
	"context"
	"sync"
	"time"

	"github.com/pior/asinfo/info"
)

// NewChannelPool creates a channel-based buffer pool.
// This is the default pool implementation, optimized for performance.
func NewChannelPool(constructor func(ctx context.Context) (*info.Buffer, error), maxSize int32) (BufferPool, error) {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &channelPool{
		constructor: constructor,
		maxSize:     maxSize,
		resources:   make(chan *channelResource, maxSize),
	}, nil
}

// channelResource implements Resource for channel pool.
type channelResource struct {
	buf  *info.Buffer
	pool *channelPool
}

func (r *channelResource) Value() *info.Buffer {
	return r.buf
}

func (r *channelResource) Release() {
	r.pool.put(r)
}

func (r *channelResource) Destroy() {
	r.pool.removeResource()
}

// channelPool is a simple, allocation-optimized buffer pool using Go channels.
type channelPool struct {
	constructor func(ctx context.Context) (*info.Buffer, error)
	maxSize     int32

	mu        sync.Mutex
	resources chan *channelResource
	size      int32
	closed    bool

	stats poolStatsCollector
}

func (p *channelPool) Acquire(ctx context.Context) (Resource, error) {
	p.stats.recordAcquire()

	// Try to get an idle buffer from the pool first
	select {
	case res, ok := <-p.resources:
		if !ok {
			p.stats.recordAcquireError()
			return nil, ErrPoolClosed
		}
		p.stats.recordAcquireFromIdle()
		return res, nil
	default:
		// No idle buffer, create new one if under limit
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.stats.recordAcquireError()
		return nil, ErrPoolClosed
	}

	if p.size < p.maxSize {
		p.size++
		p.mu.Unlock()

		buf, err := p.constructor(ctx)
		if err != nil {
			p.mu.Lock()
			p.size--
			p.mu.Unlock()
			p.stats.recordAcquireError()
			return nil, err
		}

		p.stats.recordCreate()
		return &channelResource{buf: buf, pool: p}, nil
	}
	p.mu.Unlock()

	// Pool is full, wait for a buffer to be released
	waitStart := time.Now()
	select {
	case res, ok := <-p.resources:
		if !ok {
			p.stats.recordAcquireError()
			return nil, ErrPoolClosed
		}
		p.stats.recordAcquireWait(time.Since(waitStart))
		p.stats.recordAcquireFromIdle()
		return res, nil
	case <-ctx.Done():
		p.stats.recordAcquireError()
		return nil, ctx.Err()
	}
}

func (p *channelPool) put(res *channelResource) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		p.size--
		p.stats.recordDestroy()
		return
	}

	res.buf.Reset()

	select {
	case p.resources <- res:
		p.stats.recordRelease()
	default:
		// Cannot happen while size <= maxSize, drop the buffer
		p.size--
		p.stats.recordDestroy()
	}
}

func (p *channelPool) removeResource() {
	p.mu.Lock()
	p.size--
	p.mu.Unlock()
	p.stats.recordDestroy()
}

func (p *channelPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true

	// Drop all idle buffers
	close(p.resources)
	for range p.resources {
		p.size--
		p.stats.recordDropIdle()
	}
}

// Stats returns a snapshot of pool statistics.
func (p *channelPool) Stats() PoolStats {
	return p.stats.snapshot()
}
