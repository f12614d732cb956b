package asinfo

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/jackc/puddle/v2"
	"github.com/pior/asinfo/info"
)

// NewPuddlePool creates a puddle-based buffer pool.
func NewPuddlePool(constructor func(ctx context.Context) (*info.Buffer, error), maxSize int32) (BufferPool, error) {
	if maxSize <= 0 {
		maxSize = 1
	}

	p := &puddlePool{}

	poolConfig := &puddle.Config[*info.Buffer]{
		Constructor: func(ctx context.Context) (*info.Buffer, error) {
			buf, err := constructor(ctx)
			if err == nil {
				p.createdBuffers.Add(1)
			}
			return buf, err
		},
		Destructor: func(*info.Buffer) {
			p.destroyedBuffers.Add(1)
		},
		MaxSize: maxSize,
	}

	pool, err := puddle.NewPool(poolConfig)
	if err != nil {
		return nil, err
	}
	p.pool = pool
	return p, nil
}

// puddlePool wraps puddle.Pool to implement the BufferPool interface.
type puddlePool struct {
	pool             *puddle.Pool[*info.Buffer]
	createdBuffers   atomic.Int64
	destroyedBuffers atomic.Int64
}

func (p *puddlePool) Acquire(ctx context.Context) (Resource, error) {
	res, err := p.pool.Acquire(ctx)
	if err != nil {
		if errors.Is(err, puddle.ErrClosedPool) {
			return nil, ErrPoolClosed
		}
		return nil, err
	}
	res.Value().Reset()
	return res, nil
}

func (p *puddlePool) Close() {
	p.pool.Close()
}

// Stats returns a snapshot of pool statistics by converting puddle's stats to our format.
func (p *puddlePool) Stats() PoolStats {
	s := p.pool.Stat()

	// Puddle tracks similar metrics with different semantics:
	// EmptyAcquireCount counts acquires that found no idle resource.
	return PoolStats{
		TotalBuffers:      s.TotalResources(),
		IdleBuffers:       s.IdleResources(),
		ActiveBuffers:     s.AcquiredResources(),
		AcquireCount:      uint64(s.AcquireCount()),
		AcquireWaitCount:  uint64(s.EmptyAcquireCount()),
		CreatedBuffers:    uint64(p.createdBuffers.Load()),
		DestroyedBuffers:  uint64(p.destroyedBuffers.Load()),
		AcquireErrors:     uint64(s.CanceledAcquireCount()),
		AcquireWaitTimeNs: uint64(s.EmptyAcquireWaitTime().Nanoseconds()),
	}
}
