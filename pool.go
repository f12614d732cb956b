package asinfo

import (
	"context"
	"errors"

	"github.com/pior/asinfo/info"
)

// ErrPoolClosed is returned by Acquire once the pool has been closed.
var ErrPoolClosed = errors.New("asinfo: buffer pool closed")

// Resource is a buffer checked out of a BufferPool.
// Exactly one of Release or Destroy must be called when done.
type Resource interface {
	// Value returns the buffer. It must not be used after Release or Destroy.
	Value() *info.Buffer

	// Release returns the buffer to the pool. Its grown capacity is kept.
	Release()

	// Destroy drops the buffer instead of returning it to the pool.
	Destroy()
}

// BufferPool hands out round-trip buffers so that request and response
// frames reuse memory across calls. A buffer is never given to two callers
// at once.
type BufferPool interface {
	// Acquire returns an idle buffer, creates one when under the size limit,
	// or waits for a release until ctx is done.
	Acquire(ctx context.Context) (Resource, error)

	// Close drops idle buffers. Buffers still in use are dropped on release.
	Close()

	// Stats returns a snapshot of pool statistics.
	Stats() PoolStats
}

// BufferPoolFactory builds a BufferPool on top of a buffer constructor.
// NewChannelPool and NewPuddlePool are the two implementations.
type BufferPoolFactory func(constructor func(ctx context.Context) (*info.Buffer, error), maxSize int32) (BufferPool, error)

// withBuffer acquires a buffer, runs fn and gives the buffer back.
// A buffer that grew during a failed call is destroyed, so that a peer
// announcing a huge frame and then hanging up cannot pin that allocation
// in the pool.
func withBuffer(ctx context.Context, pool BufferPool, fn func(buf *info.Buffer) error) error {
	res, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}

	buf := res.Value()
	grows := buf.Grows()

	err = fn(buf)
	if err != nil && errors.Is(err, info.ErrRequestFailed) && buf.Grows() > grows {
		res.Destroy()
	} else {
		res.Release()
	}
	return err
}
