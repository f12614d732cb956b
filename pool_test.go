package asinfo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pior/asinfo/info"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferConstructor(size int) func(ctx context.Context) (*info.Buffer, error) {
	return func(ctx context.Context) (*info.Buffer, error) {
		return info.NewBuffer(size), nil
	}
}

var poolFactories = map[string]BufferPoolFactory{
	"channel": NewChannelPool,
	"puddle":  NewPuddlePool,
}

func TestBufferPool_ReusesBuffers(t *testing.T) {
	for name, factory := range poolFactories {
		t.Run(name, func(t *testing.T) {
			pool, err := factory(newBufferConstructor(16), 2)
			require.NoError(t, err)
			defer pool.Close()

			res, err := pool.Acquire(context.Background())
			require.NoError(t, err)
			buf := res.Value()
			buf.EnsureCapacity(1024)
			res.Release()

			res, err = pool.Acquire(context.Background())
			require.NoError(t, err)
			require.Same(t, buf, res.Value())
			assert.Equal(t, 1024, res.Value().Cap(), "released buffers keep their capacity")
			assert.Equal(t, 0, res.Value().Len(), "released buffers are reset")
			res.Release()

			stats := pool.Stats()
			assert.Equal(t, uint64(1), stats.CreatedBuffers)
			assert.Equal(t, uint64(2), stats.AcquireCount)
		})
	}
}

func TestBufferPool_Exclusive(t *testing.T) {
	for name, factory := range poolFactories {
		t.Run(name, func(t *testing.T) {
			pool, err := factory(newBufferConstructor(16), 2)
			require.NoError(t, err)
			defer pool.Close()

			a, err := pool.Acquire(context.Background())
			require.NoError(t, err)
			b, err := pool.Acquire(context.Background())
			require.NoError(t, err)
			require.NotSame(t, a.Value(), b.Value(), "a buffer was handed out twice")

			a.Release()
			b.Release()
		})
	}
}

func TestBufferPool_WaitsWhenFull(t *testing.T) {
	for name, factory := range poolFactories {
		t.Run(name, func(t *testing.T) {
			pool, err := factory(newBufferConstructor(16), 1)
			require.NoError(t, err)
			defer pool.Close()

			held, err := pool.Acquire(context.Background())
			require.NoError(t, err)

			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			_, err = pool.Acquire(ctx)
			require.ErrorIs(t, err, context.DeadlineExceeded)

			time.AfterFunc(20*time.Millisecond, held.Release)
			res, err := pool.Acquire(context.Background())
			require.NoError(t, err)
			require.Same(t, held.Value(), res.Value())
			res.Release()
		})
	}
}

func TestBufferPool_Destroy(t *testing.T) {
	for name, factory := range poolFactories {
		t.Run(name, func(t *testing.T) {
			pool, err := factory(newBufferConstructor(16), 1)
			require.NoError(t, err)
			defer pool.Close()

			res, err := pool.Acquire(context.Background())
			require.NoError(t, err)
			first := res.Value()
			res.Destroy()

			res, err = pool.Acquire(context.Background())
			require.NoError(t, err)
			require.NotSame(t, first, res.Value(), "destroyed buffer came back")
			res.Release()

			stats := pool.Stats()
			assert.Equal(t, uint64(2), stats.CreatedBuffers)
			assert.Equal(t, uint64(1), stats.DestroyedBuffers)
		})
	}
}

func TestBufferPool_Closed(t *testing.T) {
	for name, factory := range poolFactories {
		t.Run(name, func(t *testing.T) {
			pool, err := factory(newBufferConstructor(16), 1)
			require.NoError(t, err)

			pool.Close()

			_, err = pool.Acquire(context.Background())
			require.ErrorIs(t, err, ErrPoolClosed)
		})
	}
}

func TestBufferPool_ConstructorError(t *testing.T) {
	failing := errors.New("no memory")
	pool, err := NewChannelPool(func(ctx context.Context) (*info.Buffer, error) {
		return nil, failing
	}, 1)
	require.NoError(t, err)
	defer pool.Close()

	_, err = pool.Acquire(context.Background())
	require.ErrorIs(t, err, failing)

	stats := pool.Stats()
	assert.Equal(t, uint64(1), stats.AcquireErrors)
	assert.Equal(t, int32(0), stats.TotalBuffers)
}

func TestChannelPool_Stats(t *testing.T) {
	pool, err := NewChannelPool(newBufferConstructor(16), 5)
	require.NoError(t, err)

	ctx := context.Background()

	stats := pool.Stats()
	assert.Equal(t, int32(0), stats.TotalBuffers)
	assert.Equal(t, uint64(0), stats.AcquireCount)

	res, err := pool.Acquire(ctx)
	require.NoError(t, err)

	stats = pool.Stats()
	assert.Equal(t, int32(1), stats.TotalBuffers)
	assert.Equal(t, int32(1), stats.ActiveBuffers)
	assert.Equal(t, int32(0), stats.IdleBuffers)

	res.Release()

	stats = pool.Stats()
	assert.Equal(t, int32(1), stats.TotalBuffers)
	assert.Equal(t, int32(0), stats.ActiveBuffers)
	assert.Equal(t, int32(1), stats.IdleBuffers)

	held, err := pool.Acquire(ctx)
	require.NoError(t, err)
	pool.Close()
	held.Release()

	stats = pool.Stats()
	assert.Equal(t, int32(0), stats.TotalBuffers)
	assert.Equal(t, int32(0), stats.ActiveBuffers)
	assert.Equal(t, uint64(1), stats.DestroyedBuffers)
}

func TestWithBuffer(t *testing.T) {
	t.Run("release on success", func(t *testing.T) {
		pool, err := NewChannelPool(newBufferConstructor(16), 1)
		require.NoError(t, err)
		defer pool.Close()

		err = withBuffer(context.Background(), pool, func(buf *info.Buffer) error {
			buf.EnsureCapacity(100)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(0), pool.Stats().DestroyedBuffers)
	})

	t.Run("release on failure without growth", func(t *testing.T) {
		pool, err := NewChannelPool(newBufferConstructor(16), 1)
		require.NoError(t, err)
		defer pool.Close()

		err = withBuffer(context.Background(), pool, func(buf *info.Buffer) error {
			return &info.ConnectionError{Op: "dial", Err: errors.New("refused")}
		})
		require.Error(t, err)
		assert.Equal(t, uint64(0), pool.Stats().DestroyedBuffers)
	})

	t.Run("destroy on failure after growth", func(t *testing.T) {
		pool, err := NewChannelPool(newBufferConstructor(16), 1)
		require.NoError(t, err)
		defer pool.Close()

		err = withBuffer(context.Background(), pool, func(buf *info.Buffer) error {
			buf.EnsureCapacity(1 << 20)
			return &info.TruncatedError{Part: "payload", Want: 1 << 20}
		})
		require.Error(t, err)
		assert.Equal(t, uint64(1), pool.Stats().DestroyedBuffers)
	})

	t.Run("parse errors keep the buffer", func(t *testing.T) {
		pool, err := NewChannelPool(newBufferConstructor(16), 1)
		require.NoError(t, err)
		defer pool.Close()

		err = withBuffer(context.Background(), pool, func(buf *info.Buffer) error {
			buf.EnsureCapacity(100)
			return &info.ParseError{Message: "response does not include", Name: "x"}
		})
		require.Error(t, err)
		assert.Equal(t, uint64(0), pool.Stats().DestroyedBuffers)
	})
}
