package worker

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestPool(t *testing.T) {
	p := New(context.Background(), 4, 100)
	defer p.Close()

	var count atomic.Int32
	for i := 0; i < 50; i++ {
		require.NoError(t, p.Submit("count", func(ctx context.Context) error {
			count.Add(1)
			return nil
		}))
	}
	p.Wait()

	require.Equal(t, int32(50), count.Load())
}

func TestPoolFailedTask(t *testing.T) {
	p := New(context.Background(), 1, 10)
	defer p.Close()

	require.NoError(t, p.Submit("fail", func(ctx context.Context) error { return errors.New("failed") }))
	require.NoError(t, p.Submit("panic", func(ctx context.Context) error { panic("panic") }))

	var done atomic.Bool
	require.NoError(t, p.Submit("after", func(ctx context.Context) error { done.Store(true); return nil }))
	p.Wait()

	require.True(t, done.Load(), "worker survives failed task")
}

func TestQueueFull(t *testing.T) {
	p := New(context.Background(), 1, 1)
	defer p.Close()

	block := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, p.Submit("block", func(ctx context.Context) error {
		close(started)
		<-block
		return nil
	}))
	<-started

	require.NoError(t, p.Submit("queued", func(ctx context.Context) error { return nil }))
	err := p.Submit("overflow", func(ctx context.Context) error { return nil })
	require.ErrorIs(t, err, ErrQueueFull)

	close(block)
	p.Wait()
}

func TestClosed(t *testing.T) {
	p := New(context.Background(), 1, 1)
	p.Close()
	p.Close()

	require.ErrorIs(t, p.Submit("closed", func(ctx context.Context) error { return nil }), ErrClosed)
}
