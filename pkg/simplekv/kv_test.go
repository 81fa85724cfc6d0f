package simplekv

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKV(t *testing.T) {
	ctx := context.Background()
	kv := New[string, []byte]()

	require.NoError(t, kv.Set(ctx, "forever", []byte("a"), 0))
	require.NoError(t, kv.Set(ctx, "short", []byte("b"), time.Millisecond))
	require.NoError(t, kv.Set(ctx, "long", []byte("c"), time.Hour))
	require.Equal(t, 3, kv.Len())

	time.Sleep(10 * time.Millisecond)

	_, err := kv.Get(ctx, "short")
	require.ErrorIs(t, err, ErrNotExists)

	v, err := kv.Get(ctx, "forever")
	require.NoError(t, err)
	require.Equal(t, []byte("a"), v)

	require.NoError(t, kv.Expire(ctx, "long"))
	require.ErrorIs(t, kv.Expire(ctx, "missing"), ErrNotExists)
	require.NoError(t, kv.Cleanup(ctx))
	require.Equal(t, 1, kv.Len())

	require.NoError(t, kv.Delete(ctx, "forever"))
	require.Equal(t, 0, kv.Len())
}
