package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayeredGetBackfillsL1(t *testing.T) {
	ctx := context.Background()
	l1 := NewSimpleAdapter(New(time.Minute))
	l2 := NewSimpleAdapter(New(time.Minute))
	lc := NewLayered(l1, l2)

	require.NoError(t, l2.SetEX(ctx, "k", "v", time.Minute))

	v, err := lc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	// second read must come from L1
	v, err = l1.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	m := lc.SnapshotMetrics()
	assert.Equal(t, uint64(1), m.HitsL2)
	assert.Equal(t, uint64(1), m.BackfillL1)
}

func TestLayeredSetAndDelHitBothLayers(t *testing.T) {
	ctx := context.Background()
	l1 := NewSimpleAdapter(New(time.Minute))
	l2 := NewSimpleAdapter(New(time.Minute))
	lc := NewLayered(l1, l2)

	require.NoError(t, lc.SetEX(ctx, "k", "v", time.Minute))
	for _, layer := range []Cache{l1, l2} {
		v, err := layer.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v", v)
	}

	require.NoError(t, lc.Del(ctx, "k"))
	for _, layer := range []Cache{l1, l2} {
		v, err := layer.Get(ctx, "k")
		require.NoError(t, err)
		assert.Empty(t, v)
	}
}

func TestLayeredMetricsHitRate(t *testing.T) {
	ctx := context.Background()
	lc := NewLayered(NewSimpleAdapter(New(time.Minute)), nil)
	_ = lc.SetEX(ctx, "k", "v", time.Minute)
	_, _ = lc.Get(ctx, "k")
	_, _ = lc.Get(ctx, "absent")

	m := lc.SnapshotMetrics()
	assert.Equal(t, uint64(1), m.HitsL1)
	assert.Equal(t, uint64(1), m.Miss)
	assert.InDelta(t, 0.5, m.HitRate, 0.001)

	lc.ResetMetrics()
	assert.Zero(t, lc.SnapshotMetrics().ReqTotal)
}

func TestNilSentinel(t *testing.T) {
	assert.True(t, IsNilSentinel(WrapNil(true)))
	assert.False(t, IsNilSentinel("v"))
	assert.Empty(t, WrapNil(false))
}

func TestJitterTTLBounds(t *testing.T) {
	base := 10 * time.Second
	for i := 0; i < 100; i++ {
		d := JitterTTL(base)
		assert.GreaterOrEqual(t, d, base)
		assert.LessOrEqual(t, d, base+base/10)
	}
}

func TestSimpleCacheTTLExpiry(t *testing.T) {
	c := New(time.Minute)
	c.SetWithTTL("k", "v", 10*time.Millisecond)
	_, ok := c.Get("k")
	assert.True(t, ok)
	time.Sleep(20 * time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
}
