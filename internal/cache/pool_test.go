package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func admit(t *testing.T, p *Pool[string], handle string, number int64) *Block[string] {
	t.Helper()
	b := p.Reserve()
	require.NotNil(t, b, "pool unexpectedly full")
	p.Commit(b, Key[string]{Handle: handle, Number: number})
	return b
}

func keys(p *Pool[string]) []Key[string] {
	var out []Key[string]
	_ = p.Each(func(b *Block[string]) error {
		out = append(out, b.Key)
		return nil
	})
	return out
}

func numbers(p *Pool[string]) []int64 {
	var out []int64
	for _, k := range keys(p) {
		out = append(out, k.Number)
	}
	return out
}

func TestNewPool_InvalidArguments(t *testing.T) {
	_, err := NewPool[string](0, 16)
	assert.Error(t, err)
	_, err = NewPool[string](4, 0)
	assert.Error(t, err)
}

func TestPool_FIFOOrder(t *testing.T) {
	p, err := NewPool[string](3, 4)
	require.NoError(t, err)

	admit(t, p, "a", 0)
	admit(t, p, "a", 1)
	admit(t, p, "a", 2)
	assert.True(t, p.Full())
	assert.Nil(t, p.Reserve())

	// A lookup hit must not reorder.
	_, ok := p.Lookup(Key[string]{Handle: "a", Number: 0})
	require.True(t, ok)

	oldest, ok := p.Oldest()
	require.True(t, ok)
	assert.Equal(t, int64(0), oldest.Key.Number)

	p.RemoveOldest()
	admit(t, p, "a", 3)
	assert.Equal(t, []int64{1, 2, 3}, numbers(p))
	assert.Equal(t, 3, p.Len())
}

func TestPool_BlockSize(t *testing.T) {
	p, err := NewPool[string](2, 8)
	require.NoError(t, err)
	assert.Equal(t, 8, p.BlockSize())
	assert.Len(t, p.Reserve().Data, 8)
}

func TestPool_ReserveZeroesReusedSlot(t *testing.T) {
	p, err := NewPool[string](1, 4)
	require.NoError(t, err)

	b := admit(t, p, "a", 0)
	copy(b.Data, "xxxx")
	b.Dirty = true
	p.RemoveOldest()

	b = p.Reserve()
	require.NotNil(t, b)
	assert.Equal(t, make([]byte, 4), b.Data)
	assert.False(t, b.Dirty)
	assert.False(t, b.resident)
}

func TestPool_ReleaseKeepsPoolConsistent(t *testing.T) {
	p, err := NewPool[string](2, 4)
	require.NoError(t, err)

	admit(t, p, "a", 0)
	b := p.Reserve()
	require.NotNil(t, b)
	assert.True(t, p.Full())

	p.Release(b)
	assert.False(t, p.Full())
	assert.Equal(t, 1, p.Len())
	_, ok := p.Lookup(Key[string]{Handle: "a", Number: 1})
	assert.False(t, ok)
}

func TestPool_RemoveFromMiddle(t *testing.T) {
	p, err := NewPool[string](4, 4)
	require.NoError(t, err)

	for i := int64(0); i < 4; i++ {
		admit(t, p, "a", i)
	}
	// Rotate the ring so it wraps around.
	p.RemoveOldest()
	p.RemoveOldest()
	admit(t, p, "a", 4)
	admit(t, p, "a", 5)
	require.Equal(t, []int64{2, 3, 4, 5}, numbers(p))

	is4 := func(b *Block[string]) bool { return b.Key.Number == 4 }
	assert.Equal(t, 1, p.RemoveFunc(is4))
	assert.Equal(t, 0, p.RemoveFunc(is4))
	assert.Equal(t, []int64{2, 3, 5}, numbers(p))

	// Remaining blocks are still addressable after compaction.
	for _, n := range []int64{2, 3, 5} {
		b, ok := p.Lookup(Key[string]{Handle: "a", Number: n})
		require.True(t, ok)
		assert.Equal(t, n, b.Key.Number)
	}

	admit(t, p, "a", 6)
	assert.Equal(t, []int64{2, 3, 5, 6}, numbers(p))
}

func TestPool_RemoveFunc(t *testing.T) {
	p, err := NewPool[string](5, 4)
	require.NoError(t, err)

	admit(t, p, "a", 0)
	admit(t, p, "b", 0)
	admit(t, p, "a", 1)
	admit(t, p, "b", 1)

	removed := p.RemoveFunc(func(b *Block[string]) bool { return b.Key.Handle == "a" })
	assert.Equal(t, 2, removed)
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, []Key[string]{{Handle: "b", Number: 0}, {Handle: "b", Number: 1}}, keys(p))

	// Freed slots are reusable.
	admit(t, p, "c", 0)
	admit(t, p, "c", 1)
	admit(t, p, "c", 2)
	assert.True(t, p.Full())
}

func TestPool_KeysAreScopedByHandle(t *testing.T) {
	p, err := NewPool[string](4, 4)
	require.NoError(t, err)

	a := admit(t, p, "a", 7)
	b := admit(t, p, "b", 7)
	assert.NotSame(t, a, b)

	got, ok := p.Lookup(Key[string]{Handle: "b", Number: 7})
	require.True(t, ok)
	assert.Same(t, b, got)
}

func TestPool_Reset(t *testing.T) {
	p, err := NewPool[string](2, 4)
	require.NoError(t, err)
	admit(t, p, "a", 0)
	admit(t, p, "a", 1)

	p.Reset()
	assert.Equal(t, 0, p.Len())
	assert.False(t, p.Full())
	_, ok := p.Oldest()
	assert.False(t, ok)
}

func TestPool_CapacityInvariant(t *testing.T) {
	p, err := NewPool[string](3, 2)
	require.NoError(t, err)

	for i := int64(0); i < 50; i++ {
		if _, ok := p.Lookup(Key[string]{Handle: "a", Number: i % 7}); ok {
			continue
		}
		if p.Full() {
			p.RemoveOldest()
		}
		admit(t, p, "a", i%7)
		assert.LessOrEqual(t, p.Len(), p.Cap())
	}
}
