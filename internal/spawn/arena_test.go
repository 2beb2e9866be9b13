package spawn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaReusesReleasedObstacle(t *testing.T) {
	a := NewArena()

	h1, o1, reused := a.Acquire()
	require.False(t, reused)
	require.True(t, a.Release(h1))

	h2, o2, reused := a.Acquire()
	assert.True(t, reused)
	assert.Same(t, o1, o2)
	assert.NotEqual(t, h1, h2)
	assert.Equal(t, 1, a.Stats().Allocated)
}

func TestArenaStaleHandle(t *testing.T) {
	a := NewArena()
	h1, _, _ := a.Acquire()
	a.Release(h1)
	h2, _, _ := a.Acquire()

	assert.False(t, a.Valid(h1))
	assert.True(t, a.Valid(h2))
	_, ok := a.Get(h1)
	assert.False(t, ok)
	assert.False(t, a.Release(h1), "stale release must not touch the reused slot")
	assert.True(t, a.Valid(h2))
}

func TestArenaZeroHandle(t *testing.T) {
	a := NewArena()
	a.Acquire()

	assert.True(t, Handle{}.IsZero())
	assert.False(t, a.Valid(Handle{}))
	assert.False(t, a.Destroy(Handle{}))
}

func TestArenaDestroyFreesSlot(t *testing.T) {
	a := NewArena()
	h1, o1, _ := a.Acquire()
	require.True(t, a.Destroy(h1))
	assert.False(t, a.Valid(h1))

	st := a.Stats()
	assert.Equal(t, ArenaStats{Vacant: 1, Allocated: 1}, st)

	h2, o2, reused := a.Acquire()
	assert.False(t, reused, "vacant slot needs a fresh obstacle")
	assert.NotSame(t, o1, o2)
	assert.Equal(t, h1.index, h2.index)
	assert.Equal(t, 2, a.Stats().Allocated)
}

func TestArenaConservesSlots(t *testing.T) {
	a := NewArena()
	var hs []Handle
	for range 6 {
		h, _, _ := a.Acquire()
		hs = append(hs, h)
	}
	a.Release(hs[0])
	a.Release(hs[1])
	a.Destroy(hs[2])
	a.Release(hs[0]) // already pooled

	st := a.Stats()
	assert.Equal(t, 3, st.Live)
	assert.Equal(t, 2, st.Pooled)
	assert.Equal(t, 1, st.Vacant)
	assert.Equal(t, 6, st.Live+st.Pooled+st.Vacant)

	var live []Handle
	a.EachLive(func(h Handle) { live = append(live, h) })
	assert.Equal(t, hs[3:], live)
}

func TestNextGenSkipsZero(t *testing.T) {
	assert.Equal(t, uint32(1), nextGen(^uint32(0)))
	assert.Equal(t, uint32(3), nextGen(2))
}
