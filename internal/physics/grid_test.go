package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func collect(g *SpatialGrid, x, y float64) []int {
	var out []int
	g.QueryAround(x, y, func(i int) bool {
		out = append(out, i)
		return false
	})
	return out
}

func TestGridFindsNeighbors(t *testing.T) {
	g := NewSpatialGrid(-5, -5, 10, 10, 1)
	g.Insert(0.2, 0.2, 0)
	g.Insert(1.1, 0.2, 1)
	g.Insert(4.5, 4.5, 2)

	got := collect(g, 0.5, 0.5)
	assert.ElementsMatch(t, []int{0, 1}, got)
}

func TestGridDoesNotWrap(t *testing.T) {
	g := NewSpatialGrid(-5, -5, 10, 10, 1)
	g.Insert(-4.9, 0, 0)

	assert.Empty(t, collect(g, 4.9, 0))
}

func TestGridClampsOutOfBounds(t *testing.T) {
	g := NewSpatialGrid(-5, -5, 10, 10, 1)
	g.Insert(5.4, 0, 0)

	assert.Equal(t, []int{0}, collect(g, 5.2, 0))
	assert.Equal(t, []int{0}, collect(g, 4.6, 0))
}

func TestGridStopsEarly(t *testing.T) {
	g := NewSpatialGrid(0, 0, 4, 4, 1)
	for i := 0; i < 5; i++ {
		g.Insert(1.5, 1.5, i)
	}
	calls := 0
	g.QueryAround(1.5, 1.5, func(int) bool {
		calls++
		return true
	})
	assert.Equal(t, 1, calls)
}

func TestGridCapsCellCount(t *testing.T) {
	g := NewSpatialGrid(0, 0, 1000, 1000, 0.001)
	assert.GreaterOrEqual(t, g.CellSize(), 1000.0/maxGridCells)
}

func TestGridResetClears(t *testing.T) {
	g := NewSpatialGrid(0, 0, 4, 4, 1)
	g.Insert(1, 1, 7)
	g.Reset(0, 0, 8, 8, 2)
	assert.Empty(t, collect(g, 1, 1))
}
