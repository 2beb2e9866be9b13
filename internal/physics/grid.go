package physics

import "math"

// maxGridCells caps the number of cells per axis so a tiny cell size
// over a large area cannot blow up memory.
const maxGridCells = 128

// SpatialGrid is a uniform grid for broad-phase proximity queries over a bounded area.
// Items are inserted by position and index, then nearby items can be queried
// via a 3x3 neighborhood lookup.
//
// Cell size must be >= the maximum interaction distance between any two
// items so that all neighbors are found within the 3x3 neighborhood.
// Positions outside the bounds are clamped to the border cells; clamping
// never increases cell distance, so the neighborhood guarantee still holds.
type SpatialGrid struct {
	minX, minY  float64
	cellSize    float64
	invCellSize float64 // 1 / cellSize (precomputed to avoid division)
	cols        int
	rows        int
	cells       []gridCell
}

// gridCell stores the indices of items that fall within a grid cell.
// The slice is reused between rebuilds (reset to [:0]) to avoid allocations.
type gridCell struct {
	items []int
}

// NewSpatialGrid creates a grid covering [minX, minX+width] x [minY, minY+height].
// cellSize is raised if needed so that neither axis exceeds maxGridCells.
func NewSpatialGrid(minX, minY, width, height, cellSize float64) *SpatialGrid {
	g := &SpatialGrid{}
	g.Reset(minX, minY, width, height, cellSize)
	return g
}

// Reset re-dimensions the grid and clears it, reusing cell memory where possible.
func (g *SpatialGrid) Reset(minX, minY, width, height, cellSize float64) {
	extent := math.Max(width, height)
	if floor := extent / maxGridCells; cellSize < floor {
		cellSize = floor
	}
	if cellSize <= 0 {
		cellSize = 1
	}

	cols := int(math.Ceil(width / cellSize))
	rows := int(math.Ceil(height / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	g.minX = minX
	g.minY = minY
	g.cellSize = cellSize
	g.invCellSize = 1.0 / cellSize
	g.cols = cols
	g.rows = rows

	if cap(g.cells) < cols*rows {
		g.cells = make([]gridCell, cols*rows)
	} else {
		g.cells = g.cells[:cols*rows]
	}
	g.Clear()
}

// CellSize returns the effective cell size.
func (g *SpatialGrid) CellSize() float64 {
	return g.cellSize
}

// Clear removes all items from the grid without deallocating cell memory.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i].items = g.cells[i].items[:0]
	}
}

// Insert adds an item (identified by index) at the given world position.
func (g *SpatialGrid) Insert(x, y float64, index int) {
	col, row := g.posToCell(x, y)
	idx := row*g.cols + col
	g.cells[idx].items = append(g.cells[idx].items, index)
}

// QueryAround calls fn for each item index in the 3x3 cell neighborhood
// around the given world position. Neighbors past the border are skipped.
// If fn returns true, iteration stops early (useful for "find first" queries).
func (g *SpatialGrid) QueryAround(x, y float64, fn func(index int) bool) {
	col, row := g.posToCell(x, y)

	for dr := -1; dr <= 1; dr++ {
		r := row + dr
		if r < 0 || r >= g.rows {
			continue
		}
		rowOffset := r * g.cols

		for dc := -1; dc <= 1; dc++ {
			c := col + dc
			if c < 0 || c >= g.cols {
				continue
			}

			for _, itemIdx := range g.cells[rowOffset+c].items {
				if fn(itemIdx) {
					return
				}
			}
		}
	}
}

// posToCell converts world coordinates to grid cell coordinates.
// Clamps to valid range to handle out-of-bounds positions and floating point edges.
func (g *SpatialGrid) posToCell(x, y float64) (col, row int) {
	col = int(math.Floor((x - g.minX) * g.invCellSize))
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}

	row = int(math.Floor((y - g.minY) * g.invCellSize))
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}

	return col, row
}
