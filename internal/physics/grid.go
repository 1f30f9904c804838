package physics

import "math"

// gridEntry records one entity's circle at insert time so queries can run
// without calling back into the owning simulation.
type gridEntry struct {
	id     int
	x, y   float64
	radius float64
}

// gridCell stores the entries that fall within one grid cell.
// The slice is reused between rebuilds (reset to [:0]) to avoid allocations.
type gridCell struct {
	entries []gridEntry
}

// SpatialGrid is a uniform grid over a bounded arena used for hit-testing
// and proximity queries among circular entities. Entities are bucketed by
// center position; queries scan the 3x3 cell neighborhood around the query
// point and then filter by exact circle tests.
//
// Cell size must be >= the largest entity diameter so that every circle
// containing a point is found within the 3x3 neighborhood of that point.
// The grid is derived state: it is rebuilt from entity positions once per
// tick and never mutated mid-query.
type SpatialGrid struct {
	cellSize    float64
	invCellSize float64 // 1 / cellSize (precomputed to avoid division)
	cols        int
	rows        int
	cells       []gridCell
}

// NewSpatialGrid creates a spatial grid covering the given arena dimensions.
func NewSpatialGrid(arenaW, arenaH, cellSize float64) *SpatialGrid {
	cols := int(math.Ceil(arenaW / cellSize))
	rows := int(math.Ceil(arenaH / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	return &SpatialGrid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cols:        cols,
		rows:        rows,
		cells:       make([]gridCell, cols*rows),
	}
}

// Clear removes all entries from the grid without deallocating cell memory.
// Called at the start of every rebuild.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i].entries = g.cells[i].entries[:0]
	}
}

// Insert adds an entity circle to the cell containing its center.
func (g *SpatialGrid) Insert(id int, x, y, radius float64) {
	col, row := g.posToCell(x, y)
	idx := row*g.cols + col
	g.cells[idx].entries = append(g.cells[idx].entries, gridEntry{id: id, x: x, y: y, radius: radius})
}

// Remove deletes the entry with the given id from the cell containing (x, y).
// The position must be the one the entry was inserted with. Used to drop a
// destroyed entity mid-tick so it cannot be hit again before the next rebuild.
func (g *SpatialGrid) Remove(id int, x, y float64) {
	col, row := g.posToCell(x, y)
	cell := &g.cells[row*g.cols+col]
	for i := range cell.entries {
		if cell.entries[i].id != id {
			continue
		}
		last := len(cell.entries) - 1
		cell.entries[i] = cell.entries[last]
		cell.entries = cell.entries[:last]
		return
	}
}

// QueryPoint returns the id of the entity whose circle contains (px, py).
// Only the 3x3 neighborhood of cells around the point is scanned, then
// candidates are filtered by exact circle containment. When multiple circles
// overlap at the point, the lowest id wins so results are deterministic.
func (g *SpatialGrid) QueryPoint(px, py float64) (int, bool) {
	col, row := g.posToCell(px, py)

	best := -1
	found := false

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

			for _, e := range g.cells[rowOffset+c].entries {
				if !PointInCircle(px, py, e.x, e.y, e.radius) {
					continue
				}
				if !found || e.id < best {
					best = e.id
					found = true
				}
			}
		}
	}

	return best, found
}

// QueryRadius calls fn for each entity whose center lies within radius of
// (px, py). If fn returns true, iteration stops early. The scanned cell
// range covers the query circle's bounding box, so radius may exceed the
// cell size.
func (g *SpatialGrid) QueryRadius(px, py, radius float64, fn func(id int) bool) {
	minCol, minRow := g.posToCell(px-radius, py-radius)
	maxCol, maxRow := g.posToCell(px+radius, py+radius)
	r2 := radius * radius

	for row := minRow; row <= maxRow; row++ {
		rowOffset := row * g.cols
		for col := minCol; col <= maxCol; col++ {
			for _, e := range g.cells[rowOffset+col].entries {
				if DistanceSquared(px, py, e.x, e.y) > r2 {
					continue
				}
				if fn(e.id) {
					return
				}
			}
		}
	}
}

// posToCell converts arena coordinates to grid cell coordinates.
// Clamps to the valid range so out-of-arena points map to edge cells.
func (g *SpatialGrid) posToCell(x, y float64) (col, row int) {
	col = int(x * g.invCellSize)
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}

	row = int(y * g.invCellSize)
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}

	return col, row
}
