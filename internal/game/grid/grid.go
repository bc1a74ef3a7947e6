// Package grid manages the room's occupancy matrix: a COLUMN x ROW field of
// cells, each holding at most one character ID.
package grid

import "errors"

// ErrGridFull is returned when no empty cell remains for a placement.
var ErrGridFull = errors.New("grid is full")

// maxSampleAttempts bounds rejection sampling before falling back to a
// linear scan of empty cells.
const maxSampleAttempts = 64

// Grid is an occupancy matrix of character IDs indexed as [x][y] with
// x in [0, Columns) and y in [0, Rows). The zero value is not usable;
// construct with New. Grid is not safe for concurrent use; the owning
// room serializes access.
type Grid struct {
	columns int
	rows    int
	cells   [][]string // "" = empty
	src     Source
}

// New creates an empty Grid with the given dimensions.
//
// Precondition: columns > 0, rows > 0; src must be non-nil.
func New(columns, rows int, src Source) *Grid {
	g := &Grid{
		columns: columns,
		rows:    rows,
		src:     src,
	}
	g.Reset()
	return g
}

// Columns returns the number of columns (x extent).
func (g *Grid) Columns() int { return g.columns }

// Rows returns the number of rows (y extent).
func (g *Grid) Rows() int { return g.rows }

// Reset reinitializes the grid to a fully empty matrix.
func (g *Grid) Reset() {
	g.cells = make([][]string, g.columns)
	for x := range g.cells {
		g.cells[x] = make([]string, g.rows)
	}
}

// OccupiedCount returns the number of occupied cells.
func (g *Grid) OccupiedCount() int {
	n := 0
	for x := range g.cells {
		for y := range g.cells[x] {
			if g.cells[x][y] != "" {
				n++
			}
		}
	}
	return n
}

// At returns the character ID at (x, y), or "" if the cell is empty or out
// of bounds.
func (g *Grid) At(x, y int) string {
	if !g.inBounds(x, y) {
		return ""
	}
	return g.cells[x][y]
}

// ReserveRandomEmptyCell picks a uniformly random empty cell and occupies it
// with id.
//
// Precondition: id must be non-empty.
// Postcondition: Returns the reserved (x, y), or ErrGridFull if no empty
// cell exists. The grid is unchanged on error.
func (g *Grid) ReserveRandomEmptyCell(id string) (int, int, error) {
	if g.OccupiedCount() >= g.columns*g.rows {
		return 0, 0, ErrGridFull
	}

	for i := 0; i < maxSampleAttempts; i++ {
		x := g.src.Intn(g.columns)
		y := g.src.Intn(g.rows)
		if g.cells[x][y] == "" {
			g.cells[x][y] = id
			return x, y, nil
		}
	}

	// Dense grid: rejection sampling is no longer cheap, pick uniformly
	// among the remaining empty cells instead.
	type cell struct{ x, y int }
	empty := make([]cell, 0)
	for x := range g.cells {
		for y := range g.cells[x] {
			if g.cells[x][y] == "" {
				empty = append(empty, cell{x, y})
			}
		}
	}
	if len(empty) == 0 {
		return 0, 0, ErrGridFull
	}
	c := empty[g.src.Intn(len(empty))]
	g.cells[c.x][c.y] = id
	return c.x, c.y, nil
}

// CanMoveTo reports whether (x, y) is in bounds and unoccupied.
func (g *Grid) CanMoveTo(x, y int) bool {
	if !g.inBounds(x, y) {
		return false
	}
	return g.cells[x][y] == ""
}

// Move relocates the occupant of the source cell to the destination cell.
// Bounds and occupancy are the caller's responsibility; check CanMoveTo
// first.
//
// Precondition: (fromX, fromY) holds id; CanMoveTo(toX, toY) is true.
func (g *Grid) Move(id string, fromX, fromY, toX, toY int) {
	g.cells[fromX][fromY] = ""
	g.cells[toX][toY] = id
}

// Place occupies (x, y) with id without any validation. Used when restoring
// a known-good layout.
func (g *Grid) Place(id string, x, y int) {
	g.cells[x][y] = id
}

// Clear vacates the cell at (x, y). Out-of-bounds coordinates are ignored.
func (g *Grid) Clear(x, y int) {
	if !g.inBounds(x, y) {
		return
	}
	g.cells[x][y] = ""
}

func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && x < g.columns && y >= 0 && y < g.rows
}
