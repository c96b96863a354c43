package seats

// Grid holds the authoritative reservation state of a loaded seat map.
// It is not safe for concurrent use; Board serializes access to it.
type Grid struct {
	seatMap *SeatMap
}

// NewGrid wraps m; a nil map yields an empty 0x0 grid.
func NewGrid(m *SeatMap) *Grid {
	return &Grid{seatMap: m}
}

// Rows is 0 for an empty or nil grid.
func (g *Grid) Rows() int {
	if g == nil || g.seatMap == nil {
		return 0
	}
	return g.seatMap.Rows
}

// Columns is 0 for an empty or nil grid.
func (g *Grid) Columns() int {
	if g == nil || g.seatMap == nil {
		return 0
	}
	return g.seatMap.Columns
}

// InBounds reports whether (row, col) addresses a cell of the loaded map.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && col >= 0 && row < g.Rows() && col < g.Columns()
}

// IsReserved reports the authoritative state of a cell. Out-of-range cells
// are not reserved.
func (g *Grid) IsReserved(row, col int) bool {
	if !g.InBounds(row, col) {
		return false
	}
	return g.seatMap.Seats[row][col] == CellReserved
}

// MarkReserved flips a cell to reserved. Out-of-range coordinates are ignored
// and reported as false.
func (g *Grid) MarkReserved(row, col int) bool {
	if !g.InBounds(row, col) {
		return false
	}
	g.seatMap.Seats[row][col] = CellReserved
	return true
}

// SeatMap returns the wrapped map itself, not a copy.
func (g *Grid) SeatMap() *SeatMap {
	if g == nil {
		return nil
	}
	return g.seatMap
}
