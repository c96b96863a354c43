package seats

import "sync"

// Board joins the authoritative grid of the active seat map with the user's
// selection. Every Load advances the generation; purchase completions carry the
// generation they were snapshotted under and are dropped once it is stale.
type Board struct {
	mu         sync.RWMutex
	grid       *Grid
	selection  *Selection
	generation uint64
}

// NewBoard returns an empty board at generation zero.
func NewBoard() *Board {
	return &Board{
		grid:      NewGrid(nil),
		selection: NewSelection(),
	}
}

// Load swaps the whole seat map in and starts an empty selection.
func (b *Board) Load(m *SeatMap) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.grid = NewGrid(m)
	b.selection = NewSelection()
	b.generation++
	return b.generation
}

// LoadIfCurrent loads m only while gen is still the board's generation. A
// load that lost the race to a later Load or Unload is discarded and reported
// as false.
func (b *Board) LoadIfCurrent(gen uint64, m *SeatMap) (uint64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if gen != b.generation {
		return b.generation, false
	}
	b.grid = NewGrid(m)
	b.selection = NewSelection()
	b.generation++
	return b.generation, true
}

// Unload drops the active map and returns the new generation. Pending
// completions become stale.
func (b *Board) Unload() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.grid = NewGrid(nil)
	b.selection = NewSelection()
	b.generation++
	return b.generation
}

// Generation is bumped by every Load and Unload.
func (b *Board) Generation() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.generation
}

// Loaded reports whether a seat map is active.
func (b *Board) Loaded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.grid.SeatMap() != nil
}

// Dimensions is 0x0 while nothing is loaded.
func (b *Board) Dimensions() (rows, cols int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.grid.Rows(), b.grid.Columns()
}

// MapID returns the id of the loaded map, or "" when nothing is loaded.
func (b *Board) MapID() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if m := b.grid.SeatMap(); m != nil {
		return m.ID
	}
	return ""
}

// StatusAt returns the effective status of one cell. Cells outside the grid
// read as available and unselected.
func (b *Board) StatusAt(row, col int) SeatStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.statusAt(row, col)
}

func (b *Board) statusAt(row, col int) SeatStatus {
	return EffectiveStatus(b.grid.IsReserved(row, col), b.selection.Has(row, col))
}

// Block returns effective statuses for rows [rowStart,rowEnd) and columns
// [colStart,colEnd), clamped to the grid.
func (b *Board) Block(rowStart, rowEnd, colStart, colEnd int) [][]SeatStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rowStart, rowEnd = clampSpan(rowStart, rowEnd, b.grid.Rows())
	colStart, colEnd = clampSpan(colStart, colEnd, b.grid.Columns())

	out := make([][]SeatStatus, 0, rowEnd-rowStart)
	for r := rowStart; r < rowEnd; r++ {
		line := make([]SeatStatus, 0, colEnd-colStart)
		for c := colStart; c < colEnd; c++ {
			line = append(line, b.statusAt(r, c))
		}
		out = append(out, line)
	}
	return out
}

func clampSpan(start, end, limit int) (int, int) {
	start = max(0, min(start, limit))
	end = max(start, min(end, limit))
	return start, end
}

// Toggle flips selection membership of an available seat. Reserved and
// out-of-range cells are ignored and reported as false.
func (b *Board) Toggle(row, col int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.grid.InBounds(row, col) || b.grid.IsReserved(row, col) {
		return false
	}
	b.selection.Flip(row, col)
	return true
}

// IsSelected reports selection membership only; it ignores reservation.
func (b *Board) IsSelected(row, col int) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.selection.Has(row, col)
}

// Clear empties the selection and keeps the map and generation.
func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selection.Clear()
}

// Count is the number of selected seats.
func (b *Board) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.selection.Len()
}

// Coordinates lists the selection in row-major order.
func (b *Board) Coordinates() []Coordinate {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.selection.Coordinates()
}

// Snapshot captures the generation, the loaded map id ("" when unloaded) and
// the selection under one lock, so the three always describe the same map.
func (b *Board) Snapshot() (uint64, string, []Coordinate) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var mapID string
	if m := b.grid.SeatMap(); m != nil {
		mapID = m.ID
	}
	return b.generation, mapID, b.selection.Coordinates()
}

// ConfirmPurchase marks a purchased seat reserved and drops it from the
// selection. It returns false when gen is stale, leaving the board untouched.
func (b *Board) ConfirmPurchase(gen uint64, c Coordinate) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if gen != b.generation {
		return false
	}
	b.grid.MarkReserved(c.Y, c.X)
	b.selection.Remove(c.Y, c.X)
	return true
}

// IsCurrent reports whether gen still names the loaded map.
func (b *Board) IsCurrent(gen uint64) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return gen == b.generation
}

// SeatMap returns a copy of the loaded map, or nil.
func (b *Board) SeatMap() *SeatMap {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if m := b.grid.SeatMap(); m != nil {
		return m.Clone()
	}
	return nil
}

// Stats summarizes the loaded map without copying it.
type Stats struct {
	MapID    string `json:"map_id"`
	Name     string `json:"name"`
	Rows     int    `json:"rows"`
	Columns  int    `json:"columns"`
	Total    int    `json:"total"`
	Reserved int    `json:"reserved"`
	Selected int    `json:"selected"`
}

// Stats is the zero value while nothing is loaded.
func (b *Board) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	m := b.grid.SeatMap()
	if m == nil {
		return Stats{}
	}
	return Stats{
		MapID:    m.ID,
		Name:     m.Name,
		Rows:     m.Rows,
		Columns:  m.Columns,
		Total:    m.TotalSeats(),
		Reserved: m.ReservedCount(),
		Selected: b.selection.Len(),
	}
}
