package seats

import (
	"errors"
	"fmt"
)

var (
	ErrRaggedSeatMap    = errors.New("seat map rows have different lengths")
	ErrInvalidSeatValue = errors.New("seat value must be 0 or 1")
)

// SeatMap is the reservation matrix of one venue. Seats[y][x] is 0 for an
// available seat and 1 for a reserved one.
type SeatMap struct {
	ID      string  `json:"id"`
	Name    string  `json:"name,omitempty"`
	Seats   [][]int `json:"seats"`
	Rows    int     `json:"rows"`
	Columns int     `json:"columns"`
}

// NewSeatMap validates the matrix and derives its dimensions.
func NewSeatMap(id, name string, seats [][]int) (*SeatMap, error) {
	columns := 0
	if len(seats) > 0 {
		columns = len(seats[0])
	}

	for y, row := range seats {
		if len(row) != columns {
			return nil, fmt.Errorf("%w: row %d has %d columns, expected %d", ErrRaggedSeatMap, y, len(row), columns)
		}
		for x, v := range row {
			if v != CellAvailable && v != CellReserved {
				return nil, fmt.Errorf("%w: got %d at (%d, %d)", ErrInvalidSeatValue, v, x, y)
			}
		}
	}

	return &SeatMap{
		ID:      id,
		Name:    name,
		Seats:   seats,
		Rows:    len(seats),
		Columns: columns,
	}, nil
}

func (m *SeatMap) TotalSeats() int {
	return m.Rows * m.Columns
}

// ReservedCount counts reserved cells.
func (m *SeatMap) ReservedCount() int {
	n := 0
	for _, row := range m.Seats {
		for _, v := range row {
			if v == CellReserved {
				n++
			}
		}
	}
	return n
}

// Clone deep-copies the matrix.
func (m *SeatMap) Clone() *SeatMap {
	seats := make([][]int, len(m.Seats))
	for i, row := range m.Seats {
		seats[i] = append([]int(nil), row...)
	}
	return &SeatMap{
		ID:      m.ID,
		Name:    m.Name,
		Seats:   seats,
		Rows:    m.Rows,
		Columns: m.Columns,
	}
}
