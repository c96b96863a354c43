package seats

import (
	"fmt"
	"math"
)

// MaxIndex is the largest row or column index a Key can carry.
const MaxIndex = math.MaxUint32

// Coordinate addresses a seat. X is the column and Y is the row, so grids
// are always indexed as seats[Y][X].
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Key is the composite selection-set key of a coordinate.
type Key uint64

// EncodeKey packs the row into the high 32 bits and the column into the low 32 bits.
func EncodeKey(c Coordinate) Key {
	return Key(uint64(uint32(c.Y))<<32 | uint64(uint32(c.X)))
}

// DecodeKey is the exact inverse of EncodeKey.
func DecodeKey(k Key) Coordinate {
	return Coordinate{
		X: int(uint32(k)),
		Y: int(uint32(k >> 32)),
	}
}

// KeyOf builds the key for a row/column pair.
func KeyOf(row, col int) Key {
	return EncodeKey(Coordinate{X: col, Y: row})
}

// Valid reports whether both indices are representable in a Key.
func (c Coordinate) Valid() bool {
	return c.X >= 0 && c.Y >= 0 && c.X <= MaxIndex && c.Y <= MaxIndex
}

// Display renders the coordinate 1-based, the way it is shown to users.
func (c Coordinate) Display() string {
	return fmt.Sprintf("(%d, %d)", c.X+1, c.Y+1)
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}
