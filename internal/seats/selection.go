package seats

import (
	"cmp"
	"slices"
)

// Selection is the transient set of seats a user has chosen.
type Selection struct {
	keys map[Key]struct{}
}

func NewSelection() *Selection {
	return &Selection{keys: make(map[Key]struct{})}
}

func (s *Selection) Has(row, col int) bool {
	_, ok := s.keys[KeyOf(row, col)]
	return ok
}

// Flip adds the seat when absent and removes it when present. It returns the
// membership after the flip.
func (s *Selection) Flip(row, col int) bool {
	k := KeyOf(row, col)
	if _, ok := s.keys[k]; ok {
		delete(s.keys, k)
		return false
	}
	s.keys[k] = struct{}{}
	return true
}

func (s *Selection) Remove(row, col int) {
	delete(s.keys, KeyOf(row, col))
}

func (s *Selection) Clear() {
	clear(s.keys)
}

func (s *Selection) Len() int {
	return len(s.keys)
}

// Coordinates decodes every key, ordered by row then column.
func (s *Selection) Coordinates() []Coordinate {
	out := make([]Coordinate, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, DecodeKey(k))
	}
	slices.SortFunc(out, func(a, b Coordinate) int {
		if c := cmp.Compare(a.Y, b.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.X, b.X)
	})
	return out
}
