package seats

import "fmt"

type SeatStatus int

const (
	StatusAvailable SeatStatus = iota
	StatusReserved
	StatusSelected
)

// Cell values of the authoritative matrix.
const (
	CellAvailable = 0
	CellReserved  = 1
)

func (s SeatStatus) String() string {
	switch s {
	case StatusAvailable:
		return "AVAILABLE"
	case StatusReserved:
		return "RESERVED"
	case StatusSelected:
		return "SELECTED"
	}
	return fmt.Sprintf("SeatStatus(%d)", int(s))
}

func (s SeatStatus) IsValid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusSelected:
		return true
	}
	return false
}

func (s SeatStatus) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid seat status %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *SeatStatus) UnmarshalText(text []byte) error {
	for _, candidate := range []SeatStatus{StatusAvailable, StatusReserved, StatusSelected} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("invalid seat status %q", text)
}

// EffectiveStatus merges the authoritative cell with selection membership.
// A reserved cell stays reserved even when the selection claims it.
func EffectiveStatus(reserved, selected bool) SeatStatus {
	if reserved {
		return StatusReserved
	}
	if selected {
		return StatusSelected
	}
	return StatusAvailable
}
