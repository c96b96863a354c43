package purchases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ticketplan/internal/maps"
	"ticketplan/internal/seats"
)

var (
	ErrNothingSelected  = errors.New("no seats selected")
	ErrPurchaseInFlight = errors.New("a purchase is already in progress")
)

// TransportFailureReason replaces the message of a seat whose call failed
// before a response arrived.
const TransportFailureReason = "connection error"

type State int

const (
	StateIdle State = iota
	StateInFlight
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateInFlight:
		return "IN_FLIGHT"
	case StateCompleted:
		return "COMPLETED"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for _, candidate := range []State{StateIdle, StateInFlight, StateCompleted} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("invalid purchase state %q", text)
}

// Purchaser buys a single seat.
type Purchaser interface {
	PurchaseTicket(ctx context.Context, mapID string, req maps.PurchaseRequest) (*maps.PurchaseResponse, error)
}

// Board is the seat state a batch reads from and confirms into.
type Board interface {
	// Snapshot returns the generation, map id and selection as one
	// consistent read.
	Snapshot() (gen uint64, mapID string, coords []seats.Coordinate)
	ConfirmPurchase(gen uint64, c seats.Coordinate) bool
	IsCurrent(gen uint64) bool
}

// Outcome is the settled result of one seat.
type Outcome struct {
	Coordinate seats.Coordinate `json:"coordinate"`
	Success    bool             `json:"success"`
	Message    string           `json:"message"`
	TicketID   string           `json:"ticket_id,omitempty"`
	Transport  bool             `json:"transport_error,omitempty"`
}

// Descriptor renders a failed outcome with 1-based coordinates.
func (o Outcome) Descriptor() string {
	return o.Coordinate.Display() + ": " + o.Message
}

// Summary folds every outcome of a batch.
type Summary struct {
	MapID          string        `json:"map_id"`
	Requested      int           `json:"requested"`
	Succeeded      int           `json:"succeeded"`
	Failures       []string      `json:"failures"`
	SuccessMessage string        `json:"success_message,omitempty"`
	FailureMessage string        `json:"failure_message,omitempty"`
	Stale          bool          `json:"stale,omitempty"`
	Outcomes       []Outcome     `json:"outcomes"`
	Duration       time.Duration `json:"duration"`
}

func (s *Summary) Failed() int {
	return len(s.Failures)
}

// Progress is a point-in-time view of the running or last batch.
type Progress struct {
	State     State `json:"state"`
	Total     int   `json:"total"`
	Completed int   `json:"completed"`
	Succeeded int   `json:"succeeded"`
}
