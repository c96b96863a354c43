package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ToastType string

const (
	ToastTypeSuccess ToastType = "success"
	ToastTypeError   ToastType = "error"
)

// Toast is a transient user-facing message.
type Toast struct {
	ID        string    `json:"id"`
	Type      ToastType `json:"type"`
	Message   string    `json:"message"`
	Duration  int64     `json:"duration_ms"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Sticky reports whether the toast stays until dismissed.
func (t Toast) Sticky() bool {
	return t.ExpiresAt.IsZero()
}

type EventType string

const (
	EventTypePurchaseCompleted EventType = "PURCHASE_BATCH_COMPLETED"
	EventTypeTicketIssued      EventType = "TICKET_ISSUED"
)

// PurchaseEvent is published to Kafka when a purchase batch settles or the
// ticket API issues a ticket.
type PurchaseEvent struct {
	ID     uuid.UUID `json:"id"`
	Type   EventType `json:"type"`
	MapID  string    `json:"map_id"`
	PlanID string    `json:"plan_id,omitempty"`

	// Batch outcome
	Requested int      `json:"requested,omitempty"`
	Succeeded int      `json:"succeeded,omitempty"`
	Failures  []string `json:"failures,omitempty"`

	// Single ticket
	TicketID string `json:"ticket_id,omitempty"`
	X        *int   `json:"x,omitempty"`
	Y        *int   `json:"y,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func NewBatchCompletedEvent(planID, mapID string, requested, succeeded int, failures []string) *PurchaseEvent {
	return &PurchaseEvent{
		ID:        uuid.New(),
		Type:      EventTypePurchaseCompleted,
		MapID:     mapID,
		PlanID:    planID,
		Requested: requested,
		Succeeded: succeeded,
		Failures:  failures,
		CreatedAt: time.Now().UTC(),
	}
}

func NewTicketIssuedEvent(mapID, ticketID string, x, y int) *PurchaseEvent {
	return &PurchaseEvent{
		ID:        uuid.New(),
		Type:      EventTypeTicketIssued,
		MapID:     mapID,
		TicketID:  ticketID,
		X:         &x,
		Y:         &y,
		CreatedAt: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *PurchaseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// GetPartitionKey keeps every event of one map on the same partition
func (e *PurchaseEvent) GetPartitionKey() string {
	return e.MapID
}
