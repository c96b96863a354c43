package tickets

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrMapNotFound    = errors.New("map not found")
	ErrSeatOutOfRange = errors.New("seat is outside the map")
	ErrSeatTaken      = errors.New("seat already sold")
	ErrSeatClaimed    = errors.New("seat is being purchased by another request")
)

// SeatMapRecord is a stored seat map. Seats is the authoritative 0/1 matrix.
type SeatMapRecord struct {
	ID        string    `json:"id" gorm:"type:varchar(64);primaryKey"`
	Name      string    `json:"name" gorm:"size:255"`
	Rows      int       `json:"rows" gorm:"not null;check:rows >= 0"`
	Columns   int       `json:"columns" gorm:"not null;check:columns >= 0"`
	Seats     [][]int   `json:"seats" gorm:"type:jsonb;serializer:json;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (SeatMapRecord) TableName() string {
	return "seat_maps"
}

func (m *SeatMapRecord) inBounds(x, y int) bool {
	return y >= 0 && x >= 0 && y < len(m.Seats) && x < len(m.Seats[y])
}

// Ticket is one sold seat. A seat can be sold once per map.
type Ticket struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	MapID     string    `json:"map_id" gorm:"type:varchar(64);not null;uniqueIndex:idx_tickets_map_seat"`
	X         int       `json:"x" gorm:"not null;uniqueIndex:idx_tickets_map_seat"`
	Y         int       `json:"y" gorm:"not null;uniqueIndex:idx_tickets_map_seat"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// PurchaseRequest is the body of POST /map/:mapId/ticket
type PurchaseRequest struct {
	X *int `json:"x" binding:"required,min=0"`
	Y *int `json:"y" binding:"required,min=0"`
}

// PurchaseResponse is returned for both sold and rejected seats
type PurchaseResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	TicketID string `json:"ticketId,omitempty"`
}
