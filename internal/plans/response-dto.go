package plans

import (
	"time"

	"ticketplan/internal/notifications"
	"ticketplan/internal/purchases"
	"ticketplan/internal/seats"
	"ticketplan/internal/viewport"
)

type PlanResponse struct {
	ID            string             `json:"id"`
	MapID         string             `json:"map_id"`
	MapName       string             `json:"map_name"`
	Loaded        bool               `json:"loaded"`
	LoadError     string             `json:"load_error,omitempty"`
	Rows          int                `json:"rows"`
	Columns       int                `json:"columns"`
	TotalSeats    int                `json:"total_seats"`
	ReservedSeats int                `json:"reserved_seats"`
	SelectedCount int                `json:"selected_count"`
	Windowed      bool               `json:"windowed"`
	Purchase      purchases.Progress `json:"purchase"`
	LastPurchase  *purchases.Summary `json:"last_purchase,omitempty"`
	LoadedAt      *time.Time         `json:"loaded_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

type ToggleResponse struct {
	Accepted      bool             `json:"accepted"`
	Row           int              `json:"row"`
	Col           int              `json:"col"`
	Status        seats.SeatStatus `json:"status"`
	SelectedCount int              `json:"selected_count"`
}

type SeatResponse struct {
	Row    int              `json:"row"`
	Col    int              `json:"col"`
	Label  string           `json:"label"`
	Status seats.SeatStatus `json:"status"`
}

type SelectionResponse struct {
	Count int                `json:"count"`
	Seats []seats.Coordinate `json:"seats"`
}

// WindowResponse is everything a renderer needs for one pass: the window
// geometry and the statuses of the seats inside it.
type WindowResponse struct {
	viewport.Window
	Seats [][]seats.SeatStatus `json:"seats"`
}

type PurchaseResponse struct {
	Accepted bool               `json:"accepted"`
	Reason   string             `json:"reason,omitempty"`
	Progress purchases.Progress `json:"progress"`
	Summary  *purchases.Summary `json:"summary,omitempty"`
}

type ToastListResponse struct {
	Toasts []notifications.Toast `json:"toasts"`
}
