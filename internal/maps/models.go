package maps

import (
	"context"
	"fmt"
	"net/http"
)

// Loader supplies raw seat map data and purchases single seats.
type Loader interface {
	MapIDs(ctx context.Context) ([]string, error)
	SeatMatrix(ctx context.Context, mapID string) ([][]int, error)
	PurchaseTicket(ctx context.Context, mapID string, req PurchaseRequest) (*PurchaseResponse, error)
}

// PurchaseRequest is the body of POST /map/{mapId}/ticket.
type PurchaseRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// PurchaseResponse is a per-seat purchase outcome. Success false is a business
// rejection, not a transport failure.
type PurchaseResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	TicketID string `json:"ticketId,omitempty"`
}

// ErrorResponse is the error body returned by every ticket API endpoint.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Salon is a stadium entry of the salon list.
type Salon struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	MapID string `json:"map_id"`
	Image string `json:"image"`
}

// APIError is returned for non-2xx ticket API responses.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Timestamp  string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ticket api: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("ticket api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

func (e *APIError) APIMessage() string {
	return e.Message
}
