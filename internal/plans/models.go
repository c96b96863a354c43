package plans

import (
	"errors"
	"sync"
	"time"

	"ticketplan/internal/notifications"
	"ticketplan/internal/purchases"
	"ticketplan/internal/seats"
	"ticketplan/internal/viewport"
)

var (
	ErrPlanNotFound  = errors.New("plan not found")
	ErrToastNotFound = errors.New("toast not found")
	ErrSeatOutOfGrid = errors.New("seat is outside the grid")
)

// Plan is one open seat-plan view: a board, its render window, the purchase
// orchestrator and the toasts shown to the viewer.
type Plan struct {
	ID        string
	CreatedAt time.Time

	Board        *seats.Board
	Windower     *viewport.Windower
	Toasts       *notifications.ToastQueue
	Errors       *notifications.ErrorHandler
	Orchestrator *purchases.Orchestrator

	mu        sync.RWMutex
	mapID     string
	loadError string
	loadedAt  time.Time
}

// MapID is the map the plan points at, loaded or not.
func (p *Plan) MapID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mapID
}

func (p *Plan) LoadError() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loadError
}

func (p *Plan) LoadedAt() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loadedAt
}

// retarget points the plan at mapID and empties the board. Both happen under
// the plan lock so the newest navigation always owns the newest generation.
func (p *Plan) retarget(mapID string) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mapID = mapID
	p.loadError = ""
	p.loadedAt = time.Time{}
	return p.Board.Unload()
}

// finishLoad installs m if gen is still current. A superseded load changes
// nothing and reports false.
func (p *Plan) finishLoad(gen uint64, m *seats.SeatMap, at time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.Board.LoadIfCurrent(gen, m); !ok {
		return false
	}
	p.loadError = ""
	p.loadedAt = at
	return true
}

// failLoad records msg if gen is still current.
func (p *Plan) failLoad(gen uint64, msg string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.Board.IsCurrent(gen) {
		return false
	}
	p.loadError = msg
	p.loadedAt = time.Time{}
	return true
}
