package tickets

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	ListMapIDs(ctx context.Context) ([]string, error)
	FindMap(ctx context.Context, mapID string) (*SeatMapRecord, error)
	SaveMap(ctx context.Context, m *SeatMapRecord) error
	// SellSeat marks the seat reserved and records its ticket in one step.
	SellSeat(ctx context.Context, mapID string, x, y int) (*Ticket, error)
	CountTickets(ctx context.Context, mapID string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListMapIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&SeatMapRecord{}).Order("created_at, id").Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list maps: %w", err)
	}
	return ids, nil
}

func (r *repository) FindMap(ctx context.Context, mapID string) (*SeatMapRecord, error) {
	var m SeatMapRecord
	err := r.db.WithContext(ctx).Where("id = ?", mapID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMapNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *repository) SaveMap(ctx context.Context, m *SeatMapRecord) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *repository) SellSeat(ctx context.Context, mapID string, x, y int) (*Ticket, error) {
	var ticket *Ticket
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m SeatMapRecord
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", mapID).First(&m).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMapNotFound
			}
			return err
		}

		if !m.inBounds(x, y) {
			return ErrSeatOutOfRange
		}
		if m.Seats[y][x] != 0 {
			return ErrSeatTaken
		}

		m.Seats[y][x] = 1
		if err := tx.Model(&m).Select("seats", "updated_at").Updates(&m).Error; err != nil {
			return fmt.Errorf("failed to update seat map: %w", err)
		}

		ticket = &Ticket{MapID: mapID, X: x, Y: y}
		if err := tx.Create(ticket).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrSeatTaken
			}
			return fmt.Errorf("failed to create ticket: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *repository) CountTickets(ctx context.Context, mapID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Ticket{}).Where("map_id = ?", mapID).Count(&n).Error
	return n, err
}

// memoryRepository backs the ticket API when Postgres is disabled.
type memoryRepository struct {
	mu      sync.Mutex
	maps    map[string]*SeatMapRecord
	order   []string
	tickets map[string][]Ticket
}

func NewMemoryRepository() Repository {
	return &memoryRepository{
		maps:    make(map[string]*SeatMapRecord),
		tickets: make(map[string][]Ticket),
	}
}

func (r *memoryRepository) ListMapIDs(context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...), nil
}

func (r *memoryRepository) FindMap(_ context.Context, mapID string) (*SeatMapRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.maps[mapID]
	if !ok {
		return nil, ErrMapNotFound
	}
	return cloneRecord(m), nil
}

func (r *memoryRepository) SaveMap(_ context.Context, m *SeatMapRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.maps[m.ID]; !ok {
		r.order = append(r.order, m.ID)
	}
	r.maps[m.ID] = cloneRecord(m)
	return nil
}

func (r *memoryRepository) SellSeat(_ context.Context, mapID string, x, y int) (*Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.maps[mapID]
	if !ok {
		return nil, ErrMapNotFound
	}
	if !m.inBounds(x, y) {
		return nil, ErrSeatOutOfRange
	}
	if m.Seats[y][x] != 0 {
		return nil, ErrSeatTaken
	}

	m.Seats[y][x] = 1
	ticket := Ticket{MapID: mapID, X: x, Y: y}
	_ = ticket.BeforeCreate(nil)
	r.tickets[mapID] = append(r.tickets[mapID], ticket)
	return &ticket, nil
}

func (r *memoryRepository) CountTickets(_ context.Context, mapID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.tickets[mapID])), nil
}

func cloneRecord(m *SeatMapRecord) *SeatMapRecord {
	out := *m
	out.Seats = make([][]int, len(m.Seats))
	for i, row := range m.Seats {
		out.Seats[i] = append([]int(nil), row...)
	}
	return &out
}
