package tickets

import (
	"context"
	"errors"
	"fmt"

	"ticketplan/internal/maps"
	"ticketplan/internal/notifications"
	"ticketplan/internal/shared/constants"
	"ticketplan/pkg/cache"
	"ticketplan/pkg/logger"
)

type Service interface {
	ListMaps(ctx context.Context) ([]string, error)
	GetSeatMap(ctx context.Context, mapID string) ([][]int, error)
	PurchaseTicket(ctx context.Context, mapID string, x, y int) (*PurchaseResponse, error)
	// SeedMaps copies every map of the loader into storage. Existing maps are
	// kept unless overwrite is set. It returns the number of maps written.
	SeedMaps(ctx context.Context, loader maps.Loader, overwrite bool) (int, error)
}

type service struct {
	repo      Repository
	cache     cache.Service
	claimer   SeatClaimer
	publisher notifications.EventPublisher
	log       *logger.Logger
}

func NewService(repo Repository, cacheService cache.Service, claimer SeatClaimer, publisher notifications.EventPublisher) Service {
	if cacheService == nil {
		cacheService = cache.NewMemoryService()
	}
	if claimer == nil {
		claimer = NewLocalSeatClaimer()
	}
	if publisher == nil {
		publisher = notifications.NopPublisher{}
	}
	return &service{
		repo:      repo,
		cache:     cacheService,
		claimer:   claimer,
		publisher: publisher,
		log:       logger.GetDefault(),
	}
}

func (s *service) ListMaps(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.cache.GetOrSet(ctx, constants.CACHE_KEY_TICKET_MAP_LIST, constants.TTL_MAP_LIST, func() (interface{}, error) {
		return s.repo.ListMapIDs(ctx)
	}, &ids)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (s *service) GetSeatMap(ctx context.Context, mapID string) ([][]int, error) {
	var seats [][]int
	err := s.cache.GetOrSet(ctx, constants.BuildTicketSeatMapKey(mapID), constants.TTL_SEAT_MAP, func() (interface{}, error) {
		m, err := s.repo.FindMap(ctx, mapID)
		if err != nil {
			return nil, err
		}
		return m.Seats, nil
	}, &seats)
	if err != nil {
		return nil, err
	}
	return seats, nil
}

func (s *service) PurchaseTicket(ctx context.Context, mapID string, x, y int) (*PurchaseResponse, error) {
	release, err := s.claimer.Claim(ctx, mapID, x, y)
	if err != nil {
		if errors.Is(err, ErrSeatClaimed) {
			return &PurchaseResponse{Success: false, Message: "Seat is being purchased by someone else. Please try again."}, nil
		}
		return nil, err
	}
	defer release()

	ticket, err := s.repo.SellSeat(ctx, mapID, x, y)
	if err != nil {
		if errors.Is(err, ErrSeatTaken) {
			return &PurchaseResponse{Success: false, Message: fmt.Sprintf("Seat (%d, %d) is already sold", x, y)}, nil
		}
		return nil, err
	}

	if err := s.cache.Delete(ctx, constants.BuildTicketSeatMapKey(mapID)); err != nil {
		s.log.WithError(err).WarnContext(ctx, "Failed to invalidate seat map cache", "map_id", mapID)
	}

	ticketID := ticket.ID.String()
	s.log.LogTicketIssued(ctx, ticketID, mapID, x, y)

	event := notifications.NewTicketIssuedEvent(mapID, ticketID, x, y)
	if err := s.publisher.PublishPurchaseEvent(ctx, event); err != nil {
		s.log.WithError(err).WarnContext(ctx, "Failed to publish ticket event", "ticket_id", ticketID)
	}

	return &PurchaseResponse{
		Success:  true,
		Message:  fmt.Sprintf("Ticket purchased successfully for seat (%d, %d)", x, y),
		TicketID: ticketID,
	}, nil
}

func (s *service) SeedMaps(ctx context.Context, loader maps.Loader, overwrite bool) (int, error) {
	ids, err := loader.MapIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list source maps: %w", err)
	}

	directory := maps.NewDirectory(loader)
	written := 0
	for _, id := range ids {
		if !overwrite {
			if _, err := s.repo.FindMap(ctx, id); err == nil {
				continue
			} else if !errors.Is(err, ErrMapNotFound) {
				return written, err
			}
		}

		m, err := directory.SeatMap(ctx, id)
		if err != nil {
			return written, err
		}
		record := &SeatMapRecord{
			ID:      m.ID,
			Name:    m.Name,
			Rows:    m.Rows,
			Columns: m.Columns,
			Seats:   m.Seats,
		}
		if err := s.repo.SaveMap(ctx, record); err != nil {
			return written, fmt.Errorf("failed to save map %s: %w", id, err)
		}
		written++
	}

	if written > 0 {
		if err := s.cache.DeletePattern(ctx, constants.CACHE_PREFIX+":tickets:maps:*"); err != nil {
			s.log.WithError(err).WarnContext(ctx, "Failed to invalidate map caches")
		}
	}
	return written, nil
}
