package maps

import (
	"context"
	"fmt"

	"ticketplan/internal/seats"
)

var stadiumNames = map[string]string{
	"m213":  "ورزشگاه آزادی",
	"m654":  "ورزشگاه انقلاب",
	"m63":   "ورزشگاه تختی",
	"m6888": "ورزشگاه شهید کاظمی",
	"m1001": "ورزشگاه امام رضا",
	"m2002": "ورزشگاه شهید شیرودی",
}

// Directory resolves map ids to display metadata and validated seat maps.
type Directory struct {
	loader Loader
}

func NewDirectory(loader Loader) *Directory {
	return &Directory{loader: loader}
}

func (d *Directory) Loader() Loader {
	return d.loader
}

// DisplayName returns the stadium name for a map, or "Stadium <id>".
func (d *Directory) DisplayName(mapID string) string {
	if name, ok := stadiumNames[mapID]; ok {
		return name
	}
	return "Stadium " + mapID
}

func (d *Directory) ListMapIDs(ctx context.Context) ([]string, error) {
	return d.loader.MapIDs(ctx)
}

// ListSalons decorates every map id with a name and an image path.
func (d *Directory) ListSalons(ctx context.Context) ([]Salon, error) {
	ids, err := d.loader.MapIDs(ctx)
	if err != nil {
		return nil, err
	}

	salons := make([]Salon, 0, len(ids))
	for i, id := range ids {
		salons = append(salons, Salon{
			ID:    id,
			Name:  d.DisplayName(id),
			MapID: id,
			Image: fmt.Sprintf("assets/salons/salon-%d.webp", i+1),
		})
	}
	return salons, nil
}

// SeatMap loads and validates the matrix of a map.
func (d *Directory) SeatMap(ctx context.Context, mapID string) (*seats.SeatMap, error) {
	matrix, err := d.loader.SeatMatrix(ctx, mapID)
	if err != nil {
		return nil, err
	}
	m, err := seats.NewSeatMap(mapID, d.DisplayName(mapID), matrix)
	if err != nil {
		return nil, fmt.Errorf("seat map %s: %w", mapID, err)
	}
	return m, nil
}
