package maps

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// MockMapIDs are the maps served when local data generation is enabled.
var MockMapIDs = []string{"m213", "m654", "m63", "m6888", "m1001", "m2002"}

type gridSize struct {
	rows, cols int
}

var mockSizes = map[string]gridSize{
	"m213":  {rows: 20, cols: 30},
	"m654":  {rows: 50, cols: 80},
	"m63":   {rows: 100, cols: 200},
	"m6888": {rows: 100000, cols: 50},
	"m1001": {rows: 25, cols: 40},
	"m2002": {rows: 15, cols: 25},
}

var defaultMockSize = gridSize{rows: 20, cols: 30}

// MockSize returns the generated dimensions for a map id.
func MockSize(mapID string) (rows, cols int) {
	s, ok := mockSizes[mapID]
	if !ok {
		s = defaultMockSize
	}
	return s.rows, s.cols
}

// MockConfig tunes local data generation.
type MockConfig struct {
	ReservedRatio float64
	SuccessRatio  float64
	ListLatency   time.Duration
	MapLatency    time.Duration
	BuyLatency    time.Duration
	Seed          int64
}

func DefaultMockConfig() MockConfig {
	return MockConfig{
		ReservedRatio: 0.3,
		SuccessRatio:  0.9,
		ListLatency:   500 * time.Millisecond,
		MapLatency:    800 * time.Millisecond,
		BuyLatency:    1000 * time.Millisecond,
	}
}

// MockLoader generates seat maps and purchase outcomes locally.
type MockLoader struct {
	cfg MockConfig

	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

func NewMockLoader(cfg MockConfig) *MockLoader {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &MockLoader{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

func (m *MockLoader) MapIDs(ctx context.Context) ([]string, error) {
	if err := sleep(ctx, m.cfg.ListLatency); err != nil {
		return nil, err
	}
	return append([]string(nil), MockMapIDs...), nil
}

func (m *MockLoader) SeatMatrix(ctx context.Context, mapID string) ([][]int, error) {
	if err := sleep(ctx, m.cfg.MapLatency); err != nil {
		return nil, err
	}

	rows, cols := MockSize(mapID)
	seats := make([][]int, rows)

	m.mu.Lock()
	defer m.mu.Unlock()
	for y := range seats {
		row := make([]int, cols)
		for x := range row {
			if m.rng.Float64() < m.cfg.ReservedRatio {
				row[x] = 1
			}
		}
		seats[y] = row
	}
	return seats, nil
}

func (m *MockLoader) PurchaseTicket(ctx context.Context, _ string, req PurchaseRequest) (*PurchaseResponse, error) {
	if err := sleep(ctx, m.cfg.BuyLatency); err != nil {
		return nil, err
	}

	m.mu.Lock()
	roll := m.rng.Float64()
	m.mu.Unlock()

	if roll >= m.cfg.SuccessRatio {
		return &PurchaseResponse{
			Success: false,
			Message: "Purchase failed. Please try again.",
		}, nil
	}

	return &PurchaseResponse{
		Success:  true,
		Message:  fmt.Sprintf("Ticket purchased successfully for seat (%d, %d)", req.X, req.Y),
		TicketID: fmt.Sprintf("ticket_%d_%d_%d", m.now().UnixMilli(), req.X, req.Y),
	}, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
