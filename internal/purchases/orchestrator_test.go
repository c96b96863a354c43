package purchases

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ticketplan/internal/maps"
	"ticketplan/internal/notifications"
	"ticketplan/internal/seats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seatResult struct {
	resp *maps.PurchaseResponse
	err  error
}

// mockPurchaser answers per coordinate and can hold calls until released.
type mockPurchaser struct {
	mu      sync.Mutex
	results map[seats.Coordinate]seatResult
	calls   atomic.Int32
	gate    chan struct{}
	started chan struct{}
}

func (m *mockPurchaser) PurchaseTicket(ctx context.Context, mapID string, req maps.PurchaseRequest) (*maps.PurchaseResponse, error) {
	m.calls.Add(1)
	if m.started != nil {
		m.started <- struct{}{}
	}
	if m.gate != nil {
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.results[seats.Coordinate{X: req.X, Y: req.Y}]
	if !ok {
		return &maps.PurchaseResponse{Success: true, Message: "ok", TicketID: "t"}, nil
	}
	return r.resp, r.err
}

// mapRecorder remembers the map and column of every seat bought.
type mapRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *mapRecorder) PurchaseTicket(_ context.Context, mapID string, req maps.PurchaseRequest) (*maps.PurchaseResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf("%s@%d", mapID, req.X))
	return &maps.PurchaseResponse{Success: true, Message: "ok", TicketID: "t"}, nil
}

func (r *mapRecorder) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type recordingSink struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (s *recordingSink) ShowSuccess(m string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.successes = append(s.successes, m)
}

func (s *recordingSink) ShowError(m string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, m)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*notifications.PurchaseEvent
}

func (p *recordingPublisher) PublishPurchaseEvent(_ context.Context, e *notifications.PurchaseEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func newBoard(t *testing.T, matrix [][]int, selected ...seats.Coordinate) *seats.Board {
	t.Helper()
	m, err := seats.NewSeatMap("m213", "Azadi", matrix)
	require.NoError(t, err)
	b := seats.NewBoard()
	b.Load(m)
	for _, c := range selected {
		require.True(t, b.Toggle(c.Y, c.X))
	}
	return b
}

func TestOrchestrator_MixedOutcomes(t *testing.T) {
	t.Parallel()
	a := seats.Coordinate{X: 0, Y: 0}
	bSeat := seats.Coordinate{X: 1, Y: 0}
	c := seats.Coordinate{X: 2, Y: 1}
	board := newBoard(t, [][]int{{0, 0, 0}, {0, 0, 0}}, a, bSeat, c)

	purchaser := &mockPurchaser{results: map[seats.Coordinate]seatResult{
		a:     {resp: &maps.PurchaseResponse{Success: true, Message: "ok", TicketID: "t-a"}},
		bSeat: {resp: &maps.PurchaseResponse{Success: false, Message: "Seat already sold"}},
		c:     {err: errors.New("dial tcp: connection refused")},
	}}
	sink := &recordingSink{}
	pub := &recordingPublisher{}
	o := NewOrchestrator(purchaser, board, sink, WithPublisher(pub), WithPlanID("plan-1"))

	summary, err := o.Purchase(context.Background())
	require.NoError(t, err)

	assert.Equal(t, seats.StatusReserved, board.StatusAt(0, 0))
	assert.Equal(t, seats.StatusSelected, board.StatusAt(0, 1))
	assert.Equal(t, seats.StatusSelected, board.StatusAt(1, 2))
	assert.Equal(t, 2, board.Count())

	assert.Equal(t, 3, summary.Requested)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, []string{"(2, 1): Seat already sold", "(3, 2): connection error"}, summary.Failures)
	assert.False(t, summary.Stale)

	assert.Equal(t, []string{"1 seats purchased successfully."}, sink.successes)
	assert.Equal(t, []string{"Failed to purchase 2 seats: (2, 1): Seat already sold, (3, 2): connection error"}, sink.errors)

	assert.Equal(t, StateIdle, o.State())
	assert.Equal(t, Progress{State: StateIdle, Total: 3, Completed: 3, Succeeded: 1}, o.Progress())

	require.Len(t, pub.events, 1)
	assert.Equal(t, "plan-1", pub.events[0].PlanID)
	assert.Equal(t, 1, pub.events[0].Succeeded)
}

func TestOrchestrator_AllSucceed(t *testing.T) {
	t.Parallel()
	board := newBoard(t, [][]int{{0, 0}}, seats.Coordinate{X: 0}, seats.Coordinate{X: 1})
	sink := &recordingSink{}
	o := NewOrchestrator(&mockPurchaser{}, board, sink, WithConcurrencyLimit(1))

	summary, err := o.Purchase(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Succeeded)
	assert.Empty(t, summary.Failures)
	assert.Equal(t, []string{"All 2 seats purchased successfully!"}, sink.successes)
	assert.Empty(t, sink.errors)
	assert.Zero(t, board.Count())
}

func TestOrchestrator_AllFail(t *testing.T) {
	t.Parallel()
	x := seats.Coordinate{X: 1, Y: 0}
	board := newBoard(t, [][]int{{0, 0}}, x)
	purchaser := &mockPurchaser{results: map[seats.Coordinate]seatResult{
		x: {resp: &maps.PurchaseResponse{Success: false, Message: "Purchase failed. Please try again."}},
	}}
	sink := &recordingSink{}
	o := NewOrchestrator(purchaser, board, sink)

	_, err := o.Purchase(context.Background())
	require.NoError(t, err)

	assert.Empty(t, sink.successes)
	assert.Equal(t, []string{"Failed to purchase all seats: (2, 1): Purchase failed. Please try again."}, sink.errors)
	assert.Equal(t, seats.StatusSelected, board.StatusAt(0, 1))
}

func TestOrchestrator_EmptySelection(t *testing.T) {
	t.Parallel()
	board := newBoard(t, [][]int{{0}})
	purchaser := &mockPurchaser{}
	o := NewOrchestrator(purchaser, board, &recordingSink{})

	_, err := o.Purchase(context.Background())

	assert.ErrorIs(t, err, ErrNothingSelected)
	assert.Equal(t, StateIdle, o.State())
	assert.Zero(t, purchaser.calls.Load())
}

func TestOrchestrator_RejectsSecondBatchWhileInFlight(t *testing.T) {
	t.Parallel()
	board := newBoard(t, [][]int{{0, 0}}, seats.Coordinate{X: 0}, seats.Coordinate{X: 1})
	purchaser := &mockPurchaser{
		gate:    make(chan struct{}),
		started: make(chan struct{}, 2),
	}
	o := NewOrchestrator(purchaser, board, &recordingSink{})

	done := make(chan *Summary)
	go func() {
		s, _ := o.Purchase(context.Background())
		done <- s
	}()

	<-purchaser.started
	<-purchaser.started
	before := o.Progress()
	assert.Equal(t, StateInFlight, before.State)
	assert.Equal(t, 2, before.Total)

	_, err := o.Purchase(context.Background())
	assert.ErrorIs(t, err, ErrPurchaseInFlight)
	assert.Equal(t, before, o.Progress())
	assert.EqualValues(t, 2, purchaser.calls.Load())

	close(purchaser.gate)
	select {
	case s := <-done:
		require.NotNil(t, s)
		assert.Equal(t, 2, s.Succeeded)
	case <-time.After(5 * time.Second):
		t.Fatal("batch did not complete")
	}
	assert.Equal(t, Progress{State: StateIdle, Total: 2, Completed: 2, Succeeded: 2}, o.Progress())
}

func TestOrchestrator_StaleBatchLeavesNewMapAlone(t *testing.T) {
	t.Parallel()
	board := newBoard(t, [][]int{{0, 0}}, seats.Coordinate{X: 0})
	purchaser := &mockPurchaser{
		gate:    make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	sink := &recordingSink{}
	o := NewOrchestrator(purchaser, board, sink)

	done := make(chan *Summary)
	go func() {
		s, _ := o.Purchase(context.Background())
		done <- s
	}()
	<-purchaser.started

	next, err := seats.NewSeatMap("m654", "", [][]int{{0, 0}})
	require.NoError(t, err)
	board.Load(next)
	board.Toggle(0, 0)

	close(purchaser.gate)
	s := <-done

	assert.True(t, s.Stale)
	assert.Equal(t, seats.StatusSelected, board.StatusAt(0, 0))
	assert.Empty(t, sink.successes)
	assert.Empty(t, sink.errors)
	assert.Equal(t, StateIdle, o.State())
}

func TestOrchestrator_CompletionOrderDoesNotMatter(t *testing.T) {
	t.Parallel()
	matrix := make([][]int, 4)
	var selected []seats.Coordinate
	for y := range matrix {
		matrix[y] = make([]int, 5)
		for x := range matrix[y] {
			selected = append(selected, seats.Coordinate{X: x, Y: y})
		}
	}
	board := newBoard(t, matrix, selected...)

	results := map[seats.Coordinate]seatResult{}
	for i, c := range selected {
		if i%3 == 0 {
			results[c] = seatResult{resp: &maps.PurchaseResponse{Success: false, Message: "taken"}}
		}
	}
	o := NewOrchestrator(&mockPurchaser{results: results}, board, &recordingSink{}, WithConcurrencyLimit(3))

	s, err := o.Purchase(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 20, s.Requested)
	assert.Equal(t, 7, s.Failed())
	assert.Equal(t, 13, s.Succeeded)
	assert.Equal(t, 7, board.Count())
	assert.Equal(t, "(1, 1): taken", s.Failures[0])
}

func TestState_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "IDLE", StateIdle.String())
	assert.Equal(t, "IN_FLIGHT", StateInFlight.String())
	assert.Equal(t, "COMPLETED", StateCompleted.String())
}

func TestOrchestrator_StartReturnsBeforeSettling(t *testing.T) {
	t.Parallel()
	board := newBoard(t, [][]int{{0, 0}}, seats.Coordinate{X: 1})
	purchaser := &mockPurchaser{gate: make(chan struct{})}
	o := NewOrchestrator(purchaser, board, &recordingSink{})

	done, err := o.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateInFlight, o.State())
	assert.Nil(t, o.LastSummary())

	close(purchaser.gate)
	s := <-done
	assert.Equal(t, 1, s.Succeeded)
	assert.Same(t, s, o.LastSummary())
}

func TestOrchestrator_StartRacingNavigationKeepsMapAndSeatsTogether(t *testing.T) {
	t.Parallel()
	wide, err := seats.NewSeatMap("m213", "", [][]int{{0, 0, 0}})
	require.NoError(t, err)
	narrow, err := seats.NewSeatMap("m654", "", [][]int{{0}})
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		board := seats.NewBoard()
		board.Load(wide.Clone())
		require.True(t, board.Toggle(0, 2))
		rec := &mapRecorder{}
		o := NewOrchestrator(rec, board, &recordingSink{})

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			board.Load(narrow.Clone())
		}()
		done, err := o.Start(context.Background())
		wg.Wait()
		if err != nil {
			require.ErrorIs(t, err, ErrNothingSelected)
			continue
		}
		<-done

		// Column 2 only exists on m213; it must never be bought on m654.
		for _, call := range rec.recorded() {
			assert.Equal(t, "m213@2", call)
		}
	}
}
