package purchases

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"ticketplan/internal/maps"
	"ticketplan/internal/notifications"
	"ticketplan/internal/seats"
	"ticketplan/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Orchestrator runs purchase batches for one board. At most one batch is in
// flight; per-seat calls run concurrently and their outcomes are applied one
// at a time by the batch goroutine.
type Orchestrator struct {
	purchaser Purchaser
	board     Board
	sink      notifications.Sink
	publisher notifications.EventPublisher
	limit     int
	planID    string
	log       *logger.Logger

	mu        sync.Mutex
	state     State
	total     int
	completed int
	succeeded int
	last      *Summary
}

type Option func(*Orchestrator)

// WithConcurrencyLimit bounds in-flight seat calls. Zero or less is unbounded.
func WithConcurrencyLimit(n int) Option {
	return func(o *Orchestrator) { o.limit = n }
}

// WithPublisher reports each settled batch as a purchase event.
func WithPublisher(p notifications.EventPublisher) Option {
	return func(o *Orchestrator) { o.publisher = p }
}

// WithPlanID tags logs and events with the owning plan.
func WithPlanID(id string) Option {
	return func(o *Orchestrator) { o.planID = id }
}

func NewOrchestrator(purchaser Purchaser, board Board, sink notifications.Sink, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		purchaser: purchaser,
		board:     board,
		sink:      sink,
		publisher: notifications.NopPublisher{},
		log:       logger.GetDefault(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) Progress() Progress {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Progress{
		State:     o.state,
		Total:     o.total,
		Completed: o.completed,
		Succeeded: o.succeeded,
	}
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Purchase buys every selected seat and blocks until all calls settle. An
// empty selection returns ErrNothingSelected and a concurrent call returns
// ErrPurchaseInFlight; neither touches the running batch.
func (o *Orchestrator) Purchase(ctx context.Context) (*Summary, error) {
	done, err := o.Start(ctx)
	if err != nil {
		return nil, err
	}
	return <-done, nil
}

// Start launches a batch and returns at once. The channel yields the summary
// when the last seat settles.
func (o *Orchestrator) Start(ctx context.Context) (<-chan *Summary, error) {
	gen, mapID, coords := o.board.Snapshot()
	if len(coords) == 0 {
		return nil, ErrNothingSelected
	}
	if !o.begin(len(coords)) {
		return nil, ErrPurchaseInFlight
	}

	done := make(chan *Summary, 1)
	go func() {
		done <- o.run(ctx, gen, mapID, coords)
	}()
	return done, nil
}

func (o *Orchestrator) run(ctx context.Context, gen uint64, mapID string, coords []seats.Coordinate) *Summary {
	start := time.Now()
	o.log.LogPurchaseStarted(ctx, mapID, len(coords))

	results := make(chan Outcome)
	go func() {
		var g errgroup.Group
		if o.limit > 0 {
			g.SetLimit(o.limit)
		}
		for _, c := range coords {
			g.Go(func() error {
				results <- o.purchaseSeat(ctx, mapID, c)
				return nil
			})
		}
		_ = g.Wait()
		close(results)
	}()

	outcomes := make([]Outcome, 0, len(coords))
	stale := false
	for out := range results {
		if !o.apply(gen, out) {
			stale = true
		}
		outcomes = append(outcomes, out)
	}
	stale = stale || !o.board.IsCurrent(gen)

	summary := summarize(mapID, outcomes)
	summary.Stale = stale
	summary.Duration = time.Since(start)

	o.finish(ctx, summary)
	return summary
}

// LastSummary returns the summary of the most recently settled batch.
func (o *Orchestrator) LastSummary() *Summary {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last
}

func (o *Orchestrator) begin(total int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateIdle {
		return false
	}
	o.state = StateInFlight
	o.total = total
	o.completed = 0
	o.succeeded = 0
	return true
}

func (o *Orchestrator) purchaseSeat(ctx context.Context, mapID string, c seats.Coordinate) Outcome {
	out := Outcome{Coordinate: c}

	resp, err := o.purchaser.PurchaseTicket(ctx, mapID, maps.PurchaseRequest{X: c.X, Y: c.Y})
	switch {
	case err != nil:
		out.Message = TransportFailureReason
		out.Transport = true
		o.log.WithError(err).LogSeatPurchase(ctx, mapID, c.X, c.Y, false, out.Message)
	case resp == nil:
		out.Message = TransportFailureReason
		out.Transport = true
		o.log.LogSeatPurchase(ctx, mapID, c.X, c.Y, false, "empty response")
	default:
		out.Success = resp.Success
		out.Message = resp.Message
		out.TicketID = resp.TicketID
		o.log.LogSeatPurchase(ctx, mapID, c.X, c.Y, resp.Success, resp.Message)
	}
	return out
}

// apply folds one outcome into the board and the counters. It returns false
// when the board has moved on to another map.
func (o *Orchestrator) apply(gen uint64, out Outcome) bool {
	current := true
	if out.Success {
		current = o.board.ConfirmPurchase(gen, out.Coordinate)
	}

	o.mu.Lock()
	o.completed++
	if out.Success {
		o.succeeded++
	}
	o.mu.Unlock()
	return current
}

func (o *Orchestrator) finish(ctx context.Context, s *Summary) {
	o.mu.Lock()
	o.state = StateCompleted
	o.last = s
	o.mu.Unlock()

	o.log.LogPurchaseCompleted(ctx, s.MapID, s.Succeeded, s.Failed(), s.Duration)

	if s.Stale {
		o.log.InfoContext(ctx, "Purchase batch settled after its map was replaced",
			"map_id", s.MapID, "plan_id", o.planID)
	} else if o.sink != nil {
		if s.SuccessMessage != "" {
			o.sink.ShowSuccess(s.SuccessMessage)
		}
		if s.FailureMessage != "" {
			o.sink.ShowError(s.FailureMessage)
		}
	}

	event := notifications.NewBatchCompletedEvent(o.planID, s.MapID, s.Requested, s.Succeeded, s.Failures)
	if err := o.publisher.PublishPurchaseEvent(context.WithoutCancel(ctx), event); err != nil {
		o.log.WithError(err).WarnContext(ctx, "Failed to publish purchase event", "map_id", s.MapID)
	}

	o.mu.Lock()
	o.state = StateIdle
	o.mu.Unlock()
}

// summarize orders outcomes by row then column and builds the messages.
func summarize(mapID string, outcomes []Outcome) *Summary {
	slices.SortFunc(outcomes, func(a, b Outcome) int {
		if c := cmp.Compare(a.Coordinate.Y, b.Coordinate.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.Coordinate.X, b.Coordinate.X)
	})

	s := &Summary{
		MapID:     mapID,
		Requested: len(outcomes),
		Failures:  []string{},
		Outcomes:  outcomes,
	}
	for _, out := range outcomes {
		if out.Success {
			s.Succeeded++
		} else {
			s.Failures = append(s.Failures, out.Descriptor())
		}
	}

	failed := strings.Join(s.Failures, ", ")
	switch {
	case len(s.Failures) == 0:
		s.SuccessMessage = fmt.Sprintf("All %d seats purchased successfully!", s.Succeeded)
	case s.Succeeded > 0:
		s.SuccessMessage = fmt.Sprintf("%d seats purchased successfully.", s.Succeeded)
		s.FailureMessage = fmt.Sprintf("Failed to purchase %d seats: %s", len(s.Failures), failed)
	default:
		s.FailureMessage = "Failed to purchase all seats: " + failed
	}
	return s
}
