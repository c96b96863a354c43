package plans

import (
	"context"
	"errors"
	"time"

	"ticketplan/internal/maps"
	"ticketplan/internal/notifications"
	"ticketplan/internal/purchases"
	"ticketplan/internal/seats"
	"ticketplan/internal/shared/config"
	"ticketplan/internal/viewport"
	"ticketplan/pkg/logger"

	"github.com/google/uuid"
)

const loadErrorContext = "Failed to load seat map"

// Directory is the part of the stadium directory a plan needs.
type Directory interface {
	Loader() maps.Loader
	DisplayName(mapID string) string
	ListSalons(ctx context.Context) ([]maps.Salon, error)
	SeatMap(ctx context.Context, mapID string) (*seats.SeatMap, error)
}

type Service interface {
	ListSalons(ctx context.Context) ([]maps.Salon, error)

	OpenPlan(ctx context.Context, req OpenPlanRequest) (*PlanResponse, error)
	GetPlan(ctx context.Context, planID string) (*PlanResponse, error)
	RetryLoad(ctx context.Context, planID string) (*PlanResponse, error)
	Navigate(ctx context.Context, planID string, req NavigateRequest) (*PlanResponse, error)
	ClosePlan(ctx context.Context, planID string) error

	ToggleSeat(ctx context.Context, planID string, row, col int) (*ToggleResponse, error)
	GetSeat(ctx context.Context, planID string, row, col int) (*SeatResponse, error)
	GetSelection(ctx context.Context, planID string) (*SelectionResponse, error)
	ClearSelection(ctx context.Context, planID string) (*SelectionResponse, error)

	UpdateViewport(ctx context.Context, planID string, req ViewportRequest) (*WindowResponse, error)
	UpdateItemSize(ctx context.Context, planID string, req ItemSizeRequest) (*WindowResponse, error)
	GetWindow(ctx context.Context, planID string) (*WindowResponse, error)

	Purchase(ctx context.Context, planID string, req PurchaseRequest) (*PurchaseResponse, error)

	ListToasts(ctx context.Context, planID string) (*ToastListResponse, error)
	DismissToast(ctx context.Context, planID, toastID string) error
}

type service struct {
	repo      Repository
	directory Directory
	publisher notifications.EventPublisher
	config    *config.Config
	log       *logger.Logger
	now       func() time.Time
}

func NewService(repo Repository, directory Directory, publisher notifications.EventPublisher, cfg *config.Config) Service {
	if publisher == nil {
		publisher = notifications.NopPublisher{}
	}
	return &service{
		repo:      repo,
		directory: directory,
		publisher: publisher,
		config:    cfg,
		log:       logger.GetDefault(),
		now:       time.Now,
	}
}

func (s *service) ListSalons(ctx context.Context) ([]maps.Salon, error) {
	return s.directory.ListSalons(ctx)
}

func (s *service) newPlan() *Plan {
	id := uuid.NewString()
	toasts := notifications.NewToastQueue(s.config.Toast.SuccessDuration, s.config.Toast.ErrorDuration)
	board := seats.NewBoard()

	return &Plan{
		ID:        id,
		CreatedAt: s.now(),
		Board:     board,
		Windower:  viewport.NewWindower(),
		Toasts:    toasts,
		Errors:    notifications.NewErrorHandler(toasts),
		Orchestrator: purchases.NewOrchestrator(
			s.directory.Loader(),
			board,
			toasts,
			purchases.WithConcurrencyLimit(s.config.Purchase.MaxConcurrency),
			purchases.WithPublisher(s.publisher),
			purchases.WithPlanID(id),
		),
	}
}

func (s *service) OpenPlan(ctx context.Context, req OpenPlanRequest) (*PlanResponse, error) {
	plan := s.newPlan()
	if err := s.repo.Save(ctx, plan); err != nil {
		return nil, err
	}

	s.load(ctx, plan, req.MapID)
	return s.describe(plan), nil
}

// load replaces the plan's map. A failed load leaves the board empty and the
// message on the plan until the next load. When a later navigation starts
// while this one is fetching, the result is dropped without touching the
// plan or raising a toast.
func (s *service) load(ctx context.Context, plan *Plan, mapID string) {
	gen := plan.retarget(mapID)
	plan.Windower.Reset()

	m, err := s.directory.SeatMap(ctx, mapID)
	if err != nil {
		if !plan.failLoad(gen, loadErrorContext+": "+notifications.Describe(err)) {
			s.log.WithPlanID(plan.ID).DebugContext(ctx, "Dropped superseded seat map failure", "map_id", mapID)
			return
		}
		plan.Errors.Handle(err, loadErrorContext)
		s.log.WithPlanID(plan.ID).WithError(err).WarnContext(ctx, "Seat map load failed", "map_id", mapID)
		return
	}

	if !plan.finishLoad(gen, m, s.now()) {
		s.log.WithPlanID(plan.ID).DebugContext(ctx, "Dropped superseded seat map", "map_id", mapID)
		return
	}
	s.log.LogSeatMapLoaded(ctx, plan.ID, m.ID, m.Rows, m.Columns)
}

func (s *service) GetPlan(ctx context.Context, planID string) (*PlanResponse, error) {
	plan, err := s.repo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	return s.describe(plan), nil
}

func (s *service) RetryLoad(ctx context.Context, planID string) (*PlanResponse, error) {
	plan, err := s.repo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	s.load(ctx, plan, plan.MapID())
	return s.describe(plan), nil
}

func (s *service) Navigate(ctx context.Context, planID string, req NavigateRequest) (*PlanResponse, error) {
	plan, err := s.repo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	s.load(ctx, plan, req.MapID)
	return s.describe(plan), nil
}

func (s *service) ClosePlan(ctx context.Context, planID string) error {
	plan, err := s.repo.FindByID(ctx, planID)
	if err != nil {
		return err
	}
	plan.Windower.Reset()
	plan.Board.Unload()
	plan.Toasts.Clear()
	return s.repo.Delete(ctx, planID)
}

func (s *service) describe(plan *Plan) *PlanResponse {
	stats := plan.Board.Stats()
	resp := &PlanResponse{
		ID:            plan.ID,
		MapID:         plan.MapID(),
		Loaded:        stats.MapID != "",
		LoadError:     plan.LoadError(),
		Rows:          stats.Rows,
		Columns:       stats.Columns,
		TotalSeats:    stats.Total,
		ReservedSeats: stats.Reserved,
		SelectedCount: stats.Selected,
		Windowed:      viewport.ShouldEnableWindowing(stats.Rows, stats.Columns),
		Purchase:      plan.Orchestrator.Progress(),
		LastPurchase:  plan.Orchestrator.LastSummary(),
		CreatedAt:     plan.CreatedAt,
	}
	if resp.MapID != "" {
		resp.MapName = s.directory.DisplayName(resp.MapID)
	}
	if at := plan.LoadedAt(); !at.IsZero() {
		resp.LoadedAt = &at
	}
	return resp
}

func (s *service) ToggleSeat(ctx context.Context, planID string, row, col int) (*ToggleResponse, error) {
	plan, err := s.repo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	accepted := plan.Board.Toggle(row, col)
	return &ToggleResponse{
		Accepted:      accepted,
		Row:           row,
		Col:           col,
		Status:        plan.Board.StatusAt(row, col),
		SelectedCount: plan.Board.Count(),
	}, nil
}

func (s *service) GetSeat(ctx context.Context, planID string, row, col int) (*SeatResponse, error) {
	plan, err := s.repo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	rows, cols := plan.Board.Dimensions()
	if row < 0 || col < 0 || row >= rows || col >= cols {
		return nil, ErrSeatOutOfGrid
	}
	return &SeatResponse{
		Row:    row,
		Col:    col,
		Label:  seats.Coordinate{X: col, Y: row}.Display(),
		Status: plan.Board.StatusAt(row, col),
	}, nil
}

func (s *service) GetSelection(ctx context.Context, planID string) (*SelectionResponse, error) {
	plan, err := s.repo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	coords := plan.Board.Coordinates()
	return &SelectionResponse{Count: len(coords), Seats: coords}, nil
}

func (s *service) ClearSelection(ctx context.Context, planID string) (*SelectionResponse, error) {
	plan, err := s.repo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	plan.Board.Clear()
	return &SelectionResponse{Count: 0, Seats: []seats.Coordinate{}}, nil
}

func (s *service) UpdateViewport(ctx context.Context, planID string, req ViewportRequest) (*WindowResponse, error) {
	plan, err := s.repo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	plan.Windower.UpdateViewport(viewport.Viewport{
		Width:      req.Width,
		Height:     req.Height,
		ScrollTop:  req.ScrollTop,
		ScrollLeft: req.ScrollLeft,
	})
	return window(plan), nil
}

func (s *service) UpdateItemSize(ctx context.Context, planID string, req ItemSizeRequest) (*WindowResponse, error) {
	plan, err := s.repo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	plan.Windower.UpdateItemSize(viewport.ItemSize{
		Width:   req.Width,
		Height:  req.Height,
		MarginX: req.MarginX,
		MarginY: req.MarginY,
	})
	return window(plan), nil
}

func (s *service) GetWindow(ctx context.Context, planID string) (*WindowResponse, error) {
	plan, err := s.repo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	return window(plan), nil
}

func window(plan *Plan) *WindowResponse {
	rows, cols := plan.Board.Dimensions()
	win := plan.Windower.Snapshot(rows, cols)
	return &WindowResponse{
		Window: win,
		Seats:  plan.Board.Block(win.Rows.Start, win.Rows.End, win.Cols.Start, win.Cols.End),
	}
}

// Purchase starts a batch detached from the request. Guard rejections are
// reported as not accepted rather than as errors.
func (s *service) Purchase(ctx context.Context, planID string, req PurchaseRequest) (*PurchaseResponse, error) {
	plan, err := s.repo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	done, err := plan.Orchestrator.Start(context.WithoutCancel(ctx))
	if err != nil {
		if errors.Is(err, purchases.ErrNothingSelected) || errors.Is(err, purchases.ErrPurchaseInFlight) {
			return &PurchaseResponse{
				Accepted: false,
				Reason:   err.Error(),
				Progress: plan.Orchestrator.Progress(),
			}, nil
		}
		return nil, err
	}

	resp := &PurchaseResponse{Accepted: true}
	if req.Wait {
		select {
		case summary := <-done:
			resp.Summary = summary
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	resp.Progress = plan.Orchestrator.Progress()
	return resp, nil
}

func (s *service) ListToasts(ctx context.Context, planID string) (*ToastListResponse, error) {
	plan, err := s.repo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	return &ToastListResponse{Toasts: plan.Toasts.Active()}, nil
}

func (s *service) DismissToast(ctx context.Context, planID, toastID string) error {
	plan, err := s.repo.FindByID(ctx, planID)
	if err != nil {
		return err
	}
	if !plan.Toasts.Dismiss(toastID) {
		return ErrToastNotFound
	}
	return nil
}
