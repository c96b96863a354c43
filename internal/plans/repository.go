package plans

import (
	"context"
	"sync"
)

// Repository keeps open plans. Plans hold live boards and goroutines, so they
// are kept in process.
type Repository interface {
	Save(ctx context.Context, plan *Plan) error
	FindByID(ctx context.Context, id string) (*Plan, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	mu    sync.RWMutex
	plans map[string]*Plan
}

func NewRepository() Repository {
	return &repository{plans: make(map[string]*Plan)}
}

func (r *repository) Save(_ context.Context, plan *Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans[plan.ID] = plan
	return nil
}

func (r *repository) FindByID(_ context.Context, id string) (*Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	plan, ok := r.plans[id]
	if !ok {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

func (r *repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plans[id]; !ok {
		return ErrPlanNotFound
	}
	delete(r.plans, id)
	return nil
}
