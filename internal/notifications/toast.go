package notifications

import (
	"fmt"
	"slices"
	"sync"
	"time"
)

const (
	DefaultSuccessDuration = 5 * time.Second
	DefaultErrorDuration   = 8 * time.Second
)

// Sink receives user-facing outcome messages.
type Sink interface {
	ShowSuccess(message string)
	ShowError(message string)
}

// ToastQueue holds active toasts. Expired toasts are dropped on the next
// read instead of by a timer.
type ToastQueue struct {
	mu      sync.Mutex
	toasts  []Toast
	counter int
	now     func() time.Time

	successDuration time.Duration
	errorDuration   time.Duration
}

func NewToastQueue(successDuration, errorDuration time.Duration) *ToastQueue {
	if successDuration == 0 {
		successDuration = DefaultSuccessDuration
	}
	if errorDuration == 0 {
		errorDuration = DefaultErrorDuration
	}
	return &ToastQueue{
		now:             time.Now,
		successDuration: successDuration,
		errorDuration:   errorDuration,
	}
}

// WithClock replaces the time source. Used by tests.
func (q *ToastQueue) WithClock(now func() time.Time) *ToastQueue {
	q.now = now
	return q
}

func (q *ToastQueue) ShowSuccess(message string) {
	q.Show(ToastTypeSuccess, message, q.successDuration)
}

func (q *ToastQueue) ShowError(message string) {
	q.Show(ToastTypeError, message, q.errorDuration)
}

// Show appends a toast. A duration of zero or less keeps it until dismissed.
func (q *ToastQueue) Show(kind ToastType, message string, duration time.Duration) Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	q.counter++
	t := Toast{
		ID:        fmt.Sprintf("toast-%d-%d", q.counter, now.UnixMilli()),
		Type:      kind,
		Message:   message,
		CreatedAt: now,
	}
	if duration > 0 {
		t.Duration = duration.Milliseconds()
		t.ExpiresAt = now.Add(duration)
	}
	q.toasts = append(q.toasts, t)
	return t
}

// Dismiss removes a toast, reporting whether it was present.
func (q *ToastQueue) Dismiss(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	before := len(q.toasts)
	q.toasts = slices.DeleteFunc(q.toasts, func(t Toast) bool { return t.ID == id })
	return len(q.toasts) != before
}

// Active returns the live toasts, oldest first.
func (q *ToastQueue) Active() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	q.toasts = slices.DeleteFunc(q.toasts, func(t Toast) bool {
		return !t.Sticky() && !now.Before(t.ExpiresAt)
	})
	return slices.Clone(q.toasts)
}

func (q *ToastQueue) Clear() {
	q.mu.Lock()
	q.toasts = nil
	q.mu.Unlock()
}
