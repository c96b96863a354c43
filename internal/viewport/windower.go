package viewport

import (
	"math"
	"sync"
)

const (
	// Buffer is the number of extra rows/columns rendered on each side of the
	// visible area.
	Buffer = 5

	// WindowingThreshold is the seat count above which only the visible window
	// is rendered.
	WindowingThreshold = 10000

	DefaultItemWidth  = 20
	DefaultItemHeight = 20
	DefaultMargin     = 2
)

// Viewport is the scroll container state in pixels.
type Viewport struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	ScrollTop  float64 `json:"scroll_top"`
	ScrollLeft float64 `json:"scroll_left"`
}

// ItemSize is the rendered seat size plus the gap after it, in pixels.
type ItemSize struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	MarginX float64 `json:"margin_x"`
	MarginY float64 `json:"margin_y"`
}

func DefaultItemSize() ItemSize {
	return ItemSize{
		Width:   DefaultItemWidth,
		Height:  DefaultItemHeight,
		MarginX: DefaultMargin,
		MarginY: DefaultMargin,
	}
}

// Range is a half-open index interval [Start, End).
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (r Range) Len() int {
	return r.End - r.Start
}

// Clamp bounds the range to [0, n).
func (r Range) Clamp(n int) Range {
	start := max(0, min(r.Start, n))
	return Range{Start: start, End: max(start, min(r.End, n))}
}

// Windower maps scroll offsets to the row and column ranges worth rendering.
type Windower struct {
	mu       sync.RWMutex
	viewport Viewport
	item     ItemSize
	rows     Range
	cols     Range
}

func NewWindower() *Windower {
	return &Windower{item: DefaultItemSize()}
}

func (w *Windower) UpdateViewport(v Viewport) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.viewport = v
	w.recompute()
}

func (w *Windower) UpdateItemSize(s ItemSize) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.item = s
	w.recompute()
}

func (w *Windower) recompute() {
	w.rows = visibleRange(w.viewport.ScrollTop, w.viewport.Height, w.item.Height+w.item.MarginY)
	w.cols = visibleRange(w.viewport.ScrollLeft, w.viewport.Width, w.item.Width+w.item.MarginX)
}

// visibleRange degenerates to an empty range when there is nothing to show.
func visibleRange(offset, extent, pitch float64) Range {
	if pitch <= 0 {
		return Range{}
	}
	start := max(0, int(math.Floor(offset/pitch))-Buffer)
	if extent <= 0 {
		return Range{Start: start, End: start}
	}
	count := int(math.Ceil(extent/pitch)) + 2*Buffer
	return Range{Start: start, End: start + count}
}

func (w *Windower) VisibleRowRange() Range {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.rows
}

func (w *Windower) VisibleColRange() Range {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cols
}

func (w *Windower) rowPitch() float64 {
	return w.item.Height + w.item.MarginY
}

func (w *Windower) colPitch() float64 {
	return w.item.Width + w.item.MarginX
}

// TotalHeight is the full canvas height for n rows.
func (w *Windower) TotalHeight(rows int) float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return float64(rows) * w.rowPitch()
}

// TotalWidth is the full canvas width for n columns.
func (w *Windower) TotalWidth(cols int) float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return float64(cols) * w.colPitch()
}

func (w *Windower) RowOffset(i int) float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return float64(i) * w.rowPitch()
}

func (w *Windower) ColOffset(i int) float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return float64(i) * w.colPitch()
}

// ShouldEnableWindowing reports whether a grid is large enough to window.
func ShouldEnableWindowing(rows, cols int) bool {
	return rows*cols > WindowingThreshold
}

// ShouldEnableWindowing delegates to the package function.
func (w *Windower) ShouldEnableWindowing(rows, cols int) bool {
	return ShouldEnableWindowing(rows, cols)
}

// Reset zeroes the viewport and empties both ranges. The item size is kept.
func (w *Windower) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.viewport = Viewport{}
	w.rows = Range{}
	w.cols = Range{}
}

func (w *Windower) Viewport() Viewport {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.viewport
}

func (w *Windower) ItemSize() ItemSize {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.item
}

// Window is a consistent copy of everything needed to position a render pass.
type Window struct {
	Viewport    Viewport `json:"viewport"`
	ItemSize    ItemSize `json:"item_size"`
	Rows        Range    `json:"rows"`
	Cols        Range    `json:"cols"`
	TotalHeight float64  `json:"total_height"`
	TotalWidth  float64  `json:"total_width"`
	OffsetTop   float64  `json:"offset_top"`
	OffsetLeft  float64  `json:"offset_left"`
	Windowed    bool     `json:"windowed"`
}

// Snapshot computes the window for a grid of the given size. Below the
// windowing threshold the full grid is returned.
func (w *Windower) Snapshot(rows, cols int) Window {
	w.mu.RLock()
	defer w.mu.RUnlock()

	win := Window{
		Viewport:    w.viewport,
		ItemSize:    w.item,
		TotalHeight: float64(rows) * w.rowPitch(),
		TotalWidth:  float64(cols) * w.colPitch(),
		Windowed:    ShouldEnableWindowing(rows, cols),
	}
	if !win.Windowed {
		win.Rows = Range{Start: 0, End: rows}
		win.Cols = Range{Start: 0, End: cols}
		return win
	}

	win.Rows = w.rows.Clamp(rows)
	win.Cols = w.cols.Clamp(cols)
	win.OffsetTop = float64(win.Rows.Start) * w.rowPitch()
	win.OffsetLeft = float64(win.Cols.Start) * w.colPitch()
	return win
}
