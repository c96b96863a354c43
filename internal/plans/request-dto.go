package plans

// OpenPlanRequest opens a plan view on a map
type OpenPlanRequest struct {
	MapID string `json:"map_id" validate:"required,min=1,max=64"`
}

// NavigateRequest replaces the plan's map
type NavigateRequest struct {
	MapID string `json:"map_id" validate:"required,min=1,max=64"`
}

// ToggleSeatRequest flips one seat; row and col are 0-based
type ToggleSeatRequest struct {
	Row *int `json:"row" validate:"required,min=0"`
	Col *int `json:"col" validate:"required,min=0"`
}

// ViewportRequest carries the scroll container state in pixels
type ViewportRequest struct {
	Width      float64 `json:"width" validate:"min=0"`
	Height     float64 `json:"height" validate:"min=0"`
	ScrollTop  float64 `json:"scroll_top" validate:"min=0"`
	ScrollLeft float64 `json:"scroll_left" validate:"min=0"`
}

// ItemSizeRequest carries the rendered seat size in pixels
type ItemSizeRequest struct {
	Width   float64 `json:"width" validate:"gt=0"`
	Height  float64 `json:"height" validate:"gt=0"`
	MarginX float64 `json:"margin_x" validate:"min=0"`
	MarginY float64 `json:"margin_y" validate:"min=0"`
}

// PurchaseRequest starts a batch; Wait blocks until every seat settles
type PurchaseRequest struct {
	Wait bool `json:"wait"`
}
