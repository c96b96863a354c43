package plans

import (
	"errors"
	"net/http"
	"strconv"

	"ticketplan/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

func (c *Controller) respondServiceError(ctx *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, ErrPlanNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Plan not found", nil, err.Error())
	case errors.Is(err, ErrToastNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Toast not found", nil, err.Error())
	case errors.Is(err, ErrSeatOutOfGrid):
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Seat not found", nil, err.Error())
	default:
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, message, nil, err.Error())
	}
}

// bind decodes and validates a JSON body, answering 400 on failure.
func (c *Controller) bind(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return false
	}
	if err := c.validator.Struct(req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return false
	}
	return true
}

func seatParams(ctx *gin.Context) (int, int, bool) {
	row, err := strconv.Atoi(ctx.Param("row"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid row", nil, err.Error())
		return 0, 0, false
	}
	col, err := strconv.Atoi(ctx.Param("col"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid column", nil, err.Error())
		return 0, 0, false
	}
	return row, col, true
}

//  SALONS

func (c *Controller) ListSalons(ctx *gin.Context) {
	salons, err := c.service.ListSalons(ctx.Request.Context())
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadGateway, "Failed to load salons", nil, err.Error())
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Salons retrieved successfully", salons, nil)
}

//  PLANS

func (c *Controller) OpenPlan(ctx *gin.Context) {
	var req OpenPlanRequest
	if !c.bind(ctx, &req) {
		return
	}

	plan, err := c.service.OpenPlan(ctx.Request.Context(), req)
	if err != nil {
		c.respondServiceError(ctx, "Failed to open plan", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "Plan opened successfully", plan, nil)
}

func (c *Controller) GetPlan(ctx *gin.Context) {
	plan, err := c.service.GetPlan(ctx.Request.Context(), ctx.Param("planId"))
	if err != nil {
		c.respondServiceError(ctx, "Failed to get plan", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Plan retrieved successfully", plan, nil)
}

func (c *Controller) RetryLoad(ctx *gin.Context) {
	plan, err := c.service.RetryLoad(ctx.Request.Context(), ctx.Param("planId"))
	if err != nil {
		c.respondServiceError(ctx, "Failed to reload seat map", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Seat map reloaded", plan, nil)
}

func (c *Controller) Navigate(ctx *gin.Context) {
	var req NavigateRequest
	if !c.bind(ctx, &req) {
		return
	}

	plan, err := c.service.Navigate(ctx.Request.Context(), ctx.Param("planId"), req)
	if err != nil {
		c.respondServiceError(ctx, "Failed to change map", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Map changed successfully", plan, nil)
}

func (c *Controller) ClosePlan(ctx *gin.Context) {
	if err := c.service.ClosePlan(ctx.Request.Context(), ctx.Param("planId")); err != nil {
		c.respondServiceError(ctx, "Failed to close plan", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Plan closed successfully", nil, nil)
}

//  SEATS

func (c *Controller) ToggleSeat(ctx *gin.Context) {
	var req ToggleSeatRequest
	if !c.bind(ctx, &req) {
		return
	}

	result, err := c.service.ToggleSeat(ctx.Request.Context(), ctx.Param("planId"), *req.Row, *req.Col)
	if err != nil {
		c.respondServiceError(ctx, "Failed to toggle seat", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Seat toggled", result, nil)
}

func (c *Controller) GetSeat(ctx *gin.Context) {
	row, col, ok := seatParams(ctx)
	if !ok {
		return
	}

	seat, err := c.service.GetSeat(ctx.Request.Context(), ctx.Param("planId"), row, col)
	if err != nil {
		c.respondServiceError(ctx, "Failed to get seat", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Seat retrieved successfully", seat, nil)
}

func (c *Controller) GetSelection(ctx *gin.Context) {
	selection, err := c.service.GetSelection(ctx.Request.Context(), ctx.Param("planId"))
	if err != nil {
		c.respondServiceError(ctx, "Failed to get selection", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Selection retrieved successfully", selection, nil)
}

func (c *Controller) ClearSelection(ctx *gin.Context) {
	selection, err := c.service.ClearSelection(ctx.Request.Context(), ctx.Param("planId"))
	if err != nil {
		c.respondServiceError(ctx, "Failed to clear selection", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Selection cleared", selection, nil)
}

//  VIEWPORT

func (c *Controller) UpdateViewport(ctx *gin.Context) {
	var req ViewportRequest
	if !c.bind(ctx, &req) {
		return
	}

	win, err := c.service.UpdateViewport(ctx.Request.Context(), ctx.Param("planId"), req)
	if err != nil {
		c.respondServiceError(ctx, "Failed to update viewport", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Viewport updated", win, nil)
}

func (c *Controller) UpdateItemSize(ctx *gin.Context) {
	var req ItemSizeRequest
	if !c.bind(ctx, &req) {
		return
	}

	win, err := c.service.UpdateItemSize(ctx.Request.Context(), ctx.Param("planId"), req)
	if err != nil {
		c.respondServiceError(ctx, "Failed to update item size", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Item size updated", win, nil)
}

func (c *Controller) GetWindow(ctx *gin.Context) {
	win, err := c.service.GetWindow(ctx.Request.Context(), ctx.Param("planId"))
	if err != nil {
		c.respondServiceError(ctx, "Failed to get window", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Window retrieved successfully", win, nil)
}

//  PURCHASE

func (c *Controller) Purchase(ctx *gin.Context) {
	var req PurchaseRequest
	if ctx.Request.ContentLength > 0 && !c.bind(ctx, &req) {
		return
	}

	result, err := c.service.Purchase(ctx.Request.Context(), ctx.Param("planId"), req)
	if err != nil {
		c.respondServiceError(ctx, "Failed to purchase seats", err)
		return
	}

	switch {
	case !result.Accepted:
		response.RespondJSON(ctx, "success", http.StatusOK, "Purchase not started", result, nil)
	case result.Summary != nil:
		response.RespondJSON(ctx, "success", http.StatusOK, "Purchase completed", result, nil)
	default:
		response.RespondJSON(ctx, "success", http.StatusAccepted, "Purchase started", result, nil)
	}
}

//  TOASTS

func (c *Controller) ListToasts(ctx *gin.Context) {
	toasts, err := c.service.ListToasts(ctx.Request.Context(), ctx.Param("planId"))
	if err != nil {
		c.respondServiceError(ctx, "Failed to get toasts", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Toasts retrieved successfully", toasts, nil)
}

func (c *Controller) DismissToast(ctx *gin.Context) {
	err := c.service.DismissToast(ctx.Request.Context(), ctx.Param("planId"), ctx.Param("toastId"))
	if err != nil {
		c.respondServiceError(ctx, "Failed to dismiss toast", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Toast dismissed", nil, nil)
}
