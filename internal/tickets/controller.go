package tickets

import (
	"errors"
	"net/http"

	"ticketplan/internal/shared/utils/response"
	"ticketplan/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Controller serves the ticket API. Successful responses are bare JSON
// values; failures use the {error, message, timestamp} shape.
type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (c *Controller) respondServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrMapNotFound):
		response.RespondError(ctx, http.StatusNotFound, "MAP_NOT_FOUND", "map "+ctx.Param("mapId")+" not found")
	case errors.Is(err, ErrSeatOutOfRange):
		response.RespondError(ctx, http.StatusBadRequest, "SEAT_OUT_OF_RANGE", err.Error())
	default:
		logger.GetDefault().LogHTTPError(ctx, err, http.StatusInternalServerError)
		response.RespondError(ctx, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func (c *Controller) ListMaps(ctx *gin.Context) {
	ids, err := c.service.ListMaps(ctx.Request.Context())
	if err != nil {
		c.respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, ids)
}

func (c *Controller) GetSeatMap(ctx *gin.Context) {
	seats, err := c.service.GetSeatMap(ctx.Request.Context(), ctx.Param("mapId"))
	if err != nil {
		c.respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, seats)
}

func (c *Controller) PurchaseTicket(ctx *gin.Context) {
	var req PurchaseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := c.service.PurchaseTicket(ctx.Request.Context(), ctx.Param("mapId"), *req.X, *req.Y)
	if err != nil {
		c.respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}
