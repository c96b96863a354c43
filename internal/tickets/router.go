package tickets

import (
	"github.com/gin-gonic/gin"
)

func SetupTicketRoutes(rg gin.IRouter, controller *Controller) {
	m := rg.Group("/map")
	{
		m.GET("", controller.ListMaps)                      // GET /map
		m.GET("/:mapId", controller.GetSeatMap)             // GET /map/:mapId
		m.POST("/:mapId/ticket", controller.PurchaseTicket) // POST /map/:mapId/ticket
	}
}
