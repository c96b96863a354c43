package plans

import (
	"github.com/gin-gonic/gin"
)

func SetupPlanRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.GET("/salons", controller.ListSalons) // GET /api/v1/salons

	plans := rg.Group("/plans")
	{
		plans.POST("", controller.OpenPlan)                  // POST /api/v1/plans
		plans.GET("/:planId", controller.GetPlan)            // GET /api/v1/plans/:planId
		plans.POST("/:planId/retry", controller.RetryLoad)   // POST /api/v1/plans/:planId/retry
		plans.PUT("/:planId/map", controller.Navigate)       // PUT /api/v1/plans/:planId/map
		plans.DELETE("/:planId", controller.ClosePlan)       // DELETE /api/v1/plans/:planId
		plans.POST("/:planId/purchase", controller.Purchase) // POST /api/v1/plans/:planId/purchase

		// Seats and selection
		plans.POST("/:planId/seats/toggle", controller.ToggleSeat)    // POST /api/v1/plans/:planId/seats/toggle
		plans.GET("/:planId/seats/:row/:col", controller.GetSeat)     // GET /api/v1/plans/:planId/seats/:row/:col
		plans.GET("/:planId/selection", controller.GetSelection)      // GET /api/v1/plans/:planId/selection
		plans.DELETE("/:planId/selection", controller.ClearSelection) // DELETE /api/v1/plans/:planId/selection

		// Render window
		plans.PUT("/:planId/viewport", controller.UpdateViewport)  // PUT /api/v1/plans/:planId/viewport
		plans.PUT("/:planId/item-size", controller.UpdateItemSize) // PUT /api/v1/plans/:planId/item-size
		plans.GET("/:planId/window", controller.GetWindow)         // GET /api/v1/plans/:planId/window

		// Toasts
		plans.GET("/:planId/toasts", controller.ListToasts)               // GET /api/v1/plans/:planId/toasts
		plans.DELETE("/:planId/toasts/:toastId", controller.DismissToast) // DELETE /api/v1/plans/:planId/toasts/:toastId
	}
}
