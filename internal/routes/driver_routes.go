package routes

import (
	"fleet_ops/internal/controllers"
	"fleet_ops/internal/middleware"
	"github.com/gin-gonic/gin"
)

func DriverRoutes(r *gin.Engine) {
	driver := r.Group("/driver")
	driver.Use(middleware.RequireAuthWithRole("driver"))
	{
		driver.GET("/dashboard", controllers.DriverDashboard)
		driver.GET("/routes", controllers.ListRoutes)
		driver.GET("/routes/:id", controllers.GetRoute)
		driver.GET("/history", controllers.RouteHistory)
		driver.POST("/routes/:id/start", controllers.StartRoute)
		driver.POST("/completions/:id/position", controllers.UpdateProgress)
		driver.POST("/completions/:id/complete", controllers.CompleteRoute)
		driver.POST("/completions/:id/cancel", controllers.CancelRoute)
	}
}
