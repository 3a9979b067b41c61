package routes

import (
	"fleet_ops/internal/controllers"
	"fleet_ops/internal/middleware"

	"github.com/gin-gonic/gin"
)

func CoordinatorRoutes(r *gin.Engine) {
	coord := r.Group("/coordinator")
	coord.Use(middleware.RequireAuthWithRole("coordinator"))
	{
		coord.GET("/dashboard", controllers.CoordinatorDashboard)
		coord.GET("/routes", controllers.ListRoutes)
		coord.GET("/routes/:id", controllers.GetRoute)
	}
}
