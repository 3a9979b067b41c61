package routes

import (
	"fleet_ops/internal/controllers"
	"fleet_ops/internal/middleware"

	"github.com/gin-gonic/gin"
)

func TechnicianRoutes(r *gin.Engine) {
	tech := r.Group("/technician")
	tech.Use(middleware.RequireAuthWithRole("technician"))
	{
		tech.GET("/users", controllers.ListUsers)
		tech.POST("/users/:id/password", controllers.ChangeUserPassword)
		tech.POST("/users/:id/toggle", controllers.ToggleUserStatus)
	}
}
