package routes

import (
	"fleet_ops/internal/controllers"
	"fleet_ops/internal/middleware"

	"github.com/gin-gonic/gin"
)

func AdminRoutes(r *gin.Engine) {
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAuthWithRole("admin"))
	{
		admin.GET("/dashboard", controllers.AdminDashboard)
		admin.GET("/users", controllers.ListUsers)
		admin.POST("/users", controllers.SignupUser)
		admin.GET("/routes", controllers.ListRoutes)
		admin.POST("/routes", controllers.CreateRoute)
		admin.GET("/routes/:id", controllers.GetRoute)
		admin.DELETE("/routes/:id", controllers.DeleteRoute)
		admin.GET("/vehicles", controllers.ListVehicles)
		admin.POST("/vehicles", controllers.AddVehicle)
	}
}
