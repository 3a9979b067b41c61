package routes

import (
	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"

	"fleet_ops/internal/controllers"
)

func SetupRouter() *gin.Engine {
	r := gin.New()

	// Middleware must precede route registration to apply to it.
	r.Use(gin.Recovery())
	r.Use(ginlog.SetLogger())

	AuthRoutes(r)
	AdminRoutes(r)
	TechnicianRoutes(r)
	CoordinatorRoutes(r)
	DriverRoutes(r)

	// Rendered map documents and canonical GPX uploads.
	r.Static("/static/routes", controllers.MapDir)
	r.Static("/uploads", controllers.UploadDir)

	return r
}
