package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet_ops/internal/config"
	"fleet_ops/internal/middleware"
	"fleet_ops/internal/models"
)

// AdminDashboard aggregates headline counts plus the latest routes.
func AdminDashboard(c *gin.Context) {
	var totalUsers, totalDrivers, totalVehicles, totalRoutes int64
	config.DB.Model(&models.User{}).Where("active = ?", true).Count(&totalUsers)
	config.DB.Model(&models.User{}).Where("role = ? AND active = ?", "driver", true).Count(&totalDrivers)
	config.DB.Model(&models.Vehicle{}).Where("active = ?", true).Count(&totalVehicles)
	config.DB.Model(&models.Route{}).Where("active = ?", true).Count(&totalRoutes)

	var recentRoutes []models.Route
	config.DB.Order("created_at DESC").Limit(5).Find(&recentRoutes)

	c.JSON(http.StatusOK, gin.H{
		"total_users":    totalUsers,
		"total_drivers":  totalDrivers,
		"total_vehicles": totalVehicles,
		"total_routes":   totalRoutes,
		"recent_routes":  recentRoutes,
	})
}

// CoordinatorDashboard reports fleet-wide execution metrics. The
// in_progress and completed counts are global across drivers.
func CoordinatorDashboard(c *gin.Context) {
	var totalRoutes, completed, inProgress, totalDrivers int64
	config.DB.Model(&models.Route{}).Where("active = ?", true).Count(&totalRoutes)
	config.DB.Model(&models.RouteCompletion{}).Where("status = ?", models.StatusCompleted).Count(&completed)
	config.DB.Model(&models.RouteCompletion{}).Where("status = ?", models.StatusInProgress).Count(&inProgress)
	config.DB.Model(&models.User{}).Where("role = ? AND active = ?", "driver", true).Count(&totalDrivers)

	var recent []models.RouteCompletion
	config.DB.Preload("Route").Preload("Vehicle").
		Order("completed_at DESC").Limit(10).Find(&recent)

	c.JSON(http.StatusOK, gin.H{
		"total_routes":       totalRoutes,
		"completed_routes":   completed,
		"in_progress_routes": inProgress,
		"total_drivers":      totalDrivers,
		"recent_completions": recent,
	})
}

// DriverDashboard gathers everything a driver's home screen needs: their
// profile, the available fleet, recent history and any active run.
func DriverDashboard(c *gin.Context) {
	driverID := middleware.UserID(c)

	var info models.DriverInfo
	hasInfo := config.DB.Where("user_id = ?", driverID).First(&info).Error == nil

	var vehicles []models.Vehicle
	config.DB.Where("active = ?", true).Find(&vehicles)

	var routes []models.Route
	config.DB.Where("active = ?", true).Order("created_at DESC").Find(&routes)

	var recent []models.RouteCompletion
	config.DB.Where("driver_id = ?", driverID).
		Order("completed_at DESC").Limit(5).Find(&recent)

	inProgress, err := trackerService().InProgress(driverID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading dashboard: " + err.Error()})
		return
	}

	resp := gin.H{
		"available_vehicles": vehicles,
		"available_routes":   routes,
		"recent_completions": recent,
		"in_progress":        inProgress,
	}
	if hasInfo {
		resp["driver_info"] = info
	}
	c.JSON(http.StatusOK, resp)
}
