package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fleet_ops/internal/config"
	"fleet_ops/internal/models"
)

// AddVehicle registers a new fleet vehicle; plate numbers are unique.
func AddVehicle(c *gin.Context) {
	var input struct {
		Brand       string `json:"brand" binding:"required"`
		Model       string `json:"model" binding:"required"`
		Year        int    `json:"year" binding:"required"`
		PlateNumber string `json:"plate_number" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle input: " + err.Error()})
		return
	}

	vehicle := models.Vehicle{
		Brand:        input.Brand,
		VehicleModel: input.Model,
		Year:         input.Year,
		PlateNumber:  input.PlateNumber,
		Active:       true,
	}

	if err := config.DB.Create(&vehicle).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "A vehicle with that plate already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create vehicle: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"vehicle": vehicle})
}

// ListVehicles returns active vehicles ordered by brand.
func ListVehicles(c *gin.Context) {
	var vehicles []models.Vehicle
	if err := config.DB.Where("active = ?", true).Order("brand").Find(&vehicles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing vehicles: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": vehicles})
}
