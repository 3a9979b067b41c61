// internal/models/vehicle.go
package models

import "gorm.io/gorm"

type Vehicle struct {
	gorm.Model
	Brand        string `json:"brand" binding:"required"`
	VehicleModel string `json:"model" gorm:"column:model" binding:"required"`
	Year         int    `json:"year"`
	PlateNumber  string `json:"plate_number" gorm:"unique;not null"`
	Active       bool   `json:"active" gorm:"default:true"`

	Drivers []VehicleAssignment `gorm:"foreignKey:VehicleID" json:"drivers,omitempty"`
}
