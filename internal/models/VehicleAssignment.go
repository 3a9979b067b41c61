package models

import (
	"time"

	"gorm.io/gorm"
)

// VehicleAssignment links a driver profile to a vehicle they may operate.
type VehicleAssignment struct {
	gorm.Model
	DriverInfoID uint      `json:"driver_info_id" gorm:"index"`
	VehicleID    uint      `json:"vehicle_id" gorm:"index"`
	AssignedAt   time.Time `json:"assigned_at"`
	Active       bool      `json:"active" gorm:"default:true"`
}
