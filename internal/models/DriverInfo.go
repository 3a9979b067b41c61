// internal/models/driver_info.go
package models

import "gorm.io/gorm"

// DriverInfo carries the driver-specific profile for a user with the
// "driver" role. License and assignment data live here, not on User.
type DriverInfo struct {
	gorm.Model
	UserID      uint                `json:"user_id" gorm:"uniqueIndex"`
	LicenseType string              `json:"license_type"`
	Active      bool                `json:"active" gorm:"default:true"`
	Vehicles    []VehicleAssignment `gorm:"foreignKey:DriverInfoID" json:"vehicles,omitempty"`
}
