package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Username  string `json:"username" gorm:"unique;not null"`
	Email     string `json:"email" gorm:"unique;not null"`
	Password  string `json:"-"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Cedula    string `json:"cedula" gorm:"unique;not null"`
	Role      string `json:"role" gorm:"default:driver"` // "admin", "driver", "technician", "coordinator"
	Active    bool   `json:"active" gorm:"default:true"`

	DriverInfo  *DriverInfo       `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"driver_info,omitempty"`
	Routes      []Route           `gorm:"foreignKey:CreatorID" json:"routes,omitempty"`
	Completions []RouteCompletion `gorm:"foreignKey:DriverID" json:"completions,omitempty"`
}
