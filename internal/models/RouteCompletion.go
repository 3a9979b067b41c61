package models

import (
	"time"

	"gorm.io/gorm"
)

// Completion lifecycle states. Records are created directly in_progress;
// pending exists for reporting compatibility but is never assigned.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCanceled   = "canceled"
)

// RouteCompletion is one driver's attempt to execute a route, retained as
// execution history and never deleted. TrackData holds the ordered position
// log serialized as JSON.
type RouteCompletion struct {
	gorm.Model
	RouteID     uint       `json:"route_id" gorm:"index;not null"`
	DriverID    uint       `json:"driver_id" gorm:"index;not null"`
	VehicleID   uint       `json:"vehicle_id" gorm:"not null"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	Status      string     `json:"status" gorm:"default:pending"`
	TrackData   string     `json:"track_data"`
	Notes       string     `json:"notes"`

	Route   Route   `gorm:"foreignKey:RouteID" json:"route,omitempty"`
	Vehicle Vehicle `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
}

// TrackPosition is one entry of a completion's position log.
type TrackPosition struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
}
