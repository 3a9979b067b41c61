package models

import (
	"gorm.io/gorm"
)

// Route is a planned service path produced by the route planner from
// uploaded GPS tracks.
type Route struct {
	gorm.Model

	Name        string `json:"name" gorm:"unique;not null" binding:"required"`
	Description string `json:"description"`
	CreatorID   uint   `json:"creator_id"`

	// MapPath points at the rendered map document; TrackPath at the
	// canonical uploaded GPX file.
	MapPath   string `json:"map_path"`
	TrackPath string `json:"track_path"`

	// Optimized path as a WKB LINESTRING (SRID 4326).
	Geometry []byte `gorm:"type:bytea" json:"-"`

	// Start and end as "lat,lng" strings.
	StartPoint string `json:"start_point"`
	EndPoint   string `json:"end_point"`

	// Distance is the raw walked total over the uploaded tracks in
	// meters. It can exceed the optimized path's own length when the
	// optimizer shortcuts through revisited nodes.
	Distance float64 `json:"distance"`

	Active bool `json:"active" gorm:"default:true"`

	Completions []RouteCompletion `gorm:"foreignKey:RouteID" json:"completions,omitempty"`
}
