package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fleet_ops/internal/config"
	"fleet_ops/internal/middleware"
	"fleet_ops/internal/tracker"
)

// trackerService builds the execution tracker over the global DB handle.
// Constructed per request so tests can swap config.DB.
func trackerService() *tracker.Service {
	return tracker.New(config.DB)
}

// trackerStatus maps tracker failures onto HTTP status codes.
func trackerStatus(err error) int {
	switch {
	case errors.Is(err, tracker.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, tracker.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, tracker.ErrDriverBusy):
		return http.StatusConflict
	case errors.Is(err, tracker.ErrInvalidState):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// StartRoute begins executing a route with the selected vehicle.
func StartRoute(c *gin.Context) {
	driverID := middleware.UserID(c)
	routeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route ID"})
		return
	}

	var body struct {
		VehicleID uint `json:"vehicle_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A vehicle must be selected: " + err.Error()})
		return
	}

	completion, err := trackerService().Start(uint(routeID), driverID, body.VehicleID)
	if err != nil {
		c.JSON(trackerStatus(err), gin.H{"error": err.Error()})
		return
	}

	logrus.WithField("driver_id", driverID).WithField("completion_id", completion.ID).
		Info("route started")
	c.JSON(http.StatusCreated, gin.H{"completion_id": completion.ID, "completion": completion})
}

// UpdateProgress appends a live position to the active completion's log.
func UpdateProgress(c *gin.Context) {
	driverID := middleware.UserID(c)
	completionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid completion ID"})
		return
	}

	var body struct {
		Position struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"position" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Position data required: " + err.Error()})
		return
	}

	if err := trackerService().UpdatePosition(uint(completionID), driverID, body.Position.Lat, body.Position.Lng); err != nil {
		c.JSON(trackerStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Position updated"})
}

// CompleteRoute finishes the active completion, optionally storing notes.
func CompleteRoute(c *gin.Context) {
	driverID := middleware.UserID(c)
	completionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid completion ID"})
		return
	}

	var body struct {
		Notes string `json:"notes"`
	}
	_ = c.ShouldBindJSON(&body) // notes are optional; an empty body is fine

	completion, err := trackerService().Complete(uint(completionID), driverID, body.Notes)
	if err != nil {
		c.JSON(trackerStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Route completed successfully", "completion": completion})
}

// CancelRoute abandons the active completion, embedding the reason in notes.
func CancelRoute(c *gin.Context) {
	driverID := middleware.UserID(c)
	completionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid completion ID"})
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&body)

	completion, err := trackerService().Cancel(uint(completionID), driverID, body.Reason)
	if err != nil {
		c.JSON(trackerStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Route canceled", "completion": completion})
}

// RouteHistory lists the authenticated driver's past and current
// completions.
func RouteHistory(c *gin.Context) {
	driverID := middleware.UserID(c)
	completions, err := trackerService().History(driverID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading history: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"completions": completions})
}
