package tracker

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleet_ops/internal/models"
)

// Taxonomy of tracker failures. Each operation is local to one completion
// record; a failure never corrupts it or touches other drivers' state.
var (
	ErrNotFound     = errors.New("record not found")
	ErrForbidden    = errors.New("completion belongs to another driver")
	ErrInvalidState = errors.New("completion is not in progress")
	ErrDriverBusy   = errors.New("driver already has a route in progress")
)

// cancelPrefix marks cancellation reasons embedded into the notes field.
const cancelPrefix = "Canceled: "

// Service manages the lifecycle of route executions: start, position
// updates, completion and cancellation.
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Start creates a new in_progress completion for the driver. The partial
// unique index on (driver_id) WHERE status='in_progress' is the authority
// for the one-active-route rule; the pre-check only gives a friendlier
// answer on the common path, the index decides races.
func (s *Service) Start(routeID, driverID, vehicleID uint) (*models.RouteCompletion, error) {
	var route models.Route
	if err := s.db.Where("active = ?", true).First(&route, routeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("route %d: %w", routeID, ErrNotFound)
		}
		return nil, err
	}

	var vehicle models.Vehicle
	if err := s.db.First(&vehicle, vehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("vehicle %d: %w", vehicleID, ErrNotFound)
		}
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.RouteCompletion{}).
		Where("driver_id = ? AND status = ?", driverID, models.StatusInProgress).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDriverBusy
	}

	now := time.Now().UTC()
	completion := models.RouteCompletion{
		RouteID:   route.ID,
		DriverID:  driverID,
		VehicleID: vehicle.ID,
		StartedAt: &now,
		Status:    models.StatusInProgress,
	}
	if err := s.db.Create(&completion).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDriverBusy
		}
		return nil, err
	}
	return &completion, nil
}

// UpdatePosition appends one position to the completion's log. Entries are
// ordered by arrival at the tracker, not by client timestamps, so the
// read-append-write runs under a row lock.
func (s *Service) UpdatePosition(completionID, driverID uint, lat, lng float64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		completion, err := s.lockOwned(tx, completionID, driverID)
		if err != nil {
			return err
		}

		var log []models.TrackPosition
		if completion.TrackData != "" {
			if err := json.Unmarshal([]byte(completion.TrackData), &log); err != nil {
				return fmt.Errorf("corrupt track data on completion %d: %w", completionID, err)
			}
		}
		log = append(log, models.TrackPosition{Lat: lat, Lng: lng, Timestamp: time.Now().UTC()})

		data, err := json.Marshal(log)
		if err != nil {
			return err
		}
		return tx.Model(completion).Update("track_data", string(data)).Error
	})
}

// Complete transitions the completion to its completed terminal state,
// storing the optional notes verbatim.
func (s *Service) Complete(completionID, driverID uint, notes string) (*models.RouteCompletion, error) {
	var completion *models.RouteCompletion
	err := s.db.Transaction(func(tx *gorm.DB) error {
		c, err := s.lockOwned(tx, completionID, driverID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		c.Status = models.StatusCompleted
		c.CompletedAt = &now
		if notes != "" {
			c.Notes = notes
		}
		completion = c
		return tx.Save(c).Error
	})
	if err != nil {
		return nil, err
	}
	return completion, nil
}

// Cancel transitions the completion to its canceled terminal state. The
// reason is embedded into the notes with a recognizable prefix; CompletedAt
// stays unset.
func (s *Service) Cancel(completionID, driverID uint, reason string) (*models.RouteCompletion, error) {
	var completion *models.RouteCompletion
	err := s.db.Transaction(func(tx *gorm.DB) error {
		c, err := s.lockOwned(tx, completionID, driverID)
		if err != nil {
			return err
		}
		c.Status = models.StatusCanceled
		if reason != "" {
			c.Notes = cancelPrefix + reason
		}
		completion = c
		return tx.Save(c).Error
	})
	if err != nil {
		return nil, err
	}
	return completion, nil
}

// InProgress returns the driver's active completion, or nil when idle.
func (s *Service) InProgress(driverID uint) (*models.RouteCompletion, error) {
	var completion models.RouteCompletion
	err := s.db.Where("driver_id = ? AND status = ?", driverID, models.StatusInProgress).
		First(&completion).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &completion, nil
}

// History lists the driver's completions, newest activity first.
func (s *Service) History(driverID uint) ([]models.RouteCompletion, error) {
	var completions []models.RouteCompletion
	err := s.db.Preload("Route").Preload("Vehicle").
		Where("driver_id = ?", driverID).
		Order("started_at DESC").
		Find(&completions).Error
	return completions, err
}

// Positions decodes a completion's position log.
func Positions(c *models.RouteCompletion) ([]models.TrackPosition, error) {
	if c.TrackData == "" {
		return nil, nil
	}
	var log []models.TrackPosition
	if err := json.Unmarshal([]byte(c.TrackData), &log); err != nil {
		return nil, err
	}
	return log, nil
}

// lockOwned fetches a completion under a row lock and applies the shared
// ownership and state guards. SQLite has no FOR UPDATE but serializes
// writers on its own, so the lock is only requested on Postgres.
func (s *Service) lockOwned(tx *gorm.DB, completionID, driverID uint) (*models.RouteCompletion, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var completion models.RouteCompletion
	if err := q.First(&completion, completionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("completion %d: %w", completionID, ErrNotFound)
		}
		return nil, err
	}
	if completion.DriverID != driverID {
		return nil, ErrForbidden
	}
	if completion.Status != models.StatusInProgress {
		return nil, ErrInvalidState
	}
	return &completion, nil
}
