package controllers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fleet_ops/internal/artifact"
	"fleet_ops/internal/config"
	"fleet_ops/internal/geo"
	"fleet_ops/internal/middleware"
	"fleet_ops/internal/models"
	"fleet_ops/internal/planner"
	"fleet_ops/internal/track"
)

// UploadDir holds canonical GPX uploads; MapDir the rendered map documents.
// Both are overridable for deployments with mounted storage.
var (
	UploadDir = envOr("UPLOAD_DIR", "./uploads")
	MapDir    = envOr("MAP_DIR", "./static/routes")
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// CreateRoute ingests one or more uploaded GPX files, plans the route and
// persists the record together with its map artifact. Any failure along the
// pipeline leaves no partial route behind.
func CreateRoute(c *gin.Context) {
	creatorID := middleware.UserID(c)

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form: " + err.Error()})
		return
	}

	name := strings.TrimSpace(c.PostForm("route_name"))
	description := c.PostForm("route_description")
	files := form.File["gpx_files"]
	if name == "" || len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Route name and GPX files are required"})
		return
	}

	var existing models.Route
	if err := config.DB.Where("name = ?", name).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A route with that name already exists"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
		return
	}

	// Ingest every file independently; sequences concatenate in upload
	// order but no edge bridges one file to the next.
	var segments [][]geo.Point
	var written []string
	trackPath := ""
	cleanup := func() {
		// Best effort only; a leftover file is preferable to masking
		// the original failure.
		for _, p := range written {
			_ = os.Remove(p)
		}
	}

	for _, fh := range files {
		if !strings.HasSuffix(strings.ToLower(fh.Filename), ".gpx") {
			continue
		}
		points, err := ingestUpload(fh)
		if err != nil {
			cleanup()
			status := http.StatusBadRequest
			if !errors.Is(err, track.ErrParse) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": "Could not parse track file: " + err.Error()})
			return
		}
		segments = append(segments, points)

		saved, err := saveUpload(fh)
		if err != nil {
			cleanup()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not store track file: " + err.Error()})
			return
		}
		written = append(written, saved)
		if trackPath == "" {
			trackPath = saved
		}
	}

	if len(segments) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No valid GPX files uploaded"})
		return
	}

	graph, err := planner.Build(segments...)
	if err != nil {
		cleanup()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	route, _, err := planner.Optimize(graph)
	if err != nil {
		cleanup()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	art, err := artifact.Build(route, graph.TotalDistance)
	if err != nil {
		cleanup()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not build map artifact: " + err.Error()})
		return
	}

	if err := os.MkdirAll(MapDir, 0o755); err != nil {
		cleanup()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not prepare map directory: " + err.Error()})
		return
	}
	mapPath := filepath.Join(MapDir, fmt.Sprintf("route_%s.html", uuid.New().String()))
	if err := os.WriteFile(mapPath, art.HTML, 0o644); err != nil {
		cleanup()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not write map artifact: " + err.Error()})
		return
	}
	written = append(written, mapPath)

	record := models.Route{
		Name:        name,
		Description: description,
		CreatorID:   creatorID,
		MapPath:     mapPath,
		TrackPath:   trackPath,
		Geometry:    art.WKB,
		StartPoint:  art.Summary.Start.String(),
		EndPoint:    art.Summary.End.String(),
		Distance:    art.Summary.TotalDistance,
		Active:      true,
	}
	if err := config.DB.Create(&record).Error; err != nil {
		cleanup()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "A route with that name already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Create route failed: " + err.Error()})
		return
	}

	logrus.WithField("route_id", record.ID).WithField("distance_m", record.Distance).
		Info("route created")
	c.JSON(http.StatusCreated, gin.H{"route": record})
}

func ingestUpload(fh *multipart.FileHeader) ([]geo.Point, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return track.Points(fh.Filename, f)
}

func saveUpload(fh *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(UploadDir, 0o755); err != nil {
		return "", err
	}
	stamp := time.Now().Format("20060102150405")
	dest := filepath.Join(UploadDir, fmt.Sprintf("%s_%s", stamp, filepath.Base(fh.Filename)))

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer out.Close()
	if _, err := out.ReadFrom(src); err != nil {
		os.Remove(dest)
		return "", err
	}
	return dest, nil
}

// ListRoutes returns active routes, newest first.
func ListRoutes(c *gin.Context) {
	var routes []models.Route
	if err := config.DB.Where("active = ?", true).Order("created_at DESC").Find(&routes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing routes: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": routes})
}

// GetRoute returns one route with its execution history.
func GetRoute(c *gin.Context) {
	rID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route ID"})
		return
	}

	var route models.Route
	if err := config.DB.First(&route, uint(rID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	var completions []models.RouteCompletion
	config.DB.Preload("Vehicle").Where("route_id = ?", route.ID).
		Order("completed_at DESC").Find(&completions)

	c.JSON(http.StatusOK, gin.H{"route": route, "completions": completions})
}

// DeleteRoute removes the route record and its stored artifacts. Deletion is
// destructive: the row is hard-deleted, file removal is best effort.
func DeleteRoute(c *gin.Context) {
	rID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route ID"})
		return
	}

	var route models.Route
	if err := config.DB.First(&route, uint(rID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	for _, p := range []string{route.MapPath, route.TrackPath} {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			logrus.WithError(err).WithField("path", p).Warn("could not remove route artifact")
		}
	}

	if err := config.DB.Unscoped().Delete(&route).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete route: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Route deleted successfully"})
}
