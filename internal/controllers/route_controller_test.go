package controllers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"fleet_ops/internal/config"
	"fleet_ops/internal/models"
)

const validGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
  <trk><trkseg>
    <trkpt lat="-1.2864" lon="36.8172"></trkpt>
    <trkpt lat="-1.2850" lon="36.8160"></trkpt>
    <trkpt lat="-1.2840" lon="36.8150"></trkpt>
  </trkseg></trk>
</gpx>`

const farGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
  <trk><trkseg>
    <trkpt lat="51.5074" lon="-0.1278"></trkpt>
    <trkpt lat="51.5080" lon="-0.1290"></trkpt>
  </trkseg></trk>
</gpx>`

func setupTestEnv(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&models.User{}, &models.DriverInfo{}, &models.Vehicle{},
		&models.VehicleAssignment{}, &models.Route{}, &models.RouteCompletion{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	config.DB = db

	oldUpload, oldMap := UploadDir, MapDir
	UploadDir = t.TempDir()
	MapDir = t.TempDir()
	t.Cleanup(func() { UploadDir, MapDir = oldUpload, oldMap })
}

func multipartRoute(t *testing.T, name string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("route_name", name); err != nil {
		t.Fatalf("write field: %v", err)
	}
	for fname, content := range files {
		fw, err := w.CreateFormFile("gpx_files", fname)
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

func postRoute(t *testing.T, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/admin/routes", body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req
	c.Set("user_id", float64(1))
	c.Set("role", "admin")
	CreateRoute(c)
	return w
}

func countRoutes(t *testing.T) int64 {
	t.Helper()
	var n int64
	config.DB.Model(&models.Route{}).Count(&n)
	return n
}

func dirEntries(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	return len(entries)
}

func TestCreateRouteSuccess(t *testing.T) {
	setupTestEnv(t)

	body, ct := multipartRoute(t, "cbd-loop", map[string]string{"a.gpx": validGPX})
	w := postRoute(t, body, ct)
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}

	var route models.Route
	if err := config.DB.Where("name = ?", "cbd-loop").First(&route).Error; err != nil {
		t.Fatalf("route not persisted: %v", err)
	}
	if route.Distance <= 0 {
		t.Fatalf("distance %v, want > 0", route.Distance)
	}
	if route.StartPoint != "-1.2864,36.8172" || route.EndPoint != "-1.284,36.815" {
		t.Fatalf("endpoints %q -> %q", route.StartPoint, route.EndPoint)
	}
	if _, err := os.Stat(route.MapPath); err != nil {
		t.Fatalf("map artifact missing: %v", err)
	}
	if filepath.Dir(route.MapPath) != MapDir {
		t.Fatalf("map written outside MapDir: %s", route.MapPath)
	}
}

func TestCreateRouteMalformedTrackPersistsNothing(t *testing.T) {
	setupTestEnv(t)

	body, ct := multipartRoute(t, "broken", map[string]string{"bad.gpx": "<gpx><trk>"})
	w := postRoute(t, body, ct)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
	if n := countRoutes(t); n != 0 {
		t.Fatalf("%d routes persisted after failure", n)
	}
	if n := dirEntries(t, MapDir); n != 0 {
		t.Fatalf("%d leftover map artifacts", n)
	}
}

func TestCreateRouteDisjointTracksPersistsNothing(t *testing.T) {
	setupTestEnv(t)

	body, ct := multipartRoute(t, "split", map[string]string{
		"nairobi.gpx": validGPX,
		"london.gpx":  farGPX,
	})
	w := postRoute(t, body, ct)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400 (no path)", w.Code)
	}
	if n := countRoutes(t); n != 0 {
		t.Fatalf("%d routes persisted after failure", n)
	}
	if n := dirEntries(t, UploadDir); n != 0 {
		t.Fatalf("%d leftover uploads after cleanup", n)
	}
}

func TestCreateRouteSinglePointInsufficient(t *testing.T) {
	setupTestEnv(t)

	single := `<?xml version="1.0"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
  <trk><trkseg><trkpt lat="-1.2864" lon="36.8172"></trkpt></trkseg></trk>
</gpx>`
	body, ct := multipartRoute(t, "tiny", map[string]string{"one.gpx": single})
	w := postRoute(t, body, ct)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400 (insufficient points)", w.Code)
	}
	if n := countRoutes(t); n != 0 {
		t.Fatalf("%d routes persisted after failure", n)
	}
}

func TestCreateRouteDuplicateName(t *testing.T) {
	setupTestEnv(t)

	body, ct := multipartRoute(t, "cbd-loop", map[string]string{"a.gpx": validGPX})
	if w := postRoute(t, body, ct); w.Code != http.StatusCreated {
		t.Fatalf("first create: %d", w.Code)
	}
	body, ct = multipartRoute(t, "cbd-loop", map[string]string{"a.gpx": validGPX})
	if w := postRoute(t, body, ct); w.Code != http.StatusConflict {
		t.Fatalf("duplicate name: status %d, want 409", w.Code)
	}
	if n := countRoutes(t); n != 1 {
		t.Fatalf("%d routes, want 1", n)
	}
}
