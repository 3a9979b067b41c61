package tracker

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"fleet_ops/internal/models"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{}, &models.DriverInfo{}, &models.Vehicle{},
		&models.VehicleAssignment{}, &models.Route{}, &models.RouteCompletion{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Exec(`CREATE UNIQUE INDEX idx_one_active_completion_per_driver
		ON route_completions (driver_id) WHERE status = 'in_progress' AND deleted_at IS NULL;`).Error; err != nil {
		t.Fatalf("index: %v", err)
	}
	return db
}

func seed(t *testing.T, db *gorm.DB) (route models.Route, vehicle models.Vehicle) {
	t.Helper()
	route = models.Route{Name: "cbd-loop", Distance: 5200, StartPoint: "-1.2864,36.8172", EndPoint: "-1.2830,36.8140", Active: true}
	if err := db.Create(&route).Error; err != nil {
		t.Fatalf("seed route: %v", err)
	}
	vehicle = models.Vehicle{Brand: "Isuzu", VehicleModel: "NQR", Year: 2019, PlateNumber: "KDA 001A", Active: true}
	if err := db.Create(&vehicle).Error; err != nil {
		t.Fatalf("seed vehicle: %v", err)
	}
	return route, vehicle
}

const (
	driverD = uint(10)
	driverE = uint(11)
)

func TestStartUpdateCompleteScenario(t *testing.T) {
	db := setupDB(t)
	route, vehicle := seed(t, db)
	svc := New(db)

	completion, err := svc.Start(route.ID, driverD, vehicle.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if completion.Status != models.StatusInProgress {
		t.Fatalf("status %q, want in_progress", completion.Status)
	}
	if completion.StartedAt == nil {
		t.Fatal("started_at must be set")
	}
	if completion.TrackData != "" {
		t.Fatalf("position log must start empty, got %q", completion.TrackData)
	}

	coords := [][2]float64{{-1.2864, 36.8172}, {-1.2850, 36.8160}, {-1.2840, 36.8150}}
	for _, c := range coords {
		if err := svc.UpdatePosition(completion.ID, driverD, c[0], c[1]); err != nil {
			t.Fatalf("update position: %v", err)
		}
	}

	var stored models.RouteCompletion
	if err := db.First(&stored, completion.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	log, err := Positions(&stored)
	if err != nil {
		t.Fatalf("decode log: %v", err)
	}
	if len(log) != 3 {
		t.Fatalf("log has %d entries, want 3", len(log))
	}
	for i, c := range coords {
		if log[i].Lat != c[0] || log[i].Lng != c[1] {
			t.Fatalf("entry %d out of call order: %+v", i, log[i])
		}
		if log[i].Timestamp.IsZero() {
			t.Fatalf("entry %d missing timestamp", i)
		}
	}

	done, err := svc.Complete(completion.ID, driverD, "ok")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != models.StatusCompleted || done.CompletedAt == nil || done.Notes != "ok" {
		t.Fatalf("unexpected terminal record: %+v", done)
	}

	// Terminal: no further updates or transitions.
	if err := svc.UpdatePosition(completion.ID, driverD, 0, 0); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("update after complete: want ErrInvalidState, got %v", err)
	}
	if _, err := svc.Complete(completion.ID, driverD, ""); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("double complete: want ErrInvalidState, got %v", err)
	}
	if _, err := svc.Cancel(completion.ID, driverD, "x"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("cancel after complete: want ErrInvalidState, got %v", err)
	}
}

func TestStartWhileBusy(t *testing.T) {
	db := setupDB(t)
	route, vehicle := seed(t, db)
	other := models.Route{Name: "airport-run", Active: true}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("seed second route: %v", err)
	}
	svc := New(db)

	if _, err := svc.Start(route.ID, driverD, vehicle.ID); err != nil {
		t.Fatalf("first start: %v", err)
	}
	if _, err := svc.Start(other.ID, driverD, vehicle.ID); !errors.Is(err, ErrDriverBusy) {
		t.Fatalf("second start: want ErrDriverBusy, got %v", err)
	}

	var count int64
	db.Model(&models.RouteCompletion{}).Where("driver_id = ?", driverD).Count(&count)
	if count != 1 {
		t.Fatalf("busy start must not create a record, have %d", count)
	}
}

func TestStartSurfacesBusyCheckError(t *testing.T) {
	db := setupDB(t)
	route, vehicle := seed(t, db)
	svc := New(db)

	// Route and vehicle lookups still succeed; the busy-check count against
	// the missing table is the first statement to fail.
	if err := db.Migrator().DropTable(&models.RouteCompletion{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	_, err := svc.Start(route.ID, driverD, vehicle.ID)
	if err == nil {
		t.Fatal("want query error, got nil")
	}
	if errors.Is(err, ErrDriverBusy) || errors.Is(err, ErrNotFound) {
		t.Fatalf("database failure must not map to a domain error, got %v", err)
	}
}

func TestStartUnknownRouteOrVehicle(t *testing.T) {
	db := setupDB(t)
	route, vehicle := seed(t, db)
	svc := New(db)

	if _, err := svc.Start(9999, driverD, vehicle.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown route: want ErrNotFound, got %v", err)
	}
	if _, err := svc.Start(route.ID, driverD, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown vehicle: want ErrNotFound, got %v", err)
	}
}

func TestCancelEmbedsReason(t *testing.T) {
	db := setupDB(t)
	route, vehicle := seed(t, db)
	svc := New(db)

	completion, err := svc.Start(route.ID, driverD, vehicle.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	canceled, err := svc.Cancel(completion.ID, driverD, "vehicle breakdown")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if canceled.Status != models.StatusCanceled {
		t.Fatalf("status %q, want canceled", canceled.Status)
	}
	if !strings.HasPrefix(canceled.Notes, "Canceled: ") || !strings.Contains(canceled.Notes, "vehicle breakdown") {
		t.Fatalf("notes %q must embed the reason with prefix", canceled.Notes)
	}
	if canceled.CompletedAt != nil {
		t.Fatal("canceled completion must not set completed_at")
	}

	// Canceling frees the driver for a new start.
	if _, err := svc.Start(route.ID, driverD, vehicle.ID); err != nil {
		t.Fatalf("start after cancel: %v", err)
	}
}

func TestForeignDriverForbidden(t *testing.T) {
	db := setupDB(t)
	route, vehicle := seed(t, db)
	svc := New(db)

	completion, err := svc.Start(route.ID, driverD, vehicle.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := svc.UpdatePosition(completion.ID, driverE, -1.0, 36.0); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign update: want ErrForbidden, got %v", err)
	}
	if _, err := svc.Complete(completion.ID, driverE, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign complete: want ErrForbidden, got %v", err)
	}

	var stored models.RouteCompletion
	db.First(&stored, completion.ID)
	if stored.Status != models.StatusInProgress || stored.TrackData != "" {
		t.Fatalf("record must be unchanged after forbidden attempts: %+v", stored)
	}
}

func TestConcurrentStartsSingleWinner(t *testing.T) {
	db := setupDB(t)
	route, vehicle := seed(t, db)
	svc := New(db)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Start(route.ID, driverD, vehicle.ID)
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
		} else if !errors.Is(err, ErrDriverBusy) {
			t.Fatalf("unexpected start error: %v", err)
		}
	}
	if won != 1 {
		t.Fatalf("%d starts succeeded, want exactly 1", won)
	}

	var count int64
	db.Model(&models.RouteCompletion{}).
		Where("driver_id = ? AND status = ?", driverD, models.StatusInProgress).
		Count(&count)
	if count != 1 {
		t.Fatalf("%d in_progress rows, want 1", count)
	}
}

func TestUpdatePositionUnknownCompletion(t *testing.T) {
	db := setupDB(t)
	seed(t, db)
	svc := New(db)

	if err := svc.UpdatePosition(424242, driverD, 0, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
