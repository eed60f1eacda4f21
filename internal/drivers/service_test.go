package drivers

import (
	"context"
	"testing"

	"github.com/fleetworks/vanlist-backend/internal/audit"
	"github.com/fleetworks/vanlist-backend/pkg/db/models"
	"github.com/fleetworks/vanlist-backend/pkg/enums"
	pkgerrors "github.com/fleetworks/vanlist-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:drivers_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Driver{}, &models.AuditLog{}); err != nil {
		t.Fatalf("migrate tables: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	auditSvc, err := audit.NewService(audit.NewRepository(db))
	if err != nil {
		t.Fatalf("audit service: %v", err)
	}
	svc, err := NewService(NewRepository(db), testTxRunner{db: db}, auditSvc)
	if err != nil {
		t.Fatalf("driver service: %v", err)
	}
	return svc
}

func seedDriver(t *testing.T, db *gorm.DB, employeeID, name string, active bool) *models.Driver {
	t.Helper()
	driver := &models.Driver{EmployeeID: employeeID, Name: name, IsActive: active}
	if err := db.Create(driver).Error; err != nil {
		t.Fatalf("seed driver %s: %v", employeeID, err)
	}
	return driver
}

func testActor() audit.Actor {
	return audit.Actor{ID: uuid.New(), Username: "dispatcher", Role: enums.RoleAdmin}
}

func TestListOrdersByNameAndFiltersActive(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	seedDriver(t, db, "T-3", "Zoe Adams", true)
	seedDriver(t, db, "T-1", "Amir Khan", true)
	seedDriver(t, db, "T-2", "Mona Lane", false)

	all, err := svc.List(ctx, false)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 drivers, got %d", len(all))
	}
	if all[0].Name != "Amir Khan" || all[2].Name != "Zoe Adams" {
		t.Fatalf("expected name ordering, got %v", []string{all[0].Name, all[1].Name, all[2].Name})
	}

	active, err := svc.List(ctx, true)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active drivers, got %d", len(active))
	}
}

func TestSearchMatchesEmployeeIDAndName(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	seedDriver(t, db, "TR-0101", "Amir Khan", true)
	seedDriver(t, db, "TR-0202", "Mona Lane", true)

	byID, err := svc.Search(ctx, "0101")
	if err != nil {
		t.Fatalf("search by employee id: %v", err)
	}
	if len(byID) != 1 || byID[0].EmployeeID != "TR-0101" {
		t.Fatalf("unexpected id search result %v", byID)
	}

	byName, err := svc.Search(ctx, "Mona")
	if err != nil {
		t.Fatalf("search by name: %v", err)
	}
	if len(byName) != 1 || byName[0].Name != "Mona Lane" {
		t.Fatalf("unexpected name search result %v", byName)
	}
}

func TestToggleFlipsStateAndAudits(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	driver := seedDriver(t, db, "TR-0101", "Amir Khan", true)

	dto, err := svc.Toggle(ctx, testActor(), driver.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if dto.IsActive {
		t.Fatal("expected driver to be deactivated")
	}

	var entry models.AuditLog
	if err := db.First(&entry, "action = ?", enums.AuditActionToggle).Error; err != nil {
		t.Fatalf("load audit entry: %v", err)
	}
	if entry.EntityType == nil || *entry.EntityType != enums.EntityDriver {
		t.Fatalf("unexpected audit entity type %+v", entry.EntityType)
	}
	if entry.Details == nil || *entry.Details != "driver Amir Khan (TR-0101) deactivated" {
		t.Fatalf("unexpected audit details %v", entry.Details)
	}
}

func TestToggleUnknownDriver(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)

	_, err := svc.Toggle(context.Background(), testActor(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
