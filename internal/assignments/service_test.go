package assignments

import (
	"context"
	"testing"
	"time"

	"github.com/fleetworks/vanlist-backend/internal/audit"
	"github.com/fleetworks/vanlist-backend/internal/drivers"
	"github.com/fleetworks/vanlist-backend/internal/vans"
	pkgdb "github.com/fleetworks/vanlist-backend/pkg/db"
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
	dsn := "file:assignments_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Van{},
		&models.Driver{},
		&models.DailyAssignment{},
		&models.AuditLog{},
	); err != nil {
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
	svc, err := NewService(
		NewRepository(db),
		vans.NewRepository(db),
		drivers.NewRepository(db),
		testTxRunner{db: db},
		auditSvc,
	)
	if err != nil {
		t.Fatalf("assignment service: %v", err)
	}
	return svc
}

func seedVan(t *testing.T, db *gorm.DB, code string) *models.Van {
	t.Helper()
	van := &models.Van{Code: code, IsActive: true}
	if err := db.Create(van).Error; err != nil {
		t.Fatalf("seed van %s: %v", code, err)
	}
	return van
}

func seedDriver(t *testing.T, db *gorm.DB, employeeID, name string) *models.Driver {
	t.Helper()
	driver := &models.Driver{EmployeeID: employeeID, Name: name, IsActive: true}
	if err := db.Create(driver).Error; err != nil {
		t.Fatalf("seed driver %s: %v", employeeID, err)
	}
	return driver
}

func testActor() audit.Actor {
	return audit.Actor{ID: uuid.New(), Username: "dispatcher", Role: enums.RoleOperator}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateBooksVanAndDriver(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	van := seedVan(t, db, "AB-123")
	driver := seedDriver(t, db, "TR-0101", "Amir Khan")

	dto, err := svc.Create(ctx, testActor(), CreateInput{
		Date:     day(2026, time.January, 5),
		VanID:    van.ID,
		DriverID: driver.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Date != "2026-01-05" {
		t.Fatalf("unexpected date %s", dto.Date)
	}
	if dto.WeekNumber != 2 {
		t.Fatalf("expected week 2, got %d", dto.WeekNumber)
	}
	if dto.VanCode != "AB-123" || dto.DriverName != "Amir Khan" {
		t.Fatalf("unexpected identity %s / %s", dto.VanCode, dto.DriverName)
	}

	var auditCount int64
	if err := db.Model(&models.AuditLog{}).Where("action = ?", enums.AuditActionCreate).Count(&auditCount).Error; err != nil {
		t.Fatalf("count audit rows: %v", err)
	}
	if auditCount != 1 {
		t.Fatalf("expected exactly one create audit row, got %d", auditCount)
	}
}

func TestCreateVanConflictCarriesWinner(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	van := seedVan(t, db, "AB-123")
	driverA := seedDriver(t, db, "TR-0101", "Amir Khan")
	driverB := seedDriver(t, db, "TR-0202", "Mona Lane")
	date := day(2026, time.January, 5)

	winner, err := svc.Create(ctx, testActor(), CreateInput{Date: date, VanID: van.ID, DriverID: driverA.ID})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err = svc.Create(ctx, testActor(), CreateInput{Date: date, VanID: van.ID, DriverID: driverB.ID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected structured details, got %v", typed.Details())
	}
	if details["conflict"] != "van" {
		t.Fatalf("expected van dimension, got %v", details["conflict"])
	}
	if details["assignment_id"] != winner.ID {
		t.Fatalf("expected winner id %s, got %v", winner.ID, details["assignment_id"])
	}

	var total int64
	if err := db.Model(&models.DailyAssignment{}).Count(&total).Error; err != nil {
		t.Fatalf("count assignments: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected exactly one winner, got %d rows", total)
	}

	var auditCount int64
	if err := db.Model(&models.AuditLog{}).Count(&auditCount).Error; err != nil {
		t.Fatalf("count audit rows: %v", err)
	}
	if auditCount != 1 {
		t.Fatalf("rejected booking must not be audited; got %d rows", auditCount)
	}
}

func TestCreateDriverConflictCarriesWinner(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	vanA := seedVan(t, db, "AB-123")
	vanB := seedVan(t, db, "CD-456")
	driver := seedDriver(t, db, "TR-0101", "Amir Khan")
	date := day(2026, time.January, 5)

	winner, err := svc.Create(ctx, testActor(), CreateInput{Date: date, VanID: vanA.ID, DriverID: driver.ID})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err = svc.Create(ctx, testActor(), CreateInput{Date: date, VanID: vanB.ID, DriverID: driver.ID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	details := typed.Details().(map[string]any)
	if details["conflict"] != "driver" {
		t.Fatalf("expected driver dimension, got %v", details["conflict"])
	}
	if details["assignment_id"] != winner.ID {
		t.Fatalf("expected winner id %s, got %v", winner.ID, details["assignment_id"])
	}
}

func TestCreateSameIdentityDifferentDays(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	van := seedVan(t, db, "AB-123")
	driver := seedDriver(t, db, "TR-0101", "Amir Khan")

	for _, d := range []time.Time{day(2026, time.January, 5), day(2026, time.January, 6)} {
		if _, err := svc.Create(ctx, testActor(), CreateInput{Date: d, VanID: van.ID, DriverID: driver.ID}); err != nil {
			t.Fatalf("create on %s: %v", d.Format(DateLayout), err)
		}
	}
}

func TestCreateRejectsInactiveEntities(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	van := &models.Van{Code: "AB-123", IsActive: false}
	if err := db.Create(van).Error; err != nil {
		t.Fatalf("seed van: %v", err)
	}
	driver := seedDriver(t, db, "TR-0101", "Amir Khan")

	_, err := svc.Create(ctx, testActor(), CreateInput{Date: day(2026, time.January, 5), VanID: van.ID, DriverID: driver.ID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for inactive van, got %v", err)
	}
}

func TestUpdateNotesMutatesOnlyNotes(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	van := seedVan(t, db, "AB-123")
	driver := seedDriver(t, db, "TR-0101", "Amir Khan")
	created, err := svc.Create(ctx, testActor(), CreateInput{Date: day(2026, time.January, 5), VanID: van.ID, DriverID: driver.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	notes := "swap keys at depot"
	updated, err := svc.UpdateNotes(ctx, testActor(), created.ID, &notes)
	if err != nil {
		t.Fatalf("update notes: %v", err)
	}
	if updated.Notes == nil || *updated.Notes != notes {
		t.Fatalf("unexpected notes %v", updated.Notes)
	}
	if updated.VanID != van.ID || updated.DriverID != driver.ID || updated.Date != created.Date {
		t.Fatal("identity fields must not change on a notes update")
	}
}

func TestReplaceSwapsIdentityAtomically(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	vanA := seedVan(t, db, "AB-123")
	vanB := seedVan(t, db, "CD-456")
	driverA := seedDriver(t, db, "TR-0101", "Amir Khan")
	driverB := seedDriver(t, db, "TR-0202", "Mona Lane")
	date := day(2026, time.January, 5)

	notes := "keep these"
	created, err := svc.Create(ctx, testActor(), CreateInput{Date: date, VanID: vanA.ID, DriverID: driverA.ID, Notes: &notes})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	replaced, err := svc.Replace(ctx, testActor(), created.ID, ReplaceInput{VanID: vanB.ID, DriverID: driverB.ID})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if replaced.VanCode != "CD-456" || replaced.DriverName != "Mona Lane" {
		t.Fatalf("unexpected replacement identity %s / %s", replaced.VanCode, replaced.DriverName)
	}
	if replaced.Date != created.Date {
		t.Fatal("replace must keep the date")
	}
	if replaced.Notes == nil || *replaced.Notes != notes {
		t.Fatal("replace must keep notes when no replacement is given")
	}

	var total int64
	if err := db.Model(&models.DailyAssignment{}).Count(&total).Error; err != nil {
		t.Fatalf("count assignments: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected a single row after replace, got %d", total)
	}
}

func TestReplaceSameVanDifferentDriver(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	van := seedVan(t, db, "AB-123")
	driverA := seedDriver(t, db, "TR-0101", "Amir Khan")
	driverB := seedDriver(t, db, "TR-0202", "Mona Lane")

	created, err := svc.Create(ctx, testActor(), CreateInput{Date: day(2026, time.January, 5), VanID: van.ID, DriverID: driverA.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Keeping the same van must not conflict with the row being replaced.
	replaced, err := svc.Replace(ctx, testActor(), created.ID, ReplaceInput{VanID: van.ID, DriverID: driverB.ID})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if replaced.DriverName != "Mona Lane" {
		t.Fatalf("unexpected driver %s", replaced.DriverName)
	}
}

func TestReplaceConflictRollsBack(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	vanA := seedVan(t, db, "AB-123")
	vanB := seedVan(t, db, "CD-456")
	driverA := seedDriver(t, db, "TR-0101", "Amir Khan")
	driverB := seedDriver(t, db, "TR-0202", "Mona Lane")
	date := day(2026, time.January, 5)

	first, err := svc.Create(ctx, testActor(), CreateInput{Date: date, VanID: vanA.ID, DriverID: driverA.ID})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if _, err := svc.Create(ctx, testActor(), CreateInput{Date: date, VanID: vanB.ID, DriverID: driverB.ID}); err != nil {
		t.Fatalf("create second: %v", err)
	}

	// Moving the first booking onto vanB collides with the second booking.
	_, err = svc.Replace(ctx, testActor(), first.ID, ReplaceInput{VanID: vanB.ID, DriverID: driverA.ID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}

	// The failed replace must leave the original row in place.
	still, err := svc.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("reload first booking: %v", err)
	}
	if still.VanCode != "AB-123" {
		t.Fatalf("expected original booking untouched, got van %s", still.VanCode)
	}
}

func TestDeleteRemovesAndAudits(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	van := seedVan(t, db, "AB-123")
	driver := seedDriver(t, db, "TR-0101", "Amir Khan")
	created, err := svc.Create(ctx, testActor(), CreateInput{Date: day(2026, time.January, 5), VanID: van.ID, DriverID: driver.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, testActor(), created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := svc.Get(ctx, created.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}

	var auditCount int64
	if err := db.Model(&models.AuditLog{}).Where("action = ?", enums.AuditActionDelete).Count(&auditCount).Error; err != nil {
		t.Fatalf("count audit rows: %v", err)
	}
	if auditCount != 1 {
		t.Fatalf("expected one delete audit row, got %d", auditCount)
	}
}

func TestListRangeOrderingAndReversedRange(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	vanZ := seedVan(t, db, "ZZ-900")
	vanA := seedVan(t, db, "AA-100")
	driverA := seedDriver(t, db, "TR-0101", "Amir Khan")
	driverB := seedDriver(t, db, "TR-0202", "Mona Lane")

	if _, err := svc.Create(ctx, testActor(), CreateInput{Date: day(2026, time.January, 6), VanID: vanA.ID, DriverID: driverA.ID}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, testActor(), CreateInput{Date: day(2026, time.January, 5), VanID: vanZ.ID, DriverID: driverA.ID}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, testActor(), CreateInput{Date: day(2026, time.January, 5), VanID: vanA.ID, DriverID: driverB.ID}); err != nil {
		t.Fatalf("create: %v", err)
	}

	rows, err := svc.List(ctx, day(2026, time.January, 5), day(2026, time.January, 6))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Date != "2026-01-05" || rows[0].VanCode != "AA-100" {
		t.Fatalf("unexpected first row %s %s", rows[0].Date, rows[0].VanCode)
	}
	if rows[1].Date != "2026-01-05" || rows[1].VanCode != "ZZ-900" {
		t.Fatalf("unexpected second row %s %s", rows[1].Date, rows[1].VanCode)
	}
	if rows[2].Date != "2026-01-06" {
		t.Fatalf("unexpected third row %s", rows[2].Date)
	}

	empty, err := svc.List(ctx, day(2026, time.January, 6), day(2026, time.January, 5))
	if err != nil {
		t.Fatalf("reversed list: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("reversed range must be empty, got %d rows", len(empty))
	}
}

func TestAvailableVansAndDrivers(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	vanA := seedVan(t, db, "AB-123")
	seedVan(t, db, "CD-456")
	inactive := &models.Van{Code: "EF-789", IsActive: false}
	if err := db.Create(inactive).Error; err != nil {
		t.Fatalf("seed inactive van: %v", err)
	}
	driverA := seedDriver(t, db, "TR-0101", "Amir Khan")
	seedDriver(t, db, "TR-0202", "Mona Lane")

	date := day(2026, time.January, 5)
	if _, err := svc.Create(ctx, testActor(), CreateInput{Date: date, VanID: vanA.ID, DriverID: driverA.ID}); err != nil {
		t.Fatalf("create: %v", err)
	}

	availVans, err := svc.AvailableVans(ctx, date, "")
	if err != nil {
		t.Fatalf("available vans: %v", err)
	}
	if len(availVans) != 1 || availVans[0].Code != "CD-456" {
		t.Fatalf("unexpected available vans %v", availVans)
	}

	availDrivers, err := svc.AvailableDrivers(ctx, date, "")
	if err != nil {
		t.Fatalf("available drivers: %v", err)
	}
	if len(availDrivers) != 1 || availDrivers[0].Name != "Mona Lane" {
		t.Fatalf("unexpected available drivers %v", availDrivers)
	}

	// Another day is unconstrained.
	nextDay, err := svc.AvailableVans(ctx, day(2026, time.January, 6), "")
	if err != nil {
		t.Fatalf("available vans next day: %v", err)
	}
	if len(nextDay) != 2 {
		t.Fatalf("expected 2 available vans on a free day, got %d", len(nextDay))
	}
}

func TestHardDeleteOfBookedVanIsRestricted(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	van := seedVan(t, db, "AB-123")
	driver := seedDriver(t, db, "TR-0101", "Amir Khan")
	created, err := svc.Create(ctx, testActor(), CreateInput{Date: day(2026, time.January, 5), VanID: van.ID, DriverID: driver.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = db.Delete(&models.Van{}, "id = ?", van.ID).Error
	if err == nil {
		t.Fatal("expected hard delete of booked van to fail")
	}
	if !pkgdb.IsForeignKeyViolation(err) {
		t.Fatalf("expected fk violation, got %v", err)
	}

	if _, err := svc.Get(ctx, created.ID); err != nil {
		t.Fatalf("assignment must remain intact: %v", err)
	}
}

func TestReplaceMovesDateAtomically(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	van := seedVan(t, db, "AB-123")
	driver := seedDriver(t, db, "TR-0101", "Amir Khan")

	created, err := svc.Create(ctx, testActor(), CreateInput{Date: day(2026, time.January, 5), VanID: van.ID, DriverID: driver.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	moved, err := svc.Replace(ctx, testActor(), created.ID, ReplaceInput{
		Date:     day(2026, time.January, 7),
		VanID:    van.ID,
		DriverID: driver.ID,
	})
	if err != nil {
		t.Fatalf("move to a free date: %v", err)
	}
	if moved.Date != "2026-01-07" {
		t.Fatalf("expected booking on 2026-01-07, got %s", moved.Date)
	}

	var total int64
	if err := db.Model(&models.DailyAssignment{}).Count(&total).Error; err != nil {
		t.Fatalf("count assignments: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected a single row after the move, got %d", total)
	}
}

func TestReplaceDateConflictKeepsOriginalBooking(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	van := seedVan(t, db, "AB-123")
	driverA := seedDriver(t, db, "TR-0101", "Amir Khan")
	driverB := seedDriver(t, db, "TR-0202", "Mona Lane")

	first, err := svc.Create(ctx, testActor(), CreateInput{Date: day(2026, time.January, 5), VanID: van.ID, DriverID: driverA.ID})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	blocker, err := svc.Create(ctx, testActor(), CreateInput{Date: day(2026, time.January, 6), VanID: van.ID, DriverID: driverB.ID})
	if err != nil {
		t.Fatalf("create blocker: %v", err)
	}

	// The same van is already booked on the target date.
	_, err = svc.Replace(ctx, testActor(), first.ID, ReplaceInput{
		Date:     day(2026, time.January, 6),
		VanID:    van.ID,
		DriverID: driverA.ID,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict on the target date, got %v", err)
	}
	details := typed.Details().(map[string]any)
	if details["conflict"] != "van" || details["assignment_id"] != blocker.ID {
		t.Fatalf("expected van conflict with blocker id, got %v", details)
	}

	still, err := svc.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("reload original booking: %v", err)
	}
	if still.Date != "2026-01-05" {
		t.Fatalf("failed date move must keep the original date, got %s", still.Date)
	}
}

// racedRepo hides in-transaction conflict reads so the unique constraint is
// the only defense, reproducing two creates racing past the explicit check.
type racedRepo struct {
	Repository
	inTx bool
}

func (r *racedRepo) WithTx(tx *gorm.DB) Repository {
	return &racedRepo{Repository: r.Repository.WithTx(tx), inTx: true}
}

func (r *racedRepo) FindByDateVan(ctx context.Context, date time.Time, vanID uuid.UUID) (*models.DailyAssignment, error) {
	if r.inTx {
		return nil, nil
	}
	return r.Repository.FindByDateVan(ctx, date, vanID)
}

func (r *racedRepo) FindByDateDriver(ctx context.Context, date time.Time, driverID uuid.UUID) (*models.DailyAssignment, error) {
	if r.inTx {
		return nil, nil
	}
	return r.Repository.FindByDateDriver(ctx, date, driverID)
}

func TestConstraintFallbackStillNamesWinner(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	auditSvc, err := audit.NewService(audit.NewRepository(db))
	if err != nil {
		t.Fatalf("audit service: %v", err)
	}
	svc, err := NewService(
		&racedRepo{Repository: NewRepository(db)},
		vans.NewRepository(db),
		drivers.NewRepository(db),
		testTxRunner{db: db},
		auditSvc,
	)
	if err != nil {
		t.Fatalf("assignment service: %v", err)
	}
	ctx := context.Background()

	van := seedVan(t, db, "AB-123")
	driverA := seedDriver(t, db, "TR-0101", "Amir Khan")
	driverB := seedDriver(t, db, "TR-0202", "Mona Lane")
	date := day(2026, time.January, 5)

	winner, err := svc.Create(ctx, testActor(), CreateInput{Date: date, VanID: van.ID, DriverID: driverA.ID})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err = svc.Create(ctx, testActor(), CreateInput{Date: date, VanID: van.ID, DriverID: driverB.ID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict from the constraint, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected structured details, got %v", typed.Details())
	}
	if details["conflict"] != "van" {
		t.Fatalf("expected van dimension, got %v", details["conflict"])
	}
	if details["assignment_id"] != winner.ID {
		t.Fatalf("loser must learn the winner id %s, got %v", winner.ID, details["assignment_id"])
	}

	var total int64
	if err := db.Model(&models.DailyAssignment{}).Count(&total).Error; err != nil {
		t.Fatalf("count assignments: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected exactly one winner, got %d rows", total)
	}
}
