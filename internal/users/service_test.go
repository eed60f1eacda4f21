package users

import (
	"context"
	"testing"

	"github.com/fleetworks/vanlist-backend/internal/audit"
	"github.com/fleetworks/vanlist-backend/pkg/config"
	"github.com/fleetworks/vanlist-backend/pkg/db/models"
	"github.com/fleetworks/vanlist-backend/pkg/enums"
	pkgerrors "github.com/fleetworks/vanlist-backend/pkg/errors"
	"github.com/fleetworks/vanlist-backend/pkg/security"
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

func fastArgonConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:users_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.AuditLog{}); err != nil {
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
	svc, err := NewService(NewRepository(db), testTxRunner{db: db}, auditSvc, fastArgonConfig())
	if err != nil {
		t.Fatalf("user service: %v", err)
	}
	return svc
}

func testActor() audit.Actor {
	return audit.Actor{ID: uuid.New(), Username: "root", Role: enums.RoleAdmin}
}

func TestCreateUserHashesPasswordAndAudits(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	dto, err := svc.Create(ctx, testActor(), CreateUserInput{
		Username: "dispatcher",
		Password: "hunter22",
		Role:     enums.RoleOperator,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Role != enums.RoleOperator || !dto.IsActive {
		t.Fatalf("unexpected dto %+v", dto)
	}

	var stored models.User
	if err := db.First(&stored, "username = ?", "dispatcher").Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if stored.PasswordHash == "hunter22" || stored.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}
	ok, err := security.VerifyPassword("hunter22", stored.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("stored hash must verify: ok=%v err=%v", ok, err)
	}

	var auditCount int64
	if err := db.Model(&models.AuditLog{}).Where("action = ?", enums.AuditActionCreate).Count(&auditCount).Error; err != nil {
		t.Fatalf("count audit rows: %v", err)
	}
	if auditCount != 1 {
		t.Fatalf("expected one create audit row, got %d", auditCount)
	}
}

func TestCreateUserValidation(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	cases := []CreateUserInput{
		{Username: "", Password: "hunter22", Role: enums.RoleOperator},
		{Username: "x", Password: "short", Role: enums.RoleOperator},
		{Username: "x", Password: "hunter22", Role: enums.Role("root")},
	}
	for i, input := range cases {
		_, err := svc.Create(ctx, testActor(), input)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	if _, err := svc.Create(ctx, testActor(), CreateUserInput{Username: "dispatcher", Password: "hunter22", Role: enums.RoleOperator}); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := svc.Create(ctx, testActor(), CreateUserInput{Username: "dispatcher", Password: "hunter33", Role: enums.RoleReadOnly})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUpdateUserRoleAuditsTransition(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, testActor(), CreateUserInput{Username: "dispatcher", Password: "hunter22", Role: enums.RoleReadOnly})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	operator := enums.RoleOperator
	updated, err := svc.Update(ctx, testActor(), created.ID, UpdateUserInput{Role: &operator})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Role != enums.RoleOperator {
		t.Fatalf("unexpected role %s", updated.Role)
	}

	var entry models.AuditLog
	if err := db.First(&entry, "action = ?", enums.AuditActionUpdate).Error; err != nil {
		t.Fatalf("load audit entry: %v", err)
	}
	if entry.Details == nil || *entry.Details != "updated user dispatcher: role readonly to operator" {
		t.Fatalf("unexpected audit details %v", entry.Details)
	}
}

func TestUpdateUserPasswordReset(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, testActor(), CreateUserInput{Username: "dispatcher", Password: "hunter22", Role: enums.RoleOperator})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newPassword := "hunter33"
	if _, err := svc.Update(ctx, testActor(), created.ID, UpdateUserInput{Password: &newPassword}); err != nil {
		t.Fatalf("update: %v", err)
	}

	var stored models.User
	if err := db.First(&stored, "id = ?", created.ID).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	ok, err := security.VerifyPassword(newPassword, stored.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("new password must verify: ok=%v err=%v", ok, err)
	}
}

func TestSeedDefaultAdminIsIdempotent(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	adminCfg := config.AdminConfig{DefaultUsername: "admin", DefaultPassword: "changeme"}
	if err := svc.SeedDefaultAdmin(ctx, adminCfg); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := svc.SeedDefaultAdmin(ctx, adminCfg); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", "admin").Count(&count).Error; err != nil {
		t.Fatalf("count admins: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one admin, got %d", count)
	}

	var admin models.User
	if err := db.First(&admin, "username = ?", "admin").Error; err != nil {
		t.Fatalf("load admin: %v", err)
	}
	if admin.Role != enums.RoleAdmin {
		t.Fatalf("expected admin role, got %s", admin.Role)
	}
}

func TestSeedDefaultAdminRequiresPassword(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)

	err := svc.SeedDefaultAdmin(context.Background(), config.AdminConfig{DefaultUsername: "admin"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
