package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/fleetworks/vanlist-backend/internal/assignments"
	"github.com/fleetworks/vanlist-backend/internal/audit"
	"github.com/fleetworks/vanlist-backend/internal/auth"
	"github.com/fleetworks/vanlist-backend/internal/drivers"
	"github.com/fleetworks/vanlist-backend/internal/export"
	"github.com/fleetworks/vanlist-backend/internal/imports"
	"github.com/fleetworks/vanlist-backend/internal/preassignments"
	"github.com/fleetworks/vanlist-backend/internal/users"
	"github.com/fleetworks/vanlist-backend/internal/vans"
	pkgauth "github.com/fleetworks/vanlist-backend/pkg/auth"
	"github.com/fleetworks/vanlist-backend/pkg/config"
	"github.com/fleetworks/vanlist-backend/pkg/db/models"
	"github.com/fleetworks/vanlist-backend/pkg/enums"
	"github.com/fleetworks/vanlist-backend/pkg/logger"
	"github.com/fleetworks/vanlist-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, username, password string) (*auth.LoginResult, error) {
	panic("unimplemented")
}

func (stubAuthService) ChangePassword(ctx context.Context, actor audit.Actor, currentPassword, newPassword string) error {
	panic("unimplemented")
}

type stubUsersService struct{}

func (stubUsersService) List(ctx context.Context) ([]users.UserDTO, error) {
	return []users.UserDTO{}, nil
}

func (stubUsersService) Get(ctx context.Context, id uuid.UUID) (*users.UserDTO, error) {
	panic("unimplemented")
}

func (stubUsersService) Create(ctx context.Context, actor audit.Actor, input users.CreateUserInput) (*users.UserDTO, error) {
	panic("unimplemented")
}

func (stubUsersService) Update(ctx context.Context, actor audit.Actor, id uuid.UUID, input users.UpdateUserInput) (*users.UserDTO, error) {
	panic("unimplemented")
}

func (stubUsersService) SeedDefaultAdmin(ctx context.Context, adminCfg config.AdminConfig) error {
	return nil
}

type stubAssignmentsService struct{}

func (stubAssignmentsService) List(ctx context.Context, from, to time.Time) ([]assignments.AssignmentDTO, error) {
	return []assignments.AssignmentDTO{}, nil
}

func (stubAssignmentsService) ListWeek(ctx context.Context, weekNumber int) ([]assignments.AssignmentDTO, error) {
	return []assignments.AssignmentDTO{}, nil
}

func (stubAssignmentsService) Get(ctx context.Context, id uuid.UUID) (*assignments.AssignmentDTO, error) {
	panic("unimplemented")
}

func (stubAssignmentsService) Create(ctx context.Context, actor audit.Actor, input assignments.CreateInput) (*assignments.AssignmentDTO, error) {
	return &assignments.AssignmentDTO{ID: uuid.New()}, nil
}

func (stubAssignmentsService) UpdateNotes(ctx context.Context, actor audit.Actor, id uuid.UUID, notes *string) (*assignments.AssignmentDTO, error) {
	panic("unimplemented")
}

func (stubAssignmentsService) Replace(ctx context.Context, actor audit.Actor, id uuid.UUID, input assignments.ReplaceInput) (*assignments.AssignmentDTO, error) {
	panic("unimplemented")
}

func (stubAssignmentsService) Delete(ctx context.Context, actor audit.Actor, id uuid.UUID) error {
	panic("unimplemented")
}

func (stubAssignmentsService) AvailableVans(ctx context.Context, date time.Time, q string) ([]vans.VanDTO, error) {
	panic("unimplemented")
}

func (stubAssignmentsService) AvailableDrivers(ctx context.Context, date time.Time, q string) ([]drivers.DriverDTO, error) {
	panic("unimplemented")
}

type stubVansService struct{}

func (stubVansService) List(ctx context.Context, activeOnly bool) ([]vans.VanDTO, error) {
	return []vans.VanDTO{}, nil
}

func (stubVansService) Search(ctx context.Context, q string) ([]vans.VanDTO, error) {
	panic("unimplemented")
}

func (stubVansService) Get(ctx context.Context, id uuid.UUID) (*vans.VanDTO, error) {
	panic("unimplemented")
}

func (stubVansService) Toggle(ctx context.Context, actor audit.Actor, id uuid.UUID) (*vans.VanDTO, error) {
	panic("unimplemented")
}

func (stubVansService) SetOperationalStatus(ctx context.Context, actor audit.Actor, id uuid.UUID, status *string) (*vans.VanDTO, error) {
	panic("unimplemented")
}

type stubDriversService struct{}

func (stubDriversService) List(ctx context.Context, activeOnly bool) ([]drivers.DriverDTO, error) {
	return []drivers.DriverDTO{}, nil
}

func (stubDriversService) Search(ctx context.Context, q string) ([]drivers.DriverDTO, error) {
	panic("unimplemented")
}

func (stubDriversService) Get(ctx context.Context, id uuid.UUID) (*drivers.DriverDTO, error) {
	panic("unimplemented")
}

func (stubDriversService) Toggle(ctx context.Context, actor audit.Actor, id uuid.UUID) (*drivers.DriverDTO, error) {
	panic("unimplemented")
}

type stubPreassignmentsService struct{}

func (stubPreassignmentsService) List(ctx context.Context) ([]preassignments.PreassignmentDTO, error) {
	return []preassignments.PreassignmentDTO{}, nil
}

func (stubPreassignmentsService) Upsert(ctx context.Context, actor audit.Actor, driverID, vanID uuid.UUID) (*preassignments.PreassignmentDTO, error) {
	panic("unimplemented")
}

func (stubPreassignmentsService) Delete(ctx context.Context, actor audit.Actor, id uuid.UUID) error {
	panic("unimplemented")
}

type stubImportsService struct{}

func (stubImportsService) ImportVans(ctx context.Context, actor audit.Actor, filename string, file io.Reader) (*imports.Summary, error) {
	panic("unimplemented")
}

func (stubImportsService) ImportDrivers(ctx context.Context, actor audit.Actor, filename string, file io.Reader) (*imports.Summary, error) {
	panic("unimplemented")
}

type stubExportService struct{}

func (stubExportService) Daily(ctx context.Context, actor audit.Actor, date time.Time) ([]export.Row, error) {
	return []export.Row{}, nil
}

func (stubExportService) Weekly(ctx context.Context, actor audit.Actor, weekNumber int) ([]export.Row, error) {
	panic("unimplemented")
}

func (stubExportService) Period(ctx context.Context, actor audit.Actor, from, to time.Time) ([]export.Row, error) {
	panic("unimplemented")
}

type stubAuditService struct{}

func (stubAuditService) Record(ctx context.Context, tx *gorm.DB, input audit.RecordInput) (*models.AuditLog, error) {
	panic("unimplemented")
}

func (stubAuditService) List(ctx context.Context, filter audit.Filter, page, perPage int) ([]models.AuditLog, int64, error) {
	return []models.AuditLog{}, 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Deps{
		Cfg:            cfg,
		Logger:         logg,
		DB:             stubPinger{},
		HTTPMetrics:    metrics.NewHTTPMetrics(prometheus.NewRegistry()),
		Auth:           stubAuthService{},
		Users:          stubUsersService{},
		Assignments:    stubAssignmentsService{},
		Vans:           stubVansService{},
		Drivers:        stubDriversService{},
		Preassignments: stubPreassignmentsService{},
		Imports:        stubImportsService{},
		Exports:        stubExportService{},
		Audit:          stubAuditService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.Role) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID:   uuid.New(),
		Username: "router-test",
		Role:     role,
		JTI:      uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestProtectedGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/vans", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestReadonlyCanViewButNotWrite(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	token := buildToken(t, cfg, enums.RoleReadOnly)

	view := httptest.NewRequest(http.MethodGet, "/api/v1/vans", nil)
	view.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, view)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for readonly list got %d", resp.Code)
	}

	write := httptest.NewRequest(http.MethodPost, "/api/v1/assignments", nil)
	write.Header.Set("Authorization", "Bearer "+token)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, write)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for readonly write got %d", resp.Code)
	}
}

func TestUploadsRequireAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	for _, role := range []enums.Role{enums.RoleReadOnly, enums.RoleOperator} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/vans", nil)
		req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, role))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusForbidden {
			t.Fatalf("expected 403 for %s upload got %d", role, resp.Code)
		}
	}
}

func TestUserManagementRequiresAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	operator := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	operator.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleOperator))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, operator)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for operator got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestAuditTrailRequiresAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	operator := httptest.NewRequest(http.MethodGet, "/api/v1/audit", nil)
	operator.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleOperator))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, operator)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for operator audit view got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/v1/audit", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin audit view got %d", resp.Code)
	}
}

func TestExportsVisibleToReadonly(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/exports/daily?date=2026-01-05", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleReadOnly))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for readonly export got %d", resp.Code)
	}
}
