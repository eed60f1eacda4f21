package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fleetworks/vanlist-backend/api/controllers"
	"github.com/fleetworks/vanlist-backend/api/middleware"
	"github.com/fleetworks/vanlist-backend/internal/assignments"
	"github.com/fleetworks/vanlist-backend/internal/audit"
	"github.com/fleetworks/vanlist-backend/internal/auth"
	"github.com/fleetworks/vanlist-backend/internal/drivers"
	"github.com/fleetworks/vanlist-backend/internal/export"
	"github.com/fleetworks/vanlist-backend/internal/imports"
	"github.com/fleetworks/vanlist-backend/internal/preassignments"
	"github.com/fleetworks/vanlist-backend/internal/users"
	"github.com/fleetworks/vanlist-backend/internal/vans"
	"github.com/fleetworks/vanlist-backend/pkg/config"
	"github.com/fleetworks/vanlist-backend/pkg/db"
	"github.com/fleetworks/vanlist-backend/pkg/logger"
	"github.com/fleetworks/vanlist-backend/pkg/metrics"
	"github.com/fleetworks/vanlist-backend/pkg/rbac"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Cfg    *config.Config
	Logger *logger.Logger
	DB     db.Pinger

	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTPMetrics

	Auth           auth.Service
	Users          users.Service
	Assignments    assignments.Service
	Vans           vans.Service
	Drivers        drivers.Service
	Preassignments preassignments.Service
	Imports        imports.Service
	Exports        export.Service
	Audit          audit.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Cfg
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", controllers.AuthLogin(deps.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Post("/auth/change-password", controllers.AuthChangePassword(deps.Auth, logg))
			r.Get("/auth/me", controllers.AuthMe(deps.Users, logg))

			r.Route("/assignments", func(r chi.Router) {
				r.With(middleware.RequirePermission(rbac.OpView, logg)).
					Get("/", controllers.AssignmentsList(deps.Assignments, logg))
				r.With(middleware.RequirePermission(rbac.OpView, logg)).
					Get("/available-vans", controllers.AssignmentsAvailableVans(deps.Assignments, logg))
				r.With(middleware.RequirePermission(rbac.OpView, logg)).
					Get("/available-drivers", controllers.AssignmentsAvailableDrivers(deps.Assignments, logg))
				r.With(middleware.RequirePermission(rbac.OpView, logg)).
					Get("/{id}", controllers.AssignmentsGet(deps.Assignments, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(rbac.OpAssignmentWrite, logg))
					r.Post("/", controllers.AssignmentsCreate(deps.Assignments, logg))
					r.Put("/{id}", controllers.AssignmentsUpdate(deps.Assignments, logg))
					r.Post("/{id}/replace", controllers.AssignmentsReplace(deps.Assignments, logg))
					r.Delete("/{id}", controllers.AssignmentsDelete(deps.Assignments, logg))
				})
			})

			r.Route("/vans", func(r chi.Router) {
				r.With(middleware.RequirePermission(rbac.OpView, logg)).
					Get("/", controllers.VansList(deps.Vans, logg))
				r.With(middleware.RequirePermission(rbac.OpView, logg)).
					Get("/search", controllers.VansSearch(deps.Vans, logg))
				r.With(middleware.RequirePermission(rbac.OpToggleEntity, logg)).
					Post("/{id}/toggle", controllers.VansToggle(deps.Vans, logg))
				r.With(middleware.RequirePermission(rbac.OpAssignmentWrite, logg)).
					Post("/{id}/operational-status", controllers.VansSetOperationalStatus(deps.Vans, logg))
			})

			r.Route("/drivers", func(r chi.Router) {
				r.With(middleware.RequirePermission(rbac.OpView, logg)).
					Get("/", controllers.DriversList(deps.Drivers, logg))
				r.With(middleware.RequirePermission(rbac.OpView, logg)).
					Get("/search", controllers.DriversSearch(deps.Drivers, logg))
				r.With(middleware.RequirePermission(rbac.OpToggleEntity, logg)).
					Post("/{id}/toggle", controllers.DriversToggle(deps.Drivers, logg))
			})

			r.Route("/preassignments", func(r chi.Router) {
				r.With(middleware.RequirePermission(rbac.OpView, logg)).
					Get("/", controllers.PreassignmentsList(deps.Preassignments, logg))
				r.With(middleware.RequirePermission(rbac.OpAssignmentWrite, logg)).
					Post("/", controllers.PreassignmentsUpsert(deps.Preassignments, logg))
				r.With(middleware.RequirePermission(rbac.OpAssignmentWrite, logg)).
					Delete("/{id}", controllers.PreassignmentsDelete(deps.Preassignments, logg))
			})

			r.Route("/uploads", func(r chi.Router) {
				r.Use(middleware.RequirePermission(rbac.OpUpload, logg))
				r.Post("/vans", controllers.UploadVans(deps.Imports, logg))
				r.Post("/drivers", controllers.UploadDrivers(deps.Imports, logg))
			})

			r.Route("/exports", func(r chi.Router) {
				r.Use(middleware.RequirePermission(rbac.OpView, logg))
				r.Get("/daily", controllers.ExportDaily(deps.Exports, logg))
				r.Get("/weekly", controllers.ExportWeekly(deps.Exports, logg))
				r.Get("/period", controllers.ExportPeriod(deps.Exports, logg))
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequirePermission(rbac.OpManageUsers, logg))
				r.Get("/", controllers.UsersList(deps.Users, logg))
				r.Post("/", controllers.UsersCreate(deps.Users, logg))
				r.Put("/{id}", controllers.UsersUpdate(deps.Users, logg))
			})

			r.With(middleware.RequirePermission(rbac.OpViewAudit, logg)).
				Get("/audit", controllers.AuditList(deps.Audit, logg))
		})
	})

	return r
}
