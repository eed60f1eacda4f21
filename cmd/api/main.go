package main

import (
	"context"
	"net/http"
	"os"

	"github.com/fleetworks/vanlist-backend/api/routes"
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
	"github.com/fleetworks/vanlist-backend/pkg/migrate"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	auditSvc, err := audit.NewService(audit.NewRepository(gormDB))
	requireService(logg, "audit", err)

	userRepo := users.NewRepository(gormDB)
	userSvc, err := users.NewService(userRepo, dbClient, auditSvc, cfg.Password)
	requireService(logg, "users", err)

	if err := userSvc.SeedDefaultAdmin(context.Background(), cfg.Admin); err != nil {
		logg.Error(context.Background(), "failed to seed default admin", err)
		os.Exit(1)
	}

	authSvc, err := auth.NewService(userRepo, dbClient, auditSvc, logg, cfg.JWT, cfg.Password)
	requireService(logg, "auth", err)

	vanRepo := vans.NewRepository(gormDB)
	driverRepo := drivers.NewRepository(gormDB)

	vanSvc, err := vans.NewService(vanRepo, dbClient, auditSvc)
	requireService(logg, "vans", err)

	driverSvc, err := drivers.NewService(driverRepo, dbClient, auditSvc)
	requireService(logg, "drivers", err)

	assignmentRepo := assignments.NewRepository(gormDB)
	assignmentSvc, err := assignments.NewService(assignmentRepo, vanRepo, driverRepo, dbClient, auditSvc)
	requireService(logg, "assignments", err)

	preassignmentSvc, err := preassignments.NewService(preassignments.NewRepository(gormDB), vanRepo, driverRepo, dbClient, auditSvc)
	requireService(logg, "preassignments", err)

	importSvc, err := imports.NewService(vanRepo, driverRepo, dbClient, auditSvc)
	requireService(logg, "imports", err)

	exportSvc, err := export.NewService(assignmentRepo, auditSvc, logg, cfg.Export)
	requireService(logg, "exports", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Cfg:            cfg,
			Logger:         logg,
			DB:             dbClient,
			Registry:       registry,
			HTTPMetrics:    httpMetrics,
			Auth:           authSvc,
			Users:          userSvc,
			Assignments:    assignmentSvc,
			Vans:           vanSvc,
			Drivers:        driverSvc,
			Preassignments: preassignmentSvc,
			Imports:        importSvc,
			Exports:        exportSvc,
			Audit:          auditSvc,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	ctx := logg.WithField(context.Background(), "service", name)
	logg.Error(ctx, "failed to create service", err)
	os.Exit(1)
}
