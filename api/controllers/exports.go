package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/fleetworks/vanlist-backend/api/middleware"
	"github.com/fleetworks/vanlist-backend/api/responses"
	"github.com/fleetworks/vanlist-backend/api/validators"
	"github.com/fleetworks/vanlist-backend/internal/export"
	pkgerrors "github.com/fleetworks/vanlist-backend/pkg/errors"
	"github.com/fleetworks/vanlist-backend/pkg/logger"
)

const (
	formatCSV  = "csv"
	formatXLSX = "xlsx"
)

func ExportDaily(svc export.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		format, err := exportFormat(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		date, err := validators.ParseQueryDate(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.Daily(r.Context(), actor, date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeExport(w, r, logg, rows, format, "assignments-"+r.URL.Query().Get("date"))
	}
}

func ExportWeekly(svc export.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		format, err := exportFormat(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if strings.TrimSpace(r.URL.Query().Get("week")) == "" {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "query parameter is required").WithDetails(map[string]any{"field": "week"}))
			return
		}
		weekNumber, err := validators.ParseQueryInt(r, "week", 0, -10000, 10000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.Weekly(r.Context(), actor, weekNumber)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeExport(w, r, logg, rows, format, fmt.Sprintf("assignments-week-%d", weekNumber))
	}
}

func ExportPeriod(svc export.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		format, err := exportFormat(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, err := validators.ParseQueryDate(r, "date_from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryDate(r, "date_to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.Period(r.Context(), actor, from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		name := "assignments-" + r.URL.Query().Get("date_from") + "-to-" + r.URL.Query().Get("date_to")
		writeExport(w, r, logg, rows, format, name)
	}
}

func exportFormat(r *http.Request) (string, error) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	switch format {
	case "", formatCSV:
		return formatCSV, nil
	case formatXLSX:
		return formatXLSX, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, "format must be csv or xlsx")
	}
}

func writeExport(w http.ResponseWriter, r *http.Request, logg *logger.Logger, rows []export.Row, format, basename string) {
	switch format {
	case formatXLSX:
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", basename+".xlsx"))
		if err := export.RenderXLSX(w, rows); err != nil && logg != nil {
			logg.Error(r.Context(), "export.render", err)
		}
	default:
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", basename+".csv"))
		if err := export.RenderCSV(w, rows); err != nil && logg != nil {
			logg.Error(r.Context(), "export.render", err)
		}
	}
}
