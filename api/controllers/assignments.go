package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/fleetworks/vanlist-backend/api/middleware"
	"github.com/fleetworks/vanlist-backend/api/responses"
	"github.com/fleetworks/vanlist-backend/api/validators"
	"github.com/fleetworks/vanlist-backend/internal/assignments"
	pkgerrors "github.com/fleetworks/vanlist-backend/pkg/errors"
	"github.com/fleetworks/vanlist-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type createAssignmentRequest struct {
	Date     string  `json:"date" validate:"required"`
	VanID    string  `json:"van_id" validate:"required,uuid"`
	DriverID string  `json:"driver_id" validate:"required,uuid"`
	Notes    *string `json:"notes,omitempty"`
}

type updateAssignmentRequest struct {
	Notes *string `json:"notes"`
}

type replaceAssignmentRequest struct {
	Date     *string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	VanID    string  `json:"van_id" validate:"required,uuid"`
	DriverID string  `json:"driver_id" validate:"required,uuid"`
	Notes    *string `json:"notes,omitempty"`
}

// AssignmentsList returns bookings inside an inclusive date range, or inside
// one numbered week when `week` is given instead.
func AssignmentsList(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimSpace(r.URL.Query().Get("week")) != "" {
			weekNumber, err := validators.ParseQueryInt(r, "week", 0, -10000, 10000)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			rows, err := svc.ListWeek(r.Context(), weekNumber)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, rows)
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

		rows, err := svc.List(r.Context(), from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func AssignmentsGet(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func AssignmentsCreate(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var body createAssignmentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		date, err := time.ParseInLocation(assignments.DateLayout, body.Date, time.UTC)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "date must be a YYYY-MM-DD date"))
			return
		}
		vanID, err := validators.ParsePathUUID(body.VanID, "van_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		driverID, err := validators.ParsePathUUID(body.DriverID, "driver_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Create(r.Context(), actor, assignments.CreateInput{
			Date:     date,
			VanID:    vanID,
			DriverID: driverID,
			Notes:    body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// AssignmentsUpdate only mutates the notes; identity changes go through replace.
func AssignmentsUpdate(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateAssignmentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.UpdateNotes(r.Context(), actor, id, body.Notes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func AssignmentsReplace(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body replaceAssignmentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := assignments.ReplaceInput{Notes: body.Notes}
		if body.Date != nil {
			date, err := time.ParseInLocation(assignments.DateLayout, *body.Date, time.UTC)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "date must be a YYYY-MM-DD date"))
				return
			}
			input.Date = date
		}
		input.VanID, err = validators.ParsePathUUID(body.VanID, "van_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.DriverID, err = validators.ParsePathUUID(body.DriverID, "driver_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Replace(r.Context(), actor, id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func AssignmentsDelete(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actor, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func AssignmentsAvailableVans(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := validators.ParseQueryDate(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.AvailableVans(r.Context(), date, r.URL.Query().Get("q"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func AssignmentsAvailableDrivers(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := validators.ParseQueryDate(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.AvailableDrivers(r.Context(), date, r.URL.Query().Get("q"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
