package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/fleetworks/vanlist-backend/api/responses"
	"github.com/fleetworks/vanlist-backend/api/validators"
	"github.com/fleetworks/vanlist-backend/internal/audit"
	"github.com/fleetworks/vanlist-backend/pkg/enums"
	pkgerrors "github.com/fleetworks/vanlist-backend/pkg/errors"
	"github.com/fleetworks/vanlist-backend/pkg/logger"
)

type auditPage struct {
	Entries []audit.EntryDTO `json:"entries"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
}

// AuditList returns the filtered trail, newest first.
func AuditList(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filter audit.Filter

		if strings.TrimSpace(r.URL.Query().Get("date_from")) != "" {
			from, err := validators.ParseQueryDate(r, "date_from")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			filter.From = &from
		}
		if strings.TrimSpace(r.URL.Query().Get("date_to")) != "" {
			to, err := validators.ParseQueryDate(r, "date_to")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			// The filter is inclusive of the whole end day.
			end := to.Add(24*time.Hour - time.Nanosecond)
			filter.To = &end
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("entity_type")); raw != "" {
			entityType := enums.EntityType(raw)
			if !entityType.IsValid() {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "unknown entity type").WithDetails(map[string]any{"field": "entity_type"}))
				return
			}
			filter.EntityType = &entityType
		}
		filter.Actor = strings.TrimSpace(r.URL.Query().Get("actor"))

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1000000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		perPage, err := validators.ParseQueryInt(r, "per_page", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, total, err := svc.List(r.Context(), filter, page, perPage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list audit log"))
			return
		}
		responses.WriteSuccess(w, auditPage{Entries: audit.FromModels(entries), Total: total, Page: page, PerPage: perPage})
	}
}
