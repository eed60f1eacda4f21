package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/fleetworks/vanlist-backend/api/middleware"
	"github.com/fleetworks/vanlist-backend/api/responses"
	"github.com/fleetworks/vanlist-backend/internal/audit"
	"github.com/fleetworks/vanlist-backend/internal/imports"
	pkgerrors "github.com/fleetworks/vanlist-backend/pkg/errors"
	"github.com/fleetworks/vanlist-backend/pkg/logger"
)

// maxUploadBytes bounds a single fleet or roster file.
const maxUploadBytes = 10 << 20

type importFunc func(ctx context.Context, actor audit.Actor, filename string, file io.Reader) (*imports.Summary, error)

// UploadVans ingests a fleet file and reconciles it against the van table.
func UploadVans(svc imports.Service, logg *logger.Logger) http.HandlerFunc {
	return uploadHandler(svc.ImportVans, logg)
}

// UploadDrivers ingests a roster file and reconciles it against the driver table.
func UploadDrivers(svc imports.Service, logg *logger.Logger) http.HandlerFunc {
	return uploadHandler(svc.ImportDrivers, logg)
}

func uploadHandler(ingest importFunc, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "expected a multipart upload"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "missing file field"))
			return
		}
		defer file.Close()

		summary, err := ingest(r.Context(), actor, header.Filename, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
