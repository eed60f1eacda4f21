package imports

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fleetworks/vanlist-backend/internal/audit"
	"github.com/fleetworks/vanlist-backend/internal/drivers"
	"github.com/fleetworks/vanlist-backend/internal/vans"
	"github.com/fleetworks/vanlist-backend/pkg/db/models"
	"github.com/fleetworks/vanlist-backend/pkg/enums"
	pkgerrors "github.com/fleetworks/vanlist-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Summary reports the outcome of one upload.
type Summary struct {
	Inserted int      `json:"inserted"`
	Updated  int      `json:"updated"`
	Rejected int      `json:"rejected"`
	Errors   []string `json:"errors,omitempty"`
}

// Service reconciles uploaded fleet and roster files against the database.
// Each upload is idempotent: rows upsert by natural key, so re-importing the
// same file updates in place instead of duplicating.
type Service interface {
	ImportVans(ctx context.Context, actor audit.Actor, filename string, file io.Reader) (*Summary, error)
	ImportDrivers(ctx context.Context, actor audit.Actor, filename string, file io.Reader) (*Summary, error)
}

type service struct {
	vans    vans.Repository
	drivers drivers.Repository
	tx      txRunner
	audit   audit.Service
}

// NewService wires the import service with its dependencies.
func NewService(vanRepo vans.Repository, driverRepo drivers.Repository, tx txRunner, auditSvc audit.Service) (Service, error) {
	if vanRepo == nil {
		return nil, fmt.Errorf("van repository required")
	}
	if driverRepo == nil {
		return nil, fmt.Errorf("driver repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if auditSvc == nil {
		return nil, fmt.Errorf("audit service required")
	}
	return &service{vans: vanRepo, drivers: driverRepo, tx: tx, audit: auditSvc}, nil
}

func (s *service) ImportVans(ctx context.Context, actor audit.Actor, filename string, file io.Reader) (*Summary, error) {
	rows, rejects, err := ParseVanFile(filename, file)
	if err != nil {
		return nil, err
	}

	summary := newSummary(rejects)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.vans.WithTx(tx)
		for _, row := range rows {
			existing, err := repo.FindByCode(ctx, row.Code)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up van")
			}
			if existing == nil {
				van := &models.Van{
					Code:              row.Code,
					Description:       row.Description,
					OperationalStatus: row.OperationalStatus,
					IsActive:          true,
				}
				if err := repo.Create(ctx, van); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create van")
				}
				summary.Inserted++
				continue
			}
			if row.Description != nil {
				existing.Description = row.Description
			}
			if row.OperationalStatus != nil {
				existing.OperationalStatus = row.OperationalStatus
			}
			// The active flag is owned by the admin toggle; a re-import
			// must never undo a deactivation.
			if err := repo.Update(ctx, existing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update van")
			}
			summary.Updated++
		}
		return s.finish(ctx, tx, actor, enums.ImportKindVan, filename, summary, rejects)
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *service) ImportDrivers(ctx context.Context, actor audit.Actor, filename string, file io.Reader) (*Summary, error) {
	rows, rejects, err := ParseDriverFile(filename, file)
	if err != nil {
		return nil, err
	}

	summary := newSummary(rejects)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.drivers.WithTx(tx)
		for _, row := range rows {
			existing, err := repo.FindByEmployeeID(ctx, row.EmployeeID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up driver")
			}
			if existing == nil {
				driver := &models.Driver{
					EmployeeID: row.EmployeeID,
					Name:       row.Name,
					IsActive:   true,
				}
				if err := repo.Create(ctx, driver); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create driver")
				}
				summary.Inserted++
				continue
			}
			existing.Name = row.Name
			if err := repo.Update(ctx, existing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update driver")
			}
			summary.Updated++
		}
		return s.finish(ctx, tx, actor, enums.ImportKindDriver, filename, summary, rejects)
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// finish writes the import_logs row and the single upload audit entry inside
// the reconciliation transaction.
func (s *service) finish(ctx context.Context, tx *gorm.DB, actor audit.Actor, kind enums.ImportKind, filename string, summary *Summary, rejects []RowError) error {
	log := &models.ImportLog{
		Kind:     kind,
		Filename: filename,
		Inserted: summary.Inserted,
		Updated:  summary.Updated,
		Rejected: summary.Rejected,
	}
	if actor.ID != uuid.Nil {
		id := actor.ID
		log.UploadedBy = &id
	}
	if len(rejects) > 0 {
		encoded, err := json.Marshal(rejects)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode row errors")
		}
		text := string(encoded)
		log.Errors = &text
	}
	if err := tx.WithContext(ctx).Create(log).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record import log")
	}

	entityType := enums.EntityVan
	noun := "vans"
	if kind == enums.ImportKindDriver {
		entityType = enums.EntityDriver
		noun = "drivers"
	}
	detail := fmt.Sprintf("imported %s from %s: %d inserted, %d updated, %d rejected",
		noun, filename, summary.Inserted, summary.Updated, summary.Rejected)
	input := actor.RecordFor(enums.AuditActionUpload, entityType, uuid.Nil, detail)
	if _, err := s.audit.Record(ctx, tx, input); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "audit upload")
	}
	return nil
}

func newSummary(rejects []RowError) *Summary {
	summary := &Summary{Rejected: len(rejects)}
	for _, reject := range rejects {
		summary.Errors = append(summary.Errors, reject.String())
	}
	return summary
}
