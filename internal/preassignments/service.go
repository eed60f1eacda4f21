package preassignments

import (
	"context"
	"fmt"

	"github.com/fleetworks/vanlist-backend/internal/audit"
	"github.com/fleetworks/vanlist-backend/internal/drivers"
	"github.com/fleetworks/vanlist-backend/internal/vans"
	"github.com/fleetworks/vanlist-backend/pkg/db"
	"github.com/fleetworks/vanlist-backend/pkg/db/models"
	"github.com/fleetworks/vanlist-backend/pkg/enums"
	pkgerrors "github.com/fleetworks/vanlist-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages the driver-to-van defaults used to prefill bookings.
type Service interface {
	List(ctx context.Context) ([]PreassignmentDTO, error)
	Upsert(ctx context.Context, actor audit.Actor, driverID, vanID uuid.UUID) (*PreassignmentDTO, error)
	Delete(ctx context.Context, actor audit.Actor, id uuid.UUID) error
}

type service struct {
	repo    Repository
	vans    vans.Repository
	drivers drivers.Repository
	tx      txRunner
	audit   audit.Service
}

// NewService wires the preassignment service with its dependencies.
func NewService(repo Repository, vanRepo vans.Repository, driverRepo drivers.Repository, tx txRunner, auditSvc audit.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("preassignment repository required")
	}
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
	return &service{repo: repo, vans: vanRepo, drivers: driverRepo, tx: tx, audit: auditSvc}, nil
}

func (s *service) List(ctx context.Context) ([]PreassignmentDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list preassignments")
	}
	return FromModels(rows), nil
}

// Upsert pins the driver to the van, replacing any previous default. A driver
// holds at most one preassignment.
func (s *service) Upsert(ctx context.Context, actor audit.Actor, driverID, vanID uuid.UUID) (*PreassignmentDTO, error) {
	driver, err := s.drivers.FindByID(ctx, driverID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver")
	}
	if driver == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
	}
	if !driver.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("driver %s is inactive", driver.EmployeeID))
	}

	van, err := s.vans.FindByID(ctx, vanID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load van")
	}
	if van == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "van not found")
	}
	if !van.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("van %s is inactive", van.Code))
	}

	var savedID uuid.UUID
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindByDriver(ctx, driverID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check preassignment")
		}

		detail := fmt.Sprintf("preassigned van %s to %s (%s)", van.Code, driver.Name, driver.EmployeeID)
		action := enums.AuditActionCreate
		if existing != nil {
			if err := repo.UpdateVan(ctx, existing.ID, vanID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update preassignment")
			}
			savedID = existing.ID
			action = enums.AuditActionUpdate
			detail = fmt.Sprintf("repinned %s (%s) from van %s to van %s", driver.Name, driver.EmployeeID, existing.Van.Code, van.Code)
		} else {
			row := &models.DriverVanPreassignment{DriverID: driverID, VanID: vanID}
			if err := repo.Create(ctx, row); err != nil {
				if db.IsUniqueViolation(err, "uq_preassignments_driver") {
					return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("driver %s already has a preassignment", driver.EmployeeID))
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create preassignment")
			}
			savedID = row.ID
		}

		if _, err := s.audit.Record(ctx, tx, actor.RecordFor(action, enums.EntityPreassignment, savedID, detail)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "audit preassignment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	saved, err := s.repo.FindByID(ctx, savedID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload preassignment")
	}
	return FromModel(saved), nil
}

func (s *service) Delete(ctx context.Context, actor audit.Actor, id uuid.UUID) error {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load preassignment")
	}
	if row == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "preassignment not found")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Delete(ctx, row.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete preassignment")
		}
		detail := fmt.Sprintf("unpinned van %s from %s (%s)", row.Van.Code, row.Driver.Name, row.Driver.EmployeeID)
		if _, err := s.audit.Record(ctx, tx, actor.RecordFor(enums.AuditActionDelete, enums.EntityPreassignment, row.ID, detail)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "audit preassignment delete")
		}
		return nil
	})
}
