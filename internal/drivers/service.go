package drivers

import (
	"context"
	"fmt"
	"strings"

	"github.com/fleetworks/vanlist-backend/internal/audit"
	"github.com/fleetworks/vanlist-backend/pkg/enums"
	pkgerrors "github.com/fleetworks/vanlist-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes driver read and admin operations.
type Service interface {
	List(ctx context.Context, activeOnly bool) ([]DriverDTO, error)
	Search(ctx context.Context, q string) ([]DriverDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*DriverDTO, error)
	Toggle(ctx context.Context, actor audit.Actor, id uuid.UUID) (*DriverDTO, error)
}

type service struct {
	repo  Repository
	tx    txRunner
	audit audit.Service
}

// NewService wires a driver service with its repository and audit trail.
func NewService(repo Repository, tx txRunner, auditSvc audit.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("driver repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if auditSvc == nil {
		return nil, fmt.Errorf("audit service required")
	}
	return &service{repo: repo, tx: tx, audit: auditSvc}, nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]DriverDTO, error) {
	rows, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list drivers")
	}
	return FromModels(rows), nil
}

func (s *service) Search(ctx context.Context, q string) ([]DriverDTO, error) {
	if strings.TrimSpace(q) == "" {
		return []DriverDTO{}, nil
	}
	rows, err := s.repo.Search(ctx, q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search drivers")
	}
	return FromModels(rows), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*DriverDTO, error) {
	driver, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver")
	}
	if driver == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
	}
	return FromModel(driver), nil
}

func (s *service) Toggle(ctx context.Context, actor audit.Actor, id uuid.UUID) (*DriverDTO, error) {
	var dto *DriverDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		driver, err := repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver")
		}
		if driver == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
		}

		driver.IsActive = !driver.IsActive
		if err := repo.Update(ctx, driver); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update driver")
		}

		state := "deactivated"
		if driver.IsActive {
			state = "activated"
		}
		detail := fmt.Sprintf("driver %s (%s) %s", driver.Name, driver.EmployeeID, state)
		if _, err := s.audit.Record(ctx, tx, actor.RecordFor(enums.AuditActionToggle, enums.EntityDriver, driver.ID, detail)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "audit driver toggle")
		}

		dto = FromModel(driver)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}
