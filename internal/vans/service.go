package vans

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

// Service exposes van read and admin operations.
type Service interface {
	List(ctx context.Context, activeOnly bool) ([]VanDTO, error)
	Search(ctx context.Context, q string) ([]VanDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*VanDTO, error)
	Toggle(ctx context.Context, actor audit.Actor, id uuid.UUID) (*VanDTO, error)
	SetOperationalStatus(ctx context.Context, actor audit.Actor, id uuid.UUID, status *string) (*VanDTO, error)
}

type service struct {
	repo  Repository
	tx    txRunner
	audit audit.Service
}

// NewService wires a van service with its repository and audit trail.
func NewService(repo Repository, tx txRunner, auditSvc audit.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("van repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if auditSvc == nil {
		return nil, fmt.Errorf("audit service required")
	}
	return &service{repo: repo, tx: tx, audit: auditSvc}, nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]VanDTO, error) {
	rows, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vans")
	}
	return FromModels(rows), nil
}

func (s *service) Search(ctx context.Context, q string) ([]VanDTO, error) {
	if strings.TrimSpace(q) == "" {
		return []VanDTO{}, nil
	}
	rows, err := s.repo.Search(ctx, q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search vans")
	}
	return FromModels(rows), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*VanDTO, error) {
	van, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load van")
	}
	if van == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "van not found")
	}
	return FromModel(van), nil
}

func (s *service) Toggle(ctx context.Context, actor audit.Actor, id uuid.UUID) (*VanDTO, error) {
	var dto *VanDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		van, err := repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load van")
		}
		if van == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "van not found")
		}

		van.IsActive = !van.IsActive
		if err := repo.Update(ctx, van); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update van")
		}

		state := "deactivated"
		if van.IsActive {
			state = "activated"
		}
		detail := fmt.Sprintf("van %s %s", van.Code, state)
		if _, err := s.audit.Record(ctx, tx, actor.RecordFor(enums.AuditActionToggle, enums.EntityVan, van.ID, detail)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "audit van toggle")
		}

		dto = FromModel(van)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (s *service) SetOperationalStatus(ctx context.Context, actor audit.Actor, id uuid.UUID, status *string) (*VanDTO, error) {
	if status != nil {
		trimmed := strings.TrimSpace(*status)
		if trimmed == "" {
			status = nil
		} else {
			status = &trimmed
		}
	}

	var dto *VanDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		van, err := repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load van")
		}
		if van == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "van not found")
		}

		van.OperationalStatus = status
		if err := repo.Update(ctx, van); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update van")
		}

		detail := fmt.Sprintf("van %s operational status set to %s", van.Code, statusText(status))
		if _, err := s.audit.Record(ctx, tx, actor.RecordFor(enums.AuditActionUpdate, enums.EntityVan, van.ID, detail)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "audit van status change")
		}

		dto = FromModel(van)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func statusText(status *string) string {
	if status == nil {
		return "none"
	}
	return *status
}
