package assignments

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetworks/vanlist-backend/internal/audit"
	"github.com/fleetworks/vanlist-backend/internal/drivers"
	"github.com/fleetworks/vanlist-backend/internal/vans"
	"github.com/fleetworks/vanlist-backend/pkg/db"
	"github.com/fleetworks/vanlist-backend/pkg/db/models"
	"github.com/fleetworks/vanlist-backend/pkg/enums"
	pkgerrors "github.com/fleetworks/vanlist-backend/pkg/errors"
	"github.com/fleetworks/vanlist-backend/pkg/week"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes booking operations over daily assignments.
type Service interface {
	List(ctx context.Context, from, to time.Time) ([]AssignmentDTO, error)
	ListWeek(ctx context.Context, weekNumber int) ([]AssignmentDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*AssignmentDTO, error)
	Create(ctx context.Context, actor audit.Actor, input CreateInput) (*AssignmentDTO, error)
	UpdateNotes(ctx context.Context, actor audit.Actor, id uuid.UUID, notes *string) (*AssignmentDTO, error)
	Replace(ctx context.Context, actor audit.Actor, id uuid.UUID, input ReplaceInput) (*AssignmentDTO, error)
	Delete(ctx context.Context, actor audit.Actor, id uuid.UUID) error
	AvailableVans(ctx context.Context, date time.Time, q string) ([]vans.VanDTO, error)
	AvailableDrivers(ctx context.Context, date time.Time, q string) ([]drivers.DriverDTO, error)
}

// CreateInput books a van and driver for a single day.
type CreateInput struct {
	Date     time.Time
	VanID    uuid.UUID
	DriverID uuid.UUID
	Notes    *string
}

// ReplaceInput swaps the identity of an existing booking. A zero Date keeps
// the booked date; notes are kept unless a replacement is provided.
type ReplaceInput struct {
	Date     time.Time
	VanID    uuid.UUID
	DriverID uuid.UUID
	Notes    *string
}

type service struct {
	repo    Repository
	vans    vans.Repository
	drivers drivers.Repository
	tx      txRunner
	audit   audit.Service
}

// NewService wires the assignment service with its collaborators.
func NewService(repo Repository, vansRepo vans.Repository, driversRepo drivers.Repository, tx txRunner, auditSvc audit.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("assignment repository required")
	}
	if vansRepo == nil {
		return nil, fmt.Errorf("van repository required")
	}
	if driversRepo == nil {
		return nil, fmt.Errorf("driver repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if auditSvc == nil {
		return nil, fmt.Errorf("audit service required")
	}
	return &service{
		repo:    repo,
		vans:    vansRepo,
		drivers: driversRepo,
		tx:      tx,
		audit:   auditSvc,
	}, nil
}

func (s *service) List(ctx context.Context, from, to time.Time) ([]AssignmentDTO, error) {
	from = week.Truncate(from)
	to = week.Truncate(to)
	if to.Before(from) {
		return []AssignmentDTO{}, nil
	}
	rows, err := s.repo.ListRange(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assignments")
	}
	return FromModels(rows), nil
}

func (s *service) ListWeek(ctx context.Context, weekNumber int) ([]AssignmentDTO, error) {
	start, end := week.Range(weekNumber)
	return s.List(ctx, start, end)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*AssignmentDTO, error) {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignment")
	}
	if assignment == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
	}
	return FromModel(assignment), nil
}

func (s *service) Create(ctx context.Context, actor audit.Actor, input CreateInput) (*AssignmentDTO, error) {
	if input.Date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment date is required")
	}
	if input.VanID == uuid.Nil || input.DriverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "van and driver are required")
	}
	date := week.Truncate(input.Date)

	var dto *AssignmentDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		van, driver, err := s.loadBookableEntities(ctx, tx, input.VanID, input.DriverID)
		if err != nil {
			return err
		}
		if err := s.checkConflicts(ctx, repo, date, van, driver); err != nil {
			return err
		}

		assignment := &models.DailyAssignment{
			AssignmentDate: date,
			VanID:          van.ID,
			DriverID:       driver.ID,
			Notes:          input.Notes,
		}
		if err := repo.Create(ctx, assignment); err != nil {
			return translateBookingError(err)
		}
		assignment.Van = *van
		assignment.Driver = *driver

		detail := fmt.Sprintf("assigned van %s to %s (%s) on %s", van.Code, driver.Name, driver.EmployeeID, date.Format(DateLayout))
		if _, err := s.audit.Record(ctx, tx, actor.RecordFor(enums.AuditActionCreate, enums.EntityAssignment, assignment.ID, detail)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "audit assignment create")
		}

		dto = FromModel(assignment)
		return nil
	})
	if err != nil {
		return nil, s.attachConflictWinner(ctx, err, date, input.VanID, input.DriverID)
	}
	return dto, nil
}

func (s *service) UpdateNotes(ctx context.Context, actor audit.Actor, id uuid.UUID, notes *string) (*AssignmentDTO, error) {
	var dto *AssignmentDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		assignment, err := repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignment")
		}
		if assignment == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
		}

		if err := repo.UpdateNotes(ctx, id, notes); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update assignment notes")
		}
		assignment.Notes = notes

		detail := fmt.Sprintf("updated notes for van %s on %s", assignment.Van.Code, assignment.AssignmentDate.Format(DateLayout))
		if _, err := s.audit.Record(ctx, tx, actor.RecordFor(enums.AuditActionUpdate, enums.EntityAssignment, assignment.ID, detail)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "audit assignment update")
		}

		dto = FromModel(assignment)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Replace swaps the identity of a booking by deleting the row and inserting a
// fresh one in the same transaction, so the uniqueness invariant never
// observes an in-place FK update and a failed swap leaves the original row.
func (s *service) Replace(ctx context.Context, actor audit.Actor, id uuid.UUID, input ReplaceInput) (*AssignmentDTO, error) {
	if input.VanID == uuid.Nil || input.DriverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "van and driver are required")
	}

	var dto *AssignmentDTO
	var targetDate time.Time
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignment")
		}
		if existing == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
		}

		targetDate = existing.AssignmentDate
		if !input.Date.IsZero() {
			targetDate = week.Truncate(input.Date)
		}

		van, driver, err := s.loadBookableEntities(ctx, tx, input.VanID, input.DriverID)
		if err != nil {
			return err
		}

		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete assignment")
		}
		if err := s.checkConflicts(ctx, repo, targetDate, van, driver); err != nil {
			return err
		}

		notes := existing.Notes
		if input.Notes != nil {
			notes = input.Notes
		}

		replacement := &models.DailyAssignment{
			AssignmentDate: targetDate,
			VanID:          van.ID,
			DriverID:       driver.ID,
			Notes:          notes,
		}
		if err := repo.Create(ctx, replacement); err != nil {
			return translateBookingError(err)
		}
		replacement.Van = *van
		replacement.Driver = *driver

		detail := fmt.Sprintf("reassigned %s from van %s / %s to van %s / %s",
			targetDate.Format(DateLayout),
			existing.Van.Code, existing.Driver.Name,
			van.Code, driver.Name)
		if !targetDate.Equal(existing.AssignmentDate) {
			detail = fmt.Sprintf("moved booking from %s to %s, van %s / %s to van %s / %s",
				existing.AssignmentDate.Format(DateLayout), targetDate.Format(DateLayout),
				existing.Van.Code, existing.Driver.Name,
				van.Code, driver.Name)
		}
		if _, err := s.audit.Record(ctx, tx, actor.RecordFor(enums.AuditActionUpdate, enums.EntityAssignment, replacement.ID, detail)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "audit assignment replace")
		}

		dto = FromModel(replacement)
		return nil
	})
	if err != nil {
		return nil, s.attachConflictWinner(ctx, err, targetDate, input.VanID, input.DriverID)
	}
	return dto, nil
}

func (s *service) Delete(ctx context.Context, actor audit.Actor, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		assignment, err := repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignment")
		}
		if assignment == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
		}

		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete assignment")
		}

		detail := fmt.Sprintf("removed van %s / %s on %s", assignment.Van.Code, assignment.Driver.Name, assignment.AssignmentDate.Format(DateLayout))
		if _, err := s.audit.Record(ctx, tx, actor.RecordFor(enums.AuditActionDelete, enums.EntityAssignment, assignment.ID, detail)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "audit assignment delete")
		}
		return nil
	})
}

func (s *service) AvailableVans(ctx context.Context, date time.Time, q string) ([]vans.VanDTO, error) {
	if date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}
	rows, err := s.repo.AvailableVans(ctx, week.Truncate(date), q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list available vans")
	}
	return vans.FromModels(rows), nil
}

func (s *service) AvailableDrivers(ctx context.Context, date time.Time, q string) ([]drivers.DriverDTO, error) {
	if date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}
	rows, err := s.repo.AvailableDrivers(ctx, week.Truncate(date), q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list available drivers")
	}
	return drivers.FromModels(rows), nil
}

func (s *service) loadBookableEntities(ctx context.Context, tx *gorm.DB, vanID, driverID uuid.UUID) (*models.Van, *models.Driver, error) {
	van, err := s.vans.WithTx(tx).FindByID(ctx, vanID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load van")
	}
	if van == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "van not found")
	}
	if !van.IsActive {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("van %s is inactive", van.Code))
	}

	driver, err := s.drivers.WithTx(tx).FindByID(ctx, driverID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver")
	}
	if driver == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
	}
	if !driver.IsActive {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("driver %s is inactive", driver.Name))
	}

	return van, driver, nil
}

// checkConflicts is the primary double-booking defense, run inside the same
// transaction as the insert. The unique constraints remain as the last line
// for races the read cannot see.
func (s *service) checkConflicts(ctx context.Context, repo Repository, date time.Time, van *models.Van, driver *models.Driver) error {
	existing, err := repo.FindByDateVan(ctx, date, van.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check van conflict")
	}
	if existing != nil {
		return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("van %s is already assigned on this date", van.Code)).
			WithDetails(map[string]any{"conflict": "van", "assignment_id": existing.ID})
	}

	existing, err = repo.FindByDateDriver(ctx, date, driver.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check driver conflict")
	}
	if existing != nil {
		return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("driver %s is already assigned on this date", driver.Name)).
			WithDetails(map[string]any{"conflict": "driver", "assignment_id": existing.ID})
	}

	return nil
}

// attachConflictWinner re-reads the winning row after a constraint-detected
// conflict rolled the transaction back. The in-transaction check reports the
// winner directly; this covers the race window where only the unique
// constraint saw the collision, so every loser still learns the winner's id.
func (s *service) attachConflictWinner(ctx context.Context, err error, date time.Time, vanID, driverID uuid.UUID) error {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict || date.IsZero() {
		return err
	}
	details, _ := typed.Details().(map[string]any)
	if details == nil {
		details = map[string]any{}
	}
	if _, ok := details["assignment_id"]; ok {
		return err
	}
	dimension, _ := details["conflict"].(string)
	if dimension == "" || dimension == "van" {
		if winner, lookupErr := s.repo.FindByDateVan(ctx, date, vanID); lookupErr == nil && winner != nil {
			details["conflict"] = "van"
			details["assignment_id"] = winner.ID
			return typed.WithDetails(details)
		}
	}
	if dimension == "" || dimension == "driver" {
		if winner, lookupErr := s.repo.FindByDateDriver(ctx, date, driverID); lookupErr == nil && winner != nil {
			details["conflict"] = "driver"
			details["assignment_id"] = winner.ID
			return typed.WithDetails(details)
		}
	}
	return err
}

func translateBookingError(err error) error {
	switch {
	case db.IsUniqueViolation(err, "uq_assignments_date_van") ||
		db.IsUniqueViolation(err, "daily_assignments.van_id"):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "this van is already assigned on this date").
			WithDetails(map[string]any{"conflict": "van"})
	case db.IsUniqueViolation(err, "uq_assignments_date_driver") ||
		db.IsUniqueViolation(err, "daily_assignments.driver_id"):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "this driver is already assigned on this date").
			WithDetails(map[string]any{"conflict": "driver"})
	case db.IsUniqueViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "this van or driver is already assigned on this date")
	case db.IsForeignKeyViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeIntegrity, err, "assignment references a missing van or driver")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create assignment")
	}
}
