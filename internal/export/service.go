package export

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetworks/vanlist-backend/internal/assignments"
	"github.com/fleetworks/vanlist-backend/internal/audit"
	"github.com/fleetworks/vanlist-backend/pkg/config"
	"github.com/fleetworks/vanlist-backend/pkg/db/models"
	"github.com/fleetworks/vanlist-backend/pkg/enums"
	pkgerrors "github.com/fleetworks/vanlist-backend/pkg/errors"
	"github.com/fleetworks/vanlist-backend/pkg/logger"
	"github.com/fleetworks/vanlist-backend/pkg/week"
	"github.com/google/uuid"
)

const assignedStatus = "Assigned"

const timestampLayout = "2006-01-02 15:04:05"

// Row is one flat export line, ready for CSV or XLSX rendering.
type Row struct {
	Date              string
	WeekNumber        int
	DriverEmployeeID  string
	DriverName        string
	VanCode           string
	VanDescription    string
	OperationalStatus string
	Status            string
	CreatedAt         string
	UpdatedAt         string
	Notes             string
}

// Service assembles assignment exports over a day, a week, or a date range.
type Service interface {
	Daily(ctx context.Context, actor audit.Actor, date time.Time) ([]Row, error)
	Weekly(ctx context.Context, actor audit.Actor, weekNumber int) ([]Row, error)
	Period(ctx context.Context, actor audit.Actor, from, to time.Time) ([]Row, error)
}

type service struct {
	assignments assignments.Repository
	audit       audit.Service
	logg        *logger.Logger
	cfg         config.ExportConfig
}

// NewService wires the export service.
func NewService(assignmentRepo assignments.Repository, auditSvc audit.Service, logg *logger.Logger, cfg config.ExportConfig) (Service, error) {
	if assignmentRepo == nil {
		return nil, fmt.Errorf("assignment repository required")
	}
	if auditSvc == nil {
		return nil, fmt.Errorf("audit service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{assignments: assignmentRepo, audit: auditSvc, logg: logg, cfg: cfg}, nil
}

func (s *service) Daily(ctx context.Context, actor audit.Actor, date time.Time) ([]Row, error) {
	day := week.Truncate(date)
	rows, err := s.assemble(ctx, day, day)
	if err != nil {
		return nil, err
	}
	detail := fmt.Sprintf("exported %d assignments for %s", len(rows), day.Format(assignments.DateLayout))
	s.recordExport(ctx, actor, detail)
	return rows, nil
}

func (s *service) Weekly(ctx context.Context, actor audit.Actor, weekNumber int) ([]Row, error) {
	from, to := week.Range(weekNumber)
	rows, err := s.assemble(ctx, from, to)
	if err != nil {
		return nil, err
	}
	detail := fmt.Sprintf("exported %d assignments for week %d", len(rows), weekNumber)
	s.recordExport(ctx, actor, detail)
	return rows, nil
}

func (s *service) Period(ctx context.Context, actor audit.Actor, from, to time.Time) ([]Row, error) {
	from = week.Truncate(from)
	to = week.Truncate(to)
	if to.Before(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date_to must not precede date_from")
	}
	days := int(to.Sub(from).Hours()/24) + 1
	if s.cfg.MaxPeriodDays > 0 && days > s.cfg.MaxPeriodDays {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("period exceeds %d days", s.cfg.MaxPeriodDays))
	}

	rows, err := s.assemble(ctx, from, to)
	if err != nil {
		return nil, err
	}
	detail := fmt.Sprintf("exported %d assignments for %s to %s",
		len(rows), from.Format(assignments.DateLayout), to.Format(assignments.DateLayout))
	s.recordExport(ctx, actor, detail)
	return rows, nil
}

func (s *service) assemble(ctx context.Context, from, to time.Time) ([]Row, error) {
	booked, err := s.assignments.ListRange(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assignments")
	}

	rows := make([]Row, 0, len(booked))
	for i := range booked {
		rows = append(rows, rowFromModel(&booked[i]))
	}
	return rows, nil
}

func rowFromModel(a *models.DailyAssignment) Row {
	row := Row{
		Date:             a.AssignmentDate.Format(assignments.DateLayout),
		WeekNumber:       week.Number(a.AssignmentDate),
		DriverEmployeeID: a.Driver.EmployeeID,
		DriverName:       a.Driver.Name,
		VanCode:          a.Van.Code,
		Status:           assignedStatus,
		CreatedAt:        a.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt:        a.UpdatedAt.UTC().Format(timestampLayout),
	}
	if a.Van.Description != nil {
		row.VanDescription = *a.Van.Description
	}
	if a.Van.OperationalStatus != nil {
		row.OperationalStatus = *a.Van.OperationalStatus
	}
	if a.Notes != nil {
		row.Notes = *a.Notes
	}
	return row
}

// recordExport leaves the trail entry outside any transaction. A failed trail
// write must not block handing the file back.
func (s *service) recordExport(ctx context.Context, actor audit.Actor, detail string) {
	input := actor.RecordFor(enums.AuditActionExport, enums.EntityAssignment, uuid.Nil, detail)
	if _, err := s.audit.Record(ctx, nil, input); err != nil {
		s.logg.Error(ctx, "export.audit", err)
	}
}
