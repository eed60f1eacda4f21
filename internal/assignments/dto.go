package assignments

import (
	"time"

	"github.com/fleetworks/vanlist-backend/pkg/db/models"
	"github.com/fleetworks/vanlist-backend/pkg/week"
	"github.com/google/uuid"
)

// DateLayout is the wire format for assignment dates.
const DateLayout = "2006-01-02"

// AssignmentDTO is the transport shape for a daily assignment, flattened
// with its van and driver identity and the computed week number.
type AssignmentDTO struct {
	ID                   uuid.UUID `json:"id"`
	Date                 string    `json:"date"`
	WeekNumber           int       `json:"week_number"`
	VanID                uuid.UUID `json:"van_id"`
	VanCode              string    `json:"van_code"`
	VanDescription       *string   `json:"van_description,omitempty"`
	VanOperationalStatus *string   `json:"van_operational_status,omitempty"`
	DriverID             uuid.UUID `json:"driver_id"`
	DriverEmployeeID     string    `json:"driver_employee_id"`
	DriverName           string    `json:"driver_name"`
	Notes                *string   `json:"notes,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func FromModel(a *models.DailyAssignment) *AssignmentDTO {
	if a == nil {
		return nil
	}
	return &AssignmentDTO{
		ID:                   a.ID,
		Date:                 a.AssignmentDate.Format(DateLayout),
		WeekNumber:           week.Number(a.AssignmentDate),
		VanID:                a.VanID,
		VanCode:              a.Van.Code,
		VanDescription:       a.Van.Description,
		VanOperationalStatus: a.Van.OperationalStatus,
		DriverID:             a.DriverID,
		DriverEmployeeID:     a.Driver.EmployeeID,
		DriverName:           a.Driver.Name,
		Notes:                a.Notes,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}

func FromModels(rows []models.DailyAssignment) []AssignmentDTO {
	out := make([]AssignmentDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
