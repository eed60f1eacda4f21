package preassignments

import (
	"time"

	"github.com/fleetworks/vanlist-backend/pkg/db/models"
	"github.com/google/uuid"
)

// PreassignmentDTO carries a driver's default van with both identities resolved.
type PreassignmentDTO struct {
	ID               uuid.UUID `json:"id"`
	DriverID         uuid.UUID `json:"driver_id"`
	DriverEmployeeID string    `json:"driver_employee_id"`
	DriverName       string    `json:"driver_name"`
	VanID            uuid.UUID `json:"van_id"`
	VanCode          string    `json:"van_code"`
	VanDescription   *string   `json:"van_description,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func FromModel(p *models.DriverVanPreassignment) *PreassignmentDTO {
	if p == nil {
		return nil
	}
	return &PreassignmentDTO{
		ID:               p.ID,
		DriverID:         p.DriverID,
		DriverEmployeeID: p.Driver.EmployeeID,
		DriverName:       p.Driver.Name,
		VanID:            p.VanID,
		VanCode:          p.Van.Code,
		VanDescription:   p.Van.Description,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func FromModels(rows []models.DriverVanPreassignment) []PreassignmentDTO {
	out := make([]PreassignmentDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
