package drivers

import (
	"time"

	"github.com/fleetworks/vanlist-backend/pkg/db/models"
	"github.com/google/uuid"
)

// DriverDTO is the transport shape for a driver.
type DriverDTO struct {
	ID         uuid.UUID `json:"id"`
	EmployeeID string    `json:"employee_id"`
	Name       string    `json:"name"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func FromModel(d *models.Driver) *DriverDTO {
	if d == nil {
		return nil
	}
	return &DriverDTO{
		ID:         d.ID,
		EmployeeID: d.EmployeeID,
		Name:       d.Name,
		IsActive:   d.IsActive,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func FromModels(rows []models.Driver) []DriverDTO {
	out := make([]DriverDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
