package vans

import (
	"time"

	"github.com/fleetworks/vanlist-backend/pkg/db/models"
	"github.com/google/uuid"
)

// VanDTO is the transport shape for a van.
type VanDTO struct {
	ID                uuid.UUID `json:"id"`
	Code              string    `json:"code"`
	Description       *string   `json:"description,omitempty"`
	OperationalStatus *string   `json:"operational_status,omitempty"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func FromModel(v *models.Van) *VanDTO {
	if v == nil {
		return nil
	}
	return &VanDTO{
		ID:                v.ID,
		Code:              v.Code,
		Description:       v.Description,
		OperationalStatus: v.OperationalStatus,
		IsActive:          v.IsActive,
		CreatedAt:         v.CreatedAt,
		UpdatedAt:         v.UpdatedAt,
	}
}

func FromModels(rows []models.Van) []VanDTO {
	out := make([]VanDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
