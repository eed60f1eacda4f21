package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Driver is a person identified by their employee badge id.
type Driver struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID string    `gorm:"column:employee_id;type:text;not null;uniqueIndex:uq_drivers_employee_id"`
	Name       string    `gorm:"type:text;not null"`
	IsActive   bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (d *Driver) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
