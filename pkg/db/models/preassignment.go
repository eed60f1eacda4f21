package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DriverVanPreassignment pins a driver to their usual van. One row per driver.
type DriverVanPreassignment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	DriverID  uuid.UUID `gorm:"column:driver_id;type:uuid;not null;uniqueIndex:uq_preassignments_driver"`
	VanID     uuid.UUID `gorm:"column:van_id;type:uuid;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Driver Driver `gorm:"foreignKey:DriverID;constraint:OnDelete:CASCADE"`
	Van    Van    `gorm:"foreignKey:VanID;constraint:OnDelete:CASCADE"`
}

func (p *DriverVanPreassignment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
