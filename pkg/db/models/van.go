package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Van is a vehicle identified by its licence plate code.
type Van struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code              string    `gorm:"type:text;not null;uniqueIndex:uq_vans_code"`
	Description       *string   `gorm:"type:text"`
	OperationalStatus *string   `gorm:"column:operational_status;type:text"`
	IsActive          bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *Van) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
