package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DailyAssignment books one van and one driver for a calendar day. The two
// unique indexes enforce that neither resource is double-booked on a date.
type DailyAssignment struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	AssignmentDate time.Time `gorm:"column:assignment_date;type:date;not null;uniqueIndex:uq_assignments_date_van;uniqueIndex:uq_assignments_date_driver"`
	VanID          uuid.UUID `gorm:"column:van_id;type:uuid;not null;uniqueIndex:uq_assignments_date_van"`
	DriverID       uuid.UUID `gorm:"column:driver_id;type:uuid;not null;uniqueIndex:uq_assignments_date_driver"`
	Notes          *string   `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Van    Van    `gorm:"foreignKey:VanID;constraint:OnDelete:RESTRICT"`
	Driver Driver `gorm:"foreignKey:DriverID;constraint:OnDelete:RESTRICT"`
}

func (a *DailyAssignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
