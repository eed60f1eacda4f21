package models

import (
	"time"

	"github.com/fleetworks/vanlist-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ImportLog captures the outcome of one tabular upload.
type ImportLog struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Kind       enums.ImportKind `gorm:"type:text;not null"`
	Filename   string           `gorm:"type:text;not null"`
	UploadedBy *uuid.UUID       `gorm:"column:uploaded_by;type:uuid"`
	Inserted   int              `gorm:"not null;default:0"`
	Updated    int              `gorm:"not null;default:0"`
	Rejected   int              `gorm:"not null;default:0"`
	Errors     *string          `gorm:"type:text"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`

	Uploader *User `gorm:"foreignKey:UploadedBy;constraint:OnDelete:SET NULL"`
}

func (l *ImportLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
