package models

import (
	"time"

	"github.com/fleetworks/vanlist-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLog records one actor action. ActorUsername is a snapshot so the entry
// stays readable after the account is removed; the FK nulls out in that case.
type AuditLog struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey"`
	ActorID       *uuid.UUID        `gorm:"column:actor_id;type:uuid;index"`
	ActorUsername string            `gorm:"column:actor_username;type:text;not null"`
	Action        enums.AuditAction `gorm:"type:text;not null"`
	EntityType    *enums.EntityType `gorm:"column:entity_type;type:text"`
	EntityID      *uuid.UUID        `gorm:"column:entity_id;type:uuid"`
	Details       *string           `gorm:"type:text"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime;index"`

	Actor *User `gorm:"foreignKey:ActorID;constraint:OnDelete:SET NULL"`
}

func (l *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
