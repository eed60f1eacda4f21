package audit

import (
	"time"

	"github.com/fleetworks/vanlist-backend/pkg/db/models"
	"github.com/fleetworks/vanlist-backend/pkg/enums"
	"github.com/google/uuid"
)

// EntryDTO is the transport shape of one trail entry.
type EntryDTO struct {
	ID            uuid.UUID         `json:"id"`
	ActorID       *uuid.UUID        `json:"actor_id,omitempty"`
	ActorUsername string            `json:"actor_username"`
	Action        enums.AuditAction `json:"action"`
	EntityType    *enums.EntityType `json:"entity_type,omitempty"`
	EntityID      *uuid.UUID        `json:"entity_id,omitempty"`
	Details       *string           `json:"details,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

func FromModel(l *models.AuditLog) *EntryDTO {
	if l == nil {
		return nil
	}
	return &EntryDTO{
		ID:            l.ID,
		ActorID:       l.ActorID,
		ActorUsername: l.ActorUsername,
		Action:        l.Action,
		EntityType:    l.EntityType,
		EntityID:      l.EntityID,
		Details:       l.Details,
		CreatedAt:     l.CreatedAt,
	}
}

func FromModels(rows []models.AuditLog) []EntryDTO {
	out := make([]EntryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
