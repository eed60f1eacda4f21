package audit

import (
	"context"
	"fmt"

	"github.com/fleetworks/vanlist-backend/pkg/db/models"
	"github.com/fleetworks/vanlist-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service records and lists actor activity. Record is transaction-aware so a
// data change and its trail entry commit or roll back together.
type Service interface {
	Record(ctx context.Context, tx *gorm.DB, input RecordInput) (*models.AuditLog, error)
	List(ctx context.Context, filter Filter, page, perPage int) ([]models.AuditLog, int64, error)
}

// Actor identifies the authenticated user performing a mutation.
type Actor struct {
	ID       uuid.UUID
	Username string
	Role     enums.Role
}

// RecordFor builds a RecordInput attributed to the actor.
func (a Actor) RecordFor(action enums.AuditAction, entityType enums.EntityType, entityID uuid.UUID, details string) RecordInput {
	id := a.ID
	input := RecordInput{
		ActorID:       &id,
		ActorUsername: a.Username,
		Action:        action,
		EntityType:    &entityType,
	}
	if entityID != uuid.Nil {
		eid := entityID
		input.EntityID = &eid
	}
	if details != "" {
		input.Details = &details
	}
	return input
}

// RecordInput captures one trail entry. Actor may be nil for anonymous
// actions such as failed logins on unknown usernames.
type RecordInput struct {
	ActorID       *uuid.UUID
	ActorUsername string
	Action        enums.AuditAction
	EntityType    *enums.EntityType
	EntityID      *uuid.UUID
	Details       *string
}

const defaultPerPage = 50

type service struct {
	repo Repository
}

// NewService wires an audit service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, tx *gorm.DB, input RecordInput) (*models.AuditLog, error) {
	if input.ActorUsername == "" {
		return nil, fmt.Errorf("actor username is required")
	}
	if !input.Action.IsValid() {
		return nil, fmt.Errorf("invalid audit action %q", input.Action)
	}
	if input.EntityType != nil && !input.EntityType.IsValid() {
		return nil, fmt.Errorf("invalid entity type %q", *input.EntityType)
	}

	entry := &models.AuditLog{
		ActorID:       input.ActorID,
		ActorUsername: input.ActorUsername,
		Action:        input.Action,
		EntityType:    input.EntityType,
		EntityID:      input.EntityID,
		Details:       input.Details,
	}

	if err := s.repo.WithTx(tx).Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) List(ctx context.Context, filter Filter, page, perPage int) ([]models.AuditLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = defaultPerPage
	}
	if filter.EntityType != nil && !filter.EntityType.IsValid() {
		return nil, 0, fmt.Errorf("invalid entity type %q", *filter.EntityType)
	}
	return s.repo.List(ctx, filter, page, perPage)
}
