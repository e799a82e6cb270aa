package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry is one immutable audit-log record of a platform action.
type Entry struct {
	id          uuid.UUID
	actorUserID uuid.UUID
	action      string
	entityType  string
	entityID    uuid.UUID
	metadata    map[string]any
	createdAt   time.Time
}

// NewEntry creates an audit entry for an actor's action on an entity.
func NewEntry(actorUserID uuid.UUID, action, entityType string, entityID uuid.UUID, metadata map[string]any) *Entry {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &Entry{
		id:          uuid.New(),
		actorUserID: actorUserID,
		action:      action,
		entityType:  entityType,
		entityID:    entityID,
		metadata:    metadata,
		createdAt:   time.Now().UTC(),
	}
}

// Reconstruct rebuilds an Entry from persistence data.
func Reconstruct(id, actorUserID uuid.UUID, action, entityType string, entityID uuid.UUID, metadata map[string]any, createdAt time.Time) *Entry {
	return &Entry{
		id:          id,
		actorUserID: actorUserID,
		action:      action,
		entityType:  entityType,
		entityID:    entityID,
		metadata:    metadata,
		createdAt:   createdAt,
	}
}

// Getters.
func (e *Entry) ID() uuid.UUID           { return e.id }
func (e *Entry) ActorUserID() uuid.UUID  { return e.actorUserID }
func (e *Entry) Action() string          { return e.action }
func (e *Entry) EntityType() string      { return e.entityType }
func (e *Entry) EntityID() uuid.UUID     { return e.entityID }
func (e *Entry) Metadata() map[string]any { return e.metadata }
func (e *Entry) CreatedAt() time.Time    { return e.createdAt }

// Repository defines persistence operations for audit entries.
type Repository interface {
	Save(ctx context.Context, e *Entry) error
	ListRecent(ctx context.Context, limit int) ([]*Entry, error)
}
