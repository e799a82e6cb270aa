package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/nearby-app/marketplace-api/internal/domain/audit"
)

// AuditLogModel is the GORM model for the audit_logs table.
type AuditLogModel struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	ActorUserID uuid.UUID      `gorm:"type:uuid;not null;index"`
	Action      string         `gorm:"not null;size:100"`
	EntityType  string         `gorm:"not null;size:50"`
	EntityID    uuid.UUID      `gorm:"type:uuid;not null"`
	Metadata    datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time      `gorm:"not null;index"`
}

// TableName returns the table name for the GORM model.
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// GormAuditRepository is the GORM-based implementation of audit.Repository.
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository.
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Save persists a new audit entry.
func (r *GormAuditRepository) Save(ctx context.Context, e *audit.Entry) error {
	model, err := toAuditModel(e)
	if err != nil {
		return err
	}
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save audit entry: %w", err)
	}
	return nil
}

// ListRecent retrieves the most recent audit entries, newest first.
func (r *GormAuditRepository) ListRecent(ctx context.Context, limit int) ([]*audit.Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	var models []AuditLogModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}

	entries := make([]*audit.Entry, 0, len(models))
	for i := range models {
		entry, err := toDomainAuditEntry(&models[i])
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// --- Conversion Helpers ---

func toAuditModel(e *audit.Entry) (*AuditLogModel, error) {
	metadata, err := json.Marshal(e.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal audit metadata: %w", err)
	}
	return &AuditLogModel{
		ID:          e.ID(),
		ActorUserID: e.ActorUserID(),
		Action:      e.Action(),
		EntityType:  e.EntityType(),
		EntityID:    e.EntityID(),
		Metadata:    datatypes.JSON(metadata),
		CreatedAt:   e.CreatedAt(),
	}, nil
}

func toDomainAuditEntry(m *AuditLogModel) (*audit.Entry, error) {
	metadata := map[string]any{}
	if len(m.Metadata) > 0 {
		if err := json.Unmarshal(m.Metadata, &metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal audit metadata: %w", err)
		}
	}
	return audit.Reconstruct(m.ID, m.ActorUserID, m.Action, m.EntityType, m.EntityID, metadata, m.CreatedAt), nil
}
