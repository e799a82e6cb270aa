package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	notificationDomain "github.com/nearby-app/marketplace-api/internal/domain/notification"
	"github.com/nearby-app/marketplace-api/pkg/domain"
)

// NotificationModel is the GORM model for the notifications table.
type NotificationModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Type      string    `gorm:"not null;size:50"`
	Title     string    `gorm:"not null;size:255"`
	Body      string    `gorm:"type:text"`
	ReadAt    *time.Time
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (NotificationModel) TableName() string {
	return "notifications"
}

// GormNotificationRepository is the GORM-based implementation of notification.Repository.
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository.
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// FindByID retrieves a notification by ID.
func (r *GormNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notificationDomain.Notification, error) {
	var model NotificationModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Notification", id.String())
		}
		return nil, fmt.Errorf("failed to find notification by ID: %w", err)
	}
	return toDomainNotification(&model), nil
}

// ListByUserID retrieves a user's notifications, newest first.
func (r *GormNotificationRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*notificationDomain.Notification, error) {
	var models []NotificationModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications by user: %w", err)
	}
	return toDomainNotifications(models), nil
}

// Save persists a new notification.
func (r *GormNotificationRepository) Save(ctx context.Context, n *notificationDomain.Notification) error {
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).Create(toNotificationModel(n)).Error; err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}
	return nil
}

// Update persists changes to an existing notification.
func (r *GormNotificationRepository) Update(ctx context.Context, n *notificationDomain.Notification) error {
	db := dbFromContext(ctx, r.db)
	result := db.WithContext(ctx).
		Model(&NotificationModel{}).
		Where("id = ?", n.ID()).
		Update("read_at", n.ReadAt())
	if result.Error != nil {
		return fmt.Errorf("failed to update notification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Notification", n.ID().String())
	}
	return nil
}

// --- Conversion Helpers ---

func toNotificationModel(n *notificationDomain.Notification) *NotificationModel {
	return &NotificationModel{
		ID:        n.ID(),
		UserID:    n.UserID(),
		Type:      n.Type(),
		Title:     n.Title(),
		Body:      n.Body(),
		ReadAt:    n.ReadAt(),
		CreatedAt: n.CreatedAt(),
	}
}

func toDomainNotification(m *NotificationModel) *notificationDomain.Notification {
	return notificationDomain.Reconstruct(m.ID, m.UserID, m.Type, m.Title, m.Body, m.ReadAt, m.CreatedAt)
}

func toDomainNotifications(models []NotificationModel) []*notificationDomain.Notification {
	notifications := make([]*notificationDomain.Notification, len(models))
	for i := range models {
		notifications[i] = toDomainNotification(&models[i])
	}
	return notifications
}
