package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	notificationDomain "github.com/nearby-app/marketplace-api/internal/domain/notification"
	"github.com/nearby-app/marketplace-api/pkg/domain"
)

// NotificationDTO is the response representation of an in-app notification.
type NotificationDTO struct {
	ID        uuid.UUID  `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body,omitempty"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NotificationService handles a user's in-app notification inbox.
type NotificationService struct {
	notificationRepo notificationDomain.Repository
	logger           *zap.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(notificationRepo notificationDomain.Repository, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// ListMyNotifications retrieves the user's notifications, newest first.
func (s *NotificationService) ListMyNotifications(ctx context.Context, userID uuid.UUID) ([]NotificationDTO, error) {
	notifications, err := s.notificationRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	dtos := make([]NotificationDTO, len(notifications))
	for i, n := range notifications {
		dtos[i] = toNotificationDTO(n)
	}
	return dtos, nil
}

// MarkRead stamps the user's notification as read. Idempotent.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) (*NotificationDTO, error) {
	n, err := s.notificationRepo.FindByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.UserID() != userID {
		return nil, domain.NewNotFoundError("Notification", notificationID.String())
	}

	n.MarkRead()
	if err := s.notificationRepo.Update(ctx, n); err != nil {
		return nil, err
	}

	result := toNotificationDTO(n)
	return &result, nil
}

func toNotificationDTO(n *notificationDomain.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID(),
		Type:      n.Type(),
		Title:     n.Title(),
		Body:      n.Body(),
		ReadAt:    n.ReadAt(),
		CreatedAt: n.CreatedAt(),
	}
}
