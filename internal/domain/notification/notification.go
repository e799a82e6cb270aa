package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Notification types emitted by the platform.
const (
	TypeBookingCreated   = "BOOKING_CREATED"
	TypeBookingConfirmed = "BOOKING_CONFIRMED"
	TypeBookingRejected  = "BOOKING_REJECTED"
	TypeBookingCancelled = "BOOKING_CANCELLED"
	TypeBookingReminder  = "BOOKING_REMINDER"
	TypeProviderVerified = "PROVIDER_VERIFIED"
	TypeProviderBlocked  = "PROVIDER_BLOCKED"
)

// Notification is an in-app message delivered to one user.
type Notification struct {
	id        uuid.UUID
	userID    uuid.UUID
	notifType string
	title     string
	body      string
	readAt    *time.Time
	createdAt time.Time
}

// New creates an unread notification.
func New(userID uuid.UUID, notifType, title, body string) *Notification {
	return &Notification{
		id:        uuid.New(),
		userID:    userID,
		notifType: notifType,
		title:     title,
		body:      body,
		createdAt: time.Now().UTC(),
	}
}

// Reconstruct rebuilds a Notification from persistence data.
func Reconstruct(id, userID uuid.UUID, notifType, title, body string, readAt *time.Time, createdAt time.Time) *Notification {
	return &Notification{
		id:        id,
		userID:    userID,
		notifType: notifType,
		title:     title,
		body:      body,
		readAt:    readAt,
		createdAt: createdAt,
	}
}

// Getters.
func (n *Notification) ID() uuid.UUID        { return n.id }
func (n *Notification) UserID() uuid.UUID    { return n.userID }
func (n *Notification) Type() string         { return n.notifType }
func (n *Notification) Title() string        { return n.title }
func (n *Notification) Body() string         { return n.body }
func (n *Notification) ReadAt() *time.Time   { return n.readAt }
func (n *Notification) CreatedAt() time.Time { return n.createdAt }

// MarkRead stamps the notification as read. Idempotent.
func (n *Notification) MarkRead() {
	if n.readAt == nil {
		now := time.Now().UTC()
		n.readAt = &now
	}
}

// Repository defines persistence operations for notifications.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*Notification, error)
	Save(ctx context.Context, n *Notification) error
	Update(ctx context.Context, n *Notification) error
}
