package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ServiceSummary is the service data joined onto booking listings.
type ServiceSummary struct {
	ID         uuid.UUID
	Title      string
	PriceCents int64
}

// SlotSummary is the slot data joined onto booking listings.
type SlotSummary struct {
	ID      uuid.UUID
	StartAt time.Time
	EndAt   time.Time
}

// ClientSummary is the client data joined onto provider booking listings.
type ClientSummary struct {
	ID        uuid.UUID
	Email     string
	FirstName string
	LastName  string
}

// Detail is a booking with its joined service/slot/client summaries for
// listing views.
type Detail struct {
	Booking *Booking
	Service *ServiceSummary
	Slot    *SlotSummary
	Client  *ClientSummary
}

// Repository defines the persistence contract for booking aggregates.
type Repository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByIDForClient retrieves a booking scoped to the owning client.
	// Returns a not-found error if the booking exists but belongs to a
	// different client.
	FindByIDForClient(ctx context.Context, id, clientID uuid.UUID) (*Booking, error)

	// FindByIDForProvider retrieves a booking scoped to the owning provider
	// profile.
	FindByIDForProvider(ctx context.Context, id, providerID uuid.UUID) (*Booking, error)

	// ListByClientID retrieves a client's bookings with service and slot
	// summaries, newest first.
	ListByClientID(ctx context.Context, clientID uuid.UUID) ([]Detail, error)

	// ListByProviderID retrieves a provider's bookings with service, slot and
	// client summaries, newest first.
	ListByProviderID(ctx context.Context, providerID uuid.UUID) ([]Detail, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error
}
