package slot

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for availability slots. Claim
// and Release are the only entry points that may flip the booked flag.
type Repository interface {
	// FindByID retrieves a slot by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Slot, error)

	// ListByProviderID retrieves all of a provider's slots ordered by start time.
	ListByProviderID(ctx context.Context, providerID uuid.UUID) ([]*Slot, error)

	// ListOpenByService retrieves future unbooked slots scoped to a
	// provider/service pair, ordered by start time.
	ListOpenByService(ctx context.Context, providerID, serviceID uuid.UUID) ([]*Slot, error)

	// ListNextOpen retrieves a provider's next future unbooked slots.
	ListNextOpen(ctx context.Context, providerID uuid.UUID, limit int) ([]*Slot, error)

	// Claim atomically transitions a slot from unbooked to booked. It must be
	// a single conditional update on the booked flag so that under N
	// concurrent claims exactly one succeeds; the rest fail with SLOT_TAKEN.
	Claim(ctx context.Context, id uuid.UUID) (*Slot, error)

	// Release unconditionally marks a slot as unbooked. Idempotent.
	Release(ctx context.Context, id uuid.UUID) error

	// Save persists a new slot.
	Save(ctx context.Context, s *Slot) error

	// SaveAll persists a batch of new slots.
	SaveAll(ctx context.Context, slots []*Slot) error

	// Update persists changes to a slot's time range. The write is
	// conditioned on the slot being unbooked; a slot claimed since the
	// caller's read fails with SLOT_LOCKED.
	Update(ctx context.Context, s *Slot) error

	// Delete removes a slot, conditioned on it being unbooked the same way.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteUnbookedInRange removes a provider/service pair's unbooked slots
	// whose start falls inside [from, to). Booked slots are left untouched.
	DeleteUnbookedInRange(ctx context.Context, providerID, serviceID uuid.UUID, from, to time.Time) error
}
