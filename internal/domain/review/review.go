package review

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nearby-app/marketplace-api/pkg/domain"
)

// Review is a client's rating of a completed booking. Admins can hide reviews
// without deleting them.
type Review struct {
	id        uuid.UUID
	bookingID uuid.UUID
	rating    int
	comment   string
	isHidden  bool
	createdAt time.Time
}

// NewReview creates a new visible review.
func NewReview(bookingID uuid.UUID, rating int, comment string) (*Review, error) {
	if bookingID == uuid.Nil {
		return nil, domain.NewValidationError("booking ID is required")
	}
	if rating < 1 || rating > 5 {
		return nil, domain.NewValidationError("rating must be between 1 and 5")
	}

	return &Review{
		id:        uuid.New(),
		bookingID: bookingID,
		rating:    rating,
		comment:   comment,
		createdAt: time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a Review from persistence data.
func Reconstruct(id, bookingID uuid.UUID, rating int, comment string, isHidden bool, createdAt time.Time) *Review {
	return &Review{
		id:        id,
		bookingID: bookingID,
		rating:    rating,
		comment:   comment,
		isHidden:  isHidden,
		createdAt: createdAt,
	}
}

// Getters.
func (r *Review) ID() uuid.UUID        { return r.id }
func (r *Review) BookingID() uuid.UUID { return r.bookingID }
func (r *Review) Rating() int          { return r.rating }
func (r *Review) Comment() string      { return r.comment }
func (r *Review) IsHidden() bool       { return r.isHidden }
func (r *Review) CreatedAt() time.Time { return r.createdAt }

// Hide marks the review hidden from public listings.
func (r *Review) Hide() {
	r.isHidden = true
}

// Repository defines persistence operations for reviews.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Review, error)
	// FindByBookingID returns nil (no error) when the booking has no review.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*Review, error)
	ListVisibleByProviderID(ctx context.Context, providerID uuid.UUID) ([]*Review, error)
	ListAll(ctx context.Context) ([]*Review, error)
	Save(ctx context.Context, r *Review) error
	Update(ctx context.Context, r *Review) error
}
