package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/nearby-app/marketplace-api/internal/domain/booking"
	reviewDomain "github.com/nearby-app/marketplace-api/internal/domain/review"
	slotDomain "github.com/nearby-app/marketplace-api/internal/domain/slot"
	"github.com/nearby-app/marketplace-api/pkg/domain"
)

// CreateReviewRequest holds the data for reviewing a completed booking.
type CreateReviewRequest struct {
	BookingID uuid.UUID `json:"booking_id" binding:"required"`
	Rating    int       `json:"rating" binding:"required,min=1,max=5"`
	Comment   string    `json:"comment"`
}

// ReviewService handles client reviews of completed bookings.
type ReviewService struct {
	reviewRepo  reviewDomain.Repository
	bookingRepo bookingDomain.Repository
	slotRepo    slotDomain.Repository
	logger      *zap.Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(
	reviewRepo reviewDomain.Repository,
	bookingRepo bookingDomain.Repository,
	slotRepo slotDomain.Repository,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		bookingRepo: bookingRepo,
		slotRepo:    slotRepo,
		logger:      logger,
	}
}

// CreateReview records a client's review of their own CONFIRMED booking once
// the slot has ended. One review per booking.
func (s *ReviewService) CreateReview(ctx context.Context, clientID uuid.UUID, req CreateReviewRequest) (*ReviewDTO, error) {
	bk, err := s.bookingRepo.FindByIDForClient(ctx, req.BookingID, clientID)
	if err != nil {
		return nil, err
	}
	if bk.Status() != bookingDomain.StatusConfirmed {
		return nil, domain.NewValidationError("only confirmed bookings can be reviewed")
	}

	sl, err := s.slotRepo.FindByID(ctx, bk.SlotID())
	if err != nil {
		return nil, err
	}
	if sl.EndAt().After(time.Now().UTC()) {
		return nil, domain.NewValidationError("booking has not taken place yet")
	}

	existing, err := s.reviewRepo.FindByBookingID(ctx, bk.ID())
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.NewConflictError("booking has already been reviewed")
	}

	rev, err := reviewDomain.NewReview(bk.ID(), req.Rating, req.Comment)
	if err != nil {
		return nil, err
	}
	if err := s.reviewRepo.Save(ctx, rev); err != nil {
		return nil, err
	}

	result := toReviewDTO(rev)
	return &result, nil
}

func toReviewDTO(r *reviewDomain.Review) ReviewDTO {
	return ReviewDTO{
		ID:        r.ID(),
		BookingID: r.BookingID(),
		Rating:    r.Rating(),
		Comment:   r.Comment(),
		CreatedAt: r.CreatedAt(),
	}
}
