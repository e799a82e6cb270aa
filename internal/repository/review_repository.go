package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nearby-app/marketplace-api/internal/domain/review"
	"github.com/nearby-app/marketplace-api/pkg/domain"
)

// ReviewModel is the GORM model for the reviews table.
type ReviewModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Rating    int       `gorm:"not null"`
	Comment   string    `gorm:"type:text"`
	IsHidden  bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ReviewModel) TableName() string {
	return "reviews"
}

// GormReviewRepository is the GORM-based implementation of review.Repository.
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository.
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// FindByID retrieves a review by ID.
func (r *GormReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*review.Review, error) {
	var model ReviewModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Review", id.String())
		}
		return nil, fmt.Errorf("failed to find review by ID: %w", err)
	}
	return toDomainReview(&model), nil
}

// FindByBookingID retrieves the review of a booking, returning nil when absent.
func (r *GormReviewRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*review.Review, error) {
	var model ReviewModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find review by booking ID: %w", err)
	}
	return toDomainReview(&model), nil
}

// ListVisibleByProviderID retrieves the visible reviews for a provider's bookings.
func (r *GormReviewRepository) ListVisibleByProviderID(ctx context.Context, providerID uuid.UUID) ([]*review.Review, error) {
	var models []ReviewModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).
		Table("reviews").
		Joins("JOIN bookings ON bookings.id = reviews.booking_id").
		Where("bookings.provider_id = ? AND reviews.is_hidden = ?", providerID, false).
		Order("reviews.created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews by provider: %w", err)
	}
	return toDomainReviews(models), nil
}

// ListAll retrieves all reviews including hidden ones.
func (r *GormReviewRepository) ListAll(ctx context.Context) ([]*review.Review, error) {
	var models []ReviewModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return toDomainReviews(models), nil
}

// Save persists a new review.
func (r *GormReviewRepository) Save(ctx context.Context, rev *review.Review) error {
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).Create(toReviewModel(rev)).Error; err != nil {
		return fmt.Errorf("failed to save review: %w", err)
	}
	return nil
}

// Update persists changes to an existing review.
func (r *GormReviewRepository) Update(ctx context.Context, rev *review.Review) error {
	db := dbFromContext(ctx, r.db)
	result := db.WithContext(ctx).
		Model(&ReviewModel{}).
		Where("id = ?", rev.ID()).
		Updates(map[string]interface{}{
			"rating":    rev.Rating(),
			"comment":   rev.Comment(),
			"is_hidden": rev.IsHidden(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Review", rev.ID().String())
	}
	return nil
}

// --- Conversion Helpers ---

func toReviewModel(rev *review.Review) *ReviewModel {
	return &ReviewModel{
		ID:        rev.ID(),
		BookingID: rev.BookingID(),
		Rating:    rev.Rating(),
		Comment:   rev.Comment(),
		IsHidden:  rev.IsHidden(),
		CreatedAt: rev.CreatedAt(),
	}
}

func toDomainReview(m *ReviewModel) *review.Review {
	return review.Reconstruct(m.ID, m.BookingID, m.Rating, m.Comment, m.IsHidden, m.CreatedAt)
}

func toDomainReviews(models []ReviewModel) []*review.Review {
	reviews := make([]*review.Review, len(models))
	for i := range models {
		reviews[i] = toDomainReview(&models[i])
	}
	return reviews
}
