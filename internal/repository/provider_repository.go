package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	providerDomain "github.com/nearby-app/marketplace-api/internal/domain/provider"
	"github.com/nearby-app/marketplace-api/pkg/domain"
)

// ProviderProfileModel is the GORM model for the provider_profiles table.
type ProviderProfileModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Name         string    `gorm:"not null;size:255"`
	Description  string    `gorm:"type:text"`
	Address      string    `gorm:"size:255"`
	City         string    `gorm:"size:100;index"`
	Lat          float64
	Lng          float64
	WorkingHours string    `gorm:"size:255"`
	Verified     bool      `gorm:"not null;default:false;index"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ProviderProfileModel) TableName() string {
	return "provider_profiles"
}

// GormProviderRepository is the GORM-based implementation of provider.Repository.
type GormProviderRepository struct {
	db *gorm.DB
}

// NewGormProviderRepository creates a new GormProviderRepository.
func NewGormProviderRepository(db *gorm.DB) *GormProviderRepository {
	return &GormProviderRepository{db: db}
}

// FindByID retrieves a provider profile by ID.
func (r *GormProviderRepository) FindByID(ctx context.Context, id uuid.UUID) (*providerDomain.Profile, error) {
	var model ProviderProfileModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Provider", id.String())
		}
		return nil, fmt.Errorf("failed to find provider profile by ID: %w", err)
	}
	return toDomainProfile(&model), nil
}

// FindByUserID retrieves the profile owned by a user, returning nil when absent.
func (r *GormProviderRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*providerDomain.Profile, error) {
	var model ProviderProfileModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find provider profile by user ID: %w", err)
	}
	return toDomainProfile(&model), nil
}

// ListVerified retrieves all verified provider profiles.
func (r *GormProviderRepository) ListVerified(ctx context.Context) ([]*providerDomain.Profile, error) {
	var models []ProviderProfileModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).
		Where("verified = ?", true).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list verified providers: %w", err)
	}
	return toDomainProfiles(models), nil
}

// ListAll retrieves all provider profiles, optionally filtered by verification state.
func (r *GormProviderRepository) ListAll(ctx context.Context, verified *bool) ([]*providerDomain.Profile, error) {
	var models []ProviderProfileModel
	db := dbFromContext(ctx, r.db)
	query := db.WithContext(ctx).Order("created_at DESC")
	if verified != nil {
		query = query.Where("verified = ?", *verified)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	return toDomainProfiles(models), nil
}

// Save persists a new provider profile.
func (r *GormProviderRepository) Save(ctx context.Context, p *providerDomain.Profile) error {
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).Create(toProfileModel(p)).Error; err != nil {
		return fmt.Errorf("failed to save provider profile: %w", err)
	}
	return nil
}

// Update persists changes to an existing provider profile.
func (r *GormProviderRepository) Update(ctx context.Context, p *providerDomain.Profile) error {
	db := dbFromContext(ctx, r.db)
	result := db.WithContext(ctx).
		Model(&ProviderProfileModel{}).
		Where("id = ?", p.ID()).
		Updates(map[string]interface{}{
			"name":          p.Name(),
			"description":   p.Description(),
			"address":       p.Address(),
			"city":          p.City(),
			"lat":           p.Lat(),
			"lng":           p.Lng(),
			"working_hours": p.WorkingHours(),
			"verified":      p.Verified(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update provider profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Provider", p.ID().String())
	}
	return nil
}

// --- Conversion Helpers ---

func toProfileModel(p *providerDomain.Profile) *ProviderProfileModel {
	return &ProviderProfileModel{
		ID:           p.ID(),
		UserID:       p.UserID(),
		Name:         p.Name(),
		Description:  p.Description(),
		Address:      p.Address(),
		City:         p.City(),
		Lat:          p.Lat(),
		Lng:          p.Lng(),
		WorkingHours: p.WorkingHours(),
		Verified:     p.Verified(),
		CreatedAt:    p.CreatedAt(),
	}
}

func toDomainProfile(m *ProviderProfileModel) *providerDomain.Profile {
	return providerDomain.Reconstruct(
		m.ID, m.UserID, m.Name, m.Description, m.Address, m.City,
		m.Lat, m.Lng, m.WorkingHours, m.Verified, m.CreatedAt,
	)
}

func toDomainProfiles(models []ProviderProfileModel) []*providerDomain.Profile {
	profiles := make([]*providerDomain.Profile, len(models))
	for i := range models {
		profiles[i] = toDomainProfile(&models[i])
	}
	return profiles
}
