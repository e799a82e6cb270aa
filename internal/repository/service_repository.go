package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nearby-app/marketplace-api/internal/domain/catalog"
	"github.com/nearby-app/marketplace-api/pkg/domain"
)

// ServiceModel is the GORM model for the services table.
type ServiceModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProviderID      uuid.UUID `gorm:"type:uuid;not null;index"`
	CategoryID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Title           string    `gorm:"not null;size:255"`
	Description     string    `gorm:"type:text"`
	DurationMinutes int       `gorm:"not null"`
	PriceCents      int64     `gorm:"not null"`
	IsActive        bool      `gorm:"not null;default:true"`
	CreatedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ServiceModel) TableName() string {
	return "services"
}

// GormServiceRepository is the GORM-based implementation of catalog.ServiceRepository.
type GormServiceRepository struct {
	db *gorm.DB
}

// NewGormServiceRepository creates a new GormServiceRepository.
func NewGormServiceRepository(db *gorm.DB) *GormServiceRepository {
	return &GormServiceRepository{db: db}
}

// FindByID retrieves a service by ID.
func (r *GormServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Service, error) {
	var model ServiceModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Service", id.String())
		}
		return nil, fmt.Errorf("failed to find service by ID: %w", err)
	}
	return toDomainService(&model), nil
}

// FindByIDForProvider retrieves a service scoped to its owning provider.
func (r *GormServiceRepository) FindByIDForProvider(ctx context.Context, id, providerID uuid.UUID) (*catalog.Service, error) {
	var model ServiceModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).
		Where("id = ? AND provider_id = ?", id, providerID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Service", id.String())
		}
		return nil, fmt.Errorf("failed to find service for provider: %w", err)
	}
	return toDomainService(&model), nil
}

// ListByProviderID retrieves all services owned by a provider.
func (r *GormServiceRepository) ListByProviderID(ctx context.Context, providerID uuid.UUID) ([]*catalog.Service, error) {
	var models []ServiceModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list services by provider: %w", err)
	}
	return toDomainServices(models), nil
}

// ListActiveByProviderID retrieves the active services owned by a provider.
func (r *GormServiceRepository) ListActiveByProviderID(ctx context.Context, providerID uuid.UUID) ([]*catalog.Service, error) {
	var models []ServiceModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).
		Where("provider_id = ? AND is_active = ?", providerID, true).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list active services by provider: %w", err)
	}
	return toDomainServices(models), nil
}

// ListProviderIDsByCategory retrieves the distinct provider IDs offering an
// active service in the given category.
func (r *GormServiceRepository) ListProviderIDsByCategory(ctx context.Context, categoryID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).
		Model(&ServiceModel{}).
		Distinct("provider_id").
		Where("category_id = ? AND is_active = ?", categoryID, true).
		Pluck("provider_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list provider IDs by category: %w", err)
	}
	return ids, nil
}

// Save persists a new service.
func (r *GormServiceRepository) Save(ctx context.Context, s *catalog.Service) error {
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).Create(toServiceModel(s)).Error; err != nil {
		return fmt.Errorf("failed to save service: %w", err)
	}
	return nil
}

// Update persists changes to an existing service.
func (r *GormServiceRepository) Update(ctx context.Context, s *catalog.Service) error {
	db := dbFromContext(ctx, r.db)
	result := db.WithContext(ctx).
		Model(&ServiceModel{}).
		Where("id = ?", s.ID()).
		Updates(map[string]interface{}{
			"title":            s.Title(),
			"description":      s.Description(),
			"duration_minutes": s.DurationMinutes(),
			"price_cents":      s.PriceCents(),
			"is_active":        s.IsActive(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update service: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Service", s.ID().String())
	}
	return nil
}

// Delete removes a service.
func (r *GormServiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := dbFromContext(ctx, r.db)
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&ServiceModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete service: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Service", id.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toServiceModel(s *catalog.Service) *ServiceModel {
	return &ServiceModel{
		ID:              s.ID(),
		ProviderID:      s.ProviderID(),
		CategoryID:      s.CategoryID(),
		Title:           s.Title(),
		Description:     s.Description(),
		DurationMinutes: s.DurationMinutes(),
		PriceCents:      s.PriceCents(),
		IsActive:        s.IsActive(),
	}
}

func toDomainService(m *ServiceModel) *catalog.Service {
	return catalog.ReconstructService(
		m.ID, m.ProviderID, m.CategoryID, m.Title, m.Description,
		m.DurationMinutes, m.PriceCents, m.IsActive,
	)
}

func toDomainServices(models []ServiceModel) []*catalog.Service {
	services := make([]*catalog.Service, len(models))
	for i := range models {
		services[i] = toDomainService(&models[i])
	}
	return services
}
