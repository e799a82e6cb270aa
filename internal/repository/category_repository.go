package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nearby-app/marketplace-api/internal/domain/catalog"
	"github.com/nearby-app/marketplace-api/pkg/domain"
)

// CategoryModel is the GORM model for the categories table.
type CategoryModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name     string    `gorm:"uniqueIndex;not null;size:100"`
	Icon     string    `gorm:"size:100"`
	IsActive bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for the GORM model.
func (CategoryModel) TableName() string {
	return "categories"
}

// GormCategoryRepository is the GORM-based implementation of catalog.CategoryRepository.
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository.
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByID retrieves a category by ID.
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	var model CategoryModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Category", id.String())
		}
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}
	return toDomainCategory(&model), nil
}

// ListActive retrieves all active categories ordered by name.
func (r *GormCategoryRepository) ListActive(ctx context.Context) ([]*catalog.Category, error) {
	var models []CategoryModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list active categories: %w", err)
	}
	return toDomainCategories(models), nil
}

// ListAll retrieves all categories ordered by name.
func (r *GormCategoryRepository) ListAll(ctx context.Context) ([]*catalog.Category, error) {
	var models []CategoryModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).Order("name ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return toDomainCategories(models), nil
}

// Save persists a new category.
func (r *GormCategoryRepository) Save(ctx context.Context, c *catalog.Category) error {
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).Create(toCategoryModel(c)).Error; err != nil {
		return fmt.Errorf("failed to save category: %w", err)
	}
	return nil
}

// Update persists changes to an existing category.
func (r *GormCategoryRepository) Update(ctx context.Context, c *catalog.Category) error {
	db := dbFromContext(ctx, r.db)
	result := db.WithContext(ctx).
		Model(&CategoryModel{}).
		Where("id = ?", c.ID()).
		Updates(map[string]interface{}{
			"name":      c.Name(),
			"icon":      c.Icon(),
			"is_active": c.IsActive(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Category", c.ID().String())
	}
	return nil
}

// --- Conversion Helpers ---

func toCategoryModel(c *catalog.Category) *CategoryModel {
	return &CategoryModel{
		ID:       c.ID(),
		Name:     c.Name(),
		Icon:     c.Icon(),
		IsActive: c.IsActive(),
	}
}

func toDomainCategory(m *CategoryModel) *catalog.Category {
	return catalog.ReconstructCategory(m.ID, m.Name, m.Icon, m.IsActive)
}

func toDomainCategories(models []CategoryModel) []*catalog.Category {
	categories := make([]*catalog.Category, len(models))
	for i := range models {
		categories[i] = toDomainCategory(&models[i])
	}
	return categories
}
