package catalog

import (
	"github.com/google/uuid"

	"github.com/nearby-app/marketplace-api/pkg/domain"
)

// Category groups services for discovery and is managed by admins.
type Category struct {
	id       uuid.UUID
	name     string
	icon     string
	isActive bool
}

// NewCategory creates a new active category.
func NewCategory(name, icon string) (*Category, error) {
	if name == "" {
		return nil, domain.NewValidationError("category name is required")
	}
	return &Category{
		id:       uuid.New(),
		name:     name,
		icon:     icon,
		isActive: true,
	}, nil
}

// ReconstructCategory rebuilds a Category from persistence data.
func ReconstructCategory(id uuid.UUID, name, icon string, isActive bool) *Category {
	return &Category{id: id, name: name, icon: icon, isActive: isActive}
}

// Getters.
func (c *Category) ID() uuid.UUID  { return c.id }
func (c *Category) Name() string   { return c.name }
func (c *Category) Icon() string   { return c.icon }
func (c *Category) IsActive() bool { return c.isActive }

// Toggle flips the category's active flag.
func (c *Category) Toggle() {
	c.isActive = !c.isActive
}
