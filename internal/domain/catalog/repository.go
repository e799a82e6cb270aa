package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ServiceRepository defines persistence operations for service offerings.
type ServiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Service, error)
	FindByIDForProvider(ctx context.Context, id, providerID uuid.UUID) (*Service, error)
	ListByProviderID(ctx context.Context, providerID uuid.UUID) ([]*Service, error)
	ListActiveByProviderID(ctx context.Context, providerID uuid.UUID) ([]*Service, error)
	ListProviderIDsByCategory(ctx context.Context, categoryID uuid.UUID) ([]uuid.UUID, error)
	Save(ctx context.Context, s *Service) error
	Update(ctx context.Context, s *Service) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	ListActive(ctx context.Context) ([]*Category, error)
	ListAll(ctx context.Context) ([]*Category, error)
	Save(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
}
