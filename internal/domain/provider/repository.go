package provider

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for provider profiles.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	// FindByUserID returns nil (no error) when the user has no profile yet.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	ListVerified(ctx context.Context) ([]*Profile, error)
	ListAll(ctx context.Context, verified *bool) ([]*Profile, error)
	Save(ctx context.Context, p *Profile) error
	Update(ctx context.Context, p *Profile) error
}
