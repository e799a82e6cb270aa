package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for user accounts.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	// FindByEmail returns nil (no error) when no account exists for the email.
	FindByEmail(ctx context.Context, email string) (*User, error)
	CountByRole(ctx context.Context, role string) (int64, error)
	CountAll(ctx context.Context) (int64, error)
	Save(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
}
