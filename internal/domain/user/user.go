package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/nearby-app/marketplace-api/pkg/domain"
)

// Status represents a user account's standing on the platform.
type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusBlocked Status = "BLOCKED"
)

// User is a platform account (admin, provider or client).
type User struct {
	id           uuid.UUID
	email        string
	passwordHash string
	firstName    string
	lastName     string
	phone        string
	role         string
	status       Status
	createdAt    time.Time
}

// NewUser creates a new active user account.
func NewUser(email, passwordHash, firstName, lastName, phone, role string) (*User, error) {
	if email == "" {
		return nil, domain.NewValidationError("email is required")
	}
	if passwordHash == "" {
		return nil, domain.NewValidationError("password hash is required")
	}
	if firstName == "" || lastName == "" {
		return nil, domain.NewValidationError("first and last name are required")
	}

	return &User{
		id:           uuid.New(),
		email:        email,
		passwordHash: passwordHash,
		firstName:    firstName,
		lastName:     lastName,
		phone:        phone,
		role:         role,
		status:       StatusActive,
		createdAt:    time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a User from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	email, passwordHash, firstName, lastName, phone, role string,
	status Status,
	createdAt time.Time,
) *User {
	return &User{
		id:           id,
		email:        email,
		passwordHash: passwordHash,
		firstName:    firstName,
		lastName:     lastName,
		phone:        phone,
		role:         role,
		status:       status,
		createdAt:    createdAt,
	}
}

// Getters.
func (u *User) ID() uuid.UUID        { return u.id }
func (u *User) Email() string        { return u.email }
func (u *User) PasswordHash() string { return u.passwordHash }
func (u *User) FirstName() string    { return u.firstName }
func (u *User) LastName() string     { return u.lastName }
func (u *User) Phone() string        { return u.phone }
func (u *User) Role() string         { return u.role }
func (u *User) Status() Status       { return u.status }
func (u *User) CreatedAt() time.Time { return u.createdAt }

// IsBlocked returns true if the account has been blocked.
func (u *User) IsBlocked() bool {
	return u.status == StatusBlocked
}

// Block marks the account as blocked.
func (u *User) Block() {
	u.status = StatusBlocked
}
