package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	providerDomain "github.com/nearby-app/marketplace-api/internal/domain/provider"
	userDomain "github.com/nearby-app/marketplace-api/internal/domain/user"
	"github.com/nearby-app/marketplace-api/pkg/auth"
	"github.com/nearby-app/marketplace-api/pkg/database"
	"github.com/nearby-app/marketplace-api/pkg/domain"
)

// ProviderSignupData carries the provider profile created alongside a
// PROVIDER account. It is required exactly when role is PROVIDER; client
// signups never carry it.
type ProviderSignupData struct {
	Name         string  `json:"name" binding:"required"`
	Description  string  `json:"description"`
	Address      string  `json:"address"`
	City         string  `json:"city"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	WorkingHours string  `json:"working_hours"`
}

// SignupRequest holds the data needed to register an account. Role is the
// explicit discriminator between the client and provider variants.
type SignupRequest struct {
	Role      string              `json:"role" binding:"required,oneof=CLIENT PROVIDER"`
	Email     string              `json:"email" binding:"required,email"`
	Password  string              `json:"password" binding:"required,min=8"`
	FirstName string              `json:"first_name" binding:"required"`
	LastName  string              `json:"last_name" binding:"required"`
	Phone     string              `json:"phone"`
	Provider  *ProviderSignupData `json:"provider"`
}

// LoginRequest holds login credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserDTO is the response representation of a user account.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResultDTO is the response to a successful signup or login.
type AuthResultDTO struct {
	User         UserDTO `json:"user"`
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
}

// MeDTO is the current user with their provider profile when one exists.
type MeDTO struct {
	User     UserDTO      `json:"user"`
	Provider *ProviderDTO `json:"provider,omitempty"`
}

// AuthService handles account registration, login and token refresh.
type AuthService struct {
	userRepo     userDomain.Repository
	providerRepo providerDomain.Repository
	transactor   database.Transactor
	jwtManager   *auth.JWTManager
	logger       *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	userRepo userDomain.Repository,
	providerRepo providerDomain.Repository,
	transactor database.Transactor,
	jwtManager *auth.JWTManager,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		providerRepo: providerRepo,
		transactor:   transactor,
		jwtManager:   jwtManager,
		logger:       logger,
	}
}

// Signup registers a new account. Provider signups create the user and the
// provider profile in one transaction.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResultDTO, error) {
	if req.Role == auth.RoleProvider && req.Provider == nil {
		return nil, domain.NewValidationError("provider profile data is required for provider signup")
	}
	if req.Role == auth.RoleClient && req.Provider != nil {
		return nil, domain.NewValidationError("provider profile data is not allowed for client signup")
	}

	existing, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.NewConflictError("email is already registered")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, domain.NewInternalError("failed to hash password")
	}

	u, err := userDomain.NewUser(req.Email, hash, req.FirstName, req.LastName, req.Phone, req.Role)
	if err != nil {
		return nil, err
	}

	err = s.transactor.InTx(ctx, func(txCtx context.Context) error {
		if err := s.userRepo.Save(txCtx, u); err != nil {
			return err
		}
		if req.Role != auth.RoleProvider {
			return nil
		}
		profile, err := providerDomain.NewProfile(
			u.ID(), req.Provider.Name, req.Provider.Description,
			req.Provider.Address, req.Provider.City,
			req.Provider.Lat, req.Provider.Lng, req.Provider.WorkingHours,
		)
		if err != nil {
			return err
		}
		return s.providerRepo.Save(txCtx, profile)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("user_id", u.ID().String()),
		zap.String("role", u.Role()),
	)
	return s.issueTokens(u)
}

// Login authenticates an account by email and password.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResultDTO, error) {
	u, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash(), req.Password) {
		return nil, domain.NewError(domain.KindUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	}
	if u.IsBlocked() {
		return nil, domain.NewError(domain.KindForbidden, "BLOCKED", "This account has been blocked")
	}

	return s.issueTokens(u)
}

// Refresh verifies a refresh token and issues a fresh token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResultDTO, error) {
	claims, err := s.jwtManager.VerifyToken(refreshToken)
	if err != nil {
		return nil, domain.NewUnauthorizedError("invalid refresh token")
	}

	u, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if u.IsBlocked() {
		return nil, domain.NewError(domain.KindForbidden, "BLOCKED", "This account has been blocked")
	}

	return s.issueTokens(u)
}

// GetMe retrieves the current user and, for providers, their profile.
func (s *AuthService) GetMe(ctx context.Context, userID uuid.UUID) (*MeDTO, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	me := &MeDTO{User: toUserDTO(u)}
	if u.Role() == auth.RoleProvider {
		profile, err := s.providerRepo.FindByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if profile != nil {
			dto := toProviderDTO(profile)
			me.Provider = &dto
		}
	}
	return me, nil
}

func (s *AuthService) issueTokens(u *userDomain.User) (*AuthResultDTO, error) {
	access, err := s.jwtManager.GenerateAccessToken(u.ID(), u.Email(), u.Role())
	if err != nil {
		return nil, domain.NewInternalError("failed to generate access token")
	}
	refresh, err := s.jwtManager.GenerateRefreshToken(u.ID(), u.Email(), u.Role())
	if err != nil {
		return nil, domain.NewInternalError("failed to generate refresh token")
	}
	return &AuthResultDTO{
		User:         toUserDTO(u),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

func toUserDTO(u *userDomain.User) UserDTO {
	return UserDTO{
		ID:        u.ID(),
		Email:     u.Email(),
		FirstName: u.FirstName(),
		LastName:  u.LastName(),
		Phone:     u.Phone(),
		Role:      u.Role(),
		Status:    string(u.Status()),
		CreatedAt: u.CreatedAt(),
	}
}
