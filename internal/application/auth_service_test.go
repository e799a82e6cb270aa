package application

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	userDomain "github.com/nearby-app/marketplace-api/internal/domain/user"
	"github.com/nearby-app/marketplace-api/pkg/auth"
	"github.com/nearby-app/marketplace-api/pkg/domain"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*userDomain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*userDomain.User)}
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("User", id.String())
	}
	return u, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email(), email) {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) CountByRole(ctx context.Context, role string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.Role() == role {
			n++
		}
	}
	return n, nil
}

func (r *fakeUserRepo) CountAll(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) Save(ctx context.Context, u *userDomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID()] = u
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, u *userDomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID()]; !ok {
		return domain.NewNotFoundError("User", u.ID().String())
	}
	r.users[u.ID()] = u
	return nil
}

func newAuthService() (*AuthService, *fakeUserRepo, *fakeProviderRepo) {
	userRepo := newFakeUserRepo()
	providerRepo := newFakeProviderRepo()
	jwtManager := auth.NewJWTManager("test-secret", 15*time.Minute, 7*24*time.Hour)
	svc := NewAuthService(userRepo, providerRepo, passthroughTransactor{}, jwtManager, zap.NewNop())
	return svc, userRepo, providerRepo
}

func clientSignup(email string) SignupRequest {
	return SignupRequest{
		Role:      auth.RoleClient,
		Email:     email,
		Password:  "s3cret-pass",
		FirstName: "Ana",
		LastName:  "Client",
	}
}

func providerSignup(email string) SignupRequest {
	return SignupRequest{
		Role:      auth.RoleProvider,
		Email:     email,
		Password:  "s3cret-pass",
		FirstName: "Bob",
		LastName:  "Provider",
		Provider: &ProviderSignupData{
			Name: "Bob's Plumbing",
			City: "Jakarta",
		},
	}
}

func TestAuthService_Signup(t *testing.T) {
	ctx := context.Background()

	t.Run("client signup issues tokens", func(t *testing.T) {
		svc, _, providerRepo := newAuthService()

		result, err := svc.Signup(ctx, clientSignup("ana@test.local"))
		require.NoError(t, err)

		assert.Equal(t, "CLIENT", result.User.Role)
		assert.Equal(t, "ACTIVE", result.User.Status)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)

		// No profile created for clients.
		profile, err := providerRepo.FindByUserID(ctx, result.User.ID)
		require.NoError(t, err)
		assert.Nil(t, profile)
	})

	t.Run("provider signup creates the profile", func(t *testing.T) {
		svc, _, providerRepo := newAuthService()

		result, err := svc.Signup(ctx, providerSignup("bob@test.local"))
		require.NoError(t, err)
		assert.Equal(t, "PROVIDER", result.User.Role)

		profile, err := providerRepo.FindByUserID(ctx, result.User.ID)
		require.NoError(t, err)
		require.NotNil(t, profile)
		assert.Equal(t, "Bob's Plumbing", profile.Name())
		assert.False(t, profile.Verified())
	})

	t.Run("provider signup requires profile data", func(t *testing.T) {
		svc, _, _ := newAuthService()

		req := providerSignup("bob@test.local")
		req.Provider = nil
		_, err := svc.Signup(ctx, req)
		assertAppErrorCode(t, err, "VALIDATION_ERROR")
	})

	t.Run("client signup rejects profile data", func(t *testing.T) {
		svc, _, _ := newAuthService()

		req := clientSignup("ana@test.local")
		req.Provider = &ProviderSignupData{Name: "nope"}
		_, err := svc.Signup(ctx, req)
		assertAppErrorCode(t, err, "VALIDATION_ERROR")
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc, _, _ := newAuthService()

		_, err := svc.Signup(ctx, clientSignup("ana@test.local"))
		require.NoError(t, err)

		_, err = svc.Signup(ctx, clientSignup("ana@test.local"))
		assertAppErrorCode(t, err, "CONFLICT")
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		svc, _, _ := newAuthService()
		_, err := svc.Signup(ctx, clientSignup("ana@test.local"))
		require.NoError(t, err)

		result, err := svc.Login(ctx, LoginRequest{Email: "ana@test.local", Password: "s3cret-pass"})
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, _, _ := newAuthService()
		_, err := svc.Signup(ctx, clientSignup("ana@test.local"))
		require.NoError(t, err)

		_, err = svc.Login(ctx, LoginRequest{Email: "ana@test.local", Password: "wrong-pass"})
		assertAppErrorCode(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("unknown email gets the same error", func(t *testing.T) {
		svc, _, _ := newAuthService()

		_, err := svc.Login(ctx, LoginRequest{Email: "ghost@test.local", Password: "whatever1"})
		assertAppErrorCode(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("blocked account", func(t *testing.T) {
		svc, userRepo, _ := newAuthService()
		result, err := svc.Signup(ctx, clientSignup("ana@test.local"))
		require.NoError(t, err)

		u, err := userRepo.FindByID(ctx, result.User.ID)
		require.NoError(t, err)
		u.Block()
		require.NoError(t, userRepo.Update(ctx, u))

		_, err = svc.Login(ctx, LoginRequest{Email: "ana@test.local", Password: "s3cret-pass"})
		assertAppErrorCode(t, err, "BLOCKED")
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthService()

	result, err := svc.Signup(ctx, clientSignup("ana@test.local"))
	require.NoError(t, err)

	t.Run("valid refresh token", func(t *testing.T) {
		refreshed, err := svc.Refresh(ctx, result.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, result.User.ID, refreshed.User.ID)
		assert.NotEmpty(t, refreshed.AccessToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.Refresh(ctx, "not-a-jwt")
		assertAppErrorCode(t, err, "UNAUTHORIZED")
	})
}

func TestAuthService_GetMe(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthService()

	result, err := svc.Signup(ctx, providerSignup("bob@test.local"))
	require.NoError(t, err)

	me, err := svc.GetMe(ctx, result.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob@test.local", me.User.Email)
	require.NotNil(t, me.Provider)
	assert.Equal(t, "Bob's Plumbing", me.Provider.Name)
}
