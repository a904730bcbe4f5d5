package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/udhago/udhago-backend/pkg/clock"
	"github.com/udhago/udhago-backend/pkg/common"
	"github.com/udhago/udhago-backend/pkg/config"
	"github.com/udhago/udhago-backend/pkg/middleware"
	"github.com/udhago/udhago-backend/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

// ============================================================================
// Mock Repository
// ============================================================================

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// ============================================================================
// Helpers
// ============================================================================

var testTime = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestService(repo RepositoryInterface) *Service {
	return NewService(repo, config.JWTConfig{Secret: "test-secret", Expiration: 24}, clock.At(testTime))
}

func createTestUser(password string) *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return &models.User{
		ID:           uuid.New(),
		Email:        "blerta@example.com",
		PasswordHash: string(hash),
		Name:         "Blerta Hoxha",
		Locale:       "sq",
		CreatedAt:    testTime,
		UpdatedAt:    testTime,
	}
}

// ============================================================================
// Register
// ============================================================================

func TestRegister(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo)

	repo.On("GetUserByEmail", mock.Anything, "blerta@example.com").Return(nil, common.ErrNotFound)
	repo.On("CreateUser", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	req := &models.RegisterRequest{
		Email:    "blerta@example.com",
		Password: "super-secret",
		Name:     "Blerta Hoxha",
	}

	resp, err := service.Register(context.Background(), req)

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "blerta@example.com", resp.User.Email)
	assert.Equal(t, "sq", resp.User.Locale)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(resp.User.PasswordHash), []byte("super-secret")))
	repo.AssertExpectations(t)
}

func TestRegisterEmailTaken(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo)

	existing := createTestUser("whatever")
	repo.On("GetUserByEmail", mock.Anything, existing.Email).Return(existing, nil)

	req := &models.RegisterRequest{
		Email:    existing.Email,
		Password: "super-secret",
		Name:     "Someone Else",
	}

	_, err := service.Register(context.Background(), req)

	require.Error(t, err)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, 409, appErr.Code)
	assert.Equal(t, common.CodeEmailTaken, appErr.ErrorCode)
	repo.AssertNotCalled(t, "CreateUser")
}

func TestRegisterLosesInsertRace(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo)

	repo.On("GetUserByEmail", mock.Anything, mock.Anything).Return(nil, common.ErrNotFound)
	repo.On("CreateUser", mock.Anything, mock.Anything).Return(common.ErrConflict)

	req := &models.RegisterRequest{
		Email:    "blerta@example.com",
		Password: "super-secret",
		Name:     "Blerta Hoxha",
	}

	_, err := service.Register(context.Background(), req)

	require.Error(t, err)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, common.CodeEmailTaken, appErr.ErrorCode)
}

func TestRegisterKeepsExplicitLocale(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo)

	repo.On("GetUserByEmail", mock.Anything, mock.Anything).Return(nil, common.ErrNotFound)
	repo.On("CreateUser", mock.Anything, mock.Anything).Return(nil)

	req := &models.RegisterRequest{
		Email:    "tom@example.com",
		Password: "super-secret",
		Name:     "Tom Carter",
		Locale:   "en",
	}

	resp, err := service.Register(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "en", resp.User.Locale)
}

// ============================================================================
// Login
// ============================================================================

func TestLogin(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo)

	user := createTestUser("correct-horse")
	repo.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil)

	resp, err := service.Login(context.Background(), &models.LoginRequest{
		Email:    user.Email,
		Password: "correct-horse",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, user.ID, resp.User.ID)

	// Token must carry the user id and the configured expiry
	parsed, err := jwt.ParseWithClaims(resp.Token, &middleware.Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}, jwt.WithTimeFunc(func() time.Time { return testTime }))
	require.NoError(t, err)
	claims := parsed.Claims.(*middleware.Claims)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, testTime.Add(24*time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestLoginWrongPassword(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo)

	user := createTestUser("correct-horse")
	repo.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil)

	_, err := service.Login(context.Background(), &models.LoginRequest{
		Email:    user.Email,
		Password: "wrong-horse",
	})

	require.Error(t, err)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, 401, appErr.Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo)

	repo.On("GetUserByEmail", mock.Anything, "nobody@example.com").Return(nil, common.ErrNotFound)

	_, err := service.Login(context.Background(), &models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})

	require.Error(t, err)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, 401, appErr.Code)
}

// ============================================================================
// GetProfile
// ============================================================================

func TestGetProfile(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo)

	user := createTestUser("pw")
	repo.On("GetUserByID", mock.Anything, user.ID).Return(user, nil)

	got, err := service.GetProfile(context.Background(), user.ID)

	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)
}

func TestGetProfileNotFound(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo)

	id := uuid.New()
	repo.On("GetUserByID", mock.Anything, id).Return(nil, common.ErrNotFound)

	_, err := service.GetProfile(context.Background(), id)

	require.Error(t, err)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.Code)
}
