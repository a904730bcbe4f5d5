package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/udhago/udhago-backend/pkg/clock"
	"github.com/udhago/udhago-backend/pkg/common"
	"github.com/udhago/udhago-backend/pkg/config"
	"github.com/udhago/udhago-backend/pkg/middleware"
	"github.com/udhago/udhago-backend/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

const defaultLocale = "sq"

// Service handles authentication business logic
type Service struct {
	repo  RepositoryInterface
	jwt   config.JWTConfig
	clock clock.Clock
}

// NewService creates a new auth service
func NewService(repo RepositoryInterface, jwtCfg config.JWTConfig, clk clock.Clock) *Service {
	return &Service{
		repo:  repo,
		jwt:   jwtCfg,
		clock: clk,
	}
}

// Register creates a new account and returns it with a signed token.
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	existing, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, common.NewInternalServerError("failed to check existing account")
	}
	if existing != nil {
		return nil, common.NewConflictError("an account with this email already exists").
			WithCode(common.CodeEmailTaken)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.NewInternalServerError("failed to hash password")
	}

	locale := req.Locale
	if locale == "" {
		locale = defaultLocale
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Name:         req.Name,
		Phone:        req.Phone,
		Locale:       locale,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		// Lost the race against a concurrent registration with the same email
		if errors.Is(err, common.ErrConflict) {
			return nil, common.NewConflictError("an account with this email already exists").
				WithCode(common.CodeEmailTaken)
		}
		return nil, common.NewInternalServerError("failed to create account")
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, common.NewInternalServerError("failed to generate token")
	}

	return &models.AuthResponse{Token: token, User: user}, nil
}

// Login authenticates a user and returns a signed token.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, common.NewUnauthorizedError("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, common.NewUnauthorizedError("invalid credentials")
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, common.NewInternalServerError("failed to generate token")
	}

	return &models.AuthResponse{Token: token, User: user}, nil
}

// GetProfile retrieves the authenticated user's profile.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewNotFoundError("user not found", nil)
		}
		return nil, common.NewInternalServerError("failed to load profile")
	}
	return user, nil
}

func (s *Service) generateToken(user *models.User) (string, error) {
	now := s.clock.Now()
	claims := &middleware.Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour * time.Duration(s.jwt.Expiration))),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwt.Secret))
}
