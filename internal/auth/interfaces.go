package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/udhago/udhago-backend/pkg/models"
)

// RepositoryInterface defines the interface for user repository operations
type RepositoryInterface interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}
