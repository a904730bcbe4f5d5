package analytics

import (
	"context"
	"time"

	"github.com/udhago/udhago-backend/pkg/models"
)

// RepositoryInterface defines the interface for analytics repository operations
type RepositoryInterface interface {
	InsertSearchLog(ctx context.Context, log *models.SearchLog) error
	GetTopRoutes(ctx context.Context, since, now time.Time, limit int) ([]*models.RouteDemand, error)
	GetUnderservedRoutes(ctx context.Context, since, now time.Time, maxRides, limit int) ([]*models.RouteDemand, error)
}
