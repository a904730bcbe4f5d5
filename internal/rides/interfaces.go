package rides

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/udhago/udhago-backend/pkg/models"
)

// RepositoryInterface defines the interface for ride repository operations
type RepositoryInterface interface {
	CreateRide(ctx context.Context, ride *models.Ride) error
	GetRideByID(ctx context.Context, id uuid.UUID) (*models.RideWithDriver, error)
	GetRideOwnedBy(ctx context.Context, id, driverID uuid.UUID) (*models.Ride, error)
	UpdateRide(ctx context.Context, ride *models.Ride) error
	CancelRide(ctx context.Context, rideID, driverID uuid.UUID) (int64, error)
	GetDriverRides(ctx context.Context, driverID uuid.UUID, includeCompleted bool) ([]*models.Ride, error)
	SearchRides(ctx context.Context, origin, destination string, from time.Time, until *time.Time, limit, offset int) ([]*models.RideWithDriver, int64, error)
}

// SearchLogger records search events. Implementations must never block the
// search path; logging failures are swallowed by the implementation.
type SearchLogger interface {
	LogSearch(ctx context.Context, originCity, destinationCity string, searchDate *time.Time, userID *uuid.UUID)
}
