package bookings

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/udhago/udhago-backend/pkg/models"
)

// Sentinel errors surfaced by the repository when a conditional update loses
// a race. The service maps them to client-facing error kinds.
var (
	ErrNotPending       = errors.New("booking is not pending")
	ErrSeatsUnavailable = errors.New("not enough seats available")
)

// RepositoryInterface defines the interface for booking repository operations
type RepositoryInterface interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	GetBookingDetails(ctx context.Context, id uuid.UUID) (*models.BookingWithDetails, error)
	BookingExists(ctx context.Context, rideID, riderID uuid.UUID) (bool, error)
	AcceptBooking(ctx context.Context, bookingID, rideID uuid.UUID, seats int) error
	UpdateStatusIfPending(ctx context.Context, bookingID uuid.UUID, status models.BookingStatus) error
	GetBookingsForRider(ctx context.Context, riderID uuid.UUID) ([]*models.BookingWithDetails, error)
	GetBookingsForRide(ctx context.Context, rideID uuid.UUID, pendingOnly bool) ([]*models.BookingWithDetails, error)
}

// RideStore is the slice of the ride repository the booking engine needs.
type RideStore interface {
	GetRideByID(ctx context.Context, id uuid.UUID) (*models.RideWithDriver, error)
}
