package bookings

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/udhago/udhago-backend/pkg/clock"
	"github.com/udhago/udhago-backend/pkg/common"
	"github.com/udhago/udhago-backend/pkg/models"
)

// Service enforces the booking state machine:
//
//	(none) ── create ──► pending
//	pending ── accept (driver) ──► accepted  [seats decremented atomically]
//	pending ── decline (driver) ──► declined
//	pending ── cancel (rider) ──► cancelled
//
// accepted, declined and cancelled are terminal. Creating a booking never
// touches seat inventory; acceptance is the only gate.
type Service struct {
	repo      RepositoryInterface
	rideStore RideStore
	clock     clock.Clock
}

// NewService creates a new bookings service
func NewService(repo RepositoryInterface, rideStore RideStore, clk clock.Clock) *Service {
	return &Service{
		repo:      repo,
		rideStore: rideStore,
		clock:     clk,
	}
}

// CreateBooking validates the request against the ride's current state and
// inserts a pending booking. Preconditions run in a fixed order, each failing
// with its own error kind so clients can render a specific message.
func (s *Service) CreateBooking(ctx context.Context, riderID uuid.UUID, req *models.CreateBookingRequest) (*models.BookingWithDetails, error) {
	if req.SeatsRequested < 1 {
		return nil, common.NewValidationError("seats requested must be at least 1").
			WithCode(common.CodeInvalidSeatCount)
	}

	ride, err := s.rideStore.GetRideByID(ctx, req.RideID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewNotFoundError("ride not found", nil).WithCode(common.CodeRideNotFound)
		}
		return nil, common.NewInternalServerError("failed to load ride")
	}

	if ride.Status != models.RideStatusActive {
		return nil, common.NewConflictError("ride is not available for booking").
			WithCode(common.CodeRideUnavailable)
	}

	if ride.DriverID == riderID {
		return nil, common.NewConflictError("cannot book your own ride").
			WithCode(common.CodeOwnRide)
	}

	exists, err := s.repo.BookingExists(ctx, req.RideID, riderID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to check existing booking")
	}
	if exists {
		return nil, common.NewConflictError("you already have a booking for this ride").
			WithCode(common.CodeDuplicateBooking)
	}

	if ride.AvailableSeats < req.SeatsRequested {
		return nil, common.NewConflictError("not enough seats available").
			WithCode(common.CodeInsufficientSeats)
	}

	booking := &models.Booking{
		ID:             uuid.New(),
		RideID:         req.RideID,
		RiderID:        riderID,
		SeatsRequested: req.SeatsRequested,
		Status:         models.BookingStatusPending,
		PaymentMethod:  models.PaymentMethodCash,
		Message:        req.Message,
	}

	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		// Lost the unique-constraint race against a concurrent request
		if errors.Is(err, common.ErrConflict) {
			return nil, common.NewConflictError("you already have a booking for this ride").
				WithCode(common.CodeDuplicateBooking)
		}
		return nil, common.NewInternalServerError("failed to create booking")
	}

	return s.repo.GetBookingDetails(ctx, booking.ID)
}

// AcceptBooking flips a pending booking to accepted and reserves its seats in
// one transaction. The seat check here is advisory; the transaction's
// conditional decrement is the authoritative guard against concurrent accepts
// overselling the ride.
func (s *Service) AcceptBooking(ctx context.Context, bookingID, driverID uuid.UUID) (*models.BookingWithDetails, error) {
	booking, ride, err := s.loadBookingAndRide(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if ride.DriverID != driverID {
		return nil, common.NewForbiddenError("only the driver can accept bookings").
			WithCode(common.CodeNotDriver)
	}
	if booking.Status != models.BookingStatusPending {
		return nil, common.NewConflictError("booking is not pending").
			WithCode(common.CodeNotPending)
	}
	if ride.DepartedBy(s.clock.Now()) {
		return nil, common.NewConflictError("ride has already departed").
			WithCode(common.CodeRideDeparted)
	}
	if ride.AvailableSeats < booking.SeatsRequested {
		return nil, common.NewConflictError("not enough seats available").
			WithCode(common.CodeInsufficientSeats)
	}

	if err := s.repo.AcceptBooking(ctx, booking.ID, ride.ID, booking.SeatsRequested); err != nil {
		switch {
		case errors.Is(err, ErrNotPending):
			return nil, common.NewConflictError("booking is not pending").
				WithCode(common.CodeNotPending)
		case errors.Is(err, ErrSeatsUnavailable):
			return nil, common.NewConflictError("not enough seats available").
				WithCode(common.CodeInsufficientSeats)
		default:
			return nil, common.NewInternalServerError("failed to accept booking")
		}
	}

	return s.repo.GetBookingDetails(ctx, booking.ID)
}

// DeclineBooking moves a pending booking to declined. Seats are untouched.
func (s *Service) DeclineBooking(ctx context.Context, bookingID, driverID uuid.UUID) (*models.BookingWithDetails, error) {
	booking, ride, err := s.loadBookingAndRide(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if ride.DriverID != driverID {
		return nil, common.NewForbiddenError("only the driver can decline bookings").
			WithCode(common.CodeNotDriver)
	}
	if booking.Status != models.BookingStatusPending {
		return nil, common.NewConflictError("booking is not pending").
			WithCode(common.CodeNotPending)
	}

	if err := s.repo.UpdateStatusIfPending(ctx, booking.ID, models.BookingStatusDeclined); err != nil {
		if errors.Is(err, ErrNotPending) {
			return nil, common.NewConflictError("booking is not pending").
				WithCode(common.CodeNotPending)
		}
		return nil, common.NewInternalServerError("failed to decline booking")
	}

	return s.repo.GetBookingDetails(ctx, booking.ID)
}

// CancelBooking lets the rider withdraw a pending booking. Accepted bookings
// cannot be cancelled; no seat-return path exists.
func (s *Service) CancelBooking(ctx context.Context, bookingID, riderID uuid.UUID) (*models.BookingWithDetails, error) {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewNotFoundError("booking not found", nil).WithCode(common.CodeBookingNotFound)
		}
		return nil, common.NewInternalServerError("failed to load booking")
	}

	if booking.RiderID != riderID {
		return nil, common.NewForbiddenError("only the rider can cancel their booking").
			WithCode(common.CodeNotRider)
	}
	if booking.Status != models.BookingStatusPending {
		return nil, common.NewConflictError("cannot cancel a booking that is not pending").
			WithCode(common.CodeNotPending)
	}

	if err := s.repo.UpdateStatusIfPending(ctx, booking.ID, models.BookingStatusCancelled); err != nil {
		if errors.Is(err, ErrNotPending) {
			return nil, common.NewConflictError("cannot cancel a booking that is not pending").
				WithCode(common.CodeNotPending)
		}
		return nil, common.NewInternalServerError("failed to cancel booking")
	}

	return s.repo.GetBookingDetails(ctx, booking.ID)
}

// GetBookingsForRider lists the rider's bookings, newest first.
func (s *Service) GetBookingsForRider(ctx context.Context, riderID uuid.UUID) ([]*models.BookingWithDetails, error) {
	items, err := s.repo.GetBookingsForRider(ctx, riderID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to list bookings")
	}
	return items, nil
}

// GetBookingsForRide lists bookings on a ride for its driver, oldest first.
// pendingOnly narrows the list to requests still awaiting review.
func (s *Service) GetBookingsForRide(ctx context.Context, rideID, requesterID uuid.UUID, pendingOnly bool) ([]*models.BookingWithDetails, error) {
	ride, err := s.rideStore.GetRideByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewNotFoundError("ride not found", nil).WithCode(common.CodeRideNotFound)
		}
		return nil, common.NewInternalServerError("failed to load ride")
	}
	if ride.DriverID != requesterID {
		return nil, common.NewForbiddenError("only the driver can view ride bookings").
			WithCode(common.CodeNotDriver)
	}

	items, err := s.repo.GetBookingsForRide(ctx, rideID, pendingOnly)
	if err != nil {
		return nil, common.NewInternalServerError("failed to list bookings")
	}
	return items, nil
}

// GetBooking fetches a booking with projections, visible only to its rider or
// the ride's driver.
func (s *Service) GetBooking(ctx context.Context, bookingID, requesterID uuid.UUID) (*models.BookingWithDetails, error) {
	details, err := s.repo.GetBookingDetails(ctx, bookingID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewNotFoundError("booking not found", nil).WithCode(common.CodeBookingNotFound)
		}
		return nil, common.NewInternalServerError("failed to load booking")
	}

	if details.RiderID != requesterID && details.Ride.DriverID != requesterID {
		return nil, common.NewForbiddenError("not allowed to view this booking")
	}
	return details, nil
}

func (s *Service) loadBookingAndRide(ctx context.Context, bookingID uuid.UUID) (*models.Booking, *models.RideWithDriver, error) {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, common.NewNotFoundError("booking not found", nil).WithCode(common.CodeBookingNotFound)
		}
		return nil, nil, common.NewInternalServerError("failed to load booking")
	}

	ride, err := s.rideStore.GetRideByID(ctx, booking.RideID)
	if err != nil {
		return nil, nil, common.NewInternalServerError("failed to load ride")
	}
	return booking, ride, nil
}
