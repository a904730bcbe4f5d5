package rides

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/udhago/udhago-backend/pkg/clock"
	"github.com/udhago/udhago-backend/pkg/common"
	"github.com/udhago/udhago-backend/pkg/logger"
	"github.com/udhago/udhago-backend/pkg/models"
	"go.uber.org/zap"
)

// Service handles ride inventory business logic
type Service struct {
	repo         RepositoryInterface
	searchLogger SearchLogger
	clock        clock.Clock
}

// NewService creates a new rides service. searchLogger may be nil, in which
// case searches are not recorded.
func NewService(repo RepositoryInterface, searchLogger SearchLogger, clk clock.Clock) *Service {
	return &Service{
		repo:         repo,
		searchLogger: searchLogger,
		clock:        clk,
	}
}

// CreateRide creates an active ride with every seat available.
func (s *Service) CreateRide(ctx context.Context, driverID uuid.UUID, req *models.CreateRideRequest) (*models.RideWithDriver, error) {
	ride := &models.Ride{
		ID:              uuid.New(),
		DriverID:        driverID,
		OriginCity:      req.OriginCity,
		DestinationCity: req.DestinationCity,
		DepartureTime:   req.DepartureTime,
		PricePerSeat:    req.PricePerSeat,
		TotalSeats:      req.TotalSeats,
		AvailableSeats:  req.TotalSeats,
		Notes:           req.Notes,
		Status:          models.RideStatusActive,
	}

	if err := s.repo.CreateRide(ctx, ride); err != nil {
		return nil, common.NewInternalServerError("failed to create ride")
	}

	return s.GetRide(ctx, ride.ID)
}

// GetRide returns a ride with its driver projection.
func (s *Service) GetRide(ctx context.Context, id uuid.UUID) (*models.RideWithDriver, error) {
	ride, err := s.repo.GetRideByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewNotFoundError("ride not found", nil).WithCode(common.CodeRideNotFound)
		}
		return nil, common.NewInternalServerError("failed to load ride")
	}
	return ride, nil
}

// UpdateRide applies the provided fields to a ride owned by driverID. When
// total seats change, available seats are recomputed so the seats already
// committed to accepted bookings stay committed.
func (s *Service) UpdateRide(ctx context.Context, id, driverID uuid.UUID, req *models.UpdateRideRequest) (*models.RideWithDriver, error) {
	ride, err := s.repo.GetRideOwnedBy(ctx, id, driverID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewNotFoundError("ride not found", nil).WithCode(common.CodeRideNotFound)
		}
		return nil, common.NewInternalServerError("failed to load ride")
	}

	if req.OriginCity != nil {
		ride.OriginCity = *req.OriginCity
	}
	if req.DestinationCity != nil {
		ride.DestinationCity = *req.DestinationCity
	}
	if req.DepartureTime != nil {
		ride.DepartureTime = *req.DepartureTime
	}
	if req.PricePerSeat != nil {
		ride.PricePerSeat = *req.PricePerSeat
	}
	if req.Notes != nil {
		ride.Notes = req.Notes
	}
	if req.TotalSeats != nil && *req.TotalSeats != ride.TotalSeats {
		bookedSeats := ride.TotalSeats - ride.AvailableSeats
		newAvailable := *req.TotalSeats - bookedSeats
		if newAvailable < 0 {
			return nil, common.NewValidationError("total seats cannot drop below seats already accepted").
				WithCode(common.CodeInvalidSeatCount)
		}
		ride.TotalSeats = *req.TotalSeats
		ride.AvailableSeats = newAvailable
	}

	if err := s.repo.UpdateRide(ctx, ride); err != nil {
		return nil, common.NewInternalServerError("failed to update ride")
	}

	return s.GetRide(ctx, ride.ID)
}

// CancelRide marks a ride cancelled; its pending bookings are declined in the
// same transaction.
func (s *Service) CancelRide(ctx context.Context, id, driverID uuid.UUID) error {
	declined, err := s.repo.CancelRide(ctx, id, driverID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewNotFoundError("ride not found", nil).WithCode(common.CodeRideNotFound)
		}
		return common.NewInternalServerError("failed to cancel ride")
	}

	if declined > 0 {
		logger.InfoContext(ctx, "declined pending bookings on ride cancellation",
			zap.String("ride_id", id.String()),
			zap.Int64("declined", declined),
		)
	}
	return nil
}

// GetDriverRides lists rides owned by a driver. Active rides only by default;
// includeCompleted removes the status filter entirely.
func (s *Service) GetDriverRides(ctx context.Context, driverID uuid.UUID, includeCompleted bool) ([]*models.Ride, error) {
	items, err := s.repo.GetDriverRides(ctx, driverID, includeCompleted)
	if err != nil {
		return nil, common.NewInternalServerError("failed to list rides")
	}
	return items, nil
}

// SearchRides returns bookable rides matching the filters plus the total
// match count. The date filter composes with the future-only rule: the window
// starts at whichever is later of now and the start of the requested day.
// Each search fires a demand log that never blocks or fails the response.
func (s *Service) SearchRides(ctx context.Context, params models.SearchRidesParams, userID *uuid.UUID) ([]*models.RideWithDriver, int64, error) {
	from := s.clock.Now()
	var until *time.Time

	if params.Date != nil {
		dayStart := time.Date(
			params.Date.Year(), params.Date.Month(), params.Date.Day(),
			0, 0, 0, 0, params.Date.Location(),
		)
		dayEnd := dayStart.AddDate(0, 0, 1)
		if dayStart.After(from) {
			from = dayStart
		}
		until = &dayEnd
	}

	offset := (params.Page - 1) * params.Limit
	items, total, err := s.repo.SearchRides(ctx, params.Origin, params.Destination, from, until, params.Limit, offset)
	if err != nil {
		return nil, 0, common.NewInternalServerError("failed to search rides")
	}

	if s.searchLogger != nil && (params.Origin != "" || params.Destination != "") {
		s.searchLogger.LogSearch(ctx, params.Origin, params.Destination, params.Date, userID)
	}

	return items, total, nil
}
