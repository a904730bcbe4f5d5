package rides

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/udhago/udhago-backend/pkg/clock"
	"github.com/udhago/udhago-backend/pkg/common"
	"github.com/udhago/udhago-backend/pkg/models"
)

// ============================================================================
// Mocks
// ============================================================================

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateRide(ctx context.Context, ride *models.Ride) error {
	args := m.Called(ctx, ride)
	return args.Error(0)
}

func (m *MockRepository) GetRideByID(ctx context.Context, id uuid.UUID) (*models.RideWithDriver, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RideWithDriver), args.Error(1)
}

func (m *MockRepository) GetRideOwnedBy(ctx context.Context, id, driverID uuid.UUID) (*models.Ride, error) {
	args := m.Called(ctx, id, driverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ride), args.Error(1)
}

func (m *MockRepository) UpdateRide(ctx context.Context, ride *models.Ride) error {
	args := m.Called(ctx, ride)
	return args.Error(0)
}

func (m *MockRepository) CancelRide(ctx context.Context, rideID, driverID uuid.UUID) (int64, error) {
	args := m.Called(ctx, rideID, driverID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) GetDriverRides(ctx context.Context, driverID uuid.UUID, includeCompleted bool) ([]*models.Ride, error) {
	args := m.Called(ctx, driverID, includeCompleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Ride), args.Error(1)
}

func (m *MockRepository) SearchRides(ctx context.Context, origin, destination string, from time.Time, until *time.Time, limit, offset int) ([]*models.RideWithDriver, int64, error) {
	args := m.Called(ctx, origin, destination, from, until, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.RideWithDriver), args.Get(1).(int64), args.Error(2)
}

type MockSearchLogger struct {
	mock.Mock
}

func (m *MockSearchLogger) LogSearch(ctx context.Context, originCity, destinationCity string, searchDate *time.Time, userID *uuid.UUID) {
	m.Called(ctx, originCity, destinationCity, searchDate, userID)
}

// ============================================================================
// Helpers
// ============================================================================

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestService(repo RepositoryInterface, searchLogger SearchLogger) *Service {
	return NewService(repo, searchLogger, clock.At(testNow))
}

func createTestRide(driverID uuid.UUID) *models.Ride {
	return &models.Ride{
		ID:              uuid.New(),
		DriverID:        driverID,
		OriginCity:      "Tiranë",
		DestinationCity: "Durrës",
		DepartureTime:   testNow.Add(48 * time.Hour),
		PricePerSeat:    500,
		TotalSeats:      4,
		AvailableSeats:  4,
		Status:          models.RideStatusActive,
		CreatedAt:       testNow,
		UpdatedAt:       testNow,
	}
}

func withDriver(ride *models.Ride) *models.RideWithDriver {
	return &models.RideWithDriver{
		Ride:   *ride,
		Driver: models.UserSummary{ID: ride.DriverID, Name: "Arben Krasniqi"},
	}
}

// ============================================================================
// CreateRide
// ============================================================================

func TestCreateRide(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, nil)

	driverID := uuid.New()
	var created *models.Ride
	repo.On("CreateRide", mock.Anything, mock.AnythingOfType("*models.Ride")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*models.Ride)
		}).Return(nil)
	repo.On("GetRideByID", mock.Anything, mock.AnythingOfType("uuid.UUID")).
		Return(withDriver(createTestRide(driverID)), nil)

	req := &models.CreateRideRequest{
		OriginCity:      "Tiranë",
		DestinationCity: "Durrës",
		DepartureTime:   testNow.Add(48 * time.Hour),
		PricePerSeat:    500,
		TotalSeats:      3,
	}

	_, err := service.CreateRide(context.Background(), driverID, req)

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, driverID, created.DriverID)
	assert.Equal(t, 3, created.TotalSeats)
	assert.Equal(t, 3, created.AvailableSeats)
	assert.Equal(t, models.RideStatusActive, created.Status)
}

// ============================================================================
// GetRide
// ============================================================================

func TestGetRideNotFound(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, nil)

	id := uuid.New()
	repo.On("GetRideByID", mock.Anything, id).Return(nil, common.ErrNotFound)

	_, err := service.GetRide(context.Background(), id)

	require.Error(t, err)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.Code)
	assert.Equal(t, common.CodeRideNotFound, appErr.ErrorCode)
}

// ============================================================================
// UpdateRide
// ============================================================================

func TestUpdateRideRecomputesAvailableSeats(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, nil)

	driverID := uuid.New()
	ride := createTestRide(driverID)
	ride.TotalSeats = 4
	ride.AvailableSeats = 2 // 2 seats already accepted

	repo.On("GetRideOwnedBy", mock.Anything, ride.ID, driverID).Return(ride, nil)
	var updated *models.Ride
	repo.On("UpdateRide", mock.Anything, mock.AnythingOfType("*models.Ride")).
		Run(func(args mock.Arguments) {
			updated = args.Get(1).(*models.Ride)
		}).Return(nil)
	repo.On("GetRideByID", mock.Anything, ride.ID).Return(withDriver(ride), nil)

	newTotal := 6
	_, err := service.UpdateRide(context.Background(), ride.ID, driverID, &models.UpdateRideRequest{
		TotalSeats: &newTotal,
	})

	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 6, updated.TotalSeats)
	assert.Equal(t, 4, updated.AvailableSeats)
}

func TestUpdateRideRejectsTotalBelowAcceptedSeats(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, nil)

	driverID := uuid.New()
	ride := createTestRide(driverID)
	ride.TotalSeats = 4
	ride.AvailableSeats = 1 // 3 seats already accepted

	repo.On("GetRideOwnedBy", mock.Anything, ride.ID, driverID).Return(ride, nil)

	newTotal := 2
	_, err := service.UpdateRide(context.Background(), ride.ID, driverID, &models.UpdateRideRequest{
		TotalSeats: &newTotal,
	})

	require.Error(t, err)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, common.CodeInvalidSeatCount, appErr.ErrorCode)
	repo.AssertNotCalled(t, "UpdateRide")
}

func TestUpdateRideNotOwner(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, nil)

	rideID := uuid.New()
	otherDriver := uuid.New()
	repo.On("GetRideOwnedBy", mock.Anything, rideID, otherDriver).Return(nil, common.ErrNotFound)

	origin := "Shkodër"
	_, err := service.UpdateRide(context.Background(), rideID, otherDriver, &models.UpdateRideRequest{
		OriginCity: &origin,
	})

	require.Error(t, err)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.Code)
}

func TestUpdateRidePartialFields(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, nil)

	driverID := uuid.New()
	ride := createTestRide(driverID)

	repo.On("GetRideOwnedBy", mock.Anything, ride.ID, driverID).Return(ride, nil)
	var updated *models.Ride
	repo.On("UpdateRide", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			updated = args.Get(1).(*models.Ride)
		}).Return(nil)
	repo.On("GetRideByID", mock.Anything, ride.ID).Return(withDriver(ride), nil)

	price := 700
	_, err := service.UpdateRide(context.Background(), ride.ID, driverID, &models.UpdateRideRequest{
		PricePerSeat: &price,
	})

	require.NoError(t, err)
	assert.Equal(t, 700, updated.PricePerSeat)
	assert.Equal(t, "Tiranë", updated.OriginCity)
	assert.Equal(t, 4, updated.AvailableSeats)
}

// ============================================================================
// CancelRide
// ============================================================================

func TestCancelRide(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, nil)

	rideID := uuid.New()
	driverID := uuid.New()
	repo.On("CancelRide", mock.Anything, rideID, driverID).Return(int64(2), nil)

	err := service.CancelRide(context.Background(), rideID, driverID)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCancelRideNotFound(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, nil)

	rideID := uuid.New()
	driverID := uuid.New()
	repo.On("CancelRide", mock.Anything, rideID, driverID).Return(int64(0), common.ErrNotFound)

	err := service.CancelRide(context.Background(), rideID, driverID)

	require.Error(t, err)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.Code)
	assert.Equal(t, common.CodeRideNotFound, appErr.ErrorCode)
}

// ============================================================================
// SearchRides
// ============================================================================

func TestSearchRidesWithoutDateStartsAtNow(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, nil)

	repo.On("SearchRides", mock.Anything, "Tiranë", "Durrës", testNow, (*time.Time)(nil), 10, 0).
		Return([]*models.RideWithDriver{}, int64(0), nil)

	_, _, err := service.SearchRides(context.Background(), models.SearchRidesParams{
		Origin:      "Tiranë",
		Destination: "Durrës",
		Page:        1,
		Limit:       10,
	}, nil)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestSearchRidesTodayComposesWithFutureFilter(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, nil)

	// Searching for today must not resurface rides that already departed:
	// the window starts at now, not at midnight.
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	dayEnd := date.AddDate(0, 0, 1)

	repo.On("SearchRides", mock.Anything, "", "", testNow, &dayEnd, 10, 0).
		Return([]*models.RideWithDriver{}, int64(0), nil)

	_, _, err := service.SearchRides(context.Background(), models.SearchRidesParams{
		Date:  &date,
		Page:  1,
		Limit: 10,
	}, nil)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestSearchRidesFutureDateUsesDayWindow(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, nil)

	date := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
	dayEnd := date.AddDate(0, 0, 1)

	repo.On("SearchRides", mock.Anything, "", "", date, &dayEnd, 10, 0).
		Return([]*models.RideWithDriver{}, int64(0), nil)

	_, _, err := service.SearchRides(context.Background(), models.SearchRidesParams{
		Date:  &date,
		Page:  1,
		Limit: 10,
	}, nil)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestSearchRidesPagination(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, nil)

	repo.On("SearchRides", mock.Anything, "", "", testNow, (*time.Time)(nil), 20, 40).
		Return([]*models.RideWithDriver{}, int64(93), nil)

	_, total, err := service.SearchRides(context.Background(), models.SearchRidesParams{
		Page:  3,
		Limit: 20,
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(93), total)
}

func TestSearchRidesLogsDemand(t *testing.T) {
	repo := new(MockRepository)
	searchLogger := new(MockSearchLogger)
	service := newTestService(repo, searchLogger)

	userID := uuid.New()
	repo.On("SearchRides", mock.Anything, "Tiranë", "Durrës", testNow, (*time.Time)(nil), 10, 0).
		Return([]*models.RideWithDriver{}, int64(0), nil)
	searchLogger.On("LogSearch", mock.Anything, "Tiranë", "Durrës", (*time.Time)(nil), &userID).Return()

	_, _, err := service.SearchRides(context.Background(), models.SearchRidesParams{
		Origin:      "Tiranë",
		Destination: "Durrës",
		Page:        1,
		Limit:       10,
	}, &userID)

	require.NoError(t, err)
	searchLogger.AssertExpectations(t)
}

func TestSearchRidesWithoutFiltersSkipsLog(t *testing.T) {
	repo := new(MockRepository)
	searchLogger := new(MockSearchLogger)
	service := newTestService(repo, searchLogger)

	repo.On("SearchRides", mock.Anything, "", "", testNow, (*time.Time)(nil), 10, 0).
		Return([]*models.RideWithDriver{}, int64(0), nil)

	_, _, err := service.SearchRides(context.Background(), models.SearchRidesParams{
		Page:  1,
		Limit: 10,
	}, nil)

	require.NoError(t, err)
	searchLogger.AssertNotCalled(t, "LogSearch")
}
