package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/udhago/udhago-backend/pkg/clock"
	"github.com/udhago/udhago-backend/pkg/models"
)

// ============================================================================
// Mock Repository
// ============================================================================

type MockRepository struct {
	mock.Mock
	inserted chan *models.SearchLog
}

func newMockRepository() *MockRepository {
	return &MockRepository{inserted: make(chan *models.SearchLog, 1)}
}

func (m *MockRepository) InsertSearchLog(ctx context.Context, log *models.SearchLog) error {
	args := m.Called(ctx, log)
	if m.inserted != nil {
		m.inserted <- log
	}
	return args.Error(0)
}

func (m *MockRepository) GetTopRoutes(ctx context.Context, since, now time.Time, limit int) ([]*models.RouteDemand, error) {
	args := m.Called(ctx, since, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RouteDemand), args.Error(1)
}

func (m *MockRepository) GetUnderservedRoutes(ctx context.Context, since, now time.Time, maxRides, limit int) ([]*models.RouteDemand, error) {
	args := m.Called(ctx, since, now, maxRides, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RouteDemand), args.Error(1)
}

// ============================================================================
// Tests
// ============================================================================

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func TestLogSearchInsertsAsynchronously(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, clock.At(testNow))

	userID := uuid.New()
	repo.On("InsertSearchLog", mock.Anything, mock.AnythingOfType("*models.SearchLog")).Return(nil)

	service.LogSearch(context.Background(), "Tiranë", "Durrës", nil, &userID)

	select {
	case entry := <-repo.inserted:
		assert.Equal(t, "Tiranë", entry.OriginCity)
		assert.Equal(t, "Durrës", entry.DestinationCity)
		assert.Equal(t, &userID, entry.UserID)
	case <-time.After(2 * time.Second):
		t.Fatal("search log was never inserted")
	}
}

func TestLogSearchSwallowsInsertFailure(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, clock.At(testNow))

	repo.On("InsertSearchLog", mock.Anything, mock.Anything).Return(assert.AnError)

	// Must not panic or propagate
	service.LogSearch(context.Background(), "Tiranë", "Durrës", nil, nil)

	select {
	case <-repo.inserted:
	case <-time.After(2 * time.Second):
		t.Fatal("search log insert was never attempted")
	}
}

func TestGetTopRoutes(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, clock.At(testNow))

	expected := []*models.RouteDemand{
		{OriginCity: "Tiranë", DestinationCity: "Durrës", SearchCount: 42, AvailableRides: 5},
	}
	repo.On("GetTopRoutes", mock.Anything, testNow.AddDate(0, 0, -7), testNow, 5).
		Return(expected, nil)

	items, err := service.GetTopRoutes(context.Background(), 7, 5)

	require.NoError(t, err)
	assert.Equal(t, expected, items)
	repo.AssertExpectations(t)
}

func TestGetTopRoutesDefaultsWindow(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, clock.At(testNow))

	repo.On("GetTopRoutes", mock.Anything, testNow.AddDate(0, 0, -30), testNow, 10).
		Return([]*models.RouteDemand{}, nil)

	_, err := service.GetTopRoutes(context.Background(), 0, 0)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestGetUnderservedRoutesUsesThreshold(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, clock.At(testNow))

	repo.On("GetUnderservedRoutes", mock.Anything, testNow.AddDate(0, 0, -30), testNow, 3, 10).
		Return([]*models.RouteDemand{
			{OriginCity: "Shkodër", DestinationCity: "Tiranë", SearchCount: 17, AvailableRides: 1},
		}, nil)

	items, err := service.GetUnderservedRoutes(context.Background(), 30, 10)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Less(t, items[0].AvailableRides, int64(3))
}
