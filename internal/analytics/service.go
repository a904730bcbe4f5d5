package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/udhago/udhago-backend/pkg/async"
	"github.com/udhago/udhago-backend/pkg/clock"
	"github.com/udhago/udhago-backend/pkg/common"
	"github.com/udhago/udhago-backend/pkg/logger"
	"github.com/udhago/udhago-backend/pkg/models"
	"go.uber.org/zap"
)

const (
	defaultWindowDays = 30
	maxWindowDays     = 365
	defaultLimit      = 10
	maxLimit          = 50

	// Routes with fewer bookable rides than this are considered underserved
	underservedRideThreshold = 3
)

// Service handles search-demand analytics
type Service struct {
	repo  RepositoryInterface
	clock clock.Clock
}

// NewService creates a new analytics service
func NewService(repo RepositoryInterface, clk clock.Clock) *Service {
	return &Service{
		repo:  repo,
		clock: clk,
	}
}

// LogSearch records a search event asynchronously. It returns immediately;
// insert failures are logged and never reach the search path.
func (s *Service) LogSearch(ctx context.Context, originCity, destinationCity string, searchDate *time.Time, userID *uuid.UUID) {
	entry := &models.SearchLog{
		ID:              uuid.New(),
		OriginCity:      originCity,
		DestinationCity: destinationCity,
		SearchDate:      searchDate,
		UserID:          userID,
	}

	async.Go(ctx, "log-search", func(taskCtx context.Context) {
		if err := s.repo.InsertSearchLog(taskCtx, entry); err != nil {
			logger.ErrorContext(taskCtx, "failed to record search log",
				zap.String("origin", originCity),
				zap.String("destination", destinationCity),
				zap.Error(err),
			)
		}
	})
}

// GetTopRoutes returns the most searched routes over the past `days` days.
func (s *Service) GetTopRoutes(ctx context.Context, days, limit int) ([]*models.RouteDemand, error) {
	days, limit = clampWindow(days, limit)
	now := s.clock.Now()

	items, err := s.repo.GetTopRoutes(ctx, now.AddDate(0, 0, -days), now, limit)
	if err != nil {
		return nil, common.NewInternalServerError("failed to load top routes")
	}
	return items, nil
}

// GetUnderservedRoutes returns searched routes short on bookable rides over
// the past `days` days.
func (s *Service) GetUnderservedRoutes(ctx context.Context, days, limit int) ([]*models.RouteDemand, error) {
	days, limit = clampWindow(days, limit)
	now := s.clock.Now()

	items, err := s.repo.GetUnderservedRoutes(ctx, now.AddDate(0, 0, -days), now, underservedRideThreshold, limit)
	if err != nil {
		return nil, common.NewInternalServerError("failed to load underserved routes")
	}
	return items, nil
}

func clampWindow(days, limit int) (int, int) {
	if days <= 0 {
		days = defaultWindowDays
	}
	if days > maxWindowDays {
		days = maxWindowDays
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return days, limit
}
