package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/udhago/udhago-backend/pkg/models"
)

// Repository handles database operations for search analytics
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new analytics repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// InsertSearchLog records a search event
func (r *Repository) InsertSearchLog(ctx context.Context, log *models.SearchLog) error {
	query := `
		INSERT INTO search_logs (id, origin_city, destination_city, search_date, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		log.ID, log.OriginCity, log.DestinationCity, log.SearchDate, log.UserID,
	).Scan(&log.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert search log: %w", err)
	}
	return nil
}

// routeDemandQuery aggregates searches per route since a cutoff and counts the
// bookable future rides matching each route.
const routeDemandQuery = `
	SELECT s.origin_city, s.destination_city, COUNT(*) AS search_count,
		(SELECT COUNT(*) FROM rides r
			WHERE r.status = 'active'
			AND r.available_seats > 0
			AND r.departure_time > $2
			AND r.origin_city ILIKE s.origin_city
			AND r.destination_city ILIKE s.destination_city) AS available_rides
	FROM search_logs s
	WHERE s.created_at >= $1
	GROUP BY s.origin_city, s.destination_city
`

func (r *Repository) queryRouteDemand(ctx context.Context, query string, args ...interface{}) ([]*models.RouteDemand, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query route demand: %w", err)
	}
	defer rows.Close()

	items := make([]*models.RouteDemand, 0)
	for rows.Next() {
		route := &models.RouteDemand{}
		if err := rows.Scan(&route.OriginCity, &route.DestinationCity, &route.SearchCount, &route.AvailableRides); err != nil {
			return nil, fmt.Errorf("failed to scan route demand: %w", err)
		}
		items = append(items, route)
	}
	return items, nil
}

// GetTopRoutes returns the most searched routes since the cutoff
func (r *Repository) GetTopRoutes(ctx context.Context, since, now time.Time, limit int) ([]*models.RouteDemand, error) {
	query := routeDemandQuery + `
		ORDER BY search_count DESC, s.origin_city, s.destination_city
		LIMIT $3
	`
	return r.queryRouteDemand(ctx, query, since, now, limit)
}

// GetUnderservedRoutes returns searched routes with fewer than maxRides
// bookable future rides, most searched first
func (r *Repository) GetUnderservedRoutes(ctx context.Context, since, now time.Time, maxRides, limit int) ([]*models.RouteDemand, error) {
	query := fmt.Sprintf(`
		SELECT * FROM (%s) demand
		WHERE demand.available_rides < $3
		ORDER BY demand.search_count DESC, demand.origin_city, demand.destination_city
		LIMIT $4
	`, routeDemandQuery)
	return r.queryRouteDemand(ctx, query, since, now, maxRides, limit)
}
