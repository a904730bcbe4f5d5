package rides

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/udhago/udhago-backend/pkg/common"
	"github.com/udhago/udhago-backend/pkg/models"
)

// Repository handles database operations for rides
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new rides repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const rideWithDriverColumns = `
	r.id, r.driver_id, r.origin_city, r.destination_city, r.departure_time,
	r.price_per_seat, r.total_seats, r.available_seats, r.notes, r.status,
	r.created_at, r.updated_at,
	u.id, u.name, u.phone
`

func scanRideWithDriver(row pgx.Row) (*models.RideWithDriver, error) {
	ride := &models.RideWithDriver{}
	err := row.Scan(
		&ride.ID, &ride.DriverID, &ride.OriginCity, &ride.DestinationCity,
		&ride.DepartureTime, &ride.PricePerSeat, &ride.TotalSeats,
		&ride.AvailableSeats, &ride.Notes, &ride.Status,
		&ride.CreatedAt, &ride.UpdatedAt,
		&ride.Driver.ID, &ride.Driver.Name, &ride.Driver.Phone,
	)
	if err != nil {
		return nil, err
	}
	return ride, nil
}

// CreateRide inserts a new ride
func (r *Repository) CreateRide(ctx context.Context, ride *models.Ride) error {
	query := `
		INSERT INTO rides (id, driver_id, origin_city, destination_city, departure_time,
			price_per_seat, total_seats, available_seats, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		ride.ID, ride.DriverID, ride.OriginCity, ride.DestinationCity, ride.DepartureTime,
		ride.PricePerSeat, ride.TotalSeats, ride.AvailableSeats, ride.Notes, ride.Status,
	).Scan(&ride.CreatedAt, &ride.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create ride: %w", err)
	}
	return nil
}

// GetRideByID retrieves a ride with its driver projection
func (r *Repository) GetRideByID(ctx context.Context, id uuid.UUID) (*models.RideWithDriver, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM rides r
		JOIN users u ON u.id = r.driver_id
		WHERE r.id = $1
	`, rideWithDriverColumns)

	ride, err := scanRideWithDriver(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}
	return ride, nil
}

// GetRideOwnedBy retrieves a ride only when it is owned by driverID. Missing
// ride and wrong owner are indistinguishable to the caller.
func (r *Repository) GetRideOwnedBy(ctx context.Context, id, driverID uuid.UUID) (*models.Ride, error) {
	query := `
		SELECT id, driver_id, origin_city, destination_city, departure_time,
			price_per_seat, total_seats, available_seats, notes, status,
			created_at, updated_at
		FROM rides WHERE id = $1 AND driver_id = $2
	`
	ride := &models.Ride{}
	err := r.db.QueryRow(ctx, query, id, driverID).Scan(
		&ride.ID, &ride.DriverID, &ride.OriginCity, &ride.DestinationCity,
		&ride.DepartureTime, &ride.PricePerSeat, &ride.TotalSeats,
		&ride.AvailableSeats, &ride.Notes, &ride.Status,
		&ride.CreatedAt, &ride.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}
	return ride, nil
}

// UpdateRide persists editable ride fields
func (r *Repository) UpdateRide(ctx context.Context, ride *models.Ride) error {
	query := `
		UPDATE rides SET
			origin_city = $2, destination_city = $3, departure_time = $4,
			price_per_seat = $5, total_seats = $6, available_seats = $7,
			notes = $8, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		ride.ID, ride.OriginCity, ride.DestinationCity, ride.DepartureTime,
		ride.PricePerSeat, ride.TotalSeats, ride.AvailableSeats, ride.Notes,
	).Scan(&ride.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update ride: %w", err)
	}
	return nil
}

// CancelRide marks a ride cancelled and declines its outstanding pending
// bookings in the same transaction, so no booking is left dangling against a
// cancelled ride. Returns the number of bookings declined.
func (r *Repository) CancelRide(ctx context.Context, rideID, driverID uuid.UUID) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE rides SET status = 'cancelled', updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND driver_id = $2
	`, rideID, driverID)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel ride: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, common.ErrNotFound
	}

	declined, err := tx.Exec(ctx, `
		UPDATE bookings SET status = 'declined', updated_at = CURRENT_TIMESTAMP
		WHERE ride_id = $1 AND status = 'pending'
	`, rideID)
	if err != nil {
		return 0, fmt.Errorf("failed to decline pending bookings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return declined.RowsAffected(), nil
}

// GetDriverRides lists rides owned by a driver, departure time ascending
func (r *Repository) GetDriverRides(ctx context.Context, driverID uuid.UUID, includeCompleted bool) ([]*models.Ride, error) {
	statusClause := ""
	if !includeCompleted {
		statusClause = "AND status = 'active'"
	}

	query := fmt.Sprintf(`
		SELECT id, driver_id, origin_city, destination_city, departure_time,
			price_per_seat, total_seats, available_seats, notes, status,
			created_at, updated_at
		FROM rides
		WHERE driver_id = $1 %s
		ORDER BY departure_time ASC
	`, statusClause)

	rows, err := r.db.Query(ctx, query, driverID)
	if err != nil {
		return nil, fmt.Errorf("failed to list driver rides: %w", err)
	}
	defer rows.Close()

	items := make([]*models.Ride, 0)
	for rows.Next() {
		ride := &models.Ride{}
		err := rows.Scan(
			&ride.ID, &ride.DriverID, &ride.OriginCity, &ride.DestinationCity,
			&ride.DepartureTime, &ride.PricePerSeat, &ride.TotalSeats,
			&ride.AvailableSeats, &ride.Notes, &ride.Status,
			&ride.CreatedAt, &ride.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ride: %w", err)
		}
		items = append(items, ride)
	}
	return items, nil
}

// SearchRides lists bookable rides matching the filters, with total count.
// Only active rides with free seats departing at or after `from` (and before
// `until`, when set) are returned.
func (r *Repository) SearchRides(ctx context.Context, origin, destination string, from time.Time, until *time.Time, limit, offset int) ([]*models.RideWithDriver, int64, error) {
	conditions := []string{
		"r.status = 'active'",
		"r.available_seats > 0",
	}
	args := []interface{}{}
	argPos := 1

	conditions = append(conditions, fmt.Sprintf("r.departure_time >= $%d", argPos))
	args = append(args, from)
	argPos++

	if until != nil {
		conditions = append(conditions, fmt.Sprintf("r.departure_time < $%d", argPos))
		args = append(args, *until)
		argPos++
	}
	if origin != "" {
		conditions = append(conditions, fmt.Sprintf("r.origin_city ILIKE '%%' || $%d || '%%'", argPos))
		args = append(args, origin)
		argPos++
	}
	if destination != "" {
		conditions = append(conditions, fmt.Sprintf("r.destination_city ILIKE '%%' || $%d || '%%'", argPos))
		args = append(args, destination)
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM rides r WHERE %s", whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count rides: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM rides r
		JOIN users u ON u.id = r.driver_id
		WHERE %s
		ORDER BY r.departure_time ASC
		LIMIT $%d OFFSET $%d
	`, rideWithDriverColumns, whereClause, argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search rides: %w", err)
	}
	defer rows.Close()

	items := make([]*models.RideWithDriver, 0)
	for rows.Next() {
		ride, err := scanRideWithDriver(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan ride: %w", err)
		}
		items = append(items, ride)
	}
	return items, total, nil
}
