package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/udhago/udhago-backend/pkg/common"
	"github.com/udhago/udhago-backend/pkg/models"
)

// Repository handles database operations for bookings
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new bookings repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const bookingColumns = `
	b.id, b.ride_id, b.rider_id, b.seats_requested, b.status, b.payment_method,
	b.message, b.created_at, b.updated_at
`

func scanBooking(row pgx.Row, booking *models.Booking) error {
	return row.Scan(
		&booking.ID, &booking.RideID, &booking.RiderID, &booking.SeatsRequested,
		&booking.Status, &booking.PaymentMethod, &booking.Message,
		&booking.CreatedAt, &booking.UpdatedAt,
	)
}

// CreateBooking inserts a pending booking. A concurrent duplicate for the same
// (ride, rider) pair loses on the unique constraint and surfaces as ErrConflict.
func (r *Repository) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (id, ride_id, rider_id, seats_requested, status, payment_method, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		booking.ID, booking.RideID, booking.RiderID, booking.SeatsRequested,
		booking.Status, booking.PaymentMethod, booking.Message,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return common.ErrConflict
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// GetBookingByID retrieves a bare booking row
func (r *Repository) GetBookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings b WHERE b.id = $1`, bookingColumns)

	booking := &models.Booking{}
	if err := scanBooking(r.db.QueryRow(ctx, query, id), booking); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// GetBookingDetails retrieves a booking with its ride, driver and rider
// projections attached.
func (r *Repository) GetBookingDetails(ctx context.Context, id uuid.UUID) (*models.BookingWithDetails, error) {
	query := fmt.Sprintf(`
		SELECT %s,
			r.id, r.driver_id, r.origin_city, r.destination_city, r.departure_time,
			r.price_per_seat, r.total_seats, r.available_seats, r.notes, r.status,
			r.created_at, r.updated_at,
			d.id, d.name, d.phone,
			u.id, u.name, u.phone
		FROM bookings b
		JOIN rides r ON r.id = b.ride_id
		JOIN users d ON d.id = r.driver_id
		JOIN users u ON u.id = b.rider_id
		WHERE b.id = $1
	`, bookingColumns)

	details := &models.BookingWithDetails{
		Ride:  &models.RideWithDriver{},
		Rider: &models.UserSummary{},
	}
	ride := details.Ride
	err := r.db.QueryRow(ctx, query, id).Scan(
		&details.ID, &details.RideID, &details.RiderID, &details.SeatsRequested,
		&details.Status, &details.PaymentMethod, &details.Message,
		&details.CreatedAt, &details.UpdatedAt,
		&ride.ID, &ride.DriverID, &ride.OriginCity, &ride.DestinationCity,
		&ride.DepartureTime, &ride.PricePerSeat, &ride.TotalSeats,
		&ride.AvailableSeats, &ride.Notes, &ride.Status,
		&ride.CreatedAt, &ride.UpdatedAt,
		&ride.Driver.ID, &ride.Driver.Name, &ride.Driver.Phone,
		&details.Rider.ID, &details.Rider.Name, &details.Rider.Phone,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking details: %w", err)
	}
	return details, nil
}

// BookingExists reports whether any booking row exists for the pair,
// regardless of status.
func (r *Repository) BookingExists(ctx context.Context, rideID, riderID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM bookings WHERE ride_id = $1 AND rider_id = $2)`,
		rideID, riderID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check existing booking: %w", err)
	}
	return exists, nil
}

// AcceptBooking flips the booking to accepted and decrements the ride's
// available seats in one transaction. Both updates are conditional and checked
// by affected-row count: the status flip requires the booking to still be
// pending, and the seat decrement requires enough seats to remain. Two
// concurrent accepts competing for the same seats therefore commit at most as
// many acceptances as supply allows; the rest roll back with
// ErrSeatsUnavailable and available_seats never goes negative.
func (r *Repository) AcceptBooking(ctx context.Context, bookingID, rideID uuid.UUID, seats int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE bookings SET status = 'accepted', updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND status = 'pending'
	`, bookingID)
	if err != nil {
		return fmt.Errorf("failed to accept booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotPending
	}

	tag, err = tx.Exec(ctx, `
		UPDATE rides SET available_seats = available_seats - $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND available_seats >= $2
	`, rideID, seats)
	if err != nil {
		return fmt.Errorf("failed to reserve seats: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSeatsUnavailable
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateStatusIfPending moves a booking to the given status only while it is
// still pending. Losing the race returns ErrNotPending.
func (r *Repository) UpdateStatusIfPending(ctx context.Context, bookingID uuid.UUID, status models.BookingStatus) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE bookings SET status = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND status = 'pending'
	`, bookingID, status)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotPending
	}
	return nil
}

// GetBookingsForRider lists a rider's bookings newest first, with ride and
// driver projections.
func (r *Repository) GetBookingsForRider(ctx context.Context, riderID uuid.UUID) ([]*models.BookingWithDetails, error) {
	query := fmt.Sprintf(`
		SELECT %s,
			r.id, r.driver_id, r.origin_city, r.destination_city, r.departure_time,
			r.price_per_seat, r.total_seats, r.available_seats, r.notes, r.status,
			r.created_at, r.updated_at,
			d.id, d.name, d.phone
		FROM bookings b
		JOIN rides r ON r.id = b.ride_id
		JOIN users d ON d.id = r.driver_id
		WHERE b.rider_id = $1
		ORDER BY b.created_at DESC
	`, bookingColumns)

	rows, err := r.db.Query(ctx, query, riderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rider bookings: %w", err)
	}
	defer rows.Close()

	items := make([]*models.BookingWithDetails, 0)
	for rows.Next() {
		details := &models.BookingWithDetails{Ride: &models.RideWithDriver{}}
		ride := details.Ride
		err := rows.Scan(
			&details.ID, &details.RideID, &details.RiderID, &details.SeatsRequested,
			&details.Status, &details.PaymentMethod, &details.Message,
			&details.CreatedAt, &details.UpdatedAt,
			&ride.ID, &ride.DriverID, &ride.OriginCity, &ride.DestinationCity,
			&ride.DepartureTime, &ride.PricePerSeat, &ride.TotalSeats,
			&ride.AvailableSeats, &ride.Notes, &ride.Status,
			&ride.CreatedAt, &ride.UpdatedAt,
			&ride.Driver.ID, &ride.Driver.Name, &ride.Driver.Phone,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		items = append(items, details)
	}
	return items, nil
}

// GetBookingsForRide lists bookings on a ride with rider projections, oldest
// first so drivers review requests in arrival order.
func (r *Repository) GetBookingsForRide(ctx context.Context, rideID uuid.UUID, pendingOnly bool) ([]*models.BookingWithDetails, error) {
	statusClause := ""
	if pendingOnly {
		statusClause = "AND b.status = 'pending'"
	}

	query := fmt.Sprintf(`
		SELECT %s,
			u.id, u.name, u.phone
		FROM bookings b
		JOIN users u ON u.id = b.rider_id
		WHERE b.ride_id = $1 %s
		ORDER BY b.created_at ASC
	`, bookingColumns, statusClause)

	rows, err := r.db.Query(ctx, query, rideID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ride bookings: %w", err)
	}
	defer rows.Close()

	items := make([]*models.BookingWithDetails, 0)
	for rows.Next() {
		details := &models.BookingWithDetails{Rider: &models.UserSummary{}}
		err := rows.Scan(
			&details.ID, &details.RideID, &details.RiderID, &details.SeatsRequested,
			&details.Status, &details.PaymentMethod, &details.Message,
			&details.CreatedAt, &details.UpdatedAt,
			&details.Rider.ID, &details.Rider.Name, &details.Rider.Phone,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		items = append(items, details)
	}
	return items, nil
}
