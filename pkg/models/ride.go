package models

import (
	"time"

	"github.com/google/uuid"
)

// RideStatus represents the status of a ride
type RideStatus string

const (
	RideStatusActive    RideStatus = "active"
	RideStatusCancelled RideStatus = "cancelled"
	RideStatusCompleted RideStatus = "completed"
)

// Ride represents a driver's offered trip with fixed seat capacity.
// Invariant: available_seats always equals total_seats minus the seats held
// by accepted bookings, and 0 <= available_seats <= total_seats.
type Ride struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	DriverID        uuid.UUID  `json:"driver_id" db:"driver_id"`
	OriginCity      string     `json:"origin_city" db:"origin_city"`
	DestinationCity string     `json:"destination_city" db:"destination_city"`
	DepartureTime   time.Time  `json:"departure_time" db:"departure_time"`
	PricePerSeat    int        `json:"price_per_seat" db:"price_per_seat"` // smallest currency unit
	TotalSeats      int        `json:"total_seats" db:"total_seats"`
	AvailableSeats  int        `json:"available_seats" db:"available_seats"`
	Notes           *string    `json:"notes,omitempty" db:"notes"`
	Status          RideStatus `json:"status" db:"status"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// DepartedBy reports whether the ride's departure time has passed. "Past" is
// a derived state, never stored; no COMPLETED transition is written.
func (r *Ride) DepartedBy(now time.Time) bool {
	return !r.DepartureTime.After(now)
}

// RideWithDriver is a ride with its driver projection attached.
type RideWithDriver struct {
	Ride
	Driver UserSummary `json:"driver"`
}

// CreateRideRequest represents a ride creation payload. totalSeats bounds and
// the future-departure rule are enforced here at the binding boundary; the
// services trust them.
type CreateRideRequest struct {
	OriginCity      string    `json:"origin_city" binding:"required"`
	DestinationCity string    `json:"destination_city" binding:"required"`
	DepartureTime   time.Time `json:"departure_time" binding:"required,futuredate"`
	PricePerSeat    int       `json:"price_per_seat" binding:"required,gt=0"`
	TotalSeats      int       `json:"total_seats" binding:"required,min=1,max=8"`
	Notes           *string   `json:"notes,omitempty"`
}

// UpdateRideRequest represents a partial ride update. Only non-nil fields are
// applied. Departure time is not re-checked against "must be future" on
// update, matching create-only validation.
type UpdateRideRequest struct {
	OriginCity      *string    `json:"origin_city,omitempty"`
	DestinationCity *string    `json:"destination_city,omitempty"`
	DepartureTime   *time.Time `json:"departure_time,omitempty"`
	PricePerSeat    *int       `json:"price_per_seat,omitempty" binding:"omitempty,gt=0"`
	TotalSeats      *int       `json:"total_seats,omitempty" binding:"omitempty,min=1,max=8"`
	Notes           *string    `json:"notes,omitempty"`
}

// SearchRidesParams holds ride search filters.
type SearchRidesParams struct {
	Origin      string
	Destination string
	Date        *time.Time
	Page        int
	Limit       int
}
