package models

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusAccepted  BookingStatus = "accepted"
	BookingStatusDeclined  BookingStatus = "declined"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// PaymentMethod represents how a booking is paid. Cash is the only method.
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
)

// Booking represents a rider's request to occupy seats on a ride. A rider
// holds at most one booking per ride (unique on ride_id + rider_id).
type Booking struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	RideID         uuid.UUID     `json:"ride_id" db:"ride_id"`
	RiderID        uuid.UUID     `json:"rider_id" db:"rider_id"`
	SeatsRequested int           `json:"seats_requested" db:"seats_requested"`
	Status         BookingStatus `json:"status" db:"status"`
	PaymentMethod  PaymentMethod `json:"payment_method" db:"payment_method"`
	Message        *string       `json:"message,omitempty" db:"message"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

// BookingWithDetails is a booking with ride and rider projections attached.
// Ride and Rider are filled per endpoint; either may be nil.
type BookingWithDetails struct {
	Booking
	Ride  *RideWithDriver `json:"ride,omitempty"`
	Rider *UserSummary    `json:"rider,omitempty"`
}

// CreateBookingRequest represents a booking request payload
type CreateBookingRequest struct {
	RideID         uuid.UUID `json:"ride_id" binding:"required"`
	SeatsRequested int       `json:"seats_requested" binding:"required,min=1"`
	Message        *string   `json:"message,omitempty" binding:"omitempty,max=500"`
}
