package common

import (
	"errors"
	"net/http"
)

// Common error types
var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrBadRequest         = errors.New("bad request")
	ErrInternalServer     = errors.New("internal server error")
	ErrConflict           = errors.New("resource conflict")
	ErrValidation         = errors.New("validation error")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Stable machine-readable error codes. Business-rule violations carry one of
// these so API clients can render a specific message instead of a generic
// failure.
const (
	CodeRideNotFound      = "RIDE_NOT_FOUND"
	CodeRideUnavailable   = "RIDE_UNAVAILABLE"
	CodeRideDeparted      = "RIDE_DEPARTED"
	CodeOwnRide           = "OWN_RIDE"
	CodeDuplicateBooking  = "DUPLICATE_BOOKING"
	CodeInsufficientSeats = "INSUFFICIENT_SEATS"
	CodeInvalidSeatCount  = "INVALID_SEAT_COUNT"
	CodeBookingNotFound   = "BOOKING_NOT_FOUND"
	CodeNotPending        = "NOT_PENDING"
	CodeNotDriver         = "NOT_DRIVER"
	CodeNotRider          = "NOT_RIDER"
	CodeEmailTaken        = "EMAIL_TAKEN"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code      int    `json:"code"`
	ErrorCode string `json:"error_code,omitempty"`
	Message   string `json:"message"`
	Err       error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the wrapped cause to errors.Is/As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithCode attaches a stable machine-readable error code.
func (e *AppError) WithCode(code string) *AppError {
	e.ErrorCode = code
	return e
}

// NewAppError creates a new AppError
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors

func NewNotFoundError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: message,
		Err:     err,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnauthorized,
		Message: message,
		Err:     ErrUnauthorized,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    http.StatusForbidden,
		Message: message,
		Err:     ErrForbidden,
	}
}

func NewBadRequestError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: message,
		Err:     ErrConflict,
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
		Err:     ErrValidation,
	}
}

func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: message,
		Err:     err,
	}
}

func NewInternalServerError(message string) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: message,
		Err:     ErrInternalServer,
	}
}
