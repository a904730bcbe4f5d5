package models

import (
	"time"

	"github.com/google/uuid"
)

// SearchLog records a single ride search for demand analytics. UserID is set
// only when the searcher presented a valid token.
type SearchLog struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	OriginCity      string     `json:"origin_city" db:"origin_city"`
	DestinationCity string     `json:"destination_city" db:"destination_city"`
	SearchDate      *time.Time `json:"search_date,omitempty" db:"search_date"`
	UserID          *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// RouteDemand aggregates searches for an origin/destination pair against the
// rides currently bookable on that route.
type RouteDemand struct {
	OriginCity      string `json:"origin_city"`
	DestinationCity string `json:"destination_city"`
	SearchCount     int64  `json:"search_count"`
	AvailableRides  int64  `json:"available_rides"`
}
