package models

import (
	"time"

	"github.com/google/uuid"
)

// Availability records whether a user is willing to serve on a specific
// service date. One row per (user, date); writes are upserts.
type Availability struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	ServiceDate time.Time `json:"service_date"`
	IsAvailable bool      `json:"is_available"`
	LastUpdated time.Time `json:"last_updated"`
}
