package models

import (
	"time"

	"github.com/google/uuid"
)

// FinalizedRoster marks a month's roster as published. A month with no row
// is treated the same as IsFinalized=false.
type FinalizedRoster struct {
	ID          uuid.UUID  `json:"id"`
	Year        int        `json:"year"`
	Month       int        `json:"month"`
	IsFinalized bool       `json:"is_finalized"`
	Message     string     `json:"message,omitempty"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	FinalizedBy *uuid.UUID `json:"finalized_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
