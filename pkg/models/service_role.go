package models

import (
	"time"

	"github.com/google/uuid"
)

// ServiceRole is a named position on the service roster, e.g. "Worship
// Leader". Position is a dense 1..n ordering reassigned wholesale on every
// reorder. MaxOccupants is the per-date capacity and is authoritative on the
// server side.
type ServiceRole struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	IsActive     bool      `json:"is_active"`
	Position     int       `json:"position"`
	MaxOccupants int       `json:"max_occupants"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
