package models

import (
	"time"

	"github.com/google/uuid"
)

// RosterAssignment places a user in a role on a service date.
//
// Invariants, both backed by the schema:
//   - a user appears in at most one assignment per service date
//   - a role holds at most ServiceRole.MaxOccupants assignments per date
type RosterAssignment struct {
	ID          uuid.UUID `json:"id"`
	RoleID      uuid.UUID `json:"role_id"`
	UserID      uuid.UUID `json:"user_id"`
	ServiceDate time.Time `json:"service_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
