package models

import (
	"time"

	"github.com/google/uuid"
)

// SpecialDay annotates a calendar date with display metadata (e.g. "Easter
// Sunday", a highlight color). One row per date; no recurrence — each
// occurrence is its own row.
type SpecialDay struct {
	ID          uuid.UUID `json:"id"`
	Date        time.Time `json:"date"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
