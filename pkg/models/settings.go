package models

import "time"

// Name display formats for availability and roster views.
const (
	NameFormatFull     = "full"
	NameFormatFirst    = "first"
	NameFormatLast     = "last"
	NameFormatInitials = "initials"
)

// ValidNameFormats contains all accepted name_format values.
var ValidNameFormats = []string{NameFormatFull, NameFormatFirst, NameFormatLast, NameFormatInitials}

// IsValidNameFormat checks whether format is one of the accepted values.
func IsValidNameFormat(format string) bool {
	for _, f := range ValidNameFormats {
		if f == format {
			return true
		}
	}
	return false
}

// Settings is the process-wide configuration row. Exactly one row exists;
// it is seeded by migration and only ever updated.
type Settings struct {
	DeadlineDay int       `json:"deadline_day"`
	NameFormat  string    `json:"name_format"`
	UpdatedAt   time.Time `json:"updated_at"`
}
