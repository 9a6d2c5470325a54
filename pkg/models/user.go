package models

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// User is a congregation member who can record availability and, when
// assigned, appear on the service roster. Admins additionally manage
// rosters, roles, and other members.
type User struct {
	ID         uuid.UUID `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Initials   string    `json:"initials"`
	PINHash    string    `json:"-"`
	IsAdmin    bool      `json:"is_admin"`
	FirstLogin bool      `json:"first_login"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BaseInitials derives the canonical initials for a name, e.g. "John Smith"
// -> "JS". Collision suffixes ("JS2") are resolved at creation time against
// the set of initials already in use.
func BaseInitials(firstName, lastName string) string {
	var b strings.Builder
	for _, name := range []string{firstName, lastName} {
		for _, r := range name {
			if unicode.IsLetter(r) {
				b.WriteRune(unicode.ToUpper(r))
				break
			}
		}
	}
	return b.String()
}

// DisplayName renders the user's name in the given format. Unknown formats
// fall back to the full name.
func (u *User) DisplayName(format string) string {
	switch format {
	case NameFormatFirst:
		return u.FirstName
	case NameFormatLast:
		return u.LastName
	case NameFormatInitials:
		return u.Initials
	default:
		return strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
}
