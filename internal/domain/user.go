package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// User-specific validation errors
var (
	ErrUserIDEmpty       = errors.New("user ID cannot be empty")
	ErrUserEmailEmpty    = errors.New("user email cannot be empty")
	ErrUserTimezoneEmpty = errors.New("user timezone cannot be empty")
)

// DefaultTimezone is assigned to users who have not configured one.
const DefaultTimezone = "UTC"

// User owns projects and carries the timezone label that partitions the
// recurrence generator's batches. The timezone is a label matched against
// the generator's invocation argument, not parsed as an IANA zone.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrUserIDEmpty
	}

	if u.Email == "" {
		return ErrUserEmailEmpty
	}

	if u.Timezone == "" {
		return ErrUserTimezoneEmpty
	}

	return nil
}
