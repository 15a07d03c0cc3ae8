package models

import "time"

const (
	DefaultTimezone = "Europe/Berlin"
	DefaultLanguage = "en"
)

type UserPreferences struct {
	UserID    string    `db:"user_id"`
	Timezone  string    `db:"timezone"`
	Language  string    `db:"language"`
	CreatedAt time.Time `db:"created_at"`
}

// DefaultPreferences is what a user without a stored row sees.
func DefaultPreferences(userID string) *UserPreferences {
	return &UserPreferences{
		UserID:   userID,
		Timezone: DefaultTimezone,
		Language: DefaultLanguage,
	}
}
