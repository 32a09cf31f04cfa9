package models

import "time"

// User is an identity record. Every goal, entry and budget is exclusively
// scoped to one user; email uniqueness is enforced by the store.
type User struct {
	ID                int64      `json:"id"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"`
	Name              string     `json:"name"`
	PreferredCurrency string     `json:"preferred_currency"`
	Timezone          string     `json:"timezone"`
	CreatedAt         time.Time  `json:"created_at"`
	LastLogin         *time.Time `json:"last_login,omitempty"`
}

// Preferences is the 1:1 settings record created alongside each user.
type Preferences struct {
	UserID               int64 `json:"user_id"`
	NotificationsEnabled bool  `json:"notifications_enabled"`
	WeeklySummary        bool  `json:"weekly_summary"`
}

// DefaultPreferences returns the settings a fresh account starts with.
func DefaultPreferences(userID int64) *Preferences {
	return &Preferences{
		UserID:               userID,
		NotificationsEnabled: true,
		WeeklySummary:        true,
	}
}
