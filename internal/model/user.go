package model

import "time"

// User is one tenant of the planner. Identity is issued externally; the
// API token is the only credential this service checks.
type User struct {
	ID             string `gorm:"primaryKey"`
	Email          string `gorm:"uniqueIndex"`
	Name           string
	APIToken       string `gorm:"uniqueIndex"`
	Timezone       string
	TelegramChatID int64 `gorm:"index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
