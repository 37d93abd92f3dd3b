package model

import "time"

// Streak is derived per (user, template) from instance history and
// recomputed on every completion or skip.
type Streak struct {
	ID                string `gorm:"primaryKey"`
	UserID            string `gorm:"index:idx_streak_user_template,unique"`
	TemplateID        string `gorm:"index:idx_streak_user_template,unique"`
	CurrentStreak     int
	LongestStreak     int
	LastCompletedDate string // YYYY-MM-DD, empty before first completion
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
