package model

import "time"

// Domain is a life-area tag (health, work, study, ...) referenced by
// templates, tasks and projects. It is never deleted while anything
// still points at it.
type Domain struct {
	ID                  string `gorm:"primaryKey"`
	UserID              string `gorm:"index;index:idx_user_domain_name,unique"`
	Name                string `gorm:"index:idx_user_domain_name,unique"`
	Color               string
	Icon                string
	SortOrder           int
	IsDefault           bool `gorm:"default:false"`
	DailyTargetMinutes  *int
	WeeklyTargetMinutes *int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
