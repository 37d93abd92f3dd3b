package model

import "time"

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectPaused    ProjectStatus = "paused"
	ProjectCompleted ProjectStatus = "completed"
	ProjectArchived  ProjectStatus = "archived"
)

// Project groups tasks toward a goal. Progress is derived from its
// tasks, never stored.
type Project struct {
	ID         string  `gorm:"primaryKey"`
	UserID     string  `gorm:"index"`
	DomainID   *string `gorm:"index"`
	Name       string
	Status     ProjectStatus `gorm:"default:active"`
	StartDate  string        // YYYY-MM-DD, empty when unset
	TargetDate string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
