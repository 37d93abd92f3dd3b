package model

import (
	"time"

	"gorm.io/datatypes"
)

// RoutineTemplate is the source of truth for a recurring obligation.
// Instances are expanded from it per date; when instances exist the
// template is deactivated instead of deleted.
type RoutineTemplate struct {
	ID               string  `gorm:"primaryKey"`
	UserID           string  `gorm:"index"`
	DomainID         *string `gorm:"index"`
	Name             string
	CategoryMoment   Moment // empty means no preferred block
	CategoryType     string
	Priority         Priority `gorm:"default:medium"`
	IsFlexible       bool     `gorm:"default:false"`
	IsActive         bool     `gorm:"default:true"`
	TargetValue      *float64
	Unit             string
	DurationMinutes  int
	PreferredStart   string // "HH:MM", empty when unset
	Constraints      datatypes.JSON
	RecurrenceRule   string
	RecurrenceConfig datatypes.JSON
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// InstanceStatus is the routine instance lifecycle. Pending is the
// only non-terminal state.
type InstanceStatus string

const (
	InstancePending   InstanceStatus = "pending"
	InstanceCompleted InstanceStatus = "completed"
	InstancePartial   InstanceStatus = "partial"
	InstanceSkipped   InstanceStatus = "skipped"
)

// RoutineInstance is one dated occurrence of a template. The unique
// (template_id, scheduled_date) index makes expansion idempotent.
type RoutineInstance struct {
	ID              string `gorm:"primaryKey"`
	UserID          string `gorm:"index"`
	TemplateID      string `gorm:"index;index:idx_instance_template_date,unique"`
	ScheduledDate   string `gorm:"index:idx_instance_template_date,unique"` // YYYY-MM-DD
	ScheduledStart  string // "HH:MM", empty when unset
	ScheduledEnd    string
	ActualStart     *time.Time
	ActualEnd       *time.Time
	Status          InstanceStatus `gorm:"default:pending"`
	ActualValue     *float64
	MoodBefore      *int
	MoodAfter       *int
	EnergyLevel     *int
	Notes           string
	SkipReason      string
	CompletionScore *int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Terminal reports whether the instance has been acted upon.
func (i *RoutineInstance) Terminal() bool {
	return i.Status != InstancePending
}

// RoutineInstanceTask links a task worked on during a routine instance.
type RoutineInstanceTask struct {
	ID               string `gorm:"primaryKey"`
	InstanceID       string `gorm:"index;index:idx_instance_task,unique"`
	TaskID           string `gorm:"index;index:idx_instance_task,unique"`
	TimeSpentMinutes int
	Notes            string
	CreatedAt        time.Time
}
