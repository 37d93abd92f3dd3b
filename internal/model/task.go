package model

import "time"

// TaskStatus is the task lifecycle:
// backlog -> todo -> in_progress -> {done, blocked, cancelled} -> archived.
// Any state may jump straight to cancelled or archived.
type TaskStatus string

const (
	TaskBacklog    TaskStatus = "backlog"
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
	TaskBlocked    TaskStatus = "blocked"
	TaskCancelled  TaskStatus = "cancelled"
	TaskArchived   TaskStatus = "archived"
)

// Task is a one-off or project-linked unit of work.
type Task struct {
	ID               string  `gorm:"primaryKey"`
	UserID           string  `gorm:"index"`
	DomainID         *string `gorm:"index"`
	ProjectID        *string `gorm:"index"`
	ParentTaskID     *string `gorm:"index"`
	Title            string
	Description      string
	Priority         Priority   `gorm:"default:medium"`
	Status           TaskStatus `gorm:"default:backlog"`
	DueDate          string     `gorm:"index"` // YYYY-MM-DD, empty when unset
	DueTime          string     // "HH:MM"
	ScheduledDate    string     `gorm:"index"` // pinned to a day plan, independent of due date
	EstimatedMinutes int
	ActualMinutes    int
	IsDeadlineStrict bool `gorm:"default:false"`
	CompletedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PlannableStatuses are the task states that may still receive a plan
// slot.
var PlannableStatuses = []TaskStatus{TaskBacklog, TaskTodo, TaskInProgress}

// TaskTimer accumulates active time for a task across start/pause/stop
// cycles. Elapsed time for a running timer is always recomputed from
// started_at, never trusted from a client.
type TaskTimer struct {
	ID                 string `gorm:"primaryKey"`
	UserID             string `gorm:"index"`
	TaskID             string `gorm:"uniqueIndex"`
	IsRunning          bool   `gorm:"default:false"`
	AccumulatedSeconds int
	StartedAt          *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
