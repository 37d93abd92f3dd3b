package model

import (
	"time"

	"gorm.io/datatypes"
)

type PlanStatus string

const (
	PlanDraft PlanStatus = "draft"
	PlanFinal PlanStatus = "final"
)

// GeneratedPlan is the per-day slot container. The unique (user_id,
// date) index is what serializes concurrent generation.
type GeneratedPlan struct {
	ID                string     `gorm:"primaryKey"`
	UserID            string     `gorm:"index:idx_plan_user_date,unique"`
	Date              string     `gorm:"index:idx_plan_user_date,unique"` // YYYY-MM-DD
	Status            PlanStatus `gorm:"default:draft"`
	OptimizationScore *float64
	AIModel           string
	GenerationParams  datatypes.JSON
	Slots             []PlanSlot `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type SlotType string

const (
	SlotRoutine SlotType = "routine"
	SlotTask    SlotType = "task"
	SlotBreak   SlotType = "break"
	SlotFree    SlotType = "free"
)

type EntityType string

const (
	EntityRoutine EntityType = "routine"
	EntityTask    EntityType = "task"
)

// PlanSlot is one time-boxed entry of a plan. Times are wall-clock
// "HH:MM" within the plan's date. Non-locked slots of one plan never
// overlap; locked slots are preserved verbatim across regeneration.
type PlanSlot struct {
	ID          string `gorm:"primaryKey"`
	PlanID      string `gorm:"index"`
	SlotType    SlotType
	EntityType  EntityType // empty for break/free slots
	EntityID    string
	StartTime   string // "HH:MM"
	EndTime     string
	SortOrder   int
	IsLocked    bool `gorm:"default:false"`
	WasExecuted bool `gorm:"default:false"`
	AIReasoning string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
