package model

import "time"

// TimeBlock is one named wall-clock window of the day.
type TimeBlock struct {
	Start string `json:"start"` // "HH:MM"
	End   string `json:"end"`
}

// DefaultTimeBlocks is used when a user has not configured their own.
func DefaultTimeBlocks() map[Moment]TimeBlock {
	return map[Moment]TimeBlock{
		MomentMorning:   {Start: "06:00", End: "12:00"},
		MomentNoon:      {Start: "12:00", End: "14:00"},
		MomentAfternoon: {Start: "14:00", End: "18:00"},
		MomentEvening:   {Start: "18:00", End: "22:00"},
		MomentNight:     {Start: "22:00", End: "23:59"},
	}
}

// PlannerSettings holds per-user allocator configuration: the five
// moment-of-day windows plus the auto-placement switches.
type PlannerSettings struct {
	ID                   string               `gorm:"primaryKey"`
	UserID               string               `gorm:"uniqueIndex"`
	TimeBlocks           map[Moment]TimeBlock `gorm:"serializer:json"`
	WakeTime             string               // "HH:MM"
	SleepTime            string
	LunchBreakStart      string
	LunchBreakDuration   int // minutes
	AutoPositionRoutines bool `gorm:"default:true"`
	AutoPositionTasks    bool `gorm:"default:true"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Blocks returns the configured windows with defaults filled in for
// any block the user has not set.
func (s *PlannerSettings) Blocks() map[Moment]TimeBlock {
	blocks := DefaultTimeBlocks()
	for moment, block := range s.TimeBlocks {
		if block.Start != "" && block.End != "" {
			blocks[moment] = block
		}
	}
	return blocks
}
