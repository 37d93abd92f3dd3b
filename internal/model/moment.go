package model

// Moment names one of the five coarse wall-clock windows used for
// auto-placement of entities that have no explicit time.
type Moment string

const (
	MomentMorning   Moment = "morning"
	MomentNoon      Moment = "noon"
	MomentAfternoon Moment = "afternoon"
	MomentEvening   Moment = "evening"
	MomentNight     Moment = "night"
)

// Moments lists the blocks in day order.
var Moments = []Moment{MomentMorning, MomentNoon, MomentAfternoon, MomentEvening, MomentNight}

// Valid reports whether m is one of the five known blocks.
func (m Moment) Valid() bool {
	for _, known := range Moments {
		if m == known {
			return true
		}
	}
	return false
}

// Priority orders routines and tasks for allocation and display.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank maps priority to a sortable weight, higher first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}
