package service

import (
	"sort"
	"time"

	"github.com/vttlabs/lifeos/internal/model"
)

// candidate is one entity competing for plan time. Explicit candidates
// carry a desired [start, end) in minutes from midnight; flexible ones
// carry only a duration and a target moment block.
type candidate struct {
	entityType model.EntityType
	entityID   string
	start      int // -1 when flexible
	duration   int
	moment     model.Moment
	priority   model.Priority
	createdAt  time.Time
	reasoning  string
}

type interval struct {
	start, end int
}

func (iv interval) overlaps(other interval) bool {
	return iv.start < other.end && other.start < iv.end
}

type placement struct {
	candidate
	at int // resolved start, minutes from midnight
}

// allocator resolves candidates into non-overlapping placements given
// the five moment windows and whatever time is already busy.
type allocator struct {
	blocks map[model.Moment]interval
	busy   []interval
}

func newAllocator(blocks map[model.Moment]model.TimeBlock, busy []interval) *allocator {
	resolved := make(map[model.Moment]interval, len(blocks))
	for moment, block := range blocks {
		start, err1 := parseClock(block.Start)
		end, err2 := parseClock(block.End)
		if err1 != nil || err2 != nil || end <= start {
			continue
		}
		resolved[moment] = interval{start: start, end: end}
	}
	a := &allocator{blocks: resolved, busy: append([]interval(nil), busy...)}
	sort.Slice(a.busy, func(i, j int) bool { return a.busy[i].start < a.busy[j].start })
	return a
}

// place resolves all candidates. Placement order is the contractual
// tie-break (priority first, then created_at, then lexical id) so
// when two candidates contend for the same window, the lower-priority
// one is the one deferred. Unplaceable candidates are dropped.
func (a *allocator) place(candidates []candidate) []placement {
	ordered := append([]candidate(nil), candidates...)
	sort.SliceStable(ordered, func(i, j int) bool {
		ci, cj := ordered[i], ordered[j]
		if ci.priority.Rank() != cj.priority.Rank() {
			return ci.priority.Rank() > cj.priority.Rank()
		}
		if !ci.createdAt.Equal(cj.createdAt) {
			return ci.createdAt.Before(cj.createdAt)
		}
		return ci.entityID < cj.entityID
	})

	var placements []placement
	for _, cand := range ordered {
		at, ok := a.resolve(cand)
		if !ok {
			continue
		}
		a.busy = append(a.busy, interval{start: at, end: at + cand.duration})
		sort.Slice(a.busy, func(i, j int) bool { return a.busy[i].start < a.busy[j].start })
		placements = append(placements, placement{candidate: cand, at: at})
	}

	sort.SliceStable(placements, func(i, j int) bool { return placements[i].at < placements[j].at })
	return placements
}

func (a *allocator) resolve(cand candidate) (int, bool) {
	if cand.duration <= 0 {
		return 0, false
	}

	// Explicit window first: keep it when free.
	if cand.start >= 0 {
		want := interval{start: cand.start, end: cand.start + cand.duration}
		if !a.conflicts(want) {
			return cand.start, true
		}
		// Deferred: nearest free window inside the original block,
		// expanding into adjacent blocks only when that fails.
		origin := cand.moment
		if origin == "" {
			origin = a.momentAt(cand.start)
		}
		for _, moment := range blockSearchOrder(origin) {
			if at, ok := a.fitInBlock(moment, cand.duration, cand.start); ok {
				return at, true
			}
		}
		return 0, false
	}

	// Flexible: earliest free gap in the target block, then outward.
	for _, moment := range blockSearchOrder(cand.moment) {
		if at, ok := a.fitInBlock(moment, cand.duration, -1); ok {
			return at, true
		}
	}
	return 0, false
}

func (a *allocator) conflicts(want interval) bool {
	for _, busy := range a.busy {
		if want.overlaps(busy) {
			return true
		}
	}
	return false
}

// fitInBlock finds a free start inside the block. With a non-negative
// desired start it returns the viable position closest to it;
// otherwise the earliest.
func (a *allocator) fitInBlock(moment model.Moment, duration, desired int) (int, bool) {
	block, ok := a.blocks[moment]
	if !ok || block.end-block.start < duration {
		return 0, false
	}

	best, bestDistance, found := 0, 0, false
	for _, gap := range a.freeGaps(block) {
		if gap.end-gap.start < duration {
			continue
		}
		at := gap.start
		if desired >= 0 {
			// Closest viable start to the desired time within the gap.
			at = clamp(desired, gap.start, gap.end-duration)
		}
		distance := abs(at - desired)
		if !found || (desired >= 0 && distance < bestDistance) {
			best, bestDistance, found = at, distance, true
			if desired < 0 {
				break // earliest gap wins for flexible candidates
			}
		}
	}
	return best, found
}

// freeGaps lists the unoccupied intervals of a block, in order.
func (a *allocator) freeGaps(block interval) []interval {
	var gaps []interval
	cursor := block.start
	for _, busy := range a.busy {
		if busy.end <= cursor || busy.start >= block.end {
			continue
		}
		if busy.start > cursor {
			gaps = append(gaps, interval{start: cursor, end: min(busy.start, block.end)})
		}
		if busy.end > cursor {
			cursor = busy.end
		}
	}
	if cursor < block.end {
		gaps = append(gaps, interval{start: cursor, end: block.end})
	}
	return gaps
}

func (a *allocator) momentAt(minute int) model.Moment {
	for _, moment := range model.Moments {
		if block, ok := a.blocks[moment]; ok && minute >= block.start && minute < block.end {
			return moment
		}
	}
	return model.MomentMorning
}

// blockSearchOrder walks outward from the origin block: origin, next,
// previous, next-but-one, and so on.
func blockSearchOrder(origin model.Moment) []model.Moment {
	index := 0
	for i, moment := range model.Moments {
		if moment == origin {
			index = i
			break
		}
	}
	order := []model.Moment{model.Moments[index]}
	for step := 1; step < len(model.Moments); step++ {
		if index+step < len(model.Moments) {
			order = append(order, model.Moments[index+step])
		}
		if index-step >= 0 {
			order = append(order, model.Moments[index-step])
		}
	}
	return order
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
