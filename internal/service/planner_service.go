package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/vttlabs/lifeos/internal/apperr"
	"github.com/vttlabs/lifeos/internal/model"
	"github.com/vttlabs/lifeos/internal/repository"
)

// PlanPreferences is the caller-supplied generation input, merged with
// the user's persisted planner settings.
type PlanPreferences struct {
	WakeTime           string `json:"wake_time,omitempty"`
	SleepTime          string `json:"sleep_time,omitempty"`
	LunchBreakStart    string `json:"lunch_break_start,omitempty"`
	LunchBreakDuration int    `json:"lunch_break_duration,omitempty"`
}

// PlannerService produces the per-day GeneratedPlan: it expands the
// day's routine instances, gathers due tasks, and allocates them into
// conflict-free slots. It only ever writes PlanSlot rows; task and
// instance records are never mutated here.
type PlannerService struct {
	plans    *repository.PlanRepository
	routines *repository.RoutineRepository
	tasks    *repository.TaskRepository
	settings *repository.SettingsRepository
	expander *RoutineService
	now      func() time.Time
}

func NewPlannerService(
	plans *repository.PlanRepository,
	routines *repository.RoutineRepository,
	tasks *repository.TaskRepository,
	settings *repository.SettingsRepository,
	expander *RoutineService,
) *PlannerService {
	return &PlannerService{
		plans:    plans,
		routines: routines,
		tasks:    tasks,
		settings: settings,
		expander: expander,
		now:      time.Now,
	}
}

// GetPlanForDate returns the plan or a NotFound error.
func (s *PlannerService) GetPlanForDate(ctx context.Context, userID, date string) (*model.GeneratedPlan, error) {
	plan, err := s.plans.FindByDate(ctx, userID, date)
	if err != nil {
		return nil, apperr.FromDB(err, "plan")
	}
	return plan, nil
}

// Generate builds the plan for (user, date). With regenerate=false it
// fails with AlreadyExists when a plan is present; with
// regenerate=true it preserves locked and executed slots verbatim and
// recomputes everything else.
func (s *PlannerService) Generate(ctx context.Context, userID, date string, regenerate bool, prefs *PlanPreferences) (*model.GeneratedPlan, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, apperr.New(apperr.ValidationError, "invalid date %q", date)
	}

	existing, err := s.plans.FindByDate(ctx, userID, date)
	switch {
	case err == nil && !regenerate:
		return nil, apperr.New(apperr.AlreadyExists, "a plan for %s already exists", date)
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperr.FromDB(err, "plan")
	}

	settings, err := s.settings.GetOrDefault(ctx, userID)
	if err != nil {
		return nil, apperr.FromDB(err, "settings")
	}
	merged := mergePreferences(settings, prefs)

	// Make sure the day's instances exist before planning around them.
	if _, err := s.expander.ExpandForDate(ctx, userID, date); err != nil {
		return nil, err
	}

	var preserved []model.PlanSlot
	if existing != nil {
		for _, slot := range existing.Slots {
			if slot.IsLocked || slot.WasExecuted {
				preserved = append(preserved, slot)
			}
		}
	}

	busy, lunch := fixedIntervals(merged, preserved)
	candidates, err := s.collectCandidates(ctx, userID, date, settings, preserved)
	if err != nil {
		return nil, err
	}

	blocks := clampBlocks(settings.Blocks(), merged)
	placements := newAllocator(blocks, busy).place(candidates)
	slots := buildSlots(placements, preserved, lunch)

	params, _ := json.Marshal(merged)

	if existing == nil {
		plan := &model.GeneratedPlan{
			UserID:           userID,
			Date:             date,
			Status:           model.PlanDraft,
			GenerationParams: params,
		}
		if err := s.plans.CreateWithSlots(ctx, plan, slots); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Lost a concurrent generate; the winner's plan stands.
				return nil, apperr.Wrap(apperr.Conflict, err, "a concurrent generation won; refetch the plan")
			}
			return nil, apperr.FromDB(err, "plan")
		}
		return s.GetPlanForDate(ctx, userID, date)
	}

	existing.GenerationParams = params
	existing.Status = model.PlanDraft
	preservedIDs := make([]string, 0, len(preserved))
	for _, slot := range preserved {
		preservedIDs = append(preservedIDs, slot.ID)
	}
	newSlots := withoutPreserved(slots, preservedIDs)
	if err := s.plans.ReplaceSlots(ctx, existing, preservedIDs, newSlots); err != nil {
		return nil, apperr.FromDB(err, "plan")
	}

	plan, err := s.GetPlanForDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	ordered := orderedSlotIDs(plan.Slots)
	if err := s.plans.UpdateSlotOrder(ctx, plan.ID, ordered); err != nil {
		return nil, apperr.FromDB(err, "plan")
	}
	return s.GetPlanForDate(ctx, userID, date)
}

// collectCandidates derives the allocation inputs: non-skipped routine
// instances and plannable tasks for the date. Entities already covered
// by a preserved slot are excluded, as are entities with no derivable
// time at all.
func (s *PlannerService) collectCandidates(ctx context.Context, userID, date string, settings *model.PlannerSettings, preserved []model.PlanSlot) ([]candidate, error) {
	covered := make(map[string]bool, len(preserved))
	for _, slot := range preserved {
		if slot.EntityID != "" {
			covered[slot.EntityID] = true
		}
	}

	var candidates []candidate

	instances, err := s.routines.ListInstancesByDate(ctx, userID, date)
	if err != nil {
		return nil, apperr.FromDB(err, "instances")
	}
	templates, err := s.routines.ListTemplates(ctx, userID, false)
	if err != nil {
		return nil, apperr.FromDB(err, "templates")
	}
	templateByID := make(map[string]model.RoutineTemplate, len(templates))
	for _, template := range templates {
		templateByID[template.ID] = template
	}

	for _, instance := range instances {
		if instance.Status == model.InstanceSkipped || covered[instance.ID] {
			continue
		}
		template, ok := templateByID[instance.TemplateID]
		if !ok {
			continue
		}
		cand := candidate{
			entityType: model.EntityRoutine,
			entityID:   instance.ID,
			start:      -1,
			duration:   durationOrDefault(template.DurationMinutes),
			moment:     template.CategoryMoment,
			priority:   template.Priority,
			createdAt:  instance.CreatedAt,
		}
		if start, end, ok := window(instance.ScheduledStart, instance.ScheduledEnd); ok {
			cand.start = start
			cand.duration = end - start
			cand.reasoning = "scheduled window from routine instance"
		} else if template.CategoryMoment != "" && settings.AutoPositionRoutines {
			cand.reasoning = "auto-placed in " + string(template.CategoryMoment) + " block"
		} else {
			continue // no derivable time
		}
		candidates = append(candidates, cand)
	}

	tasks, err := s.tasks.ListForDate(ctx, userID, date)
	if err != nil {
		return nil, apperr.FromDB(err, "tasks")
	}
	for _, task := range tasks {
		if covered[task.ID] {
			continue
		}
		cand := candidate{
			entityType: model.EntityTask,
			entityID:   task.ID,
			start:      -1,
			duration:   durationOrDefault(task.EstimatedMinutes),
			priority:   task.Priority,
			createdAt:  task.CreatedAt,
		}
		if task.DueTime != "" {
			if start, err := parseClock(task.DueTime); err == nil {
				cand.start = start
				cand.reasoning = "due time from task"
			}
		}
		if cand.start < 0 {
			if !settings.AutoPositionTasks {
				continue
			}
			cand.moment = taskMoment(task.Priority)
			cand.reasoning = "auto-placed by priority"
		}
		candidates = append(candidates, cand)
	}

	return candidates, nil
}

// fixedIntervals returns the already-busy time: preserved slots plus
// the lunch break derived from preferences. The lunch slot itself is
// returned separately so it can be persisted as a locked break.
func fixedIntervals(prefs PlanPreferences, preserved []model.PlanSlot) ([]interval, *model.PlanSlot) {
	var busy []interval
	for _, slot := range preserved {
		if start, end, ok := window(slot.StartTime, slot.EndTime); ok {
			busy = append(busy, interval{start: start, end: end})
		}
	}

	var lunch *model.PlanSlot
	if prefs.LunchBreakStart != "" && prefs.LunchBreakDuration > 0 {
		if start, err := parseClock(prefs.LunchBreakStart); err == nil {
			end := start + prefs.LunchBreakDuration
			busy = append(busy, interval{start: start, end: end})
			lunch = &model.PlanSlot{
				SlotType:  model.SlotBreak,
				StartTime: formatClock(start),
				EndTime:   formatClock(end),
				IsLocked:  true,
			}
		}
	}
	return busy, lunch
}

// buildSlots turns placements plus fixed slots into the final ordered
// slot list.
func buildSlots(placements []placement, preserved []model.PlanSlot, lunch *model.PlanSlot) []model.PlanSlot {
	slots := append([]model.PlanSlot(nil), preserved...)
	if lunch != nil && !hasBreak(preserved) {
		slots = append(slots, *lunch)
	}
	for _, p := range placements {
		slotType := model.SlotRoutine
		if p.entityType == model.EntityTask {
			slotType = model.SlotTask
		}
		slots = append(slots, model.PlanSlot{
			SlotType:    slotType,
			EntityType:  p.entityType,
			EntityID:    p.entityID,
			StartTime:   formatClock(p.at),
			EndTime:     formatClock(p.at + p.duration),
			AIReasoning: p.reasoning,
		})
	}

	sortSlots(slots)
	for i := range slots {
		slots[i].SortOrder = i
	}
	return slots
}

func sortSlots(slots []model.PlanSlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].StartTime < slots[j].StartTime
	})
}

func hasBreak(slots []model.PlanSlot) bool {
	for _, slot := range slots {
		if slot.SlotType == model.SlotBreak {
			return true
		}
	}
	return false
}

func withoutPreserved(slots []model.PlanSlot, preservedIDs []string) []model.PlanSlot {
	keep := make(map[string]bool, len(preservedIDs))
	for _, id := range preservedIDs {
		keep[id] = true
	}
	var out []model.PlanSlot
	for _, slot := range slots {
		if slot.ID == "" || !keep[slot.ID] {
			out = append(out, slot)
		}
	}
	return out
}

func orderedSlotIDs(slots []model.PlanSlot) []string {
	sorted := append([]model.PlanSlot(nil), slots...)
	sortSlots(sorted)
	ids := make([]string, len(sorted))
	for i, slot := range sorted {
		ids[i] = slot.ID
	}
	return ids
}

func mergePreferences(settings *model.PlannerSettings, prefs *PlanPreferences) PlanPreferences {
	merged := PlanPreferences{
		WakeTime:           settings.WakeTime,
		SleepTime:          settings.SleepTime,
		LunchBreakStart:    settings.LunchBreakStart,
		LunchBreakDuration: settings.LunchBreakDuration,
	}
	if prefs == nil {
		return merged
	}
	if prefs.WakeTime != "" {
		merged.WakeTime = prefs.WakeTime
	}
	if prefs.SleepTime != "" {
		merged.SleepTime = prefs.SleepTime
	}
	if prefs.LunchBreakStart != "" {
		merged.LunchBreakStart = prefs.LunchBreakStart
	}
	if prefs.LunchBreakDuration > 0 {
		merged.LunchBreakDuration = prefs.LunchBreakDuration
	}
	return merged
}

// clampBlocks trims the allocation windows to the waking day, so
// nothing is placed before wake time or after sleep time. Blocks left
// empty by the trim are dropped. A missing or unparsable wake/sleep
// pair leaves the blocks as configured.
func clampBlocks(blocks map[model.Moment]model.TimeBlock, prefs PlanPreferences) map[model.Moment]model.TimeBlock {
	wake, sleep, ok := window(prefs.WakeTime, prefs.SleepTime)
	if !ok {
		return blocks
	}
	clamped := make(map[model.Moment]model.TimeBlock, len(blocks))
	for moment, block := range blocks {
		start, end, ok := window(block.Start, block.End)
		if !ok {
			continue
		}
		if start < wake {
			start = wake
		}
		if end > sleep {
			end = sleep
		}
		if end <= start {
			continue
		}
		clamped[moment] = model.TimeBlock{Start: formatClock(start), End: formatClock(end)}
	}
	return clamped
}

// window parses a slot's clock pair, requiring end after start.
func window(startClock, endClock string) (int, int, bool) {
	if startClock == "" || endClock == "" {
		return 0, 0, false
	}
	start, err1 := parseClock(startClock)
	end, err2 := parseClock(endClock)
	if err1 != nil || err2 != nil || end <= start {
		return 0, 0, false
	}
	return start, end, true
}

func durationOrDefault(minutes int) int {
	if minutes <= 0 {
		return 30
	}
	return minutes
}

// taskMoment picks the coarse block for a task without a due time:
// urgent work lands early in the day.
func taskMoment(priority model.Priority) model.Moment {
	switch priority {
	case model.PriorityHigh:
		return model.MomentMorning
	case model.PriorityLow:
		return model.MomentEvening
	default:
		return model.MomentAfternoon
	}
}
