package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/vttlabs/lifeos/internal/apperr"
	"github.com/vttlabs/lifeos/internal/model"
	"github.com/vttlabs/lifeos/internal/recurrence"
	"github.com/vttlabs/lifeos/internal/repository"
)

const dateLayout = "2006-01-02"

// TemplateInput carries the user-editable template fields.
type TemplateInput struct {
	Name            string
	DomainID        *string
	CategoryMoment  model.Moment
	CategoryType    string
	Priority        model.Priority
	IsFlexible      bool
	TargetValue     *float64
	Unit            string
	DurationMinutes int
	PreferredStart  string
	RecurrenceRule  string
}

// TrackingInput carries the optional fields recorded when acting on an
// instance.
type TrackingInput struct {
	ActualValue *float64
	MoodBefore  *int
	MoodAfter   *int
	EnergyLevel *int
	Notes       string
}

// RoutineService owns templates, expansion and the instance state
// machine. Completions and skips feed the streak tracker.
type RoutineService struct {
	routines *repository.RoutineRepository
	streaks  *StreakService
	now      func() time.Time
}

func NewRoutineService(routines *repository.RoutineRepository, streaks *StreakService) *RoutineService {
	return &RoutineService{routines: routines, streaks: streaks, now: time.Now}
}

func (s *RoutineService) CreateTemplate(ctx context.Context, userID string, input TemplateInput) (*model.RoutineTemplate, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperr.New(apperr.ValidationError, "template name is required")
	}
	if input.CategoryMoment != "" && !input.CategoryMoment.Valid() {
		return nil, apperr.New(apperr.ValidationError, "unknown moment %q", input.CategoryMoment)
	}
	if _, err := recurrence.Parse(input.RecurrenceRule); err != nil {
		return nil, apperr.Wrap(apperr.ValidationError, err, "invalid recurrence rule")
	}

	template := model.RoutineTemplate{
		UserID:          userID,
		DomainID:        input.DomainID,
		Name:            strings.TrimSpace(input.Name),
		CategoryMoment:  input.CategoryMoment,
		CategoryType:    input.CategoryType,
		Priority:        priorityOrDefault(input.Priority),
		IsFlexible:      input.IsFlexible,
		IsActive:        true,
		TargetValue:     input.TargetValue,
		Unit:            input.Unit,
		DurationMinutes: input.DurationMinutes,
		PreferredStart:  input.PreferredStart,
		RecurrenceRule:  input.RecurrenceRule,
	}
	if err := s.routines.CreateTemplate(ctx, &template); err != nil {
		return nil, apperr.FromDB(err, "template")
	}
	return &template, nil
}

func (s *RoutineService) UpdateTemplate(ctx context.Context, userID, id string, input TemplateInput) (*model.RoutineTemplate, error) {
	template, err := s.routines.FindTemplate(ctx, userID, id)
	if err != nil {
		return nil, apperr.FromDB(err, "template")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperr.New(apperr.ValidationError, "template name is required")
	}
	if _, err := recurrence.Parse(input.RecurrenceRule); err != nil {
		return nil, apperr.Wrap(apperr.ValidationError, err, "invalid recurrence rule")
	}

	template.Name = strings.TrimSpace(input.Name)
	template.DomainID = input.DomainID
	template.CategoryMoment = input.CategoryMoment
	template.CategoryType = input.CategoryType
	template.Priority = priorityOrDefault(input.Priority)
	template.IsFlexible = input.IsFlexible
	template.TargetValue = input.TargetValue
	template.Unit = input.Unit
	template.DurationMinutes = input.DurationMinutes
	template.PreferredStart = input.PreferredStart
	template.RecurrenceRule = input.RecurrenceRule

	if err := s.routines.SaveTemplate(ctx, template); err != nil {
		return nil, apperr.FromDB(err, "template")
	}
	return template, nil
}

func (s *RoutineService) ListTemplates(ctx context.Context, userID string, activeOnly bool) ([]model.RoutineTemplate, error) {
	templates, err := s.routines.ListTemplates(ctx, userID, activeOnly)
	if err != nil {
		return nil, apperr.FromDB(err, "templates")
	}
	return templates, nil
}

// RemoveTemplate hard-deletes a template that never expanded, and
// soft-deactivates one with instance history.
func (s *RoutineService) RemoveTemplate(ctx context.Context, userID, id string) (*model.RoutineTemplate, error) {
	template, err := s.routines.FindTemplate(ctx, userID, id)
	if err != nil {
		return nil, apperr.FromDB(err, "template")
	}
	hasInstances, err := s.routines.TemplateHasInstances(ctx, template.ID)
	if err != nil {
		return nil, apperr.FromDB(err, "template")
	}
	if !hasInstances {
		if err := s.routines.DeleteTemplate(ctx, userID, id); err != nil {
			return nil, apperr.FromDB(err, "template")
		}
		return nil, nil
	}
	template.IsActive = false
	if err := s.routines.SaveTemplate(ctx, template); err != nil {
		return nil, apperr.FromDB(err, "template")
	}
	return template, nil
}

// ExpandForDate creates pending instances for every active template
// whose recurrence rule matches the date. Re-running is idempotent:
// the unique (template, date) index swallows duplicates.
func (s *RoutineService) ExpandForDate(ctx context.Context, userID, date string) ([]model.RoutineInstance, error) {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, apperr.New(apperr.ValidationError, "invalid date %q", date)
	}
	templates, err := s.routines.ListTemplates(ctx, userID, true)
	if err != nil {
		return nil, apperr.FromDB(err, "templates")
	}

	var created []model.RoutineInstance
	for _, template := range templates {
		matches, err := recurrence.MatchesDate(template.RecurrenceRule, template.CreatedAt, day)
		if err != nil || !matches {
			continue
		}
		instance := model.RoutineInstance{
			UserID:        userID,
			TemplateID:    template.ID,
			ScheduledDate: date,
			Status:        model.InstancePending,
		}
		if template.PreferredStart != "" && template.DurationMinutes > 0 {
			instance.ScheduledStart = template.PreferredStart
			instance.ScheduledEnd = addMinutes(template.PreferredStart, template.DurationMinutes)
		}
		if err := s.routines.CreateInstance(ctx, &instance); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue // already expanded
			}
			return nil, apperr.FromDB(err, "instance")
		}
		created = append(created, instance)
	}
	return created, nil
}

// ExpandRange expands each date in [from, from+days).
func (s *RoutineService) ExpandRange(ctx context.Context, userID string, from time.Time, days int) error {
	for i := 0; i < days; i++ {
		date := from.AddDate(0, 0, i).Format(dateLayout)
		if _, err := s.ExpandForDate(ctx, userID, date); err != nil {
			return err
		}
	}
	return nil
}

func (s *RoutineService) ListInstances(ctx context.Context, userID, date string) ([]model.RoutineInstance, error) {
	instances, err := s.routines.ListInstancesByDate(ctx, userID, date)
	if err != nil {
		return nil, apperr.FromDB(err, "instances")
	}
	return instances, nil
}

// Complete moves a pending instance to completed, computes the
// completion score and extends the streak.
func (s *RoutineService) Complete(ctx context.Context, userID, id string, tracking TrackingInput) (*model.RoutineInstance, error) {
	return s.finish(ctx, userID, id, model.InstanceCompleted, tracking)
}

// Partial is the same contract as Complete with a partial status. It
// keeps the streak alive but analytics count it separately.
func (s *RoutineService) Partial(ctx context.Context, userID, id string, tracking TrackingInput) (*model.RoutineInstance, error) {
	return s.finish(ctx, userID, id, model.InstancePartial, tracking)
}

func (s *RoutineService) finish(ctx context.Context, userID, id string, status model.InstanceStatus, tracking TrackingInput) (*model.RoutineInstance, error) {
	instance, err := s.routines.FindInstance(ctx, userID, id)
	if err != nil {
		return nil, apperr.FromDB(err, "instance")
	}
	if instance.Terminal() {
		return nil, apperr.New(apperr.InvalidState, "instance is already %s", instance.Status)
	}
	if instance.ScheduledDate < s.now().Format(dateLayout) {
		return nil, apperr.New(apperr.InvalidState, "instance date has passed; it can no longer be acted on")
	}

	template, err := s.routines.FindTemplate(ctx, userID, instance.TemplateID)
	if err != nil {
		return nil, apperr.FromDB(err, "template")
	}

	now := s.now()
	score := completionScore(template.TargetValue, tracking.ActualValue)
	updates := map[string]interface{}{
		"status":           status,
		"actual_end":       now,
		"completion_score": score,
	}
	if tracking.ActualValue != nil {
		updates["actual_value"] = *tracking.ActualValue
	}
	if tracking.MoodBefore != nil {
		updates["mood_before"] = *tracking.MoodBefore
	}
	if tracking.MoodAfter != nil {
		updates["mood_after"] = *tracking.MoodAfter
	}
	if tracking.EnergyLevel != nil {
		updates["energy_level"] = *tracking.EnergyLevel
	}
	if tracking.Notes != "" {
		updates["notes"] = tracking.Notes
	}

	affected, err := s.routines.TransitionInstance(ctx, instance.ID, updates)
	if err != nil {
		return nil, apperr.FromDB(err, "instance")
	}
	if affected == 0 {
		// Lost the race: someone else acted on it first.
		return nil, apperr.New(apperr.InvalidState, "instance was already acted on")
	}

	if _, err := s.streaks.RecordCompletion(ctx, userID, instance.TemplateID, instance.ScheduledDate); err != nil {
		return nil, err
	}

	instance, err = s.routines.FindInstance(ctx, userID, id)
	if err != nil {
		return nil, apperr.FromDB(err, "instance")
	}
	return instance, nil
}

// Skip moves a pending instance to skipped. A reason is mandatory and
// the current streak resets.
func (s *RoutineService) Skip(ctx context.Context, userID, id, reason string) (*model.RoutineInstance, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperr.New(apperr.ValidationError, "skip reason is required")
	}
	instance, err := s.routines.FindInstance(ctx, userID, id)
	if err != nil {
		return nil, apperr.FromDB(err, "instance")
	}
	if instance.Terminal() {
		return nil, apperr.New(apperr.InvalidState, "instance is already %s", instance.Status)
	}
	if instance.ScheduledDate < s.now().Format(dateLayout) {
		return nil, apperr.New(apperr.InvalidState, "instance date has passed; it can no longer be acted on")
	}

	affected, err := s.routines.TransitionInstance(ctx, instance.ID, map[string]interface{}{
		"status":      model.InstanceSkipped,
		"skip_reason": strings.TrimSpace(reason),
	})
	if err != nil {
		return nil, apperr.FromDB(err, "instance")
	}
	if affected == 0 {
		return nil, apperr.New(apperr.InvalidState, "instance was already acted on")
	}

	if _, err := s.streaks.RecordSkip(ctx, userID, instance.TemplateID); err != nil {
		return nil, err
	}

	instance, err = s.routines.FindInstance(ctx, userID, id)
	if err != nil {
		return nil, apperr.FromDB(err, "instance")
	}
	return instance, nil
}

// Amend backfills notes and after-the-fact mood on a terminal
// instance. Allowed only while the scheduled day has not fully passed.
func (s *RoutineService) Amend(ctx context.Context, userID, id string, notes string, moodAfter *int) (*model.RoutineInstance, error) {
	instance, err := s.routines.FindInstance(ctx, userID, id)
	if err != nil {
		return nil, apperr.FromDB(err, "instance")
	}
	today := s.now().Format(dateLayout)
	if instance.ScheduledDate < today {
		return nil, apperr.New(apperr.InvalidState, "instance date has passed; only same-day amendments are allowed")
	}

	updates := map[string]interface{}{}
	if notes != "" {
		updates["notes"] = notes
	}
	if moodAfter != nil {
		updates["mood_after"] = *moodAfter
	}
	if len(updates) == 0 {
		return instance, nil
	}
	if err := s.routines.AmendInstance(ctx, instance.ID, updates); err != nil {
		return nil, apperr.FromDB(err, "instance")
	}
	instance, err = s.routines.FindInstance(ctx, userID, id)
	if err != nil {
		return nil, apperr.FromDB(err, "instance")
	}
	return instance, nil
}

// LinkTask records that a task was worked on during an instance.
func (s *RoutineService) LinkTask(ctx context.Context, userID, instanceID, taskID string, minutes int, notes string) error {
	if _, err := s.routines.FindInstance(ctx, userID, instanceID); err != nil {
		return apperr.FromDB(err, "instance")
	}
	link := model.RoutineInstanceTask{
		InstanceID:       instanceID,
		TaskID:           taskID,
		TimeSpentMinutes: minutes,
		Notes:            notes,
	}
	if err := s.routines.LinkTask(ctx, &link); err != nil {
		return apperr.FromDB(err, "instance task link")
	}
	return nil
}

// LinkedTasks lists the tasks worked on during an instance.
func (s *RoutineService) LinkedTasks(ctx context.Context, userID, instanceID string) ([]model.RoutineInstanceTask, error) {
	if _, err := s.routines.FindInstance(ctx, userID, instanceID); err != nil {
		return nil, apperr.FromDB(err, "instance")
	}
	links, err := s.routines.ListLinkedTasks(ctx, instanceID)
	if err != nil {
		return nil, apperr.FromDB(err, "instance task links")
	}
	return links, nil
}

// completionScore is 100 when nothing is tracked, else the capped
// percentage of target reached.
func completionScore(target, actual *float64) int {
	if target == nil || actual == nil || *target <= 0 {
		return 100
	}
	score := int(math.Round(*actual / *target * 100))
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

func priorityOrDefault(p model.Priority) model.Priority {
	switch p {
	case model.PriorityHigh, model.PriorityMedium, model.PriorityLow:
		return p
	}
	return model.PriorityMedium
}

// addMinutes shifts an "HH:MM" clock value, clamping at end of day.
func addMinutes(clock string, minutes int) string {
	start, err := parseClock(clock)
	if err != nil {
		return clock
	}
	end := start + minutes
	if end > 24*60-1 {
		end = 24*60 - 1
	}
	return formatClock(end)
}

func parseClock(clock string) (int, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", clock, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
