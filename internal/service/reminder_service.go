package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/vttlabs/lifeos/internal/apperr"
	"github.com/vttlabs/lifeos/internal/model"
	"github.com/vttlabs/lifeos/internal/repository"
)

// ReminderService builds the human-readable daily summary pushed to
// users: the day's plan slots plus any overdue strict-deadline tasks.
type ReminderService struct {
	plans    *repository.PlanRepository
	routines *repository.RoutineRepository
	tasks    *repository.TaskRepository
}

func NewReminderService(plans *repository.PlanRepository, routines *repository.RoutineRepository, tasks *repository.TaskRepository) *ReminderService {
	return &ReminderService{plans: plans, routines: routines, tasks: tasks}
}

// DailySummary renders the HTML summary for one user and date.
func (s *ReminderService) DailySummary(ctx context.Context, user model.User, now time.Time) (string, error) {
	date := now.Format(dateLayout)

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily plan</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("Mon, 02 Jan 2006")))

	plan, err := s.plans.FindByDate(ctx, user.ID, date)
	switch {
	case err == nil:
		s.writeSlots(ctx, &builder, user.ID, date, plan)
	case errors.Is(err, gorm.ErrRecordNotFound):
		builder.WriteString("— no plan generated for today\n")
	default:
		return "", apperr.FromDB(err, "plan")
	}

	overdue, err := s.overdueStrict(ctx, user.ID, date)
	if err != nil {
		return "", err
	}
	if len(overdue) > 0 {
		builder.WriteString("\n⚠️ <b>Overdue deadlines</b>\n")
		for _, task := range overdue {
			builder.WriteString(fmt.Sprintf("• %s (due %s)\n",
				html.EscapeString(task.Title), task.DueDate))
		}
	}

	return strings.TrimSpace(builder.String()), nil
}

func (s *ReminderService) writeSlots(ctx context.Context, builder *strings.Builder, userID, date string, plan *model.GeneratedPlan) {
	if len(plan.Slots) == 0 {
		builder.WriteString("— the plan is empty\n")
		return
	}

	names := s.entityNames(ctx, userID, date)
	for _, slot := range plan.Slots {
		icon := "🟢"
		switch {
		case slot.WasExecuted:
			icon = "✅"
		case slot.SlotType == model.SlotBreak:
			icon = "☕"
		case slot.IsLocked:
			icon = "🔒"
		}
		label := names[slot.EntityID]
		if label == "" {
			label = string(slot.SlotType)
		}
		builder.WriteString(fmt.Sprintf("%s %s–%s %s\n",
			icon, slot.StartTime, slot.EndTime, html.EscapeString(label)))
	}
}

// entityNames maps the day's slot entity IDs to display names.
func (s *ReminderService) entityNames(ctx context.Context, userID, date string) map[string]string {
	names := map[string]string{}

	instances, err := s.routines.ListInstancesByDate(ctx, userID, date)
	if err == nil {
		templates, terr := s.routines.ListTemplates(ctx, userID, false)
		if terr == nil {
			byID := make(map[string]string, len(templates))
			for _, template := range templates {
				byID[template.ID] = template.Name
			}
			for _, instance := range instances {
				names[instance.ID] = byID[instance.TemplateID]
			}
		}
	}

	tasks, err := s.tasks.ListForDate(ctx, userID, date)
	if err == nil {
		for _, task := range tasks {
			names[task.ID] = task.Title
		}
	}
	return names
}

func (s *ReminderService) overdueStrict(ctx context.Context, userID, today string) ([]model.Task, error) {
	tasks, err := s.tasks.ListByUser(ctx, userID, []model.TaskStatus{
		model.TaskBacklog, model.TaskTodo, model.TaskInProgress, model.TaskBlocked,
	})
	if err != nil {
		return nil, apperr.FromDB(err, "tasks")
	}
	var overdue []model.Task
	for _, task := range tasks {
		if task.IsDeadlineStrict && task.DueDate != "" && task.DueDate < today {
			overdue = append(overdue, task)
		}
	}
	return overdue, nil
}
