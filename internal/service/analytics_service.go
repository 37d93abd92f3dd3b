package service

import (
	"context"
	"math"
	"time"

	"github.com/vttlabs/lifeos/internal/apperr"
	"github.com/vttlabs/lifeos/internal/model"
	"github.com/vttlabs/lifeos/internal/repository"
)

// WeeklyStats is the seven-day rollup.
type WeeklyStats struct {
	WeekStart          string         `json:"week_start"`
	WeekEnd            string         `json:"week_end"`
	ScheduledInstances int            `json:"scheduled_instances"`
	CompletedInstances int            `json:"completed_instances"`
	PartialInstances   int            `json:"partial_instances"`
	SkippedInstances   int            `json:"skipped_instances"`
	CompletionRate     float64        `json:"completion_rate"`
	MinutesByDomain    map[string]int `json:"minutes_by_domain"`
	DailyActivity      map[string]int `json:"daily_activity"`
}

// OverviewStats is the dashboard snapshot.
type OverviewStats struct {
	ActiveTemplates int `json:"active_templates"`
	OpenTasks       int `json:"open_tasks"`
	TodayCompleted  int `json:"today_completed"`
	TodayPending    int `json:"today_pending"`
	TotalStreakDays int `json:"total_streak_days"`
	LongestStreak   int `json:"longest_streak"`
}

// AnalyticsService derives read-only rollups from instances and
// tasks. Nothing is cached; every call recomputes from the store.
type AnalyticsService struct {
	routines *repository.RoutineRepository
	tasks    *repository.TaskRepository
	streaks  *repository.StreakRepository
	now      func() time.Time
}

func NewAnalyticsService(
	routines *repository.RoutineRepository,
	tasks *repository.TaskRepository,
	streaks *repository.StreakRepository,
) *AnalyticsService {
	return &AnalyticsService{routines: routines, tasks: tasks, streaks: streaks, now: time.Now}
}

// Weekly computes the rollup for the seven days starting at weekStart
// (YYYY-MM-DD), defaulting to the seven days ending today.
func (s *AnalyticsService) Weekly(ctx context.Context, userID, weekStart string) (*WeeklyStats, error) {
	var start time.Time
	if weekStart == "" {
		start = s.now().AddDate(0, 0, -6)
	} else {
		parsed, err := time.Parse(dateLayout, weekStart)
		if err != nil {
			return nil, apperr.New(apperr.ValidationError, "invalid week start %q", weekStart)
		}
		start = parsed
	}
	from := start.Format(dateLayout)
	to := start.AddDate(0, 0, 6).Format(dateLayout)

	stats := &WeeklyStats{
		WeekStart:       from,
		WeekEnd:         to,
		MinutesByDomain: map[string]int{},
		DailyActivity:   map[string]int{},
	}

	instances, err := s.routines.ListInstancesBetween(ctx, userID, from, to)
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
		stats.ScheduledInstances++
		switch instance.Status {
		case model.InstanceCompleted:
			stats.CompletedInstances++
			stats.DailyActivity[instance.ScheduledDate]++
		case model.InstancePartial:
			stats.PartialInstances++
		case model.InstanceSkipped:
			stats.SkippedInstances++
		}
		if instance.Status == model.InstanceCompleted || instance.Status == model.InstancePartial {
			template := templateByID[instance.TemplateID]
			if template.DomainID != nil {
				stats.MinutesByDomain[*template.DomainID] += instanceMinutes(instance, template)
			}
		}
	}

	doneTasks, err := s.tasks.ListCompletedBetween(ctx, userID, from, to)
	if err != nil {
		return nil, apperr.FromDB(err, "tasks")
	}
	for _, task := range doneTasks {
		if task.CompletedAt != nil {
			stats.DailyActivity[task.CompletedAt.Format(dateLayout)]++
		}
		if task.DomainID != nil && task.ActualMinutes > 0 {
			stats.MinutesByDomain[*task.DomainID] += task.ActualMinutes
		}
	}

	if stats.ScheduledInstances > 0 {
		rate := float64(stats.CompletedInstances) / float64(stats.ScheduledInstances) * 100
		stats.CompletionRate = math.Round(rate*100) / 100
	}
	return stats, nil
}

// Overview computes the dashboard counters for today.
func (s *AnalyticsService) Overview(ctx context.Context, userID string) (*OverviewStats, error) {
	stats := &OverviewStats{}

	templates, err := s.routines.ListTemplates(ctx, userID, true)
	if err != nil {
		return nil, apperr.FromDB(err, "templates")
	}
	stats.ActiveTemplates = len(templates)

	openTasks, err := s.tasks.ListByUser(ctx, userID, []model.TaskStatus{
		model.TaskBacklog, model.TaskTodo, model.TaskInProgress, model.TaskBlocked,
	})
	if err != nil {
		return nil, apperr.FromDB(err, "tasks")
	}
	stats.OpenTasks = len(openTasks)

	today := s.now().Format(dateLayout)
	instances, err := s.routines.ListInstancesByDate(ctx, userID, today)
	if err != nil {
		return nil, apperr.FromDB(err, "instances")
	}
	for _, instance := range instances {
		switch instance.Status {
		case model.InstanceCompleted, model.InstancePartial:
			stats.TodayCompleted++
		case model.InstancePending:
			stats.TodayPending++
		}
	}

	streaks, err := s.streaks.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.FromDB(err, "streaks")
	}
	for _, streak := range streaks {
		stats.TotalStreakDays += streak.CurrentStreak
		if streak.LongestStreak > stats.LongestStreak {
			stats.LongestStreak = streak.LongestStreak
		}
	}
	return stats, nil
}

// instanceMinutes prefers the actually tracked window, falling back
// to the template's nominal duration.
func instanceMinutes(instance model.RoutineInstance, template model.RoutineTemplate) int {
	if instance.ActualStart != nil && instance.ActualEnd != nil {
		minutes := int(instance.ActualEnd.Sub(*instance.ActualStart).Minutes())
		if minutes > 0 {
			return minutes
		}
	}
	if template.DurationMinutes > 0 {
		return template.DurationMinutes
	}
	return 0
}
