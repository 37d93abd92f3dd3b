package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vttlabs/lifeos/internal/model"
	"github.com/vttlabs/lifeos/internal/repository"
)

// testEnv wires every service against one in-memory database.
type testEnv struct {
	db        *gorm.DB
	users     *repository.UserRepository
	domains   *DomainService
	routines  *RoutineService
	tasks     *TaskService
	timers    *TimerService
	projects  *ProjectService
	planner   *PlannerService
	streaks   *StreakService
	analytics *AnalyticsService
	settings  *SettingsService

	routineRepo  *repository.RoutineRepository
	taskRepo     *repository.TaskRepository
	planRepo     *repository.PlanRepository
	streakRepo   *repository.StreakRepository
	settingsRepo *repository.SettingsRepository

	userID string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := repository.NewDB(dsn)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the shared in-memory database alive
	// for the duration of the test.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	env := &testEnv{
		db:           db,
		users:        repository.NewUserRepository(db),
		routineRepo:  repository.NewRoutineRepository(db),
		taskRepo:     repository.NewTaskRepository(db),
		planRepo:     repository.NewPlanRepository(db),
		streakRepo:   repository.NewStreakRepository(db),
		settingsRepo: repository.NewSettingsRepository(db),
	}
	env.streaks = NewStreakService(env.streakRepo)
	env.domains = NewDomainService(repository.NewDomainRepository(db))
	env.routines = NewRoutineService(env.routineRepo, env.streaks)
	env.tasks = NewTaskService(env.taskRepo)
	env.timers = NewTimerService(env.taskRepo)
	env.projects = NewProjectService(repository.NewProjectRepository(db), env.taskRepo)
	env.planner = NewPlannerService(env.planRepo, env.routineRepo, env.taskRepo, env.settingsRepo, env.routines)
	env.analytics = NewAnalyticsService(env.routineRepo, env.taskRepo, env.streakRepo)
	env.settings = NewSettingsService(env.settingsRepo)

	user := &model.User{
		ID:       uuid.New().String(),
		Email:    "test@example.com",
		Name:     "Test User",
		APIToken: uuid.New().String(),
	}
	require.NoError(t, env.users.Create(context.Background(), user))
	env.userID = user.ID

	return env
}

// seedTemplate creates an active daily template.
func (env *testEnv) seedTemplate(t *testing.T, name string, mutate func(*TemplateInput)) *model.RoutineTemplate {
	t.Helper()
	input := TemplateInput{
		Name:            name,
		Priority:        model.PriorityMedium,
		DurationMinutes: 30,
		RecurrenceRule:  "FREQ=DAILY",
	}
	if mutate != nil {
		mutate(&input)
	}
	template, err := env.routines.CreateTemplate(context.Background(), env.userID, input)
	require.NoError(t, err)
	return template
}

// backdateTemplate shifts created_at so past dates can expand.
func (env *testEnv) backdateTemplate(t *testing.T, templateID string, days int) {
	t.Helper()
	err := env.db.Model(&model.RoutineTemplate{}).
		Where("id = ?", templateID).
		UpdateColumn("created_at", time.Now().AddDate(0, 0, -days)).Error
	require.NoError(t, err)
}

// seedInstance expands the template for the date and returns the
// pending instance.
func (env *testEnv) seedInstance(t *testing.T, templateID, date string) *model.RoutineInstance {
	t.Helper()
	ctx := context.Background()
	_, err := env.routines.ExpandForDate(ctx, env.userID, date)
	require.NoError(t, err)
	instances, err := env.routines.ListInstances(ctx, env.userID, date)
	require.NoError(t, err)
	for i := range instances {
		if instances[i].TemplateID == templateID {
			return &instances[i]
		}
	}
	t.Fatalf("no instance for template %s on %s", templateID, date)
	return nil
}

// onDate pins the routine clock to noon of date while fn runs, so
// past occurrences can be acted on as if on their own day.
func (env *testEnv) onDate(t *testing.T, date string, fn func()) {
	t.Helper()
	day, err := time.Parse("2006-01-02", date)
	require.NoError(t, err)
	saved := env.routines.now
	env.routines.now = func() time.Time { return day.Add(12 * time.Hour) }
	defer func() { env.routines.now = saved }()
	fn()
}

func today() string {
	return time.Now().Format("2006-01-02")
}

func daysFromNow(days int) string {
	return time.Now().AddDate(0, 0, days).Format("2006-01-02")
}

func floatPtr(v float64) *float64 { return &v }
