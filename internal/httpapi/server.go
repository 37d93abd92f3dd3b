// Package httpapi exposes the planning core as a JSON API. Every
// response uses the {data, error} envelope; every route requires a
// bearer API token.
package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/vttlabs/lifeos/internal/repository"
	"github.com/vttlabs/lifeos/internal/service"
)

// Server wires the services behind the HTTP routes.
type Server struct {
	users     *repository.UserRepository
	domains   *service.DomainService
	routines  *service.RoutineService
	tasks     *service.TaskService
	timers    *service.TimerService
	projects  *service.ProjectService
	planner   *service.PlannerService
	streaks   *service.StreakService
	analytics *service.AnalyticsService
	settings  *service.SettingsService
	logger    *zap.Logger
}

func NewServer(
	users *repository.UserRepository,
	domains *service.DomainService,
	routines *service.RoutineService,
	tasks *service.TaskService,
	timers *service.TimerService,
	projects *service.ProjectService,
	planner *service.PlannerService,
	streaks *service.StreakService,
	analytics *service.AnalyticsService,
	settings *service.SettingsService,
	logger *zap.Logger,
) *Server {
	return &Server{
		users:     users,
		domains:   domains,
		routines:  routines,
		tasks:     tasks,
		timers:    timers,
		projects:  projects,
		planner:   planner,
		streaks:   streaks,
		analytics: analytics,
		settings:  settings,
		logger:    logger,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/domains", s.handleListDomains)
	mux.HandleFunc("POST /api/domains", s.handleCreateDomain)
	mux.HandleFunc("PUT /api/domains/{id}", s.handleUpdateDomain)
	mux.HandleFunc("DELETE /api/domains/{id}", s.handleDeleteDomain)

	mux.HandleFunc("GET /api/routines", s.handleListTemplates)
	mux.HandleFunc("POST /api/routines", s.handleCreateTemplate)
	mux.HandleFunc("PUT /api/routines/{id}", s.handleUpdateTemplate)
	mux.HandleFunc("DELETE /api/routines/{id}", s.handleRemoveTemplate)
	mux.HandleFunc("GET /api/routines/instances", s.handleListInstances)
	mux.HandleFunc("POST /api/routines/instances/{id}/complete", s.handleCompleteInstance)
	mux.HandleFunc("POST /api/routines/instances/{id}/partial", s.handlePartialInstance)
	mux.HandleFunc("POST /api/routines/instances/{id}/skip", s.handleSkipInstance)
	mux.HandleFunc("POST /api/routines/instances/{id}/amend", s.handleAmendInstance)
	mux.HandleFunc("GET /api/routines/instances/{id}/tasks", s.handleListInstanceTasks)
	mux.HandleFunc("POST /api/routines/instances/{id}/tasks", s.handleLinkInstanceTask)

	mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	mux.HandleFunc("GET /api/tasks/{id}", s.handleGetTask)
	mux.HandleFunc("PUT /api/tasks/{id}", s.handleUpdateTask)
	mux.HandleFunc("POST /api/tasks/{id}/status", s.handleUpdateTaskStatus)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.handleDeleteTask)
	mux.HandleFunc("GET /api/tasks/{id}/timer", s.handleGetTimer)
	mux.HandleFunc("POST /api/tasks/{id}/timer/start", s.handleStartTimer)
	mux.HandleFunc("POST /api/tasks/{id}/timer/pause", s.handlePauseTimer)
	mux.HandleFunc("POST /api/tasks/{id}/timer/stop", s.handleStopTimer)

	mux.HandleFunc("GET /api/projects", s.handleListProjects)
	mux.HandleFunc("POST /api/projects", s.handleCreateProject)
	mux.HandleFunc("GET /api/projects/{id}", s.handleGetProject)
	mux.HandleFunc("PUT /api/projects/{id}", s.handleUpdateProject)
	mux.HandleFunc("DELETE /api/projects/{id}", s.handleDeleteProject)

	mux.HandleFunc("GET /api/plans/{date}", s.handleGetPlan)
	mux.HandleFunc("POST /api/plans/{date}/generate", s.handleGeneratePlan)

	mux.HandleFunc("GET /api/streaks", s.handleListStreaks)
	mux.HandleFunc("GET /api/stats/weekly", s.handleWeeklyStats)
	mux.HandleFunc("GET /api/stats/overview", s.handleOverviewStats)

	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /api/settings", s.handleUpdateSettings)

	return s.withAuth(mux)
}
