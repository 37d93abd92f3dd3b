package httpapi

import (
	"net/http"
	"strings"

	"github.com/vttlabs/lifeos/internal/model"
	"github.com/vttlabs/lifeos/internal/service"
)

type taskRequest struct {
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	DomainID         *string        `json:"domain_id"`
	ProjectID        *string        `json:"project_id"`
	ParentTaskID     *string        `json:"parent_task_id"`
	Priority         model.Priority `json:"priority"`
	DueDate          string         `json:"due_date"`
	DueTime          string         `json:"due_time"`
	ScheduledDate    string         `json:"scheduled_date"`
	EstimatedMinutes int            `json:"estimated_minutes"`
	IsDeadlineStrict bool           `json:"is_deadline_strict"`
}

func (req taskRequest) input() service.TaskInput {
	return service.TaskInput{
		Title:            req.Title,
		Description:      req.Description,
		DomainID:         req.DomainID,
		ProjectID:        req.ProjectID,
		ParentTaskID:     req.ParentTaskID,
		Priority:         req.Priority,
		DueDate:          req.DueDate,
		DueTime:          req.DueTime,
		ScheduledDate:    req.ScheduledDate,
		EstimatedMinutes: req.EstimatedMinutes,
		IsDeadlineStrict: req.IsDeadlineStrict,
	}
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var statuses []model.TaskStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, status := range strings.Split(raw, ",") {
			statuses = append(statuses, model.TaskStatus(strings.TrimSpace(status)))
		}
	}
	tasks, err := s.tasks.List(r.Context(), user.ID, statuses)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req taskRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	task, err := s.tasks.Create(r.Context(), user.ID, req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, task)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	task, err := s.tasks.Get(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req taskRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	task, err := s.tasks.Update(r.Context(), user.ID, r.PathValue("id"), req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, task)
}

func (s *Server) handleUpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req struct {
		Status model.TaskStatus `json:"status"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	task, err := s.tasks.UpdateStatus(r.Context(), user.ID, r.PathValue("id"), req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if err := s.tasks.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleGetTimer(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	state, err := s.timers.Get(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, state)
}

func (s *Server) handleStartTimer(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	state, err := s.timers.Start(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, state)
}

func (s *Server) handlePauseTimer(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	state, err := s.timers.Pause(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, state)
}

func (s *Server) handleStopTimer(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	state, err := s.timers.Stop(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, state)
}
