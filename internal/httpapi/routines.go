package httpapi

import (
	"net/http"
	"time"

	"github.com/vttlabs/lifeos/internal/model"
	"github.com/vttlabs/lifeos/internal/service"
)

type templateRequest struct {
	Name            string         `json:"name"`
	DomainID        *string        `json:"domain_id"`
	CategoryMoment  model.Moment   `json:"category_moment"`
	CategoryType    string         `json:"category_type"`
	Priority        model.Priority `json:"priority"`
	IsFlexible      bool           `json:"is_flexible"`
	TargetValue     *float64       `json:"target_value"`
	Unit            string         `json:"unit"`
	DurationMinutes int            `json:"duration_minutes"`
	PreferredStart  string         `json:"preferred_start"`
	RecurrenceRule  string         `json:"recurrence_rule"`
}

func (req templateRequest) input() service.TemplateInput {
	return service.TemplateInput{
		Name:            req.Name,
		DomainID:        req.DomainID,
		CategoryMoment:  req.CategoryMoment,
		CategoryType:    req.CategoryType,
		Priority:        req.Priority,
		IsFlexible:      req.IsFlexible,
		TargetValue:     req.TargetValue,
		Unit:            req.Unit,
		DurationMinutes: req.DurationMinutes,
		PreferredStart:  req.PreferredStart,
		RecurrenceRule:  req.RecurrenceRule,
	}
}

type trackingRequest struct {
	ActualValue *float64 `json:"actual_value"`
	MoodBefore  *int     `json:"mood_before"`
	MoodAfter   *int     `json:"mood_after"`
	EnergyLevel *int     `json:"energy_level"`
	Notes       string   `json:"notes"`
}

func (req trackingRequest) input() service.TrackingInput {
	return service.TrackingInput{
		ActualValue: req.ActualValue,
		MoodBefore:  req.MoodBefore,
		MoodAfter:   req.MoodAfter,
		EnergyLevel: req.EnergyLevel,
		Notes:       req.Notes,
	}
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	activeOnly := r.URL.Query().Get("active") == "true"
	templates, err := s.routines.ListTemplates(r.Context(), user.ID, activeOnly)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, templates)
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req templateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	template, err := s.routines.CreateTemplate(r.Context(), user.ID, req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, template)
}

func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req templateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	template, err := s.routines.UpdateTemplate(r.Context(), user.ID, r.PathValue("id"), req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, template)
}

func (s *Server) handleRemoveTemplate(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	template, err := s.routines.RemoveTemplate(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if template == nil {
		writeData(w, http.StatusOK, map[string]bool{"deleted": true})
		return
	}
	writeData(w, http.StatusOK, template)
}

func (s *Server) handleListInstances(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	instances, err := s.routines.ListInstances(r.Context(), user.ID, date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, instances)
}

func (s *Server) handleCompleteInstance(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req trackingRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	instance, err := s.routines.Complete(r.Context(), user.ID, r.PathValue("id"), req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, instance)
}

func (s *Server) handlePartialInstance(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req trackingRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	instance, err := s.routines.Partial(r.Context(), user.ID, r.PathValue("id"), req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, instance)
}

func (s *Server) handleSkipInstance(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req struct {
		Reason string `json:"reason"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	instance, err := s.routines.Skip(r.Context(), user.ID, r.PathValue("id"), req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, instance)
}

func (s *Server) handleListInstanceTasks(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	links, err := s.routines.LinkedTasks(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, links)
}

func (s *Server) handleLinkInstanceTask(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req struct {
		TaskID           string `json:"task_id"`
		TimeSpentMinutes int    `json:"time_spent_minutes"`
		Notes            string `json:"notes"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.routines.LinkTask(r.Context(), user.ID, r.PathValue("id"), req.TaskID, req.TimeSpentMinutes, req.Notes); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]bool{"linked": true})
}

func (s *Server) handleAmendInstance(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req struct {
		Notes     string `json:"notes"`
		MoodAfter *int   `json:"mood_after"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	instance, err := s.routines.Amend(r.Context(), user.ID, r.PathValue("id"), req.Notes, req.MoodAfter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, instance)
}
