package httpapi

import (
	"net/http"

	"github.com/vttlabs/lifeos/internal/model"
	"github.com/vttlabs/lifeos/internal/service"
)

type projectRequest struct {
	Name       string              `json:"name"`
	DomainID   *string             `json:"domain_id"`
	Status     model.ProjectStatus `json:"status"`
	StartDate  string              `json:"start_date"`
	TargetDate string              `json:"target_date"`
}

func (req projectRequest) input() service.ProjectInput {
	return service.ProjectInput{
		Name:       req.Name,
		DomainID:   req.DomainID,
		Status:     req.Status,
		StartDate:  req.StartDate,
		TargetDate: req.TargetDate,
	}
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	projects, err := s.projects.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, projects)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req projectRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	project, err := s.projects.Create(r.Context(), user.ID, req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, project)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	project, err := s.projects.Get(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, project)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req projectRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	project, err := s.projects.Update(r.Context(), user.ID, r.PathValue("id"), req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, project)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if err := s.projects.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]bool{"deleted": true})
}
