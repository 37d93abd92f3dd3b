package httpapi

import (
	"net/http"

	"github.com/vttlabs/lifeos/internal/service"
)

type domainRequest struct {
	Name                string `json:"name"`
	Color               string `json:"color"`
	Icon                string `json:"icon"`
	SortOrder           int    `json:"sort_order"`
	IsDefault           bool   `json:"is_default"`
	DailyTargetMinutes  *int   `json:"daily_target_minutes"`
	WeeklyTargetMinutes *int   `json:"weekly_target_minutes"`
}

func (req domainRequest) input() service.DomainInput {
	return service.DomainInput{
		Name:                req.Name,
		Color:               req.Color,
		Icon:                req.Icon,
		SortOrder:           req.SortOrder,
		IsDefault:           req.IsDefault,
		DailyTargetMinutes:  req.DailyTargetMinutes,
		WeeklyTargetMinutes: req.WeeklyTargetMinutes,
	}
}

func (s *Server) handleListDomains(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	domains, err := s.domains.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, domains)
}

func (s *Server) handleCreateDomain(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req domainRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	domain, err := s.domains.Create(r.Context(), user.ID, req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, domain)
}

func (s *Server) handleUpdateDomain(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req domainRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	domain, err := s.domains.Update(r.Context(), user.ID, r.PathValue("id"), req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, domain)
}

func (s *Server) handleDeleteDomain(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if err := s.domains.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]bool{"deleted": true})
}
