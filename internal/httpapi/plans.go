package httpapi

import (
	"net/http"

	"github.com/vttlabs/lifeos/internal/service"
)

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	plan, err := s.planner.GetPlanForDate(r.Context(), user.ID, r.PathValue("date"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, plan)
}

func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req struct {
		Regenerate  bool                     `json:"regenerate"`
		Preferences *service.PlanPreferences `json:"preferences"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	plan, err := s.planner.Generate(r.Context(), user.ID, r.PathValue("date"), req.Regenerate, req.Preferences)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, plan)
}
