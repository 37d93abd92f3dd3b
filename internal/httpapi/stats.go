package httpapi

import (
	"net/http"

	"github.com/vttlabs/lifeos/internal/service"
)

func (s *Server) handleListStreaks(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	streaks, err := s.streaks.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, streaks)
}

func (s *Server) handleWeeklyStats(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	stats, err := s.analytics.Weekly(r.Context(), user.ID, r.URL.Query().Get("week_start"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, stats)
}

func (s *Server) handleOverviewStats(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	stats, err := s.analytics.Overview(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, stats)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	settings, err := s.settings.Get(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, settings)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req service.SettingsInput
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	settings, err := s.settings.Update(r.Context(), user.ID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, settings)
}
