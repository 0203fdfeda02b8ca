package adapthttp

import (
	"net/http"

	"fittrack/internal/domain"
)

func (s *Server) handleActivityCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind  string  `json:"activityType"`
		Value float64 `json:"value"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	kind, err := domain.ParseActivityKind(req.Kind)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	a, err := s.activities.Log(r.Context(), userFromContext(r.Context()).ID, kind, req.Value)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleActivityList(w http.ResponseWriter, r *http.Request) {
	as, err := s.activities.ForDay(r.Context(), userFromContext(r.Context()).ID, r.URL.Query().Get("date"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, as)
}

func (s *Server) handleActivityHistory(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseActivityKind(r.URL.Query().Get("type"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	as, err := s.activities.History(r.Context(), userFromContext(r.Context()).ID, kind, intQuery(r, "limit", 0))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, as)
}

// handleSummaryDaily reports goal progress for the last ?days= days.
func (s *Server) handleSummaryDaily(w http.ResponseWriter, r *http.Request) {
	days := intQuery(r, "days", 7)
	out, err := s.summary.DailySummary(r.Context(), userFromContext(r.Context()).ID, days)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"goals": s.summary.Goals(),
		"days":  out,
	})
}
