package adapthttp

import (
	"net/http"

	"fittrack/internal/domain"
)

type metricRequest struct {
	Kind  string `json:"metricType"`
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

func (s *Server) handleMetricCreate(w http.ResponseWriter, r *http.Request) {
	var req metricRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	kind, err := domain.ParseMetricKind(req.Kind)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	m, err := s.metrics.Record(r.Context(), userFromContext(r.Context()).ID, kind, req.Value, req.Unit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// handleMetricList returns the caller's metrics newest first, optionally
// narrowed by ?type=.
func (s *Server) handleMetricList(w http.ResponseWriter, r *http.Request) {
	var kind domain.MetricKind
	if t := r.URL.Query().Get("type"); t != "" {
		k, err := domain.ParseMetricKind(t)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		kind = k
	}

	ms, err := s.metrics.List(r.Context(), userFromContext(r.Context()).ID, kind)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ms)
}

func (s *Server) handleMetricHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kind, err := domain.ParseMetricKind(q.Get("type"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	limit := intQuery(r, "limit", 0)
	ms, err := s.metrics.History(r.Context(), userFromContext(r.Context()).ID, kind, limit, q.Get("unit"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ms)
}
