package adapthttp

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) handleWorkoutList(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workouts.List(r.Context(), r.URL.Query().Get("day"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

func (s *Server) handleWorkoutComplete(w http.ResponseWriter, r *http.Request) {
	log, err := s.workouts.Complete(r.Context(), userFromContext(r.Context()).ID, mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, log)
}
