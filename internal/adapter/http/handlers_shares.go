package adapthttp

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) handleShareCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RecipientEmail string `json:"recipientEmail"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sh, err := s.shares.Create(r.Context(), userFromContext(r.Context()).ID, req.RecipientEmail)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sh)
}

func (s *Server) handleShareGet(w http.ResponseWriter, r *http.Request) {
	sh, err := s.shares.Get(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sh)
}

func (s *Server) handleShareImport(w http.ResponseWriter, r *http.Request) {
	ms, err := s.shares.Import(r.Context(), userFromContext(r.Context()).ID, mux.Vars(r)["code"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"imported": len(ms),
		"metrics":  ms,
	})
}
