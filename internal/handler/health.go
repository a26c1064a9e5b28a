package handler

import "net/http"

// GetHealth handles GET /healthz.
// It returns HTTP 200 with a success envelope when the server is running.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.respond.OK(w, http.StatusOK, map[string]string{"status": "ok"})
}
