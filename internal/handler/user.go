package handler

import (
	"net/http"
)

// GetUser handles GET /api/users/{id}.
// Runs behind Require + RequireOwnership(LocatorSelf): a user can read their
// own record, an admin can read anyone's.
func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.respond.Error(w, r, err)
		return
	}

	user, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		s.respond.Error(w, r, err)
		return
	}

	s.respond.OK(w, http.StatusOK, user)
}
