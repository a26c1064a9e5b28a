package handler

import (
	"net/http"

	"barberbook/internal/apperr"
	"barberbook/internal/auth"
	"barberbook/internal/domain"
)

// registerRequest is the payload for POST /api/auth/register.
// Role is restricted to the self-assignable roles; admin accounts are
// provisioned out of band.
type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=client barber"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// authResponse is the payload returned by register and login.
type authResponse struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// Register handles POST /api/auth/register.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respond.Error(w, r, err)
		return
	}

	role := domain.RoleClient
	if req.Role != "" {
		role = domain.Role(req.Role)
	}

	user, tok, err := s.accounts.Register(r.Context(), req.Name, req.Email, req.Password, role)
	if err != nil {
		s.respond.Error(w, r, err)
		return
	}

	s.respond.OK(w, http.StatusCreated, authResponse{User: user, Token: tok})
}

// Login handles POST /api/auth/login.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respond.Error(w, r, err)
		return
	}

	user, tok, err := s.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respond.Error(w, r, loginError(err))
		return
	}

	s.respond.OK(w, http.StatusOK, authResponse{User: user, Token: tok})
}

// Me handles GET /api/auth/me. It runs behind Require; a missing context
// user means the route was wired without the middleware.
func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		s.respond.Error(w, r, apperr.New(apperr.KindUnauthenticated, "Authentication required"))
		return
	}
	s.respond.OK(w, http.StatusOK, user)
}
