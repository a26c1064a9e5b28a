package handler

import (
	"net/http"
	"strconv"

	"barberbook/internal/apperr"
	"barberbook/internal/auth"
	"barberbook/internal/domain"
)

// barbershopRequest is the payload for creating or updating a barbershop.
type barbershopRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Description string `json:"description" validate:"max=2000"`
	Address     string `json:"address" validate:"required,max=500"`
	Phone       string `json:"phone" validate:"max=20"`
}

// barbershopResponse is a barbershop plus per-requester personalization.
// Mine is true when the requester owns the shop; it is always false for
// anonymous requests, which is why the read routes use Optional auth.
type barbershopResponse struct {
	domain.Barbershop
	Mine bool `json:"mine"`
}

// listResponse wraps a page of results with pagination metadata.
type listResponse struct {
	Items      []barbershopResponse `json:"items"`
	Pagination pagination           `json:"pagination"`
}

type pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// CreateBarbershop handles POST /api/barbershops.
// Runs behind Require + RequireRole(barber, admin).
func (s *Server) CreateBarbershop(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		s.respond.Error(w, r, apperr.New(apperr.KindUnauthenticated, "Authentication required"))
		return
	}

	var req barbershopRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respond.Error(w, r, err)
		return
	}

	shop, err := s.shops.Create(r.Context(), requestToBarbershop(req), user.ID)
	if err != nil {
		s.respond.Error(w, r, err)
		return
	}

	s.respond.OK(w, http.StatusCreated, barbershopResponse{Barbershop: shop, Mine: true})
}

// ListBarbershops handles GET /api/barbershops.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListBarbershops(w http.ResponseWriter, r *http.Request) {
	params := domain.NewPaginationParams(queryInt(r, "page"), queryInt(r, "limit"))

	shops, total, err := s.shops.ListPaged(r.Context(), params)
	if err != nil {
		s.respond.Error(w, r, err)
		return
	}

	user, _ := auth.UserFrom(r.Context())
	items := make([]barbershopResponse, len(shops))
	for i, shop := range shops {
		items[i] = personalize(shop, user)
	}

	s.respond.OK(w, http.StatusOK, listResponse{
		Items:      items,
		Pagination: pagination{Page: params.Page, Limit: params.Limit, Total: total},
	})
}

// GetBarbershop handles GET /api/barbershops/{id}.
func (s *Server) GetBarbershop(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.respond.Error(w, r, err)
		return
	}

	shop, err := s.shops.GetByID(r.Context(), id)
	if err != nil {
		s.respond.Error(w, r, err)
		return
	}

	user, _ := auth.UserFrom(r.Context())
	s.respond.OK(w, http.StatusOK, personalize(shop, user))
}

// UpdateBarbershop handles PUT /api/barbershops/{id}.
// Runs behind Require + RequireOwnership(LocatorBarbershop).
func (s *Server) UpdateBarbershop(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.respond.Error(w, r, err)
		return
	}

	var req barbershopRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respond.Error(w, r, err)
		return
	}

	shop := requestToBarbershop(req)
	shop.ID = id

	updated, err := s.shops.Update(r.Context(), shop)
	if err != nil {
		s.respond.Error(w, r, err)
		return
	}

	user, _ := auth.UserFrom(r.Context())
	s.respond.OK(w, http.StatusOK, personalize(updated, user))
}

// DeleteBarbershop handles DELETE /api/barbershops/{id}.
// Runs behind Require + RequireOwnership(LocatorBarbershop).
func (s *Server) DeleteBarbershop(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.respond.Error(w, r, err)
		return
	}

	if err := s.shops.Delete(r.Context(), id); err != nil {
		s.respond.Error(w, r, err)
		return
	}

	s.respond.NoContent(w)
}

// --- mapping helpers --------------------------------------------------------

func requestToBarbershop(req barbershopRequest) domain.Barbershop {
	return domain.Barbershop{
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		Phone:       req.Phone,
	}
}

// personalize flags shops the requesting user owns. Admins see every shop
// as theirs to match the ownership gate's bypass.
func personalize(shop domain.Barbershop, user *domain.User) barbershopResponse {
	mine := user != nil && (shop.OwnerID == user.ID || user.Role == domain.RoleAdmin)
	return barbershopResponse{Barbershop: shop, Mine: mine}
}

// queryInt parses an optional integer query parameter. Absent or malformed
// values return nil so pagination falls back to its defaults.
func queryInt(r *http.Request, name string) *int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}
