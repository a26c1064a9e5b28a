// Package handler implements the HTTP handlers for the Barberbook API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (auth.go, barbershop.go, etc.) but all share the same Server struct
// so they can access its dependencies.
package handler

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"barberbook/internal/auth"
	"barberbook/internal/domain"
	"barberbook/internal/httpx"
)

// AuthServicer defines the account operations the auth handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type AuthServicer interface {
	Register(ctx context.Context, name, email, password string, role domain.Role) (domain.User, string, error)
	Login(ctx context.Context, email, password string) (domain.User, string, error)
}

// BarbershopServicer defines the barbershop operations the handlers depend on.
type BarbershopServicer interface {
	Create(ctx context.Context, shop domain.Barbershop, ownerID int64) (domain.Barbershop, error)
	GetByID(ctx context.Context, id int64) (domain.Barbershop, error)
	ListPaged(ctx context.Context, params domain.PaginationParams) ([]domain.Barbershop, int64, error)
	Update(ctx context.Context, shop domain.Barbershop) (domain.Barbershop, error)
	Delete(ctx context.Context, id int64) error
	SetImageURL(ctx context.Context, id int64, url string) error
}

// UserGetter loads a user's public record. Satisfied by repo.UserRepo.
type UserGetter interface {
	GetByID(ctx context.Context, id int64) (domain.User, error)
}

// UploadConfig bounds the image upload endpoint.
type UploadConfig struct {
	// Dir is the directory uploaded files are written to.
	Dir string
	// MaxBytes caps the size of a single uploaded file.
	MaxBytes int64
}

// Server implements all API endpoints. Wire it in main.go via Routes.
type Server struct {
	accounts AuthServicer
	shops    BarbershopServicer
	users    UserGetter
	uploads  UploadConfig
	validate *validator.Validate
	respond  *httpx.Responder
}

// NewServer constructs the Server with all its dependencies.
func NewServer(accounts AuthServicer, shops BarbershopServicer, users UserGetter, uploads UploadConfig, respond *httpx.Responder) *Server {
	return &Server{
		accounts: accounts,
		shops:    shops,
		users:    users,
		uploads:  uploads,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		respond:  respond,
	}
}

// Routes builds the route tree. The authorization middleware is threaded per
// route group: public reads run under Optional auth, every mutation runs
// under Require plus the role or ownership gate it needs.
func (s *Server) Routes(mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.Register)
			r.Post("/login", s.Login)
			r.With(mw.Require).Get("/me", s.Me)
		})

		r.Route("/barbershops", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(mw.Optional)
				r.Get("/", s.ListBarbershops)
				r.Get("/{id}", s.GetBarbershop)
			})
			r.Group(func(r chi.Router) {
				r.Use(mw.Require)
				r.With(mw.RequireRole(domain.RoleBarber, domain.RoleAdmin)).Post("/", s.CreateBarbershop)
				r.With(mw.RequireOwnership(domain.LocatorBarbershop)).Put("/{id}", s.UpdateBarbershop)
				r.With(mw.RequireOwnership(domain.LocatorBarbershop)).Delete("/{id}", s.DeleteBarbershop)
				r.With(mw.RequireOwnership(domain.LocatorBarbershop)).Post("/{id}/image", s.UploadBarbershopImage)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(mw.Require)
			r.With(mw.RequireOwnership(domain.LocatorSelf)).Get("/{id}", s.GetUser)
		})
	})

	return r
}
