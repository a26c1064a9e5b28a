// Package auth implements the request authorization pipeline: bearer token
// extraction, verification, identity loading, and the role and ownership
// gates. Every protected route passes through Require (or Optional) before
// any gate; the gates fail closed when no identity is attached.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"barberbook/internal/apperr"
	"barberbook/internal/domain"
	"barberbook/internal/httpx"
	"barberbook/internal/token"
)

// ctxKey is the private type for the request-context user entry.
type ctxKey int

const userKey ctxKey = 0

// WithUser returns a context carrying the authenticated user.
// Exposed for handler tests; production code attaches users only here.
func WithUser(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFrom returns the authenticated user attached to the context, if any.
// The second return is false for anonymous requests (no token on an
// Optional route, or no auth middleware at all).
func UserFrom(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(userKey).(*domain.User)
	return u, ok && u != nil
}

// TokenVerifier validates a bearer credential and returns its claims.
// Satisfied by *token.Manager.
type TokenVerifier interface {
	Verify(tok string) (token.Claims, error)
}

// UserLoader resolves a token subject to a user record.
// Satisfied by repo.UserRepo.
type UserLoader interface {
	GetByID(ctx context.Context, id int64) (domain.User, error)
}

// OwnerResolver looks up the owner of a resource for ownership checks.
// Satisfied by repo.OwnerRepo.
type OwnerResolver interface {
	OwnerOf(ctx context.Context, loc domain.ResourceLocator, id int64) (int64, error)
}

// Middleware holds the collaborators of the authorization pipeline.
// It keeps no per-request state; everything request-scoped lives in the
// request context.
type Middleware struct {
	tokens  TokenVerifier
	users   UserLoader
	owners  OwnerResolver
	respond *httpx.Responder
}

// New constructs the authorization middleware.
func New(tokens TokenVerifier, users UserLoader, owners OwnerResolver, respond *httpx.Responder) *Middleware {
	return &Middleware{tokens: tokens, users: users, owners: owners, respond: respond}
}

// Require authenticates the request and attaches the user to the context.
// Any failure (missing, invalid, or expired token, unknown or deactivated
// account) terminates the request before the next handler runs.
func (m *Middleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.authenticate(r)
		if err != nil {
			m.respond.Error(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// Optional runs the same pipeline as Require but never fails: any problem at
// any stage leaves the request anonymous and execution continues. Use it on
// read paths that personalize output but must stay reachable without a login.
func (m *Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.authenticate(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// authenticate runs extract → verify → load and enforces the account-active
// invariant. A deactivated user never reaches the request context.
func (m *Middleware) authenticate(r *http.Request) (*domain.User, error) {
	tok, ok := bearerToken(r)
	if !ok {
		return nil, apperr.New(apperr.KindMissingToken, "Access token is required")
	}

	claims, err := m.tokens.Verify(tok)
	if err != nil {
		return nil, err
	}

	user, err := m.users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.Wrap(apperr.KindUserNotFound, "Invalid token - user not found", err)
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, apperr.New(apperr.KindAccountDeactivated, "Account is deactivated")
	}

	return &user, nil
}

// RequireRole allows the request through only when the authenticated user's
// role is in the given set. An anonymous request is Unauthenticated, a wrong
// role is InsufficientRole; clients need the distinction. The admin role gets
// no special treatment here; only the ownership gate has an admin bypass.
func (m *Middleware) RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFrom(r.Context())
			if !ok {
				m.respond.Error(w, r, apperr.New(apperr.KindUnauthenticated, "Authentication required"))
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			m.respond.Error(w, r, apperr.New(apperr.KindInsufficientRole, "Insufficient permissions"))
		})
	}
}

// RequireOwnership allows the request through only when the authenticated
// user owns the resource named by the {id} URL parameter under the given
// locator. Admins bypass the check before any store round trip. LocatorSelf
// compares the id directly against the user's own id; table-backed locators
// resolve the owner column through the store.
func (m *Middleware) RequireOwnership(loc domain.ResourceLocator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFrom(r.Context())
			if !ok {
				m.respond.Error(w, r, apperr.New(apperr.KindUnauthenticated, "Authentication required"))
				return
			}

			if user.Role == domain.RoleAdmin {
				next.ServeHTTP(w, r)
				return
			}

			id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
			if err != nil {
				m.respond.Error(w, r, apperr.Wrap(apperr.KindValidationFailed, "Invalid resource id", err))
				return
			}

			if loc == domain.LocatorSelf {
				if id == user.ID {
					next.ServeHTTP(w, r)
					return
				}
				m.respond.Error(w, r, apperr.New(apperr.KindAccessDenied, "Access denied"))
				return
			}

			ownerID, err := m.owners.OwnerOf(r.Context(), loc, id)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					err = apperr.Wrap(apperr.KindResourceNotFound, "Resource not found", err)
				}
				m.respond.Error(w, r, err)
				return
			}

			if ownerID != user.ID {
				m.respond.Error(w, r, apperr.New(apperr.KindAccessDenied, "Access denied"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the credential from an "Authorization: Bearer <tok>"
// header. Absence or a malformed header is a normal outcome, not an error.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, tok, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return "", false
	}
	return tok, true
}
