package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barberbook/internal/apperr"
	"barberbook/internal/auth"
	"barberbook/internal/domain"
	"barberbook/internal/httpx"
	"barberbook/internal/token"
)

// mockVerifier is a test double for auth.TokenVerifier.
type mockVerifier struct {
	verify func(tok string) (token.Claims, error)
}

func (m *mockVerifier) Verify(tok string) (token.Claims, error) { return m.verify(tok) }

// mockUsers is a test double for auth.UserLoader.
type mockUsers struct {
	getByID func(ctx context.Context, id int64) (domain.User, error)
}

func (m *mockUsers) GetByID(ctx context.Context, id int64) (domain.User, error) {
	return m.getByID(ctx, id)
}

// mockOwners is a test double for auth.OwnerResolver.
type mockOwners struct {
	ownerOf func(ctx context.Context, loc domain.ResourceLocator, id int64) (int64, error)
}

func (m *mockOwners) OwnerOf(ctx context.Context, loc domain.ResourceLocator, id int64) (int64, error) {
	return m.ownerOf(ctx, loc, id)
}

// compile-time checks: the mocks must satisfy the middleware's interfaces.
var (
	_ auth.TokenVerifier = (*mockVerifier)(nil)
	_ auth.UserLoader    = (*mockUsers)(nil)
	_ auth.OwnerResolver = (*mockOwners)(nil)
)

// ---- helpers ---------------------------------------------------------------

func activeUser() domain.User {
	return domain.User{ID: 7, Name: "Marta", Email: "marta@example.com", Role: domain.RoleBarber, IsActive: true}
}

func okVerifier(userID int64) *mockVerifier {
	return &mockVerifier{verify: func(string) (token.Claims, error) {
		return token.Claims{UserID: userID}, nil
	}}
}

func userLoader(u domain.User) *mockUsers {
	return &mockUsers{getByID: func(_ context.Context, id int64) (domain.User, error) {
		if id != u.ID {
			return domain.User{}, domain.ErrNotFound
		}
		return u, nil
	}}
}

func newMiddleware(v auth.TokenVerifier, u auth.UserLoader, o auth.OwnerResolver) *auth.Middleware {
	respond := httpx.NewResponder(false, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return auth.New(v, u, o, respond)
}

// echoUserHandler writes the context user's id, or "anonymous".
var echoUserHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.UserFrom(r.Context()); ok {
		_ = json.NewEncoder(w).Encode(u)
		return
	}
	_, _ = w.Write([]byte("anonymous"))
})

func doRequest(t *testing.T, h http.Handler, method, target, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Success)
	return body.Error
}

// ---- Require ---------------------------------------------------------------

func TestRequire_NoToken(t *testing.T) {
	mw := newMiddleware(okVerifier(7), userLoader(activeUser()), nil)
	h := mw.Require(echoUserHandler)

	rec := doRequest(t, h, http.MethodGet, "/api/auth/me", "")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Access token is required", errorBody(t, rec))
}

func TestRequire_MalformedHeader(t *testing.T) {
	mw := newMiddleware(okVerifier(7), userLoader(activeUser()), nil)
	h := mw.Require(echoUserHandler)

	for _, header := range []string{"Bearer", "Bearer ", "Basic dXNlcjpwYXNz", "token-without-scheme"} {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestRequire_ValidToken_AttachesUser(t *testing.T) {
	want := activeUser()
	mw := newMiddleware(okVerifier(want.ID), userLoader(want), nil)
	h := mw.Require(echoUserHandler)

	rec := doRequest(t, h, http.MethodGet, "/api/auth/me", "sometoken")

	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	// The attached identity is exactly the stored public record.
	assert.Equal(t, want, got)
}

func TestRequire_InvalidToken(t *testing.T) {
	v := &mockVerifier{verify: func(string) (token.Claims, error) {
		return token.Claims{}, apperr.New(apperr.KindInvalidToken, "Invalid token")
	}}
	mw := newMiddleware(v, userLoader(activeUser()), nil)
	h := mw.Require(echoUserHandler)

	rec := doRequest(t, h, http.MethodGet, "/api/auth/me", "forged")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token", errorBody(t, rec))
}

func TestRequire_UserNotFound(t *testing.T) {
	// Token verifies but references a user id with no row behind it.
	mw := newMiddleware(okVerifier(999), userLoader(activeUser()), nil)
	h := mw.Require(echoUserHandler)

	rec := doRequest(t, h, http.MethodGet, "/api/auth/me", "sometoken")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token - user not found", errorBody(t, rec))
}

func TestRequire_DeactivatedAccount(t *testing.T) {
	u := activeUser()
	u.IsActive = false
	mw := newMiddleware(okVerifier(u.ID), userLoader(u), nil)
	h := mw.Require(echoUserHandler)

	rec := doRequest(t, h, http.MethodGet, "/api/auth/me", "sometoken")

	// The token itself is fine; the account state rejects the request.
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Account is deactivated", errorBody(t, rec))
}

func TestRequire_StoreFailure(t *testing.T) {
	u := &mockUsers{getByID: func(context.Context, int64) (domain.User, error) {
		return domain.User{}, &pgconn.PgError{Code: "08006"}
	}}
	mw := newMiddleware(okVerifier(7), u, nil)
	h := mw.Require(echoUserHandler)

	rec := doRequest(t, h, http.MethodGet, "/api/auth/me", "sometoken")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Database connection error", errorBody(t, rec))
}

// ---- Optional --------------------------------------------------------------

func TestOptional_NoToken_Anonymous(t *testing.T) {
	mw := newMiddleware(okVerifier(7), userLoader(activeUser()), nil)
	h := mw.Optional(echoUserHandler)

	rec := doRequest(t, h, http.MethodGet, "/api/barbershops", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestOptional_ExpiredToken_Anonymous(t *testing.T) {
	v := &mockVerifier{verify: func(string) (token.Claims, error) {
		return token.Claims{}, apperr.New(apperr.KindTokenExpired, "Token expired")
	}}
	mw := newMiddleware(v, userLoader(activeUser()), nil)
	h := mw.Optional(echoUserHandler)

	rec := doRequest(t, h, http.MethodGet, "/api/barbershops", "expired")

	// The failure is swallowed: 200 path untouched, no identity attached.
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestOptional_DeactivatedAccount_Anonymous(t *testing.T) {
	u := activeUser()
	u.IsActive = false
	mw := newMiddleware(okVerifier(u.ID), userLoader(u), nil)
	h := mw.Optional(echoUserHandler)

	rec := doRequest(t, h, http.MethodGet, "/api/barbershops", "sometoken")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestOptional_ValidToken_AttachesUser(t *testing.T) {
	want := activeUser()
	mw := newMiddleware(okVerifier(want.ID), userLoader(want), nil)
	h := mw.Optional(echoUserHandler)

	rec := doRequest(t, h, http.MethodGet, "/api/barbershops", "sometoken")

	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, want, got)
}

// ---- RequireRole -----------------------------------------------------------

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// withUser injects an already-authenticated user, standing in for Require.
func withUser(u domain.User, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), &u)))
	})
}

func TestRequireRole_AllowsMatchingRole(t *testing.T) {
	mw := newMiddleware(nil, nil, nil)
	h := withUser(activeUser(), mw.RequireRole(domain.RoleBarber, domain.RoleAdmin)(okHandler))

	rec := doRequest(t, h, http.MethodPost, "/api/barbershops", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole_DeniesWrongRole(t *testing.T) {
	u := activeUser()
	u.Role = domain.RoleClient
	mw := newMiddleware(nil, nil, nil)
	h := withUser(u, mw.RequireRole(domain.RoleBarber)(okHandler))

	rec := doRequest(t, h, http.MethodPost, "/api/barbershops", "")

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Insufficient permissions", errorBody(t, rec))
}

func TestRequireRole_AdminDoesNotBypass(t *testing.T) {
	// Only the ownership gate has an admin bypass. A role gate naming only
	// "barber" must reject an admin.
	u := activeUser()
	u.Role = domain.RoleAdmin
	mw := newMiddleware(nil, nil, nil)
	h := withUser(u, mw.RequireRole(domain.RoleBarber)(okHandler))

	rec := doRequest(t, h, http.MethodPost, "/api/barbershops", "")

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRole_FailsClosedWithoutIdentity(t *testing.T) {
	mw := newMiddleware(nil, nil, nil)
	h := mw.RequireRole(domain.RoleClient)(okHandler)

	rec := doRequest(t, h, http.MethodPost, "/api/appointments", "")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication required", errorBody(t, rec))
}

// ---- RequireOwnership ------------------------------------------------------

// ownershipRouter wires the gate into a chi route so {id} resolves.
func ownershipRouter(mw *auth.Middleware, loc domain.ResourceLocator, u *domain.User) http.Handler {
	r := chi.NewRouter()
	gate := mw.RequireOwnership(loc)
	if u != nil {
		r.With(gate).Delete("/resources/{id}", okHandler)
		return withUser(*u, r)
	}
	r.With(gate).Delete("/resources/{id}", okHandler)
	return r
}

func TestRequireOwnership_Owner(t *testing.T) {
	u := activeUser()
	owners := &mockOwners{ownerOf: func(_ context.Context, loc domain.ResourceLocator, id int64) (int64, error) {
		return u.ID, nil
	}}
	mw := newMiddleware(nil, nil, owners)
	h := ownershipRouter(mw, domain.LocatorBarbershop, &u)

	rec := doRequest(t, h, http.MethodDelete, "/resources/12", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireOwnership_NotOwner(t *testing.T) {
	u := activeUser()
	owners := &mockOwners{ownerOf: func(context.Context, domain.ResourceLocator, int64) (int64, error) {
		return u.ID + 1, nil
	}}
	mw := newMiddleware(nil, nil, owners)
	h := ownershipRouter(mw, domain.LocatorBarbershop, &u)

	rec := doRequest(t, h, http.MethodDelete, "/resources/12", "")

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied", errorBody(t, rec))
}

func TestRequireOwnership_AdminBypass(t *testing.T) {
	u := activeUser()
	u.Role = domain.RoleAdmin
	owners := &mockOwners{ownerOf: func(context.Context, domain.ResourceLocator, int64) (int64, error) {
		t.Fatal("admin bypass must not hit the store")
		return 0, nil
	}}
	mw := newMiddleware(nil, nil, owners)
	h := ownershipRouter(mw, domain.LocatorBarbershop, &u)

	rec := doRequest(t, h, http.MethodDelete, "/resources/12", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireOwnership_ResourceMissing(t *testing.T) {
	u := activeUser()
	owners := &mockOwners{ownerOf: func(context.Context, domain.ResourceLocator, int64) (int64, error) {
		return 0, domain.ErrNotFound
	}}
	mw := newMiddleware(nil, nil, owners)
	h := ownershipRouter(mw, domain.LocatorBarbershop, &u)

	rec := doRequest(t, h, http.MethodDelete, "/resources/404", "")

	// A missing resource is 404, never 403: the two must stay distinguishable.
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Resource not found", errorBody(t, rec))
}

func TestRequireOwnership_StoreFailure(t *testing.T) {
	u := activeUser()
	owners := &mockOwners{ownerOf: func(context.Context, domain.ResourceLocator, int64) (int64, error) {
		return 0, &pgconn.PgError{Code: "08006"}
	}}
	mw := newMiddleware(nil, nil, owners)
	h := ownershipRouter(mw, domain.LocatorBarbershop, &u)

	rec := doRequest(t, h, http.MethodDelete, "/resources/12", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequireOwnership_Self(t *testing.T) {
	u := activeUser()
	mw := newMiddleware(nil, nil, nil)

	h := ownershipRouter(mw, domain.LocatorSelf, &u)

	rec := doRequest(t, h, http.MethodDelete, "/resources/7", "")
	assert.Equal(t, http.StatusOK, rec.Code, "own id allowed")

	rec = doRequest(t, h, http.MethodDelete, "/resources/8", "")
	assert.Equal(t, http.StatusForbidden, rec.Code, "other id denied")
}

func TestRequireOwnership_FailsClosedWithoutIdentity(t *testing.T) {
	owners := &mockOwners{ownerOf: func(context.Context, domain.ResourceLocator, int64) (int64, error) {
		t.Fatal("gate must not consult the store without an identity")
		return 0, nil
	}}
	mw := newMiddleware(nil, nil, owners)
	h := ownershipRouter(mw, domain.LocatorBarbershop, nil)

	rec := doRequest(t, h, http.MethodDelete, "/resources/12", "")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication required", errorBody(t, rec))
}

func TestRequireOwnership_BadID(t *testing.T) {
	u := activeUser()
	mw := newMiddleware(nil, nil, nil)
	h := ownershipRouter(mw, domain.LocatorSelf, &u)

	rec := doRequest(t, h, http.MethodDelete, "/resources/not-a-number", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
