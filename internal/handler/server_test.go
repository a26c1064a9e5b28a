package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"barberbook/internal/auth"
	"barberbook/internal/domain"
	"barberbook/internal/handler"
	"barberbook/internal/httpx"
	"barberbook/internal/token"
)

// Handler tests run the full route tree with the real token manager and the
// real authorization middleware; only the service and repo layers are mocked.
// This way every request exercises the same gate chain production traffic hits.

// mockAuthService is a func-field test double for handler.AuthServicer.
type mockAuthService struct {
	register func(ctx context.Context, name, email, password string, role domain.Role) (domain.User, string, error)
	login    func(ctx context.Context, email, password string) (domain.User, string, error)
}

func (m *mockAuthService) Register(ctx context.Context, name, email, password string, role domain.Role) (domain.User, string, error) {
	return m.register(ctx, name, email, password, role)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	return m.login(ctx, email, password)
}

// mockShopService is a func-field test double for handler.BarbershopServicer.
type mockShopService struct {
	create      func(ctx context.Context, shop domain.Barbershop, ownerID int64) (domain.Barbershop, error)
	getByID     func(ctx context.Context, id int64) (domain.Barbershop, error)
	listPaged   func(ctx context.Context, params domain.PaginationParams) ([]domain.Barbershop, int64, error)
	update      func(ctx context.Context, shop domain.Barbershop) (domain.Barbershop, error)
	delete      func(ctx context.Context, id int64) error
	setImageURL func(ctx context.Context, id int64, url string) error
}

func (m *mockShopService) Create(ctx context.Context, shop domain.Barbershop, ownerID int64) (domain.Barbershop, error) {
	return m.create(ctx, shop, ownerID)
}

func (m *mockShopService) GetByID(ctx context.Context, id int64) (domain.Barbershop, error) {
	return m.getByID(ctx, id)
}

func (m *mockShopService) ListPaged(ctx context.Context, params domain.PaginationParams) ([]domain.Barbershop, int64, error) {
	return m.listPaged(ctx, params)
}

func (m *mockShopService) Update(ctx context.Context, shop domain.Barbershop) (domain.Barbershop, error) {
	return m.update(ctx, shop)
}

func (m *mockShopService) Delete(ctx context.Context, id int64) error {
	return m.delete(ctx, id)
}

func (m *mockShopService) SetImageURL(ctx context.Context, id int64, url string) error {
	return m.setImageURL(ctx, id, url)
}

// compile-time interface checks.
var (
	_ handler.AuthServicer       = (*mockAuthService)(nil)
	_ handler.BarbershopServicer = (*mockShopService)(nil)
)

// fixture is the wired-up test server plus its mutable fakes.
type fixture struct {
	accounts *mockAuthService
	shops    *mockShopService
	users    map[int64]domain.User
	owners   map[int64]int64 // barbershop id -> owner id
	tokens   *token.Manager
	router   http.Handler
}

// userStore adapts the fixture's user map to auth.UserLoader and handler.UserGetter.
type userStore struct {
	users map[int64]domain.User
}

func (s *userStore) GetByID(_ context.Context, id int64) (domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

// ownerStore adapts the fixture's owner map to auth.OwnerResolver.
type ownerStore struct {
	owners map[int64]int64
}

func (s *ownerStore) OwnerOf(_ context.Context, _ domain.ResourceLocator, id int64) (int64, error) {
	owner, ok := s.owners[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return owner, nil
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		accounts: &mockAuthService{},
		shops:    &mockShopService{},
		users:    make(map[int64]domain.User),
		owners:   make(map[int64]int64),
		tokens:   token.New("test-secret", time.Hour),
	}

	respond := httpx.NewResponder(false, slog.New(slog.NewTextHandler(io.Discard, nil)))
	mw := auth.New(f.tokens, &userStore{users: f.users}, &ownerStore{owners: f.owners}, respond)
	srv := handler.NewServer(f.accounts, f.shops, &userStore{users: f.users}, handler.UploadConfig{
		Dir:      t.TempDir(),
		MaxBytes: 1 << 20,
	}, respond)
	f.router = srv.Routes(mw)
	return f
}

// addUser registers a user in the fixture's store and returns a live token.
func (f *fixture) addUser(t *testing.T, u domain.User) string {
	t.Helper()
	f.users[u.ID] = u
	tok, err := f.tokens.Sign(u.ID)
	require.NoError(t, err)
	return tok
}

// addShop registers a shop's ownership for the gate and returns the shop.
func (f *fixture) addShop(shop domain.Barbershop) domain.Barbershop {
	f.owners[shop.ID] = shop.OwnerID
	return shop
}

func (f *fixture) do(t *testing.T, method, target, bearer string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

// envelope is the decoded response body shared by every endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Detail  string          `json:"detail"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var e envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	e := decode(t, rec)
	require.True(t, e.Success)
	require.NoError(t, json.Unmarshal(e.Data, dst))
}
