package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineteca/cineteca-api/internal/auth"
	"github.com/cineteca/cineteca-api/internal/model"
	"github.com/cineteca/cineteca-api/internal/repository"
)

type stubBackend struct {
	sessions map[string]auth.Session
}

func (s *stubBackend) SignIn(_ context.Context, email, _ string) (auth.Session, error) {
	for _, sess := range s.sessions {
		if sess.Email == email {
			return sess, nil
		}
	}
	return auth.Session{}, auth.ErrInvalidCredentials
}

func (s *stubBackend) SignUp(context.Context, string, string, auth.SignUpMeta) (auth.SignUpOutcome, error) {
	return auth.SignUpOutcome{}, nil
}

func (s *stubBackend) SignOut(context.Context, string) error { return nil }

func (s *stubBackend) CurrentUser(_ context.Context, token string) (auth.Session, error) {
	if sess, ok := s.sessions[token]; ok {
		return sess, nil
	}
	return auth.Session{}, auth.ErrInvalidToken
}

func (s *stubBackend) Subscribe(func(auth.Event)) func() { return func() {} }

type stubProfiles struct{ byEmail map[string]model.Profile }

func (s *stubProfiles) GetByEmail(_ context.Context, email string) (model.Profile, error) {
	if p, ok := s.byEmail[email]; ok {
		return p, nil
	}
	return model.Profile{}, repository.ErrProfileNotFound
}

func (s *stubProfiles) GetByID(context.Context, uint64) (model.Profile, error) {
	return model.Profile{}, repository.ErrProfileNotFound
}

func (s *stubProfiles) Update(context.Context, uint64, repository.ProfileUpdate) (model.Profile, error) {
	return model.Profile{}, repository.ErrProfileNotFound
}

func testManager() *auth.Manager {
	b := &stubBackend{sessions: map[string]auth.Session{
		"user-token":  {UserID: 2, Email: "usuario@email.com", Token: "user-token"},
		"admin-token": {UserID: 1, Email: "admin@cineteca.com", Token: "admin-token"},
	}}
	p := &stubProfiles{byEmail: map[string]model.Profile{
		"usuario@email.com":  {ID: 2, Name: "João Silva", Email: "usuario@email.com", Role: model.RoleUser},
		"admin@cineteca.com": {ID: 1, Name: "Administrador", Email: "admin@cineteca.com", Role: model.RoleAdmin},
	}}
	m := auth.NewManager(b, p)
	m.Resume(context.Background(), "user-token")
	m.Resume(context.Background(), "admin-token")
	return m
}

func runGuard(t *testing.T, mw echo.MiddlewareFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.NoError(t, h(c))
	return rec
}

func TestRequireAuthRedirectsBrowsers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/historico?page=2", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	rec := runGuard(t, RequireAuth(testManager()), req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?from=%2Fhistorico%3Fpage%3D2", rec.Header().Get("Location"))
}

func TestRequireAuthRejectsAPIClientsWithJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Accept", "application/json")

	rec := runGuard(t, RequireAuth(testManager()), req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "authentication required")
}

func TestRequireAuthAcceptsBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer user-token")

	rec := runGuard(t, RequireAuth(testManager()), req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuthAcceptsSessionCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/carrinho", nil)
	req.Header.Set("Accept", "text/html")
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "user-token"})

	rec := runGuard(t, RequireAuth(testManager()), req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdminSendsNonAdminsHome(t *testing.T) {
	m := testManager()
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Accept", "text/html")
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "user-token"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	chain := RequireAuth(m)(RequireAdmin(m)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}))
	require.NoError(t, chain(c))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestRequireAdminAdmitsAdmins(t *testing.T) {
	m := testManager()
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	chain := RequireAuth(m)(RequireAdmin(m)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}))
	require.NoError(t, chain(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdminRejectsAPIClientsWith403(t *testing.T) {
	m := testManager()
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	chain := RequireAuth(m)(RequireAdmin(m)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}))
	require.NoError(t, chain(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
