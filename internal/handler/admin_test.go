package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineteca/cineteca-api/internal/model"
	"github.com/cineteca/cineteca-api/internal/repository"
)

type mockMovies struct {
	movies []model.Movie
	err    error
}

func (m *mockMovies) ListAll(context.Context) ([]model.Movie, error) { return m.movies, m.err }
func (m *mockMovies) Create(_ context.Context, mv model.Movie) (model.Movie, error) {
	mv.ID = uint64(len(m.movies) + 1)
	m.movies = append(m.movies, mv)
	return mv, nil
}
func (m *mockMovies) Update(_ context.Context, id uint64, mv model.Movie) (model.Movie, error) {
	for i := range m.movies {
		if m.movies[i].ID == id {
			mv.ID = id
			m.movies[i] = mv
			return mv, nil
		}
	}
	return model.Movie{}, repository.ErrMovieNotFound
}
func (m *mockMovies) Delete(_ context.Context, id uint64) error {
	for i := range m.movies {
		if m.movies[i].ID == id {
			m.movies = append(m.movies[:i], m.movies[i+1:]...)
			return nil
		}
	}
	return repository.ErrMovieNotFound
}

type mockSessions struct {
	sessions []repository.SessionWithMovie
	err      error
}

func (m *mockSessions) ListAll(context.Context) ([]repository.SessionWithMovie, error) {
	return m.sessions, m.err
}
func (m *mockSessions) Create(_ context.Context, s model.MovieSession) (model.MovieSession, error) {
	s.ID = uint64(len(m.sessions) + 1)
	return s, nil
}
func (m *mockSessions) Update(_ context.Context, id uint64, s model.MovieSession) (model.MovieSession, error) {
	s.ID = id
	return s, nil
}
func (m *mockSessions) Delete(context.Context, uint64) error { return nil }

type mockProfiles struct {
	profiles []model.Profile
	err      error
}

func (m *mockProfiles) ListAll(context.Context) ([]model.Profile, error) {
	return m.profiles, m.err
}

type mockTickets struct {
	tickets []repository.TicketDetail
	err     error
}

func (m *mockTickets) ListAll(context.Context) ([]repository.TicketDetail, error) {
	return m.tickets, m.err
}

func stringReader(s string) io.Reader { return strings.NewReader(s) }

func dashboardFixture() *AdminHandler {
	return &AdminHandler{
		Movies: &mockMovies{movies: []model.Movie{
			{ID: 1, Title: "Central do Brasil", IsActive: true},
			{ID: 2, Title: "Bacurau", IsActive: true},
			{ID: 3, Title: "Arquivado", IsActive: false},
		}},
		Sessions: &mockSessions{sessions: []repository.SessionWithMovie{
			{MovieSession: model.MovieSession{ID: 1, MovieID: 1}},
			{MovieSession: model.MovieSession{ID: 2, MovieID: 2}},
		}},
		Profiles: &mockProfiles{profiles: []model.Profile{
			{ID: 1, Role: model.RoleAdmin},
			{ID: 2, Role: model.RoleUser},
			{ID: 3, Role: model.RoleUser},
		}},
		Tickets: &mockTickets{tickets: []repository.TicketDetail{
			{Ticket: model.Ticket{ID: 1, Code: "CNTABC"}},
		}},
	}
}

func dashboardRequest(t *testing.T, h *AdminHandler) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h.Dashboard(c))
	return rec
}

func TestDashboardCounts(t *testing.T) {
	rec := dashboardRequest(t, dashboardFixture())
	require.Equal(t, http.StatusOK, rec.Code)

	var d dashboardData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	// Only active movies and role "user" profiles are counted.
	assert.Equal(t, 2, d.Counts.ActiveMovies)
	assert.Equal(t, 2, d.Counts.Sessions)
	assert.Equal(t, 2, d.Counts.Users)
	assert.Equal(t, 1, d.Counts.Tickets)
	assert.Len(t, d.Movies, 3)
}

func TestDashboardFailsAsOneBatch(t *testing.T) {
	h := dashboardFixture()
	h.Tickets = &mockTickets{err: errors.New("tickets table unreachable")}

	rec := dashboardRequest(t, h)
	// One failed list fails the whole page; no partial numbers.
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "dashboard load failed")
}

func TestMovieCRUDRoundTrip(t *testing.T) {
	e := echo.New()
	h := &AdminHandler{Movies: &mockMovies{}}

	body := `{"title":"O Pagador de Promessas","is_active":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/movies", stringReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.CreateMovie(e.NewContext(req, rec)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.Movie
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "O Pagador de Promessas", created.Title)

	// Updating an unknown id reports not found.
	req = httptest.NewRequest(http.MethodPut, "/api/v1/admin/movies/99", stringReader(`{"title":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("99")
	require.NoError(t, h.UpdateMovie(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateMovieRequiresTitle(t *testing.T) {
	e := echo.New()
	h := &AdminHandler{Movies: &mockMovies{}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/movies", stringReader(`{"overview":"sem título"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.CreateMovie(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
