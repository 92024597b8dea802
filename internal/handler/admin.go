package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cineteca/cineteca-api/internal/model"
	"github.com/cineteca/cineteca-api/internal/repository"
)

// Narrow read/write surfaces of the repositories the console uses, so
// the dashboard aggregation is testable without a database.

type movieStore interface {
	ListAll(ctx context.Context) ([]model.Movie, error)
	Create(ctx context.Context, m model.Movie) (model.Movie, error)
	Update(ctx context.Context, id uint64, m model.Movie) (model.Movie, error)
	Delete(ctx context.Context, id uint64) error
}

type sessionStore interface {
	ListAll(ctx context.Context) ([]repository.SessionWithMovie, error)
	Create(ctx context.Context, s model.MovieSession) (model.MovieSession, error)
	Update(ctx context.Context, id uint64, s model.MovieSession) (model.MovieSession, error)
	Delete(ctx context.Context, id uint64) error
}

type profileLister interface {
	ListAll(ctx context.Context) ([]model.Profile, error)
}

type ticketLister interface {
	ListAll(ctx context.Context) ([]repository.TicketDetail, error)
}

// AdminHandler implements the management console endpoints.  Every route
// behind it requires the admin capability.
type AdminHandler struct {
	Movies   movieStore
	Sessions sessionStore
	Profiles profileLister
	Tickets  ticketLister
}

func NewAdminHandler(m *repository.MovieRepo, s *repository.SessionRepo,
	p *repository.ProfileRepo, t *repository.TicketRepo) *AdminHandler {
	return &AdminHandler{Movies: m, Sessions: s, Profiles: p, Tickets: t}
}

// dashboardData is the whole console landing page in one response.
type dashboardData struct {
	Counts struct {
		ActiveMovies int `json:"active_movies"`
		Sessions     int `json:"sessions"`
		Users        int `json:"users"`
		Tickets      int `json:"tickets"`
	} `json:"counts"`
	Movies   []model.Movie                 `json:"movies"`
	Sessions []repository.SessionWithMovie `json:"sessions"`
	Users    []model.Profile               `json:"users"`
	Tickets  []repository.TicketDetail     `json:"tickets"`
}

// Dashboard loads the four admin lists concurrently.  The batch is
// all-or-nothing: one failed fetch fails the whole page rather than
// rendering partial numbers.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var (
		wg       sync.WaitGroup
		movies   []model.Movie
		sessions []repository.SessionWithMovie
		profiles []model.Profile
		tickets  []repository.TicketDetail
		errs     [4]error
	)
	wg.Add(4)
	go func() { defer wg.Done(); movies, errs[0] = h.Movies.ListAll(ctx) }()
	go func() { defer wg.Done(); sessions, errs[1] = h.Sessions.ListAll(ctx) }()
	go func() { defer wg.Done(); profiles, errs[2] = h.Profiles.ListAll(ctx) }()
	go func() { defer wg.Done(); tickets, errs[3] = h.Tickets.ListAll(ctx) }()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "dashboard load failed"})
		}
	}

	var d dashboardData
	for _, m := range movies {
		if m.IsActive {
			d.Counts.ActiveMovies++
		}
	}
	d.Counts.Sessions = len(sessions)
	for _, p := range profiles {
		if p.Role == model.RoleUser {
			d.Counts.Users++
		}
	}
	d.Counts.Tickets = len(tickets)
	d.Movies = movies
	d.Sessions = sessions
	d.Users = profiles
	d.Tickets = tickets
	return c.JSON(http.StatusOK, d)
}

// ----- movie management -----

type movieReq struct {
	CatalogID    *uint64 `json:"catalog_id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	RuntimeMin   *uint32 `json:"runtime"`
	IsActive     bool    `json:"is_active"`
}

func (r movieReq) toModel() model.Movie {
	return model.Movie{
		CatalogID:    r.CatalogID,
		Title:        r.Title,
		Overview:     r.Overview,
		PosterPath:   r.PosterPath,
		BackdropPath: r.BackdropPath,
		ReleaseDate:  r.ReleaseDate,
		VoteAverage:  r.VoteAverage,
		RuntimeMin:   r.RuntimeMin,
		IsActive:     r.IsActive,
	}
}

func (h *AdminHandler) ListMovies(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	movies, err := h.Movies.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, movies)
}

func (h *AdminHandler) CreateMovie(c echo.Context) error {
	var req movieReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	movie, err := h.Movies.Create(ctx, req.toModel())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, movie)
}

func (h *AdminHandler) UpdateMovie(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	var req movieReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	movie, err := h.Movies.Update(ctx, id, req.toModel())
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, movie)
}

func (h *AdminHandler) DeleteMovie(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Movies.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- session management -----

type sessionReq struct {
	MovieID        uint64 `json:"movie_id"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Room           string `json:"room"`
	PriceCents     uint32 `json:"price_cents"`
	SeatsAvailable uint32 `json:"seats_available"`
}

func (r sessionReq) toModel() model.MovieSession {
	return model.MovieSession{
		MovieID:        r.MovieID,
		Date:           r.Date,
		Time:           r.Time,
		Room:           r.Room,
		PriceCents:     r.PriceCents,
		SeatsAvailable: r.SeatsAvailable,
	}
}

func (h *AdminHandler) ListSessions(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sessions, err := h.Sessions.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, sessions)
}

func (h *AdminHandler) CreateSession(c echo.Context) error {
	var req sessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.MovieID == 0 || req.Date == "" || req.Time == "" || req.Room == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie_id, date, time and room required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Sessions.Create(ctx, req.toModel())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *AdminHandler) UpdateSession(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	var req sessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Sessions.Update(ctx, id, req.toModel())
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, s)
}

func (h *AdminHandler) DeleteSession(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Sessions.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- user and ticket listings -----

func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	profiles, err := h.Profiles.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, profiles)
}

func (h *AdminHandler) ListTickets(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tickets, err := h.Tickets.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, tickets)
}
