package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cineteca/cineteca-api/internal/catalog"
	"github.com/cineteca/cineteca-api/internal/repository"
)

// MovieHandler serves the public movie listings: films published locally
// through the admin console plus discovery data from the external
// catalog.  The catalog API key stays on this side of the wire.
type MovieHandler struct {
	Movies   *repository.MovieRepo
	Sessions *repository.SessionRepo
	Catalog  *catalog.Client
}

func NewMovieHandler(m *repository.MovieRepo, s *repository.SessionRepo, cat *catalog.Client) *MovieHandler {
	return &MovieHandler{Movies: m, Sessions: s, Catalog: cat}
}

// List returns the locally published movies.
func (h *MovieHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	movies, err := h.Movies.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, movies)
}

// NowPlaying proxies the catalog's in-theatres listing.
func (h *MovieHandler) NowPlaying(c echo.Context) error {
	page := 1
	if p := c.QueryParam("page"); p != "" {
		if n, err := strconv.Atoi(p); err == nil && n > 0 {
			page = n
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.Catalog.NowPlaying(ctx, page)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "catalog unavailable"})
	}
	return c.JSON(http.StatusOK, res)
}

// Get returns one local movie with its sessions.  When the movie carries
// a catalog id, runtime and genre details are filled in from the catalog;
// a catalog failure degrades to the local row alone.
func (h *MovieHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	movie, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	sessions, err := h.Sessions.ListByMovie(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	resp := echo.Map{"movie": movie, "sessions": sessions}
	if movie.CatalogID != nil {
		if detail, cerr := h.Catalog.MovieByID(ctx, *movie.CatalogID); cerr == nil {
			resp["catalog"] = detail
		}
	}
	return c.JSON(http.StatusOK, resp)
}
