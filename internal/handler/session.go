package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cineteca/cineteca-api/internal/auth"
	"github.com/cineteca/cineteca-api/internal/repository"
)

// SessionHandler exposes screenings and their seat maps.
type SessionHandler struct {
	Sessions *repository.SessionRepo
	Seats    *repository.SeatRepo
}

func NewSessionHandler(s *repository.SessionRepo, seats *repository.SeatRepo) *SessionHandler {
	return &SessionHandler{Sessions: s, Seats: seats}
}

// Get returns one session with both fares spelled out.
func (h *SessionHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"session":          s,
		"price_cents":      s.PriceCents,
		"half_price_cents": s.HalfPriceCents(),
	})
}

// SeatMap returns the seats of a session in row/number order.
func (h *SessionHandler) SeatMap(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	seats, err := h.Seats.ListBySession(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, seats)
}

type reserveReq struct {
	SeatIDs []uint64 `json:"seat_ids"`
}

// Reserve marks the given seats as held by the caller.  The write is
// unconditional over the id list; whoever reserves last wins.
func (h *SessionHandler) Reserve(c echo.Context) error {
	var req reserveReq
	if err := c.Bind(&req); err != nil || len(req.SeatIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_ids required"})
	}
	sess, ok := c.Get("session").(auth.Session)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Seats.Reserve(ctx, req.SeatIDs, sess.UserID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reserve failed"})
	}
	labels, _ := h.Seats.LabelsByIDs(ctx, req.SeatIDs)
	return c.JSON(http.StatusOK, echo.Map{"reserved": true, "seats": labels})
}
