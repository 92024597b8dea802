package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cineteca/cineteca-api/internal/model"
	"github.com/cineteca/cineteca-api/internal/repository"
)

// TicketHandler serves the purchase history and single-ticket lookups.
type TicketHandler struct {
	Tickets *repository.TicketRepo
}

func NewTicketHandler(t *repository.TicketRepo) *TicketHandler {
	return &TicketHandler{Tickets: t}
}

// History lists the caller's tickets, newest first, with session, movie
// and seat details joined in.
func (h *TicketHandler) History(c echo.Context) error {
	sess, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tickets, err := h.Tickets.ListByUser(ctx, sess.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, tickets)
}

// GetByCode resolves one ticket by its printed code.  Only the owner or
// an admin may read it; the code is a display token, not a capability.
func (h *TicketHandler) GetByCode(c echo.Context) error {
	code := c.Param("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code required"})
	}
	sess, _ := currentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ticket, err := h.Tickets.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if ticket.UserID != sess.UserID && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your ticket"})
	}
	return c.JSON(http.StatusOK, ticket)
}

func isAdmin(c echo.Context) bool {
	p, ok := c.Get("profile").(*model.Profile)
	return ok && p.IsAdmin()
}
