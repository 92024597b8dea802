package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cineteca/cineteca-api/internal/auth"
	"github.com/cineteca/cineteca-api/internal/repository"
)

// ProfileHandler serves the signed-in user's profile page.
type ProfileHandler struct {
	Manager *auth.Manager
}

func NewProfileHandler(m *auth.Manager) *ProfileHandler {
	return &ProfileHandler{Manager: m}
}

type profileUpdateReq struct {
	Name      *string `json:"name"`
	CPF       *string `json:"cpf"`
	BirthDate *string `json:"birth_date"`
	Phone     *string `json:"phone"`
}

// Get returns the cached profile of the caller.
func (h *ProfileHandler) Get(c echo.Context) error {
	token, _ := c.Get("token").(string)
	p := h.Manager.ProfileFor(token)
	if p == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not available"})
	}
	return c.JSON(http.StatusOK, p)
}

// Update writes the submitted fields through the Manager.  Only fields
// present in the body are touched; the response carries the full profile
// as the store returned it.
func (h *ProfileHandler) Update(c echo.Context) error {
	var req profileUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name cannot be empty"})
		}
		req.Name = &trimmed
	}
	if req.CPF != nil && !cpfRe.MatchString(strings.TrimSpace(*req.CPF)) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid CPF"})
	}

	token, _ := c.Get("token").(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res := h.Manager.UpdateProfile(ctx, token, repository.ProfileUpdate{
		Name:      req.Name,
		CPF:       req.CPF,
		BirthDate: req.BirthDate,
		Phone:     req.Phone,
	})
	if !res.Success {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": res.Error})
	}
	return c.JSON(http.StatusOK, res.Profile)
}
