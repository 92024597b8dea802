package handler

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cineteca/cineteca-api/internal/auth"
	"github.com/cineteca/cineteca-api/internal/middleware"
)

// AuthHandler bundles dependencies for auth endpoints.  The Manager is
// the session/profile cache; the Service is the hosted backend used
// directly for refresh-token rotation.
type AuthHandler struct {
	Manager *auth.Manager
	Service *auth.Service
}

func NewAuthHandler(m *auth.Manager, s *auth.Service) *AuthHandler {
	return &AuthHandler{Manager: m, Service: s}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type registerReq struct {
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	CPF             string `json:"cpf"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

// cpfRe accepts the formatted form 123.456.789-01 or eleven bare digits.
var cpfRe = regexp.MustCompile(`^(\d{3}\.\d{3}\.\d{3}-\d{2}|\d{11})$`)

// Login authenticates the user and returns the session with its profile
// plus a refresh token for rotation.  The session cookie is set for
// browser clients.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res := h.Manager.Login(ctx, req.Email, req.Password)
	if !res.Success {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": res.Error})
	}

	refresh, err := h.Service.IssueRefresh(ctx, res.User.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}

	setSessionCookie(c, res.User.Token)
	return c.JSON(http.StatusOK, echo.Map{
		"user":          res.User,
		"profile":       res.Profile,
		"access_token":  res.User.Token,
		"refresh_token": refresh.Raw,
	})
}

// Register validates the form before touching the backend: required
// fields, matching passwords and a well-formed CPF are checked locally
// so a bad form never costs a network round trip.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	req.CPF = strings.TrimSpace(req.CPF)

	if req.FullName == "" || req.Email == "" || req.CPF == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "all fields are required"})
	}
	if req.Password != req.ConfirmPassword {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "passwords do not match"})
	}
	if len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 6 characters"})
	}
	if !cpfRe.MatchString(req.CPF) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid CPF"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res := h.Manager.Register(ctx, req.Email, req.Password, auth.SignUpMeta{
		FullName: req.FullName,
		CPF:      req.CPF,
	})
	if !res.Success {
		return c.JSON(http.StatusConflict, echo.Map{"error": res.Error})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"user_id":            res.UserID,
		"needs_verification": res.NeedsVerification,
	})
}

// Logout signs the session out.  The local session is cleared even when
// the backend call fails, so the client is logged out either way; the
// remote failure is still reported.
func (h *AuthHandler) Logout(c echo.Context) error {
	token, _ := c.Get("token").(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err := h.Manager.Logout(ctx, token)
	clearSessionCookie(c)
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"logged_out": true, "warning": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"logged_out": true})
}

// Refresh rotates a refresh token and returns a new access/refresh pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sess, refresh, err := h.Service.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	setSessionCookie(c, sess.Token)
	return c.JSON(http.StatusOK, echo.Map{
		"user":          sess,
		"access_token":  sess.Token,
		"refresh_token": refresh.Raw,
	})
}

// Me returns the cached session and profile of the caller.
func (h *AuthHandler) Me(c echo.Context) error {
	token, _ := c.Get("token").(string)
	sess, ok := h.Manager.SessionFor(token)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":     sess,
		"profile":  h.Manager.ProfileFor(token),
		"is_admin": h.Manager.IsAdmin(token),
	})
}

func setSessionCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
