package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cineteca/cineteca-api/internal/auth"
)

// SessionCookie is where browser clients carry their access token.  API
// clients send the same token as a Bearer header instead.
const SessionCookie = "cineteca_session"

// RequireAuth returns a middleware that admits only requests carrying a
// session the Manager recognizes.  Unknown tokens are resumed against
// the backend once before rejecting, so valid bearer tokens survive a
// server restart.
//
// Rejections depend on the client: browsers are redirected to the login
// page with the original path preserved in ?from=, API clients get a
// 401 JSON body.  On success the session and profile are stored in the
// context under "session" and "profile".
func RequireAuth(m *auth.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" || (!m.IsAuthenticated(token) && !m.Resume(c.Request().Context(), token)) {
				return rejectUnauthenticated(c)
			}
			s, _ := m.SessionFor(token)
			c.Set("session", s)
			c.Set("profile", m.ProfileFor(token))
			c.Set("token", token)
			return next(c)
		}
	}
}

// RequireAdmin enforces the admin capability on top of RequireAuth.  A
// signed-in user without an admin profile is sent back to the home page
// rather than the login page; logging in again would not help them.
func RequireAdmin(m *auth.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, _ := c.Get("token").(string)
			if token == "" || !m.IsAdmin(token) {
				if wantsHTML(c) {
					return c.Redirect(http.StatusFound, "/")
				}
				return c.JSON(http.StatusForbidden, echo.Map{"error": "admin access required"})
			}
			return next(c)
		}
	}
}

// extractToken reads the access token from the Authorization header or,
// for browser clients, the session cookie.
func extractToken(c echo.Context) string {
	if h := c.Request().Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if ck, err := c.Cookie(SessionCookie); err == nil {
		return ck.Value
	}
	return ""
}

// wantsHTML reports whether the client negotiates an HTML response.
func wantsHTML(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get("Accept"), "text/html")
}

func rejectUnauthenticated(c echo.Context) error {
	if wantsHTML(c) {
		// Keep the requested path so login can send the user back.
		from := c.Request().URL.Path
		if q := c.Request().URL.RawQuery; q != "" {
			from += "?" + q
		}
		return c.Redirect(http.StatusFound, "/login?from="+url.QueryEscape(from))
	}
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
}
