// Package router wires the HTTP routes to their handlers and guards.
// Routes fall into three classes: public, authenticated, and admin-only.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cineteca/cineteca-api/internal/auth"
	"github.com/cineteca/cineteca-api/internal/handler"
	"github.com/cineteca/cineteca-api/internal/middleware"
)

// Handlers groups everything the router needs to register.
type Handlers struct {
	Auth     *handler.AuthHandler
	Profile  *handler.ProfileHandler
	Movies   *handler.MovieHandler
	Sessions *handler.SessionHandler
	Checkout *handler.CheckoutHandler
	Cart     *handler.CartHandler
	Tickets  *handler.TicketHandler
	Admin    *handler.AdminHandler
}

// Register attaches all routes.  The browse surface is public; carts,
// checkout and history require a session; the management console also
// requires the admin capability.
//
// The response cache applies to the public browse routes only: its key
// is route+query, so caching anything per-user would leak responses
// across users.
func Register(e *echo.Echo, m *auth.Manager, h Handlers, cache echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)
	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	})

	// Public: account entry points and the browse surface.
	v1 := e.Group("/api/v1")
	v1.POST("/auth/login", h.Auth.Login)
	v1.POST("/auth/register", h.Auth.Register)
	v1.POST("/auth/refresh", h.Auth.Refresh)

	v1.GET("/movies", h.Movies.List, cache)
	v1.GET("/movies/now-playing", h.Movies.NowPlaying, cache)
	v1.GET("/movies/:id", h.Movies.Get, cache)
	v1.GET("/sessions/:id", h.Sessions.Get, cache)
	v1.GET("/sessions/:id/seats", h.Sessions.SeatMap)

	// Authenticated: everything that belongs to a signed-in user.
	user := v1.Group("", middleware.RequireAuth(m))
	user.POST("/auth/logout", h.Auth.Logout)
	user.GET("/me", h.Auth.Me)
	user.GET("/profile", h.Profile.Get)
	user.PUT("/profile", h.Profile.Update)

	user.POST("/sessions/:id/reserve", h.Sessions.Reserve)

	user.POST("/checkout", h.Checkout.Open)
	user.GET("/checkout", h.Checkout.Get)
	user.PUT("/checkout", h.Checkout.Update)
	user.POST("/checkout/payment-method", h.Checkout.SelectPayment)
	user.POST("/checkout/advance", h.Checkout.Advance)
	user.POST("/checkout/back", h.Checkout.Back)
	user.DELETE("/checkout", h.Checkout.Close)

	user.GET("/cart", h.Cart.List)
	user.POST("/cart", h.Cart.Add)
	user.DELETE("/cart/:index", h.Cart.Remove)
	user.DELETE("/cart", h.Cart.Clear)
	user.POST("/cart/checkout", h.Cart.Checkout)

	user.GET("/tickets", h.Tickets.History)
	user.GET("/tickets/:code", h.Tickets.GetByCode)

	// Page aliases kept from the storefront URL scheme.
	e.GET("/carrinho", h.Cart.List, middleware.RequireAuth(m))
	e.GET("/historico", h.Tickets.History, middleware.RequireAuth(m))

	// Admin-only: the management console.
	admin := v1.Group("/admin", middleware.RequireAuth(m), middleware.RequireAdmin(m))
	admin.GET("/dashboard", h.Admin.Dashboard)
	admin.GET("/movies", h.Admin.ListMovies)
	admin.POST("/movies", h.Admin.CreateMovie)
	admin.PUT("/movies/:id", h.Admin.UpdateMovie)
	admin.DELETE("/movies/:id", h.Admin.DeleteMovie)
	admin.GET("/sessions", h.Admin.ListSessions)
	admin.POST("/sessions", h.Admin.CreateSession)
	admin.PUT("/sessions/:id", h.Admin.UpdateSession)
	admin.DELETE("/sessions/:id", h.Admin.DeleteSession)
	admin.GET("/users", h.Admin.ListUsers)
	admin.GET("/tickets", h.Admin.ListTickets)
}
