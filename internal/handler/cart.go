package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cineteca/cineteca-api/internal/cart"
	"github.com/cineteca/cineteca-api/internal/checkout"
	"github.com/cineteca/cineteca-api/internal/model"
	"github.com/cineteca/cineteca-api/internal/payment"
	"github.com/cineteca/cineteca-api/internal/queue"
	"github.com/cineteca/cineteca-api/internal/repository"
	queue_publisher "github.com/cineteca/cineteca-api/internal/service"
)

// CartHandler exposes the persistent cart and its one-shot checkout.
type CartHandler struct {
	Cart     *cart.Store
	Sessions *repository.SessionRepo
	Movies   *repository.MovieRepo
	Seats    *repository.SeatRepo
	Tickets  *repository.TicketRepo
	Gateway  payment.Gateway
}

func NewCartHandler(store *cart.Store, s *repository.SessionRepo, m *repository.MovieRepo,
	seats *repository.SeatRepo, t *repository.TicketRepo, g payment.Gateway) *CartHandler {
	return &CartHandler{Cart: store, Sessions: s, Movies: m, Seats: seats, Tickets: t, Gateway: g}
}

type addCartReq struct {
	SessionID  uint64   `json:"session_id"`
	SeatIDs    []uint64 `json:"seat_ids"`
	TicketType string   `json:"ticket_type"`
	Quantity   uint32   `json:"quantity"`
}

type cartCheckoutReq struct {
	Method string `json:"method"`
}

// List returns the cart contents with the running total.
func (h *CartHandler) List(c echo.Context) error {
	sess, _ := currentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// First access after a restart repopulates from the persister.
	if len(h.Cart.Items(sess.UserID)) == 0 {
		_ = h.Cart.Hydrate(ctx, sess.UserID)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":       h.Cart.Items(sess.UserID),
		"total_cents": h.Cart.TotalCents(sess.UserID),
	})
}

// Add resolves the session server-side and appends a line to the cart.
// Titles and prices are taken from the database, never from the client.
func (h *CartHandler) Add(c echo.Context) error {
	var req addCartReq
	if err := c.Bind(&req); err != nil || req.SessionID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "session_id required"})
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity > checkout.MaxQuantity {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be between 1 and 6"})
	}
	if req.TicketType == "" {
		req.TicketType = model.TicketFull
	}
	if req.TicketType != model.TicketFull && req.TicketType != model.TicketHalf {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket type must be inteira or meia"})
	}
	sess, _ := currentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	screening, err := h.Sessions.GetByID(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	movie, err := h.Movies.GetByID(ctx, screening.MovieID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	labels, _ := h.Seats.LabelsByIDs(ctx, req.SeatIDs)

	item := model.CartItem{
		MovieID:        movie.ID,
		SessionID:      screening.ID,
		SeatIDs:        req.SeatIDs,
		Title:          movie.Title,
		PosterPath:     movie.PosterPath,
		SessionDate:    screening.Date,
		SessionTime:    screening.Time,
		Room:           screening.Room,
		Seats:          labels,
		TicketType:     req.TicketType,
		UnitPriceCents: screening.PriceCents,
		Quantity:       req.Quantity,
	}
	if err := h.Cart.Add(ctx, sess.UserID, item); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cart write failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"items":       h.Cart.Items(sess.UserID),
		"total_cents": h.Cart.TotalCents(sess.UserID),
	})
}

// Remove deletes one line by position.
func (h *CartHandler) Remove(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid index"})
	}
	sess, _ := currentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Cart.Remove(ctx, sess.UserID, index); err != nil {
		if errors.Is(err, cart.ErrBadIndex) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no such cart item"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cart write failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":       h.Cart.Items(sess.UserID),
		"total_cents": h.Cart.TotalCents(sess.UserID),
	})
}

// Clear empties the cart.
func (h *CartHandler) Clear(c echo.Context) error {
	sess, _ := currentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Cart.Clear(ctx, sess.UserID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cart write failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Checkout charges the whole cart in one payment, issues one ticket per
// line, marks the seats sold and empties the cart.  The cart is only
// cleared after every ticket is written.
func (h *CartHandler) Checkout(c echo.Context) error {
	var req cartCheckoutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	switch req.Method {
	case checkout.MethodPix, checkout.MethodCard, checkout.MethodBoleto:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "method must be pix, card or boleto"})
	}
	sess, _ := currentUser(c)

	items := h.Cart.Items(sess.UserID)
	if len(items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cart is empty"})
	}
	total := h.Cart.TotalCents(sess.UserID)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	orderCode := checkout.NewOrderCode()
	charge, err := h.Gateway.Charge(ctx, payment.ChargeRequest{
		UserID:      sess.UserID,
		AmountCents: total,
		Method:      req.Method,
		OrderCode:   orderCode,
	})
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment failed"})
	}
	if !charge.Success {
		return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "payment declined: " + charge.FailureReason})
	}

	tickets := make([]model.Ticket, 0, len(items))
	codes := make([]string, 0, len(items))
	titles := make([]string, 0, len(items))
	for i, item := range items {
		code := orderCode
		if len(items) > 1 {
			code = orderCode + "-" + strconv.Itoa(i+1)
		}
		ticket, err := h.Tickets.Create(ctx, model.Ticket{
			Code:       code,
			UserID:     sess.UserID,
			SessionID:  item.SessionID,
			PriceCents: item.SubtotalCents(),
			Status:     model.TicketConfirmed,
			PaymentRef: &charge.TransactionID,
		})
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "ticket creation failed"})
		}
		if len(item.SeatIDs) > 0 {
			if err := h.Seats.Confirm(ctx, item.SeatIDs, ticket.ID); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "seat confirmation failed"})
			}
		}
		tickets = append(tickets, ticket)
		codes = append(codes, ticket.Code)
		titles = append(titles, item.Title)
	}

	if err := h.Cart.Clear(ctx, sess.UserID); err != nil {
		c.Logger().Warnf("cart clear after checkout failed for user %d: %v", sess.UserID, err)
	}

	_ = queue_publisher.PublishTicketPurchased(ctx, queue.TicketPurchasedEvent{
		OrderCode:     orderCode,
		UserID:        sess.UserID,
		UserEmail:     sess.Email,
		TicketCodes:   codes,
		MovieTitles:   titles,
		PaymentMethod: req.Method,
		PaymentRef:    charge.TransactionID,
		TotalCents:    total,
		PurchasedAt:   time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"order_code":  orderCode,
		"tickets":     tickets,
		"total_cents": total,
		"payment_ref": charge.TransactionID,
	})
}
