package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cineteca/cineteca-api/internal/auth"
	"github.com/cineteca/cineteca-api/internal/checkout"
	"github.com/cineteca/cineteca-api/internal/model"
	"github.com/cineteca/cineteca-api/internal/payment"
	"github.com/cineteca/cineteca-api/internal/queue"
	"github.com/cineteca/cineteca-api/internal/repository"
	queue_publisher "github.com/cineteca/cineteca-api/internal/service"
)

// CheckoutHandler drives the direct purchase flow for a single session:
// review, payment method, confirmation.  Completing the payment step
// charges the gateway, issues the ticket and marks the seats sold.
type CheckoutHandler struct {
	Flows    *checkout.Controller
	Sessions *repository.SessionRepo
	Movies   *repository.MovieRepo
	Seats    *repository.SeatRepo
	Tickets  *repository.TicketRepo
	Gateway  payment.Gateway
}

func NewCheckoutHandler(f *checkout.Controller, s *repository.SessionRepo, m *repository.MovieRepo,
	seats *repository.SeatRepo, t *repository.TicketRepo, g payment.Gateway) *CheckoutHandler {
	return &CheckoutHandler{Flows: f, Sessions: s, Movies: m, Seats: seats, Tickets: t, Gateway: g}
}

type openCheckoutReq struct {
	SessionID uint64   `json:"session_id"`
	SeatIDs   []uint64 `json:"seat_ids"`
}

type updateCheckoutReq struct {
	Quantity   *uint32 `json:"quantity"`
	TicketType *string `json:"ticket_type"`
}

type paymentMethodReq struct {
	Method string `json:"method"`
}

func currentUser(c echo.Context) (auth.Session, bool) {
	s, ok := c.Get("session").(auth.Session)
	return s, ok
}

// flowView is the flow plus its derived totals.
func flowView(f *checkout.Flow) echo.Map {
	return echo.Map{
		"flow":                  f,
		"effective_price_cents": f.EffectivePriceCents(),
		"total_cents":           f.TotalCents(),
	}
}

// Open starts a checkout for a session, replacing any flow in progress.
func (h *CheckoutHandler) Open(c echo.Context) error {
	var req openCheckoutReq
	if err := c.Bind(&req); err != nil || req.SessionID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "session_id required"})
	}
	sess, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}

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

	f := h.Flows.Open(sess.UserID, checkout.Order{
		MovieID:        movie.ID,
		MovieTitle:     movie.Title,
		SessionID:      screening.ID,
		SessionDate:    screening.Date,
		SessionTime:    screening.Time,
		Room:           screening.Room,
		UnitPriceCents: screening.PriceCents,
		SeatIDs:        req.SeatIDs,
	})
	return c.JSON(http.StatusCreated, flowView(f))
}

// Get returns the flow in progress.
func (h *CheckoutHandler) Get(c echo.Context) error {
	sess, _ := currentUser(c)
	f, err := h.Flows.Flow(sess.UserID)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no checkout in progress"})
	}
	return c.JSON(http.StatusOK, flowView(f))
}

// Update adjusts quantity and ticket type while the flow is open.
func (h *CheckoutHandler) Update(c echo.Context) error {
	var req updateCheckoutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	sess, _ := currentUser(c)
	f, err := h.Flows.Flow(sess.UserID)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no checkout in progress"})
	}
	if req.Quantity != nil {
		if err := f.SetQuantity(*req.Quantity); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be between 1 and 6"})
		}
	}
	if req.TicketType != nil {
		if err := f.SetTicketType(*req.TicketType); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket type must be inteira or meia"})
		}
	}
	return c.JSON(http.StatusOK, flowView(f))
}

// SelectPayment records the payment method at the payment step.
func (h *CheckoutHandler) SelectPayment(c echo.Context) error {
	var req paymentMethodReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	sess, _ := currentUser(c)
	f, err := h.Flows.Flow(sess.UserID)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no checkout in progress"})
	}
	switch err := f.SetPaymentMethod(req.Method); {
	case errors.Is(err, checkout.ErrBadStep):
		return c.JSON(http.StatusConflict, echo.Map{"error": "not at the payment step"})
	case errors.Is(err, checkout.ErrBadMethod):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "method must be pix, card or boleto"})
	}
	return c.JSON(http.StatusOK, flowView(f))
}

// Advance moves the flow forward.  Entering the confirmation step is the
// purchase itself: the gateway is charged, the ticket issued and the
// seats marked sold.  A declined charge returns the flow to the payment
// step.
func (h *CheckoutHandler) Advance(c echo.Context) error {
	sess, _ := currentUser(c)
	f, err := h.Flows.Flow(sess.UserID)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no checkout in progress"})
	}

	if err := f.Advance(); err != nil {
		switch {
		case errors.Is(err, checkout.ErrNoPaymentMethod):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment method required"})
		default:
			return c.JSON(http.StatusConflict, echo.Map{"error": "invalid step transition"})
		}
	}
	if f.Step != checkout.StepConfirmation {
		return c.JSON(http.StatusOK, flowView(f))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	ticket, err := h.completePurchase(ctx, sess, f)
	if err != nil {
		// Declined or failed: stay at the payment step, keep the method.
		f.Step = checkout.StepPayment
		f.Code = ""
		return c.JSON(http.StatusPaymentRequired, echo.Map{"error": err.Error()})
	}

	h.Flows.Close(sess.UserID)
	return c.JSON(http.StatusOK, echo.Map{
		"flow":        f,
		"ticket":      ticket,
		"total_cents": f.TotalCents(),
	})
}

// Back returns from the payment step to review.
func (h *CheckoutHandler) Back(c echo.Context) error {
	sess, _ := currentUser(c)
	f, err := h.Flows.Flow(sess.UserID)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no checkout in progress"})
	}
	if err := f.Back(); err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "can only go back from the payment step"})
	}
	return c.JSON(http.StatusOK, flowView(f))
}

// Close abandons the flow; every selection is discarded.
func (h *CheckoutHandler) Close(c echo.Context) error {
	sess, _ := currentUser(c)
	h.Flows.Close(sess.UserID)
	return c.NoContent(http.StatusNoContent)
}

func (h *CheckoutHandler) completePurchase(ctx context.Context, sess auth.Session, f *checkout.Flow) (model.Ticket, error) {
	charge, err := h.Gateway.Charge(ctx, payment.ChargeRequest{
		UserID:      sess.UserID,
		AmountCents: f.TotalCents(),
		Method:      f.PaymentMethod,
		OrderCode:   f.Code,
	})
	if err != nil {
		return model.Ticket{}, err
	}
	if !charge.Success {
		return model.Ticket{}, errors.New("payment declined: " + charge.FailureReason)
	}

	ticket, err := h.Tickets.Create(ctx, model.Ticket{
		Code:       f.Code,
		UserID:     sess.UserID,
		SessionID:  f.Order.SessionID,
		PriceCents: f.TotalCents(),
		Status:     model.TicketConfirmed,
		PaymentRef: &charge.TransactionID,
	})
	if err != nil {
		return model.Ticket{}, errors.New("ticket creation failed")
	}
	if len(f.Order.SeatIDs) > 0 {
		if err := h.Seats.Confirm(ctx, f.Order.SeatIDs, ticket.ID); err != nil {
			return model.Ticket{}, errors.New("seat confirmation failed")
		}
	}

	// Downstream consumers log and notify; a publish failure never fails
	// the purchase.
	_ = queue_publisher.PublishTicketPurchased(ctx, queue.TicketPurchasedEvent{
		OrderCode:     f.Code,
		UserID:        sess.UserID,
		UserEmail:     sess.Email,
		TicketCodes:   []string{ticket.Code},
		MovieTitles:   []string{f.Order.MovieTitle},
		PaymentMethod: f.PaymentMethod,
		PaymentRef:    charge.TransactionID,
		TotalCents:    f.TotalCents(),
		PurchasedAt:   time.Now().UTC().Format(time.RFC3339),
	})
	return ticket, nil
}
