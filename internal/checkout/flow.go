// Package checkout drives the three-step purchase flow: review the
// order, pick a payment method, show the confirmation.  Each signed-in
// user owns at most one live flow, held server-side in a Controller.
package checkout

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/cineteca/cineteca-api/internal/model"
)

// Step indices of the flow.  Transitions are strict: forward one step at
// a time, back only from payment to review.
const (
	StepReview       = 0
	StepPayment      = 1
	StepConfirmation = 2
)

// Quantity bounds per order.
const (
	MinQuantity = 1
	MaxQuantity = 6
)

// Payment methods accepted at step 1.
const (
	MethodPix    = "pix"
	MethodCard   = "card"
	MethodBoleto = "boleto"
)

var (
	ErrNoFlow          = errors.New("no checkout in progress")
	ErrBadStep         = errors.New("invalid step transition")
	ErrNoPaymentMethod = errors.New("payment method required")
	ErrBadMethod       = errors.New("unknown payment method")
	ErrBadQuantity     = errors.New("quantity out of range")
	ErrBadTicketType   = errors.New("unknown ticket type")
)

// Order is what the flow was opened for: a session of a movie plus the
// buyer's choices.  Prices are integer cents.
type Order struct {
	MovieID        uint64   `json:"movie_id"`
	MovieTitle     string   `json:"movie_title"`
	SessionID      uint64   `json:"session_id"`
	SessionDate    string   `json:"session_date"`
	SessionTime    string   `json:"session_time"`
	Room           string   `json:"room"`
	UnitPriceCents uint32   `json:"unit_price_cents"`
	SeatIDs        []uint64 `json:"seat_ids,omitempty"`
}

// Flow is one user's in-progress checkout.  Zero value is not usable;
// open flows through a Controller.
type Flow struct {
	Order         Order  `json:"order"`
	Step          int    `json:"step"`
	Quantity      uint32 `json:"quantity"`
	TicketType    string `json:"ticket_type"`
	PaymentMethod string `json:"payment_method"`
	Code          string `json:"code,omitempty"`
	OpenedAt      time.Time
}

func newFlow(o Order) *Flow {
	return &Flow{
		Order:      o,
		Step:       StepReview,
		Quantity:   MinQuantity,
		TicketType: model.TicketFull,
		OpenedAt:   time.Now(),
	}
}

// SetQuantity bounds the ticket count for this order.
func (f *Flow) SetQuantity(q uint32) error {
	if q < MinQuantity || q > MaxQuantity {
		return ErrBadQuantity
	}
	f.Quantity = q
	return nil
}

// SetTicketType switches between full and half fare.
func (f *Flow) SetTicketType(t string) error {
	if t != model.TicketFull && t != model.TicketHalf {
		return ErrBadTicketType
	}
	f.TicketType = t
	return nil
}

// SetPaymentMethod records the chosen method.  Only valid at the payment
// step.
func (f *Flow) SetPaymentMethod(m string) error {
	if f.Step != StepPayment {
		return ErrBadStep
	}
	switch m {
	case MethodPix, MethodCard, MethodBoleto:
		f.PaymentMethod = m
		return nil
	}
	return ErrBadMethod
}

// Advance moves one step forward.  Entering the confirmation step
// requires a payment method and stamps the order code.
func (f *Flow) Advance() error {
	switch f.Step {
	case StepReview:
		f.Step = StepPayment
		return nil
	case StepPayment:
		if f.PaymentMethod == "" {
			return ErrNoPaymentMethod
		}
		f.Step = StepConfirmation
		f.Code = NewOrderCode()
		return nil
	default:
		return ErrBadStep
	}
}

// Back returns from the payment step to review.  No other backward
// transition exists; a confirmed order is final.
func (f *Flow) Back() error {
	if f.Step != StepPayment {
		return ErrBadStep
	}
	f.Step = StepReview
	return nil
}

// EffectivePriceCents is the per-ticket price after the fare rule.
func (f *Flow) EffectivePriceCents() uint32 {
	if f.TicketType == model.TicketHalf {
		return f.Order.UnitPriceCents / 2
	}
	return f.Order.UnitPriceCents
}

// TotalCents is the order total in cents.
func (f *Flow) TotalCents() uint32 {
	return f.EffectivePriceCents() * f.Quantity
}

// NewOrderCode mints a human-readable order code: the CNT prefix plus
// the current unix milliseconds in uppercase base 36.
func NewOrderCode() string {
	return "CNT" + strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
}
