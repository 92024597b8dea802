package model

// TicketType selects the fare applied to a line item.
const (
	TicketFull = "inteira" // full fare
	TicketHalf = "meia"    // half fare, 50% of the base price
)

// CartItem is one pending purchase line in a user's cart.  Items are an
// ordered sequence; duplicates of the same session and seats are allowed
// to accumulate as distinct lines.
type CartItem struct {
	MovieID        uint64   `json:"movie_id"`
	SessionID      uint64   `json:"session_id"`
	SeatIDs        []uint64 `json:"seat_ids,omitempty"`
	Title          string   `json:"title"`
	PosterPath     string   `json:"poster_path"`
	SessionDate    string   `json:"session_date"`
	SessionTime    string   `json:"session_time"`
	Room           string   `json:"room"`
	Seats          []string `json:"seats"`
	TicketType     string   `json:"ticket_type"` // TicketFull | TicketHalf
	UnitPriceCents uint32   `json:"unit_price_cents"`
	Quantity       uint32   `json:"quantity"`
}

// EffectivePriceCents applies the ticket-type discount to the unit price.
func (i CartItem) EffectivePriceCents() uint32 {
	if i.TicketType == TicketHalf {
		return i.UnitPriceCents / 2
	}
	return i.UnitPriceCents
}

// SubtotalCents is the line total: discounted unit price times quantity.
func (i CartItem) SubtotalCents() uint32 {
	return i.EffectivePriceCents() * i.Quantity
}
