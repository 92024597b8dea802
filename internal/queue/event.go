// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketPurchasedEvent is published when a cart checkout completes and
// tickets are issued.  It carries enough for downstream consumers to
// log, notify, or feed analytics without querying the primary database.
type TicketPurchasedEvent struct {
	OrderCode     string   `json:"order_code"`
	UserID        uint64   `json:"user_id"`
	UserEmail     string   `json:"user_email"`
	TicketCodes   []string `json:"ticket_codes"`
	MovieTitles   []string `json:"movies"`
	PaymentMethod string   `json:"payment_method"`
	PaymentRef    string   `json:"payment_ref"`
	TotalCents    uint32   `json:"total_cents"`
	PurchasedAt   string   `json:"purchased_at"`
}
